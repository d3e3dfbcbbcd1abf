// Command seedcheck builds a tiny users/posts schema, loads its seeds, and
// prints the first user serialized with its posts side-loaded. It is a
// manual smoke-test harness, not part of the importable library surface.
package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/memorm/memorm/factory"
	"github.com/memorm/memorm/morm"
	"github.com/memorm/memorm/schema"
	"github.com/memorm/memorm/serializer"
)

func main() {
	userTmpl := schema.NewTemplate("user")
	postTmpl := schema.NewTemplate("post")

	userFactory := morm.NewFactory(
		morm.WithFactoryAttributes(map[string]any{"name": "Ada"}),
		morm.WithFactoryTrait("withPosts", factory.NewTrait(map[string]any{
			"posts": factory.CreateMany("posts", 2, map[string]any{"title": "Untitled"}),
		})),
	)
	postFactory := morm.NewFactory(
		morm.WithFactoryAttributes(map[string]any{"title": "Hello world"}),
	)

	sch, err := morm.NewSchema(map[string]morm.CollectionConfig{
		"users": morm.NewCollection(userTmpl,
			morm.WithRelation("posts", schema.NewHasMany("post")),
			morm.WithCollectionFactory(userFactory),
		),
		"posts": morm.NewCollection(postTmpl,
			morm.WithRelation("author", schema.NewBelongsTo("user")),
			morm.WithCollectionFactory(postFactory),
		),
	}, morm.WithSeeds("default", func(s *morm.Schema) error {
		users, _ := s.Collection("users")
		_, err := users.Create("withPosts")
		return err
	}, true))
	if err != nil {
		log.Fatalf("seedcheck: schema setup failed: %v", err)
	}

	if err := sch.LoadSeeds(morm.OnlyDefault()); err != nil {
		log.Fatalf("seedcheck: seeding failed: %v", err)
	}

	users, _ := sch.Collection("users")
	first, err := users.First()
	if err != nil {
		log.Fatalf("seedcheck: no users seeded: %v", err)
	}

	out, err := first.Serialize(serializer.WithRelation("posts", serializer.SideLoaded, nil))
	if err != nil {
		log.Fatalf("seedcheck: serialize failed: %v", err)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("seedcheck: marshal failed: %v", err)
	}
	fmt.Println(string(encoded))
}
