package morm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorm/memorm/factory"
	"github.com/memorm/memorm/schema"
)

func newTestSchema(t *testing.T, opts ...SchemaOption) *Schema {
	t.Helper()
	userTmpl := schema.NewTemplate("user")
	postTmpl := schema.NewTemplate("post")

	cfgs := map[string]CollectionConfig{
		"users": NewCollection(userTmpl,
			WithRelation("posts", schema.NewHasMany("post")),
			WithCollectionFactory(NewFactory(
				WithFactoryAttributes(map[string]any{"name": "Ada"}),
			)),
		),
		"posts": NewCollection(postTmpl,
			WithRelation("author", schema.NewBelongsTo("user")),
			WithCollectionFactory(NewFactory(
				WithFactoryAttributes(map[string]any{"title": "Untitled"}),
			)),
		),
	}
	s, err := NewSchema(cfgs, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSchema_TranslatesTemplateNamesToCollections(t *testing.T) {
	s := newTestSchema(t)
	resolved, ok := s.relations.Get("posts", "author")
	require.True(t, ok)
	assert.Equal(t, "users", resolved.Target)
	assert.Equal(t, "posts", resolved.Inverse)
}

func TestNewSchema_UnknownRelationTargetFails(t *testing.T) {
	userTmpl := schema.NewTemplate("user")
	cfgs := map[string]CollectionConfig{
		"users": NewCollection(userTmpl,
			WithRelation("posts", schema.NewHasMany("post")),
		),
	}
	_, err := NewSchema(cfgs)
	assert.Error(t, err)
}

func TestSchema_FactoryAssociationAcrossCollections(t *testing.T) {
	s := newTestSchema(t)
	users, _ := s.Collection("users")
	posts, _ := s.Collection("posts")

	author, err := users.Create()
	require.NoError(t, err)

	post, err := posts.Create(map[string]any{"author": author})
	require.NoError(t, err)
	assert.Equal(t, author.ID(), post.Get("userId"))

	reloadedAuthor, err := users.Find(author.ID())
	require.NoError(t, err)
	assert.Contains(t, reloadedAuthor.Get("postIds"), post.ID())
}

func TestSchema_LoadSeeds_OnlyDefault(t *testing.T) {
	var ranDefault, ranExtra bool
	s := newTestSchema(t,
		WithSeeds("base", func(s *Schema) error {
			ranDefault = true
			users, _ := s.Collection("users")
			_, err := users.Create()
			return err
		}, true),
		WithSeeds("extra", func(s *Schema) error {
			ranExtra = true
			return nil
		}, false),
	)

	require.NoError(t, s.LoadSeeds(OnlyDefault()))
	assert.True(t, ranDefault)
	assert.False(t, ranExtra)

	users, _ := s.Collection("users")
	assert.Equal(t, 1, users.All().Len())
}

func TestSchema_LoadSeeds_Only(t *testing.T) {
	var order []string
	s := newTestSchema(t,
		WithSeeds("a", func(s *Schema) error { order = append(order, "a"); return nil }, true),
		WithSeeds("b", func(s *Schema) error { order = append(order, "b"); return nil }, true),
	)
	require.NoError(t, s.LoadSeeds(Only("b")))
	assert.Equal(t, []string{"b"}, order)
}

func TestSchema_DefaultIdentityManagerSharedAcrossCollections(t *testing.T) {
	s := newTestSchema(t)
	users, _ := s.Collection("users")
	posts, _ := s.Collection("posts")

	u, err := users.Create()
	require.NoError(t, err)
	p, err := posts.Create()
	require.NoError(t, err)

	assert.NotEqual(t, u.ID(), p.ID())
}

func TestSchema_TraitDrivenSeedBuildsAssociatedGraph(t *testing.T) {
	userTmpl := schema.NewTemplate("user")
	postTmpl := schema.NewTemplate("post")
	cfgs := map[string]CollectionConfig{
		"users": NewCollection(userTmpl,
			WithRelation("posts", schema.NewHasMany("post")),
			WithCollectionFactory(NewFactory(
				WithFactoryAttributes(map[string]any{"name": "Ada"}),
				WithFactoryTrait("withPosts", factory.NewTrait(map[string]any{
					"posts": factory.CreateMany("posts", 2, map[string]any{"title": "Draft"}),
				})),
			)),
		),
		"posts": NewCollection(postTmpl,
			WithRelation("author", schema.NewBelongsTo("user")),
			WithCollectionFactory(NewFactory(
				WithFactoryAttributes(map[string]any{"title": "Untitled"}),
			)),
		),
	}
	s, err := NewSchema(cfgs)
	require.NoError(t, err)

	users, _ := s.Collection("users")
	u, err := users.Create("withPosts")
	require.NoError(t, err)
	assert.Len(t, u.Get("postIds"), 2)
}
