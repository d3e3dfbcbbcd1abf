package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/schema"
)

// testFixture builds a users/posts graph: post.author belongsTo user (fk
// authorId, side-load "authors"), user.posts hasMany post (fk postIds).
func testFixture(t *testing.T) (*Registry, map[string]map[any]map[string]any) {
	t.Helper()
	registry := relationship.NewRegistry()
	registry.Define("posts", "author", schema.NewBelongsTo("users", schema.ForeignKey("authorId"), schema.SideLoadAs("authors")))
	registry.Define("users", "posts", schema.NewHasMany("posts", schema.ForeignKey("postIds")))
	require.NoError(t, registry.Resolve())

	data := map[string]map[any]map[string]any{
		"users": {
			"u1": {"id": "u1", "name": "Ada", "postIds": []any{"p1"}},
		},
		"posts": {
			"p1": {"id": "p1", "title": "Hello", "content": "World", "authorId": "u1"},
		},
	}

	resolve := func(collection string, id any) (map[string]any, bool) {
		rec, ok := data[collection][id]
		return rec, ok
	}

	sreg := NewRegistry(registry, resolve, nil)
	sreg.Configure("users", "user", New())
	sreg.Configure("posts", "post", New())
	return sreg, data
}

func TestSerializeRecord_DefaultForeignKeyMode(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"])
	require.NoError(t, err)
	rec := out.(map[string]any)
	assert.NotContains(t, rec, "authorId") // no `with` -> FK excluded by default
	assert.Equal(t, "Hello", rec["title"])
}

func TestSerializeRecord_ForeignKeyModeWithRelationListed(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRelations("author"))
	require.NoError(t, err)
	rec := out.(map[string]any)
	assert.Equal(t, "u1", rec["authorId"])
	assert.NotContains(t, rec, "author")
}

func TestSerializeRecord_Embedded(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRelation("author", Embedded, nil))
	require.NoError(t, err)
	rec := out.(map[string]any)
	assert.NotContains(t, rec, "authorId")
	author := rec["author"].(map[string]any)
	assert.Equal(t, "Ada", author["name"])
}

func TestSerializeRecord_EmbeddedForeignKey(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRelation("author", EmbeddedForeignKey, nil))
	require.NoError(t, err)
	rec := out.(map[string]any)
	assert.Equal(t, "u1", rec["authorId"])
	assert.NotNil(t, rec["author"])
}

func TestSerializeRecord_RootWrapping(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRoot(true))
	require.NoError(t, err)
	wrapped := out.(map[string]any)
	post := wrapped["post"].(map[string]any)
	assert.Equal(t, "Hello", post["title"])
}

func TestSerializeRecord_ExplicitRootKey(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRoot("article"))
	require.NoError(t, err)
	wrapped := out.(map[string]any)
	assert.Contains(t, wrapped, "article")
}

// S6 — serializer side-load.
func TestScenario_SideLoad(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"],
		WithRelation("author", SideLoaded, nil))
	require.NoError(t, err)

	wrapped := out.(map[string]any)
	post := wrapped["post"].(map[string]any)
	assert.Equal(t, "p1", post["id"])
	assert.Equal(t, "u1", post["authorId"])

	authors := wrapped["authors"].([]map[string]any)
	require.Len(t, authors, 1)
	assert.Equal(t, "u1", authors[0]["id"])
}

func TestSideLoad_RootFalseIgnoredWithWarning(t *testing.T) {
	sreg, data := testFixture(t)
	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"],
		WithRelation("author", SideLoaded, nil), WithRoot(false))
	require.NoError(t, err)
	wrapped := out.(map[string]any)
	assert.Contains(t, wrapped, "post")
	assert.Contains(t, wrapped, "authors")
}

func TestSerializeRecords_SideLoadDedup(t *testing.T) {
	registry := relationship.NewRegistry()
	registry.Define("posts", "author", schema.NewBelongsTo("users", schema.ForeignKey("authorId"), schema.SideLoadAs("authors")))
	registry.Define("users", "posts", schema.NewHasMany("posts", schema.ForeignKey("postIds")))
	require.NoError(t, registry.Resolve())

	data := map[string]map[any]map[string]any{
		"users": {
			"u1": {"id": "u1", "name": "Ada"},
		},
		"posts": {
			"p1": {"id": "p1", "title": "P1", "authorId": "u1"},
			"p2": {"id": "p2", "title": "P2", "authorId": "u1"},
		},
	}
	resolve := func(collection string, id any) (map[string]any, bool) {
		rec, ok := data[collection][id]
		return rec, ok
	}
	sreg := NewRegistry(registry, resolve, nil)
	sreg.Configure("users", "user", New())
	sreg.Configure("posts", "post", New())

	out, err := sreg.SerializeRecords("posts", []map[string]any{data["posts"]["p1"], data["posts"]["p2"]},
		WithRelation("author", SideLoaded, nil))
	require.NoError(t, err)

	wrapped := out.(map[string]any)
	authors := wrapped["authors"].([]map[string]any)
	assert.Len(t, authors, 1)
}

func TestSelect_IncludeExcludeAndMap(t *testing.T) {
	sreg, data := testFixture(t)

	out, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithSelect("title"))
	require.NoError(t, err)
	rec := out.(map[string]any)
	assert.Equal(t, map[string]any{"title": "Hello"}, rec)

	out, err = sreg.SerializeRecord("posts", data["posts"]["p1"], WithSelectExclude("content"))
	require.NoError(t, err)
	rec = out.(map[string]any)
	assert.NotContains(t, rec, "content")
	assert.Contains(t, rec, "title")

	out, err = sreg.SerializeRecord("posts", data["posts"]["p1"], WithSelectMap(map[string]bool{"title": true}))
	require.NoError(t, err)
	rec = out.(map[string]any)
	assert.Equal(t, map[string]any{"title": "Hello"}, rec)
}

func TestUnknownRelation_Errors(t *testing.T) {
	sreg, data := testFixture(t)
	_, err := sreg.SerializeRecord("posts", data["posts"]["p1"], WithRelations("ghost"))
	assert.ErrorIs(t, err, ErrUnknownRelation)
}
