package factory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/model"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/schema"
	"github.com/memorm/memorm/serializer"
)

type harness struct {
	db       *dbreg.DB
	registry *Registry
	users    *Factory
	posts    *Factory
}

func newHarness(t *testing.T, userOpts, postOpts []Option) *harness {
	t.Helper()
	db := dbreg.New()
	db.Register("users", identity.NewStringManager())
	db.Register("posts", identity.NewStringManager())

	relations := relationship.NewRegistry()
	relations.Define("posts", "author", schema.NewBelongsTo("users", schema.ForeignKey("authorId"), schema.SideLoadAs("authors")))
	relations.Define("users", "posts", schema.NewHasMany("posts", schema.ForeignKey("postIds")))
	require.NoError(t, relations.Resolve())

	engine := relationship.NewEngine(relations, db)
	resolve := func(collection string, id any) (map[string]any, bool) {
		rec, err := db.Collection(collection).Find(id)
		if err != nil {
			return nil, false
		}
		return rec, true
	}
	ser := serializer.NewRegistry(relations, resolve, nil)
	ser.Configure("users", "user", serializer.New())
	ser.Configure("posts", "post", serializer.New())

	reg := NewRegistry()
	users := New("users", reg, db, relations, engine, ser, userOpts...)
	posts := New("posts", reg, db, relations, engine, ser, postOpts...)
	reg.Register("users", users)
	reg.Register("posts", posts)

	return &harness{db: db, registry: reg, users: users, posts: posts}
}

// S5 — factory traits + hooks.
func TestScenario_TraitsAndHookOrdering(t *testing.T) {
	var calls []string
	h := newHarness(t,
		[]Option{
			WithBaseAttributes(map[string]any{"name": "Ada", "role": "member"}),
			WithTrait("admin", NewTrait(
				map[string]any{"role": "admin"},
				WithTraitAfterCreate(func(m *model.Model) error {
					calls = append(calls, "admin")
					return nil
				}),
			)),
			WithAfterCreate(func(m *model.Model) error {
				calls = append(calls, "factory")
				return nil
			}),
		},
		nil,
	)

	u, err := h.users.Build("admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"factory", "admin"}, calls)
	assert.Equal(t, "admin", u.Get("role"))
}

func TestBuild_OverrideWinsOverBase(t *testing.T) {
	h := newHarness(t, []Option{WithBaseAttributes(map[string]any{"name": "Ada"})}, nil)
	u, err := h.users.Build(map[string]any{"name": "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Get("name"))
}

func TestBuild_TraitWinsOverOverride(t *testing.T) {
	h := newHarness(t, []Option{
		WithBaseAttributes(map[string]any{"role": "member"}),
		WithTrait("admin", NewTrait(map[string]any{"role": "admin"})),
	}, nil)
	u, err := h.users.Build(map[string]any{"role": "guest"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Get("role"))
}

func TestBuild_UnknownTraitFails(t *testing.T) {
	h := newHarness(t, []Option{WithBaseAttributes(map[string]any{"name": "Ada"})}, nil)
	_, err := h.users.Build("ghost")
	assert.ErrorIs(t, err, ErrUnknownTrait)
}

func TestBuild_IDOverrideIsHonoredAndNotReissued(t *testing.T) {
	h := newHarness(t, []Option{WithBaseAttributes(map[string]any{"name": "Ada"})}, nil)
	u, err := h.users.Build(map[string]any{"id": "custom-1"})
	require.NoError(t, err)
	assert.Equal(t, "custom-1", u.ID())

	u2, err := h.users.Build(map[string]any{"name": "Grace"})
	require.NoError(t, err)
	assert.NotEqual(t, "custom-1", u2.ID())
}

func TestBuild_LazyFunctionSeesSiblingAndID(t *testing.T) {
	h := newHarness(t, []Option{
		WithBaseAttributes(map[string]any{
			"name": "Ada",
			"slug": AttrFunc(func(ctx Context) any {
				return fmt.Sprintf("user-%v-%v", ctx.ID(), ctx.Get("name"))
			}),
		}),
	}, nil)
	u, err := h.users.Build()
	require.NoError(t, err)
	assert.Equal(t, "user-1-Ada", u.Get("slug"))
}

func TestBuild_CircularAttributeDependencyFails(t *testing.T) {
	h := newHarness(t, []Option{
		WithBaseAttributes(map[string]any{
			"a": AttrFunc(func(ctx Context) any { return ctx.Get("b") }),
			"b": AttrFunc(func(ctx Context) any { return ctx.Get("a") }),
		}),
	}, nil)
	_, err := h.users.Build()
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestBuild_AssociationCreateLinksBelongsTo(t *testing.T) {
	h := newHarness(t,
		[]Option{WithBaseAttributes(map[string]any{"name": "Ada"})},
		[]Option{WithBaseAttributes(map[string]any{
			"title":  "Hello",
			"author": Create("users", map[string]any{"name": "Grace"}),
		})},
	)
	p, err := h.posts.Build()
	require.NoError(t, err)
	assert.NotNil(t, p.Get("authorId"))

	related, err := p.Related("author")
	require.NoError(t, err)
	author := related.(*model.Model)
	require.NotNil(t, author)
	assert.Equal(t, "Grace", author.Get("name"))
}

func TestBuild_AssociationOverrideCancelsFactoryAssociation(t *testing.T) {
	h := newHarness(t,
		[]Option{WithBaseAttributes(map[string]any{"name": "Ada"})},
		[]Option{WithBaseAttributes(map[string]any{
			"title":  "Hello",
			"author": Create("users", nil),
		})},
	)
	u, err := h.users.Build(map[string]any{"name": "Existing"})
	require.NoError(t, err)

	p, err := h.posts.Build(map[string]any{"author": u})
	require.NoError(t, err)
	assert.Equal(t, u.ID(), p.Get("authorId"))
}

func TestBuild_AssociationCreateManyLinksHasMany(t *testing.T) {
	h := newHarness(t,
		[]Option{WithBaseAttributes(map[string]any{
			"name":  "Ada",
			"posts": CreateMany("posts", 2, map[string]any{"title": "Draft"}),
		})},
		[]Option{WithBaseAttributes(map[string]any{"title": "Untitled"})},
	)
	u, err := h.users.Build()
	require.NoError(t, err)
	assert.Len(t, u.Get("postIds"), 2)
}

func TestCreateMany_BuildsNModelsAndFindOrCreateBy(t *testing.T) {
	h := newHarness(t, []Option{WithBaseAttributes(map[string]any{"name": "Ada"})}, nil)
	col, err := h.users.CreateMany(3)
	require.NoError(t, err)
	assert.Equal(t, 3, col.Len())

	existing, err := h.users.FindOrCreateBy(map[string]any{"id": col.At(0).ID()})
	require.NoError(t, err)
	assert.Equal(t, col.At(0).ID(), existing.ID())

	created, err := h.users.FindOrCreateBy(map[string]any{"name": "Brand New"})
	require.NoError(t, err)
	assert.Equal(t, "Brand New", created.Get("name"))
}
