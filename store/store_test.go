package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/predicate"
)

func newTestStore() *DbCollection {
	return New("widgets", identity.NewStringManager())
}

func TestInsert_AssignsIDWhenMissing(t *testing.T) {
	c := newTestStore()
	rec, err := c.Insert(map[string]any{"name": "gizmo"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec["id"])
	assert.Equal(t, 1, c.Size())
}

func TestInsert_RejectsDuplicateID(t *testing.T) {
	c := newTestStore()
	_, err := c.Insert(map[string]any{"id": "1", "name": "a"})
	require.NoError(t, err)
	_, err = c.Insert(map[string]any{"id": "1", "name": "b"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestInsert_ReturnsSnapshotNotStoredMap(t *testing.T) {
	c := newTestStore()
	rec, err := c.Insert(map[string]any{"id": "1", "name": "a"})
	require.NoError(t, err)
	rec["name"] = "mutated"

	fetched, err := c.Find("1")
	require.NoError(t, err)
	assert.Equal(t, "a", fetched["name"])
}

func TestFind_NotFound(t *testing.T) {
	c := newTestStore()
	_, err := c.Find("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindBy_FieldMap(t *testing.T) {
	c := newTestStore()
	_, _ = c.Insert(map[string]any{"id": "1", "status": "active"})
	_, _ = c.Insert(map[string]any{"id": "2", "status": "inactive"})

	rec, err := c.FindBy(map[string]any{"status": "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "2", rec["id"])
}

func TestCountAndExists(t *testing.T) {
	c := newTestStore()
	_, _ = c.Insert(map[string]any{"id": "1", "age": 20})
	_, _ = c.Insert(map[string]any{"id": "2", "age": 30})

	n, err := c.Count(predicate.FieldMap{"age": predicate.Gte(25)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := c.Exists(predicate.FieldMap{"age": predicate.Gte(100)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindMany_WhereOrderByLimitOffsetAndTotal(t *testing.T) {
	c := newTestStore()
	ages := []int{25, 30, 35, 28, 40}
	statuses := []string{"active", "active", "inactive", "pending", "active"}
	for i := range ages {
		_, _ = c.Insert(map[string]any{"age": ages[i], "status": statuses[i]})
	}

	q := &predicate.Query{
		Where: predicate.And{
			predicate.FieldMap{"status": "active"},
			predicate.FieldMap{"age": predicate.Gte(30)},
		},
		OrderBy: predicate.OrderBy("age", predicate.Asc),
	}
	result, err := c.FindMany(q)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 30, result.Records[0]["age"])
	assert.Equal(t, 40, result.Records[1]["age"])
	assert.Equal(t, 2, result.Total)
}

func TestFindMany_LimitCapsPageButNotTotal(t *testing.T) {
	c := newTestStore()
	for i := 0; i < 5; i++ {
		_, _ = c.Insert(map[string]any{"n": i})
	}
	limit := 2
	result, err := c.FindMany(&predicate.Query{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 5, result.Total)
}

func TestFindMany_CursorPagination(t *testing.T) {
	c := newTestStore()
	for i := 1; i <= 5; i++ {
		_, _ = c.Insert(map[string]any{"id": i, "n": i})
	}
	q := &predicate.Query{
		OrderBy: predicate.OrderBy("n", predicate.Asc),
		Cursor:  map[string]any{"n": 2},
	}
	result, err := c.FindMany(q)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, 3, result.Records[0]["n"])
}

func TestUpdate_ShallowMergeWithNestedMapMerge(t *testing.T) {
	c := newTestStore()
	_, _ = c.Insert(map[string]any{"id": "1", "name": "a", "meta": map[string]any{"x": 1, "y": 2}})

	updated, err := c.Update("1", map[string]any{"meta": map[string]any{"y": 9, "z": 3}})
	require.NoError(t, err)
	meta := updated["meta"].(map[string]any)
	assert.Equal(t, 1, meta["x"])
	assert.Equal(t, 9, meta["y"])
	assert.Equal(t, 3, meta["z"])
	assert.Equal(t, "a", updated["name"])
}

func TestUpdate_NotFound(t *testing.T) {
	c := newTestStore()
	_, err := c.Update("missing", map[string]any{"a": 1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateMany_RespectsLimitOffsetOrderBy(t *testing.T) {
	c := newTestStore()
	for i := 1; i <= 4; i++ {
		_, _ = c.Insert(map[string]any{"id": i, "n": i})
	}
	limit := 2
	q := &predicate.Query{OrderBy: predicate.OrderBy("n", predicate.Desc), Limit: &limit}
	updated, err := c.UpdateMany(q, map[string]any{"touched": true})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 4, updated[0]["n"])
	assert.Equal(t, 3, updated[1]["n"])
}

func TestDeleteAndDeleteMany(t *testing.T) {
	c := newTestStore()
	_, _ = c.Insert(map[string]any{"id": "1", "status": "active"})
	_, _ = c.Insert(map[string]any{"id": "2", "status": "inactive"})
	_, _ = c.Insert(map[string]any{"id": "3", "status": "active"})

	require.NoError(t, c.Delete("1"))
	assert.Equal(t, 2, c.Size())

	n, err := c.DeleteMany(map[string]any{"status": "active"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Size())
}

func TestAllAtFirstLast(t *testing.T) {
	c := newTestStore()
	_, _ = c.Insert(map[string]any{"id": "1"})
	_, _ = c.Insert(map[string]any{"id": "2"})
	_, _ = c.Insert(map[string]any{"id": "3"})

	all := c.All()
	require.Len(t, all, 3)

	first, err := c.First()
	require.NoError(t, err)
	assert.Equal(t, "1", first["id"])

	last, err := c.Last()
	require.NoError(t, err)
	assert.Equal(t, "3", last["id"])

	at, err := c.At(1)
	require.NoError(t, err)
	assert.Equal(t, "2", at["id"])
}

func TestIsEmpty(t *testing.T) {
	c := newTestStore()
	assert.True(t, c.IsEmpty())
	_, _ = c.Insert(map[string]any{"id": "1"})
	assert.False(t, c.IsEmpty())
}

func TestClear_ResetsStoreAndIdentity(t *testing.T) {
	idm := identity.NewNumberManager()
	c := New("widgets", idm)
	_, _ = c.Insert(map[string]any{"name": "a"})
	_, _ = c.Insert(map[string]any{"name": "b"})

	c.Clear()
	assert.True(t, c.IsEmpty())

	rec, err := c.Insert(map[string]any{"name": "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])
}

func TestReserveAndInsertWithID(t *testing.T) {
	c := newTestStore()
	id := c.Reserve()
	assert.Equal(t, "1", id)

	stored, err := c.InsertWithID(id, map[string]any{"name": "reserved"})
	require.NoError(t, err)
	assert.Equal(t, "1", stored["id"])

	// the reservation must not be reissued by a later Insert
	next, err := c.Insert(map[string]any{"name": "next"})
	require.NoError(t, err)
	assert.Equal(t, "2", next["id"])
}

func TestInsertWithID_DuplicateFails(t *testing.T) {
	c := newTestStore()
	_, err := c.InsertWithID("1", map[string]any{"name": "a"})
	require.NoError(t, err)
	_, err = c.InsertWithID("1", map[string]any{"name": "b"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestRecordID_MarksUsedWithoutStoring(t *testing.T) {
	c := newTestStore()
	c.RecordID("5")
	_, err := c.Insert(map[string]any{"id": "5"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}
