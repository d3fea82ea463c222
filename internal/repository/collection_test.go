package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

type note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTestStore() (*kvstore.Store, *kvstore.MemoryDriver) {
	driver := kvstore.NewMemoryDriver()
	return kvstore.New(driver, nil, nil), driver
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	current := start
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			current = current.Add(d)
		}
}

func TestCollectionAddAssignsIdentityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, _ := fixedClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()), WithClock(now))

	n := note{Title: "first"}
	require.True(t, col.Add(ctx, &n))
	assert.Equal(t, "id-1", n.ID)
	assert.Equal(t, now(), n.CreatedAt)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	got, ok := col.Get(ctx, "id-1")
	require.True(t, ok)
	assert.Equal(t, n, *got)
}

func TestCollectionAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))

	for _, title := range []string{"a", "b", "c"} {
		require.True(t, col.Add(ctx, &note{Title: title}))
	}
	require.True(t, col.Delete(ctx, "id-2"))
	require.True(t, col.Add(ctx, &note{Title: "d"}))

	var titles []string
	for _, n := range col.All(ctx) {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"a", "c", "d"}, titles)
}

func TestCollectionUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, advance := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()), WithClock(now))

	n := note{Title: "draft", Count: 1}
	require.True(t, col.Add(ctx, &n))
	created := n.CreatedAt

	advance(time.Hour)
	updated, ok := col.Update(ctx, n.ID, map[string]interface{}{
		"title":     "final",
		"id":        "hijack",
		"createdAt": time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, 1, updated.Count)
	assert.Equal(t, n.ID, updated.ID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, created.Add(time.Hour), updated.UpdatedAt)

	_, ok = col.Get(ctx, "hijack")
	assert.False(t, ok)
}

func TestCollectionUpdateMissingLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))
	require.True(t, col.Add(ctx, &note{Title: "kept"}))

	before, err := driver.Get(ctx, "notes")
	require.NoError(t, err)

	_, ok := col.Update(ctx, "nope", map[string]interface{}{"title": "x"})
	assert.False(t, ok)

	after, err := driver.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCollectionUpdateRejectsMistypedPatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))
	n := note{Title: "t", Count: 2}
	require.True(t, col.Add(ctx, &n))

	_, ok := col.Update(ctx, n.ID, map[string]interface{}{"count": "many"})
	assert.False(t, ok)

	got, ok := col.Get(ctx, n.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.Count)
}

func TestCollectionDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))
	require.True(t, col.Add(ctx, &note{Title: "gone"}))

	assert.True(t, col.Delete(ctx, "id-1"))
	assert.True(t, col.Delete(ctx, "id-1"))
	assert.True(t, col.Delete(ctx, "never-existed"))
	assert.Empty(t, col.All(ctx))
}

func TestCollectionNeverOverwritesUnreadableValue(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	require.NoError(t, driver.Set(ctx, "notes", []byte("{corrupt")))
	col := NewCollection[note](store, "notes")

	assert.False(t, col.Add(ctx, &note{Title: "x"}))
	assert.False(t, col.Delete(ctx, "id-1"))
	_, ok := col.Update(ctx, "id-1", map[string]interface{}{"title": "y"})
	assert.False(t, ok)
	assert.Empty(t, col.All(ctx))

	raw, err := driver.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "{corrupt", string(raw))
}

func TestCollectionPutReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes", WithoutTimestamps())

	require.True(t, col.Put(ctx, note{ID: "a", Title: "one"}))
	require.True(t, col.Put(ctx, note{ID: "b", Title: "two"}))
	require.True(t, col.Put(ctx, note{ID: "a", Title: "uno"}))

	all := col.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "uno", all[0].Title)
	assert.Equal(t, "two", all[1].Title)
	assert.False(t, col.Put(ctx, note{Title: "keyless"}))
}

func TestCollectionSetAllAndFind(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes")

	require.True(t, col.SetAll(ctx, []note{{ID: "x", Title: "first", Count: 1}, {ID: "y", Title: "second", Count: 2}, {Title: "dropped"}}))
	assert.Len(t, col.All(ctx), 2)

	found, ok := col.Find(ctx, func(n note) bool { return n.Count == 2 })
	require.True(t, ok)
	assert.Equal(t, "y", found.ID)

	_, ok = col.Find(ctx, func(n note) bool { return n.Count == 3 })
	assert.False(t, ok)
	assert.Len(t, col.Filter(ctx, func(n note) bool { return n.Count > 0 }), 2)
}

func TestCollectionConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.True(t, col.Add(ctx, &note{Count: i}))
		}(i)
	}
	wg.Wait()
	assert.Len(t, col.All(ctx), 25)
}

func TestCollectionMutateKeepsKeyAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, advance := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()), WithClock(now))
	n := note{Title: "draft", Count: 1}
	require.True(t, col.Add(ctx, &n))

	advance(time.Minute)
	updated, err := col.Mutate(ctx, n.ID, func(rec *note) error {
		rec.Count++
		rec.Title = "final"
		rec.ID = "hijack"
		rec.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, n.ID, updated.ID)
	assert.Equal(t, 2, updated.Count)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)
	assert.Equal(t, n.CreatedAt.Add(time.Minute), updated.UpdatedAt)

	_, ok := col.Get(ctx, "hijack")
	assert.False(t, ok)
}

func TestCollectionMutateErrorsLeaveCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))
	n := note{Title: "kept"}
	require.True(t, col.Add(ctx, &n))
	before, err := driver.Get(ctx, "notes")
	require.NoError(t, err)

	refused := errors.New("refused")
	_, err = col.Mutate(ctx, n.ID, func(rec *note) error {
		rec.Title = "changed"
		return refused
	})
	assert.ErrorIs(t, err, refused)

	_, err = col.Mutate(ctx, "nope", func(*note) error { return nil })
	assert.ErrorIs(t, err, ErrRecordNotFound)

	after, err := driver.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, driver.Set(ctx, "notes", []byte("{corrupt")))
	_, err = col.Mutate(ctx, n.ID, func(*note) error { return nil })
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCollectionConcurrentMutatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	col := NewCollection[note](store, "notes")
	n := note{Title: "counter"}
	require.True(t, col.Add(ctx, &n))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := col.Mutate(ctx, n.ID, func(rec *note) error {
				rec.Count++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, ok := col.Get(ctx, n.ID)
	require.True(t, ok)
	assert.Equal(t, 25, got.Count)
}

func TestCollectionRemoveWhere(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	col := NewCollection[note](store, "notes", WithIDGenerator(sequentialIDs()))
	for i := 1; i <= 4; i++ {
		require.True(t, col.Add(ctx, &note{Count: i}))
	}

	removed, ok := col.RemoveWhere(ctx, func(n note) bool { return n.Count%2 == 0 })
	require.True(t, ok)
	assert.Equal(t, 2, removed)
	remaining := col.All(ctx)
	require.Len(t, remaining, 2)
	assert.Equal(t, []string{"id-1", "id-3"}, []string{remaining[0].ID, remaining[1].ID})

	before, err := driver.Get(ctx, "notes")
	require.NoError(t, err)
	removed, ok = col.RemoveWhere(ctx, func(n note) bool { return n.Count > 10 })
	require.True(t, ok)
	assert.Zero(t, removed)
	after, err := driver.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
