package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/pkg/config"
)

type failingDriver struct {
	getErr error
	setErr error
	raw    []byte
}

func (f *failingDriver) Get(context.Context, string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.raw, nil
}
func (f *failingDriver) Set(context.Context, string, []byte) error { return f.setErr }
func (f *failingDriver) Remove(context.Context, string) error      { return f.setErr }
func (f *failingDriver) Clear(context.Context) error               { return f.setErr }
func (f *failingDriver) Close() error                              { return nil }

type recordingObserver struct {
	mu  sync.Mutex
	ops map[string][]bool
}

func (r *recordingObserver) ObserveStoreOperation(op string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = make(map[string][]bool)
	}
	r.ops[op] = append(r.ops[op], success)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryDriver(), nil, nil)

	require.True(t, store.Set(ctx, KeyStudents, []map[string]string{{"id": "1"}}))
	var got []map[string]string
	require.True(t, store.Get(ctx, KeyStudents, &got))
	assert.Equal(t, "1", got[0]["id"])

	require.True(t, store.Remove(ctx, KeyStudents))
	assert.False(t, store.Get(ctx, KeyStudents, &got))
	assert.True(t, store.Remove(ctx, KeyStudents))
}

func TestStoreAbsorbsFailures(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	store := New(&failingDriver{getErr: errors.New("quota"), setErr: errors.New("quota")}, nil, obs)

	var dest []string
	assert.False(t, store.Get(ctx, KeyUsers, &dest))
	found, ok := store.Read(ctx, KeyUsers, &dest)
	assert.False(t, found)
	assert.False(t, ok)
	assert.False(t, store.Set(ctx, KeyUsers, []string{"a"}))
	assert.False(t, store.Remove(ctx, KeyUsers))
	assert.False(t, store.Clear(ctx))
	assert.Equal(t, []bool{false, false}, obs.ops[OpGet])
	assert.Equal(t, []bool{false}, obs.ops[OpSet])
}

func TestStoreDecodeFailureIsNull(t *testing.T) {
	store := New(&failingDriver{raw: []byte("{not json")}, nil, nil)
	var dest map[string]string
	found, ok := store.Read(context.Background(), KeyUsers, &dest)
	assert.False(t, found)
	assert.False(t, ok)
}

func TestStoreEncodeFailureIsFalse(t *testing.T) {
	store := New(NewMemoryDriver(), nil, nil)
	assert.False(t, store.Set(context.Background(), KeyUsers, map[string]interface{}{"bad": make(chan int)}))
}

func TestStoreMissingKeyIsFoundFalseOK(t *testing.T) {
	store := New(NewMemoryDriver(), nil, nil)
	var dest []string
	found, ok := store.Read(context.Background(), KeyPayments, &dest)
	assert.False(t, found)
	assert.True(t, ok)
}

func TestLockerIsSharedPerKey(t *testing.T) {
	store := New(NewMemoryDriver(), nil, nil)
	assert.Same(t, store.Locker(KeyUsers), store.Locker(KeyUsers))
	assert.NotSame(t, store.Locker(KeyUsers), store.Locker(KeyStudents))
}

func TestFileDriverPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileDriver(dir)
	require.NoError(t, err)
	store := New(first, nil, nil)
	require.True(t, store.Set(ctx, KeyInitialized, true))
	require.True(t, store.Set(ctx, KeySchemaVersion, 2))

	second, err := NewFileDriver(dir)
	require.NoError(t, err)
	reopened := New(second, nil, nil)
	var initialized bool
	require.True(t, reopened.Get(ctx, KeyInitialized, &initialized))
	assert.True(t, initialized)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))
	require.True(t, reopened.Clear(ctx))
	var version int
	assert.False(t, reopened.Get(ctx, KeySchemaVersion, &version))
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}

func TestFileDriverRejectsUnsafeKeys(t *testing.T) {
	d, err := NewFileDriver(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, d.Set(context.Background(), "../escape", []byte("1")))
	_, err = d.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestOpenSelectsDriver(t *testing.T) {
	d, err := Open(config.StoreConfig{Driver: config.StoreDriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryDriver{}, d)

	d, err = Open(config.StoreConfig{Driver: config.StoreDriverFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileDriver{}, d)

	_, err = Open(config.StoreConfig{Driver: "s3"})
	assert.Error(t, err)
}
