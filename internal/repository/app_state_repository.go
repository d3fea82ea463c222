package repository

import (
	"context"

	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// AppStateRepository holds the initialization flag and schema version.
type AppStateRepository struct {
	store *kvstore.Store
}

// NewAppStateRepository constructs an AppStateRepository.
func NewAppStateRepository(store *kvstore.Store) *AppStateRepository {
	return &AppStateRepository{store: store}
}

// IsInitialized reports whether first-start seeding has run. An unreadable
// flag counts as not initialized.
func (r *AppStateRepository) IsInitialized(ctx context.Context) bool {
	var initialized bool
	if !r.store.Get(ctx, kvstore.KeyInitialized, &initialized) {
		return false
	}
	return initialized
}

// SetInitialized raises the initialization flag.
func (r *AppStateRepository) SetInitialized(ctx context.Context) bool {
	return r.store.Set(ctx, kvstore.KeyInitialized, true)
}

// SchemaVersion returns the stored schema version, 0 when unset.
func (r *AppStateRepository) SchemaVersion(ctx context.Context) int {
	var version int
	if !r.store.Get(ctx, kvstore.KeySchemaVersion, &version) {
		return 0
	}
	return version
}

// SetSchemaVersion records the schema version.
func (r *AppStateRepository) SetSchemaVersion(ctx context.Context, version int) bool {
	return r.store.Set(ctx, kvstore.KeySchemaVersion, version)
}

// Reset clears every key in the store. It holds every key's lock, taken in
// AllKeys order, so no read-modify-write cycle can write a stale collection
// back after the clear.
func (r *AppStateRepository) Reset(ctx context.Context) bool {
	for _, key := range kvstore.AllKeys {
		lock := r.store.Locker(key)
		lock.Lock()
		defer lock.Unlock()
	}
	return r.store.Clear(ctx)
}
