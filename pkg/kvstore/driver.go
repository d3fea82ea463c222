package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/overseas-crm/pkg/config"
)

// ErrNotFound is returned by drivers when a key holds no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Driver is a raw persistent byte store addressed by string keys. Drivers
// report failures; the Store facade decides how they surface.
type Driver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes a key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the driver selected by configuration.
func Open(cfg config.StoreConfig) (Driver, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		return NewMemoryDriver(), nil
	case config.StoreDriverFile, "":
		return NewFileDriver(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
