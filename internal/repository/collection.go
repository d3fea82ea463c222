package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

var (
	// ErrRecordNotFound reports a Mutate on an id that is not stored.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnavailable reports a collection that could not be read or written.
	ErrUnavailable = errors.New("collection unavailable")
)

// collectionDoc is the persisted layout of a collection: records indexed by
// key plus their insertion order.
type collectionDoc struct {
	Order   []string                   `json:"order"`
	Records map[string]json.RawMessage `json:"records"`
}

func (d *collectionDoc) normalise() {
	if d.Records == nil {
		d.Records = make(map[string]json.RawMessage)
	}
}

func (d *collectionDoc) remove(key string) {
	delete(d.Records, key)
	for i, k := range d.Order {
		if k == key {
			d.Order = append(d.Order[:i], d.Order[i+1:]...)
			return
		}
	}
}

// CollectionOption customises a Collection.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	keyField   string
	timestamps bool
	newID      func() string
	now        func() time.Time
	logger     *zap.Logger
}

// WithKeyField indexes records by a field other than "id".
func WithKeyField(field string) CollectionOption {
	return func(o *collectionOptions) { o.keyField = field }
}

// WithoutTimestamps disables createdAt/updatedAt stamping.
func WithoutTimestamps() CollectionOption {
	return func(o *collectionOptions) { o.timestamps = false }
}

// WithIDGenerator overrides uuid id assignment.
func WithIDGenerator(fn func() string) CollectionOption {
	return func(o *collectionOptions) { o.newID = fn }
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) CollectionOption {
	return func(o *collectionOptions) { o.now = fn }
}

// WithLogger attaches a logger for per-record decode failures.
func WithLogger(logger *zap.Logger) CollectionOption {
	return func(o *collectionOptions) { o.logger = logger }
}

// Collection is an ordered set of JSON records persisted under one store key.
// Every mutation holds the key's lock across its read-modify-write cycle, and a
// collection that could not be loaded is never overwritten.
type Collection[T any] struct {
	store *kvstore.Store
	key   string
	opts  collectionOptions
}

// NewCollection binds a collection to a store key.
func NewCollection[T any](store *kvstore.Store, key string, opts ...CollectionOption) *Collection[T] {
	return &Collection[T]{store: store, key: key, opts: resolveOptions(opts)}
}

func resolveOptions(opts []CollectionOption) collectionOptions {
	o := collectionOptions{
		keyField:   fieldID,
		timestamps: true,
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Key returns the storage key backing the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// All returns every record in insertion order. Unreadable storage yields an
// empty slice.
func (c *Collection[T]) All(ctx context.Context) []T {
	var doc collectionDoc
	if !c.store.Get(ctx, c.key, &doc) {
		return []T{}
	}
	items := make([]T, 0, len(doc.Order))
	for _, k := range doc.Order {
		raw, ok := doc.Records[k]
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			c.opts.logger.Warn("skipping undecodable record", zap.String("key", c.key), zap.String("id", k), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

// SetAll replaces the whole collection. Records without a key are dropped.
func (c *Collection[T]) SetAll(ctx context.Context, items []T) bool {
	doc := collectionDoc{Order: make([]string, 0, len(items)), Records: make(map[string]json.RawMessage, len(items))}
	for _, item := range items {
		fields, err := toFields(item)
		if err != nil {
			return false
		}
		k, _ := fields[c.opts.keyField].(string)
		if k == "" {
			continue
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return false
		}
		if _, seen := doc.Records[k]; !seen {
			doc.Order = append(doc.Order, k)
		}
		doc.Records[k] = raw
	}

	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()
	return c.store.Set(ctx, c.key, doc)
}

// Get returns the record stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, bool) {
	var doc collectionDoc
	if !c.store.Get(ctx, c.key, &doc) {
		return nil, false
	}
	raw, ok := doc.Records[id]
	if !ok {
		return nil, false
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		c.opts.logger.Warn("undecodable record", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, false
	}
	return &item, true
}

// Find returns the first record, in insertion order, matching fn.
func (c *Collection[T]) Find(ctx context.Context, fn func(T) bool) (*T, bool) {
	for _, item := range c.All(ctx) {
		if fn(item) {
			found := item
			return &found, true
		}
	}
	return nil, false
}

// Filter returns every record matching fn.
func (c *Collection[T]) Filter(ctx context.Context, fn func(T) bool) []T {
	matched := make([]T, 0)
	for _, item := range c.All(ctx) {
		if fn(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Add assigns a fresh id (and timestamps) to rec and appends it. rec is updated
// in place with the assigned fields.
func (c *Collection[T]) Add(ctx context.Context, rec *T) bool {
	fields, err := toFields(rec)
	if err != nil {
		return false
	}
	fields[fieldID] = c.opts.newID()
	if c.opts.timestamps {
		now := c.opts.now()
		fields[fieldCreatedAt] = now
		fields[fieldUpdatedAt] = now
	}
	canonical, raw, err := fromFields[T](fields)
	if err != nil {
		return false
	}
	k, _ := fields[c.opts.keyField].(string)
	if k == "" {
		return false
	}

	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return false
	}
	if _, exists := doc.Records[k]; !exists {
		doc.Order = append(doc.Order, k)
	}
	doc.Records[k] = raw
	if !c.store.Set(ctx, c.key, doc) {
		return false
	}
	*rec = *canonical
	return true
}

// Put stores rec under its key, replacing any existing record in place or
// appending a new one. No id or timestamps are assigned.
func (c *Collection[T]) Put(ctx context.Context, rec T) bool {
	fields, err := toFields(rec)
	if err != nil {
		return false
	}
	k, _ := fields[c.opts.keyField].(string)
	if k == "" {
		return false
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return false
	}

	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return false
	}
	if _, exists := doc.Records[k]; !exists {
		doc.Order = append(doc.Order, k)
	}
	doc.Records[k] = raw
	return c.store.Set(ctx, c.key, doc)
}

// Update merges patch over the record stored under id and refreshes updatedAt.
// The key field and createdAt cannot be patched. A missing id reports false and
// leaves the collection untouched.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]interface{}) (*T, bool) {
	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return nil, false
	}
	current, exists := doc.Records[id]
	if !exists {
		return nil, false
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(current, &fields); err != nil {
		c.opts.logger.Warn("undecodable record", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, false
	}
	for k, v := range patch {
		if k == c.opts.keyField || k == fieldCreatedAt {
			continue
		}
		fields[k] = v
	}
	if c.opts.timestamps {
		fields[fieldUpdatedAt] = c.opts.now()
	}

	updated, raw, err := fromFields[T](fields)
	if err != nil {
		c.opts.logger.Warn("rejected patch", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, false
	}
	doc.Records[id] = raw
	if !c.store.Set(ctx, c.key, doc) {
		return nil, false
	}
	return updated, true
}

// Mutate runs fn against the stored record under the collection lock and
// persists the result, so checks made inside fn still hold when the write
// lands. An error from fn aborts the write and is returned unchanged. The key
// field and createdAt keep their stored values whatever fn does.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return nil, ErrUnavailable
	}
	current, exists := doc.Records[id]
	if !exists {
		return nil, ErrRecordNotFound
	}
	stored := make(map[string]interface{})
	var item T
	if err := json.Unmarshal(current, &stored); err != nil {
		c.opts.logger.Warn("undecodable record", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}
	if err := json.Unmarshal(current, &item); err != nil {
		c.opts.logger.Warn("undecodable record", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}

	if err := fn(&item); err != nil {
		return nil, err
	}

	fields, err := toFields(item)
	if err != nil {
		return nil, ErrUnavailable
	}
	fields[c.opts.keyField] = id
	if created, ok := stored[fieldCreatedAt]; ok {
		fields[fieldCreatedAt] = created
	}
	if c.opts.timestamps {
		fields[fieldUpdatedAt] = c.opts.now()
	}
	updated, raw, err := fromFields[T](fields)
	if err != nil {
		c.opts.logger.Warn("rejected mutation", zap.String("key", c.key), zap.String("id", id), zap.Error(err))
		return nil, ErrUnavailable
	}
	doc.Records[id] = raw
	if !c.store.Set(ctx, c.key, doc) {
		return nil, ErrUnavailable
	}
	return updated, nil
}

// RemoveWhere deletes every record matching fn in one locked cycle and reports
// how many went. Nothing is written when no record matches.
func (c *Collection[T]) RemoveWhere(ctx context.Context, fn func(T) bool) (int, bool) {
	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return 0, false
	}
	doomed := make([]string, 0)
	for _, k := range doc.Order {
		raw, exists := doc.Records[k]
		if !exists {
			continue
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if fn(item) {
			doomed = append(doomed, k)
		}
	}
	if len(doomed) == 0 {
		return 0, true
	}
	for _, k := range doomed {
		doc.remove(k)
	}
	if !c.store.Set(ctx, c.key, doc) {
		return 0, false
	}
	return len(doomed), true
}

// Delete removes the record stored under id. Deleting a missing id succeeds
// without writing.
func (c *Collection[T]) Delete(ctx context.Context, id string) bool {
	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()

	doc, ok := c.load(ctx)
	if !ok {
		return false
	}
	if _, exists := doc.Records[id]; !exists {
		return true
	}
	doc.remove(id)
	return c.store.Set(ctx, c.key, doc)
}

// Clear drops the whole collection.
func (c *Collection[T]) Clear(ctx context.Context) bool {
	lock := c.store.Locker(c.key)
	lock.Lock()
	defer lock.Unlock()
	return c.store.Remove(ctx, c.key)
}

// load reads the document for a mutation. ok is false when the stored value
// exists but could not be read.
func (c *Collection[T]) load(ctx context.Context) (*collectionDoc, bool) {
	var doc collectionDoc
	if _, ok := c.store.Read(ctx, c.key, &doc); !ok {
		return nil, false
	}
	doc.normalise()
	return &doc, true
}

func toFields(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// fromFields decodes fields into T and returns the canonical encoding of the
// decoded value.
func fromFields[T any](fields map[string]interface{}) (*T, json.RawMessage, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, err
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, nil, err
	}
	canonical, err := json.Marshal(item)
	if err != nil {
		return nil, nil, err
	}
	return &item, canonical, nil
}
