package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Record is anything stored in a collection under a string identifier.
type Record interface {
	Key() string
}

// MutateFunc edits a collection snapshot. It returns the new snapshot, whether it
// must be written back, and an error to hand to the caller after the write.
type MutateFunc[T Record] func(items []T) ([]T, bool, error)

type lockKey struct {
	store Store
	name  string
}

var collectionLocks sync.Map

func lockFor(s Store, name string) *sync.Mutex {
	lock, _ := collectionLocks.LoadOrStore(lockKey{store: s, name: name}, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Collection gives typed access to one named document.
type Collection[T Record] struct {
	store Store
	name  string
	mu    *sync.Mutex
}

// NewCollection binds a typed view to a collection. Views over the same store and
// name share a write lock, so read-modify-write cycles never interleave in-process.
func NewCollection[T Record](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name, mu: lockFor(s, name)}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// All decodes every record in the collection.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	doc, err := c.store.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return decode[T](c.name, doc)
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.Key() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Replace writes the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, items)
}

// Mutate reads the collection, applies fn and commits the result with a single write
// when fn reports a change. A failed write leaves the stored document untouched.
func (c *Collection[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.All(ctx)
	if err != nil {
		return err
	}

	updated, changed, fnErr := fn(items)
	if changed {
		if err := c.write(ctx, updated); err != nil {
			return err
		}
	}
	return fnErr
}

func (c *Collection[T]) write(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, c.name, err)
	}
	return c.store.Save(ctx, c.name, doc)
}

func decode[T Record](name string, doc []byte) ([]T, error) {
	items := []T{}
	if len(doc) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WithLock runs fn while holding the write lock shared by every view of the collection.
func WithLock(s Store, name string, fn func() error) error {
	lock := lockFor(s, name)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}
