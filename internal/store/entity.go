package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type stored in Badger.
//
// Layout:
//
//	{prefix}{id}                          -> JSON entity
//	{prefix}idx:{name}:{value}            -> id   (unique index)
//	{prefix}idx:{name}:{value}:{id}       -> id   (multi index)
type Entity[T any] struct {
	store   *Badger
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	unique          bool
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Badger, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a unique secondary index to the entity.
// keyGen may return no values, in which case the entity is not indexed.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, unique: true, keyGen: keyGen})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		unique:          true,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithMultiIndex adds a non-unique index. Many entities may share a value;
// iterate them with ListByIndex.
func (e *Entity[T]) WithMultiIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) indexKey(idx Index[T], value, id string) []byte {
	k := e.prefix + "idx:" + idx.name + ":" + value
	if !idx.unique {
		k += ":" + id
	}
	return []byte(k)
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists, or an
// *IndexConflictError naming the unique index that already holds a value.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		key := buildKey(e.prefix, id)
		_, err := txn.Get(key)
		releaseKey(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkConflicts(txn, entity, nil); err != nil {
			return err
		}

		if err := txn.Set([]byte(e.prefix+id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})

	return e.store.translate("create", err)
}

// checkConflicts fails when a unique index value of entity is already held.
// Values present in previous belong to the entity being updated and are skipped.
func (e *Entity[T]) checkConflicts(txn *badger.Txn, entity, previous *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}

		owned := make(map[string]bool)
		if previous != nil {
			for _, k := range idx.keyGen(previous) {
				owned[k] = true
			}
		}

		for _, value := range idx.keyGen(entity) {
			if owned[value] {
				continue
			}
			key := buildIndexKey(e.prefix, idx.name, value)
			_, err := txn.Get(key)
			releaseKey(key)
			if err == nil {
				return &IndexConflictError{Index: idx.name}
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx, value, id), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx, value, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

// load reads and decodes the entity stored under id inside txn.
func (e *Entity[T]) load(txn *badger.Txn, id string) (*T, error) {
	key := buildKey(e.prefix, id)
	item, err := txn.Get(key)
	releaseKey(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.load(txn, id)
		return err
	})
	if err != nil {
		return nil, e.store.translate("get", err)
	}
	return entity, nil
}

// GetByIndex retrieves an entity by a unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
			break
		}
	}
	if value == "" {
		return nil, ErrNotFound
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		key := buildIndexKey(e.prefix, indexName, value)
		item, err := txn.Get(key)
		releaseKey(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entity, err = e.load(txn, string(id))
		return err
	})
	if err != nil {
		return nil, e.store.translate("get by index", err)
	}
	return entity, nil
}

// Update updates an existing entity, moving its index entries.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		old, err := e.load(txn, id)
		if err != nil {
			return err
		}

		if err := e.checkConflicts(txn, entity, old); err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, id, old); err != nil {
			return err
		}
		if err := txn.Set([]byte(e.prefix+id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})

	return e.store.translate("update", err)
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	_, err := e.DeleteIf(ctx, id, nil)
	return err
}

// DeleteIf deletes the entity only when keep is nil or returns true for the
// stored value. The check and the delete share one transaction. The result
// reports whether anything was deleted.
func (e *Entity[T]) DeleteIf(ctx context.Context, id string, keep func(*T) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted := false
	err := e.store.db.Update(func(txn *badger.Txn) error {
		entity, err := e.load(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if keep != nil && !keep(entity) {
			return nil
		}

		if err := e.deleteIndexes(txn, id, entity); err != nil {
			return err
		}
		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, e.store.translate("delete", err)
	}
	return deleted, nil
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		err := e.store.db.View(func(txn *badger.Txn) error {
			prefix := []byte(e.prefix)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				// Skip index keys
				if strings.HasPrefix(string(it.Item().Key()[len(prefix):]), "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					return err
				}

				if !yield(&entity, nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, e.store.translate("list", err))
		}
	}
}

// ListByIndex iterates entities whose multi index value starts with
// valuePrefix, in index key order.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, valuePrefix string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		err := e.store.db.View(func(txn *badger.Txn) error {
			prefix := []byte(e.prefix + "idx:" + indexName + ":" + valuePrefix)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				id, err := it.Item().ValueCopy(nil)
				if err != nil {
					return err
				}

				entity, err := e.load(txn, string(id))
				if errors.Is(err, ErrNotFound) {
					// Dangling index entry.
					continue
				}
				if err != nil {
					return err
				}

				if !yield(entity, nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, e.store.translate("list by index", err))
		}
	}
}

// Count returns the number of stored entities.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	n := 0
	for _, err := range e.List(ctx) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// errStopIteration unwinds a read transaction when the consumer stops early.
var errStopIteration = errors.New("stop iteration")
