package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// maxConflictRetries bounds the optimistic-transaction retry loop. Conflicts
// only occur when two writers hit the same document at the same instant.
const maxConflictRetries = 5

type Badger struct {
	db  *badger.DB
	log *zap.SugaredLogger
}

type Options struct {
	Path     string
	InMemory bool
}

// Open opens (or creates) the underlying Badger database. Badger's own
// chatty logger is silenced; operational logging happens at this layer.
func Open(opts Options, log *zap.SugaredLogger) (*Badger, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &Badger{db: db, log: log}, nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func (s *Badger) Create(ctx context.Context, key string, doc any, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return ErrKeyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Badger) Get(ctx context.Context, key string, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, out)
		})
	})
}

func (s *Badger) SetPath(ctx context.Context, key, path string, value any) error {
	return s.mutate(key, func(doc map[string]any) error {
		return setAtPath(doc, path, value)
	})
}

func (s *Badger) AppendPath(ctx context.Context, key, path string, value any) error {
	return s.mutate(key, func(doc map[string]any) error {
		return appendAtPath(doc, path, value)
	})
}

func (s *Badger) DeletePath(ctx context.Context, key, path string) error {
	return s.mutate(key, func(doc map[string]any) error {
		deleteAtPath(doc, path)
		return nil
	})
}

func (s *Badger) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// mutate runs a read-modify-write cycle on one document inside a single
// transaction, preserving the document's remaining lifetime. Optimistic
// conflicts are retried; the last writer's value stands.
func (s *Badger) mutate(key string, apply func(doc map[string]any) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			if err != nil {
				return err
			}

			var doc map[string]any
			if err := item.Value(func(v []byte) error {
				return json.Unmarshal(v, &doc)
			}); err != nil {
				return err
			}

			if err := apply(doc); err != nil {
				return err
			}

			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}

			entry := badger.NewEntry([]byte(key), data)
			if exp := item.ExpiresAt(); exp > 0 {
				remaining := time.Until(time.Unix(int64(exp), 0))
				if remaining <= 0 {
					return ErrKeyNotFound
				}
				entry = entry.WithTTL(remaining)
			}
			return txn.SetEntry(entry)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugw("retrying conflicting write", "key", key, "attempt", attempt+1)
	}
	return err
}

// setAtPath walks a dotted path, creating intermediate objects, and sets the
// leaf. Path segments are opaque IDs and never contain dots.
func setAtPath(doc map[string]any, path string, value any) error {
	parent, leaf, err := walk(doc, path, true)
	if err != nil {
		return err
	}
	parent[leaf] = value
	return nil
}

func appendAtPath(doc map[string]any, path string, value any) error {
	parent, leaf, err := walk(doc, path, true)
	if err != nil {
		return err
	}
	switch existing := parent[leaf].(type) {
	case nil:
		parent[leaf] = []any{value}
	case []any:
		parent[leaf] = append(existing, value)
	default:
		return ErrBadPath
	}
	return nil
}

func deleteAtPath(doc map[string]any, path string) {
	parent, leaf, err := walk(doc, path, false)
	if err != nil {
		return // tolerant, like deleting an absent field
	}
	delete(parent, leaf)
}

func walk(doc map[string]any, path string, create bool) (map[string]any, string, error) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next == nil {
			if !create {
				return nil, "", ErrBadPath
			}
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, "", ErrBadPath
		}
		current = child
	}
	return current, parts[len(parts)-1], nil
}
