package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/kala/core"
	"github.com/poiesic/kala/storage"
)

// maxOpenAttempts bounds retries when concurrent opens of the same new
// collection conflict on commit.
const maxOpenAttempts = 3

// Store implements storage.CollectionStore for BadgerDB.
type Store struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.CollectionStore = (*Store)(nil)

// NewStore opens (or creates) a BadgerDB database directory and returns a
// collection store that owns it. Closing the store closes the database.
func NewStore(filePath string) (storage.CollectionStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	store := NewCollectionStore(backend)
	store.ownsBackend = true
	return store, nil
}

// NewCollectionStore creates a collection store on an already open backend.
// The caller keeps ownership of the backend.
func NewCollectionStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "collection-store"),
	}
}

// Close closes the backend if the store opened it.
func (s *Store) Close() error {
	if !s.ownsBackend {
		return nil
	}
	return s.backend.Close()
}

// OpenCollection returns the named collection, creating it if needed.
func (s *Store) OpenCollection(ctx context.Context, name string, opts ...storage.CollectionOption) (storage.Collection, error) {
	if err := core.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	options := storage.CollectionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	info, err := s.getOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	return &Collection{
		backend: s.backend,
		info:    info,
		embed:   options.EmbeddingFunction,
		logger:  s.logger.With("collection", name),
	}, nil
}

func (s *Store) getOrCreate(ctx context.Context, name string) (*core.Collection, error) {
	key := makeCollectionKey(name)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			info    *core.Collection
			created bool
		)
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			existing, found, err := readValue(tx, key, storage.UnmarshalCollection)
			if err != nil {
				return err
			}
			if found {
				info = existing
				return nil
			}

			info = &core.Collection{
				Id:        core.IDFromContent(name),
				UUID:      uuid.NewString(),
				Name:      name,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Set(key, storage.MarshalCollection(info)); err != nil {
				return err
			}
			created = true
			return tx.Commit()
		}, true)

		// A concurrent open created the collection first; read it back.
		if errors.Is(err, badger.ErrConflict) && attempt < maxOpenAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open collection %q: %w", name, err)
		}

		if created {
			s.logger.Info("created collection", "collection", name, "uuid", info.UUID)
		} else {
			s.logger.Debug("opened existing collection", "collection", name, "uuid", info.UUID)
		}
		return info, nil
	}
}

// ListCollections returns all collections ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]*core.Collection, error) {
	var result []*core.Collection
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeCollectionScanPrefix(), false, func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				info, err := storage.UnmarshalCollection(val)
				if err != nil {
					return err
				}
				result = append(result, info)
				return nil
			})
		})
	}, false)
	return result, err
}
