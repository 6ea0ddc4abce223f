// Package blobstore keeps uploaded media files in an embedded Badger
// database and signs the upload URLs that clients PUT files to.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
)

const (
	metaPrefix = "blob:meta:"
	dataPrefix = "blob:data:"
)

type blobMeta struct {
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store implements ports.BlobStore on Badger.
type Store struct {
	db       *badger.DB
	maxBytes int64
}

// Open opens (or creates) a store in dir. An empty dir keeps everything in
// memory.
func Open(dir string, maxBytes int64) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, maxBytes: maxBytes}, nil
}

// Put stores the content of r and returns a new storage id. A blank
// contentType is sniffed from the data.
func (s *Store) Put(ctx context.Context, contentType string, r io.Reader) (string, error) {
	limit := s.maxBytes
	if limit <= 0 {
		limit = 1 << 62
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: limit is %d bytes", domain.ErrTooLarge, limit)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	meta, err := json.Marshal(blobMeta{ContentType: contentType, Size: int64(len(data)), CreatedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(metaPrefix+id), meta); err != nil {
			return fmt.Errorf("set meta: %w", err)
		}
		if err := txn.Set([]byte(dataPrefix+id), data); err != nil {
			return fmt.Errorf("set data: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get returns a blob with its data.
func (s *Store) Get(ctx context.Context, storageID string) (*ports.Blob, error) {
	return s.read(storageID, true)
}

// Stat returns a blob without its data.
func (s *Store) Stat(ctx context.Context, storageID string) (*ports.Blob, error) {
	return s.read(storageID, false)
}

func (s *Store) read(storageID string, withData bool) (*ports.Blob, error) {
	b := &ports.Blob{StorageID: storageID}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaPrefix + storageID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get meta: %w", err)
		}
		var meta blobMeta
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &meta) }); err != nil {
			return err
		}
		b.ContentType, b.Size = meta.ContentType, meta.Size
		if !withData {
			return nil
		}

		item, err = txn.Get([]byte(dataPrefix + storageID))
		if err != nil {
			return fmt.Errorf("get data: %w", err)
		}
		b.Data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, storageID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(metaPrefix + storageID)); err != nil {
			return err
		}
		return txn.Delete([]byte(dataPrefix + storageID))
	})
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
