package blobstore_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wandering-tales/wandering-tales/internal/adapters/blobstore"
	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

func openStore(t *testing.T, maxBytes int64) *blobstore.Store {
	t.Helper()
	s, err := blobstore.Open("", maxBytes)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	s := openStore(t, 1<<20)
	ctx := context.Background()

	id, err := s.Put(ctx, "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if id == "" {
		t.Fatal("expected a storage id")
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.ContentType != "image/jpeg" || b.Size != 10 || !bytes.Equal(b.Data, []byte("jpeg-bytes")) {
		t.Errorf("unexpected blob %+v", b)
	}

	st, err := s.Stat(ctx, id)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Data != nil || st.Size != 10 {
		t.Errorf("stat should carry size but no data, got %+v", st)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("deleting twice should succeed, got %v", err)
	}
}

func TestStore_SniffsContentType(t *testing.T) {
	s := openStore(t, 0)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	id, err := s.Put(context.Background(), "", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	b, _ := s.Stat(context.Background(), id)
	if b.ContentType != "image/png" {
		t.Errorf("expected image/png, got %q", b.ContentType)
	}
}

func TestStore_SizeLimit(t *testing.T) {
	s := openStore(t, 4)
	_, err := s.Put(context.Background(), "text/plain", strings.NewReader("too long"))
	if !errors.Is(err, domain.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
