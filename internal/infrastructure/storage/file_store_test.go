package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs)

	ref, err := store.Save(ctx, "applications/abc/medical_degree", ".pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "applications/abc/medical_degree/") || !strings.HasSuffix(ref, ".pdf") {
		t.Fatalf("unexpected ref %q", ref)
	}

	content, err := store.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(content) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", content)
	}

	if err := store.Remove(ctx, ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if exists, _ := afero.Exists(fs, ref); exists {
		t.Fatalf("expected file to be removed")
	}
	if err := store.Remove(ctx, ref); err != nil {
		t.Fatalf("removing twice should be a no-op: %v", err)
	}
}

func TestFileStoreConfinesPrefix(t *testing.T) {
	store := NewFileStore(afero.NewMemMapFs())
	ref, err := store.Save(context.Background(), "../../etc", ".png", []byte{0x89})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(ref, "..") || !strings.HasPrefix(ref, "etc/") {
		t.Fatalf("expected prefix to be cleaned, got %q", ref)
	}
}

func TestFileStoreKeepsPreviousVersion(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(afero.NewMemMapFs())

	first, _ := store.Save(ctx, "app/identity_proof", ".png", []byte("one"))
	second, _ := store.Save(ctx, "app/identity_proof", ".png", []byte("two"))
	if first == second {
		t.Fatalf("expected distinct refs")
	}
	content, err := store.Open(ctx, first)
	if err != nil || string(content) != "one" {
		t.Fatalf("expected first upload to survive, got %q, %v", content, err)
	}
}
