package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-chat-client/internal/domain"
	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/security"
)

func exerciseKV(t *testing.T, store storage.KeyValue) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "auth-storage"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing key: err = %v, want ErrNotFound", err)
	}
	if err := store.Set(ctx, "auth-storage", `{"user":null}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "auth-storage")
	if err != nil || got != `{"user":null}` {
		t.Fatalf("Get = %q err=%v", got, err)
	}
	if err := store.Set(ctx, "auth-storage", `{"user":{}}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = store.Get(ctx, "auth-storage")
	if got != `{"user":{}}` {
		t.Fatalf("overwrite not visible, got %q", got)
	}
	if err := store.Delete(ctx, "auth-storage"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "auth-storage"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "auth-storage"); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestFile(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseKV(t, store)
}

func TestFileSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "../../etc/passwd", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in dir, got %d", len(entries))
	}
	name := entries[0].Name()
	if strings.Contains(name, "/") || !strings.HasSuffix(name, ".json") {
		t.Fatalf("suspicious filename %q", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatal(err)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "chat-storage", `{"chatrooms":[]}`); err != nil {
		t.Fatal(err)
	}

	second, err := NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := second.Get(ctx, "chat-storage")
	if err != nil || got != `{"chatrooms":[]}` {
		t.Fatalf("reopened Get = %q err=%v", got, err)
	}
}

func TestEncrypted(t *testing.T) {
	cipher, err := security.NewCipher("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	mem := NewMemory()
	store := NewEncrypted(mem, cipher)
	exerciseKV(t, store)

	// The inner backend must only ever see ciphertext.
	ctx := context.Background()
	if err := store.Set(ctx, "chat-storage", `{"darkMode":true}`); err != nil {
		t.Fatal(err)
	}
	raw, err := mem.Get(ctx, "chat-storage")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(raw, "darkMode") {
		t.Fatalf("plaintext leaked to the inner backend: %q", raw)
	}
	got, err := store.Get(ctx, "chat-storage")
	if err != nil || got != `{"darkMode":true}` {
		t.Fatalf("decrypted Get = %q err=%v", got, err)
	}
}
