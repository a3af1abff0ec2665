package kv

import (
	"context"

	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/security"
)

var _ storage.KeyValue = (*Encrypted)(nil)

// Encrypted decorates any KeyValue backend with AES-GCM payload encryption
// so chat content is opaque at rest.
type Encrypted struct {
	inner  storage.KeyValue
	cipher *security.Cipher
}

func NewEncrypted(inner storage.KeyValue, cipher *security.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: cipher}
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, error) {
	ct, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return e.cipher.Decrypt(ct)
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	ct, err := e.cipher.Encrypt(value)
	if err != nil {
		return err
	}
	return e.inner.Set(ctx, key, ct)
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}
