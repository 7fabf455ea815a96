package oshost

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/glyphdesk/glyphdesk/internal/kvstore"
	"github.com/glyphdesk/glyphdesk/internal/storage"
)

// TokenStore persists an OS directory handle in a key-value store.
//
// The serialized form (the absolute path) is private to this host; the
// storage core only sees the TokenStore contract.
type TokenStore struct {
	store kvstore.Store
	key   string
}

// NewTokenStore creates a token store over the given key-value store,
// persisting under the fixed native-root key.
func NewTokenStore(store kvstore.Store) *TokenStore {
	return &TokenStore{store: store, key: storage.RootTokenKey}
}

var _ storage.TokenStore = (*TokenStore)(nil)

// Persist stores a reference to the directory handle.
func (t *TokenStore) Persist(ctx context.Context, h storage.Handle) error {
	path, ok := Path(h)
	if !ok {
		return errForeignHandle
	}

	token, err := sjson.Set("{}", "path", path)
	if err != nil {
		return fmt.Errorf("encoding directory token: %w", err)
	}
	if err := t.store.Set(ctx, t.key, token); err != nil {
		return fmt.Errorf("persisting directory token: %w", err)
	}
	return nil
}

// Restore returns the previously persisted handle, or storage.ErrNotFound.
// The referenced directory must still exist; a dangling token is treated
// as absent.
func (t *TokenStore) Restore(ctx context.Context) (storage.Handle, error) {
	token, err := t.store.Get(ctx, t.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("reading directory token: %w", err)
	}

	path := gjson.Get(token, "path").String()
	if path == "" {
		return nil, storage.ErrNotFound
	}

	h, err := DirectoryHandle(path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// Clear deletes the persisted reference.
func (t *TokenStore) Clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.key); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return fmt.Errorf("clearing directory token: %w", err)
	}
	return nil
}
