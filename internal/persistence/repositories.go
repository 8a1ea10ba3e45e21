package persistence

import (
	"context"
	"strings"
)

// Store is a small key-value store, the server-side analog of browser local
// storage. Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// WithPrefix returns a view of store whose keys are namespaced by prefix.
// List and Clear only see keys inside the namespace.
func WithPrefix(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	if inner, ok := store.(*prefixedStore); ok {
		return &prefixedStore{base: inner.base, prefix: inner.prefix + prefix + "/"}
	}
	return &prefixedStore{base: store, prefix: prefix + "/"}
}

type prefixedStore struct {
	base   Store
	prefix string
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	return p.base.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return p.base.Set(ctx, p.prefix+key, value)
}

func (p *prefixedStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return p.base.Delete(ctx, p.prefix+key)
}

func (p *prefixedStore) List(ctx context.Context) (map[string][]byte, error) {
	all, err := p.base.List(ctx)
	if err != nil {
		return nil, err
	}
	scoped := make(map[string][]byte)
	for key, value := range all {
		if rest, ok := strings.CutPrefix(key, p.prefix); ok {
			scoped[rest] = value
		}
	}
	return scoped, nil
}

func (p *prefixedStore) Clear(ctx context.Context) error {
	keys, err := p.List(ctx)
	if err != nil {
		return err
	}
	for key := range keys {
		if err := p.base.Delete(ctx, p.prefix+key); err != nil {
			return err
		}
	}
	return nil
}
