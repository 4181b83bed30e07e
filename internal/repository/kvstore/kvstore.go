// Package kvstore implements repository.KVStore on top of diskv: one file per key,
// JSON bytes, with a small in-memory read cache.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

const cacheSize = 1024 * 1024 // 1MB

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is a diskv-backed key-value store.
type Store struct {
	d *diskv.Diskv
}

// New opens (or creates) a store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create kv directory: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: cacheSize,
		FilePerm:     0o600,
		PathPerm:     0o700,
	})}, nil
}

// Get returns the JSON stored under key, or nil if it is absent.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, err
	}
	if !s.d.Has(key) {
		return nil, nil
	}
	b, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("kv get %q: stored value is not valid JSON", key)
	}
	return json.RawMessage(b), nil
}

// Set marshals value to JSON and writes it under key.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	if err := s.d.Write(key, b); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in sorted order.
func (s *Store) Keys(ctx context.Context) []string {
	var out []string
	for k := range s.d.Keys(ctx.Done()) {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("kv: invalid key %q", key)
	}
	return nil
}
