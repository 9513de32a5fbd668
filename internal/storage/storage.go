// Package storage defines the key-value surface the cart persists to.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// KV is a flat key-value store. Get returns ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
