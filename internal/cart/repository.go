package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage"
)

const DefaultStorageKey = "cart"

type Repository interface {
	// Load returns the stored lines, or nil and no error when nothing is stored.
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Clear(ctx context.Context) error
}

// KVRepository stores the whole cart as one JSON array under a single key.
type KVRepository struct {
	kv  storage.KV
	key string
}

func NewKVRepository(kv storage.KV, key string) *KVRepository {
	if key == "" {
		key = DefaultStorageKey
	}
	return &KVRepository{kv: kv, key: key}
}

func (r *KVRepository) Load(ctx context.Context) ([]Line, error) {
	data, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %q: %w", r.key, err)
	}

	lines, err := DecodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", r.key, err)
	}
	return lines, nil
}

func (r *KVRepository) Save(ctx context.Context, lines []Line) error {
	data, err := EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.kv.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("write %q: %w", r.key, err)
	}
	return nil
}

func (r *KVRepository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("delete %q: %w", r.key, err)
	}
	return nil
}
