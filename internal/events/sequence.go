package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage"
)

type SequenceRepository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// KVSequenceRepository keeps one counter per partition in the key-value store.
// Increments are serialized within the process only.
type KVSequenceRepository struct {
	mu     sync.Mutex
	kv     storage.KV
	prefix string
}

func NewSequenceRepository(kv storage.KV) *KVSequenceRepository {
	return &KVSequenceRepository{kv: kv, prefix: "event_sequence:"}
}

func (r *KVSequenceRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.prefix + partitionKey
	var last int64
	raw, err := r.kv.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("read sequence: %w", err)
	default:
		last, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence: %w", err)
		}
	}

	next := last + 1
	if err := r.kv.Put(ctx, key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}
	return next, nil
}
