package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// document reads and writes one JSON value stored under a fixed key.
type document[T any] struct {
	store KeyValueStore
	key   string
}

// load returns the zero value when the key has never been written.
func (d document[T]) load(ctx context.Context) (T, error) {
	var value T
	raw, err := d.store.Get(ctx, d.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return value, nil
		}
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", d.key, err)
	}
	return value, nil
}

func (d document[T]) save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	return d.store.Set(ctx, d.key, raw)
}
