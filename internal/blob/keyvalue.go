package blob

import (
	"context"
	"errors"

	"github.com/fdg312/carb-coach/internal/storage"
)

// KeyValue stores each key as one object under prefix.
type KeyValue struct {
	store  Store
	prefix string
}

func NewKeyValue(store Store, prefix string) *KeyValue {
	return &KeyValue{store: store, prefix: prefix}
}

func (kv *KeyValue) objectKey(key string) string {
	return kv.prefix + key
}

func (kv *KeyValue) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := kv.store.GetObject(ctx, kv.objectKey(key))
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (kv *KeyValue) Set(ctx context.Context, key, value string) error {
	_, err := kv.store.PutObject(ctx, kv.objectKey(key), []byte(value), "application/json")
	return err
}

func (kv *KeyValue) Remove(ctx context.Context, key string) error {
	return kv.store.DeleteObject(ctx, kv.objectKey(key))
}

func (kv *KeyValue) Close() error { return nil }

var _ storage.KeyValue = (*KeyValue)(nil)
