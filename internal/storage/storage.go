package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("storage closed")

// KeyValue: долговременное хранилище строк по ключу.
// Профили сохраняются в нём целиком, как JSON.
type KeyValue interface {
	// Get returns ok=false when the key has never been set or was removed.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set перезаписывает значение целиком
	Set(ctx context.Context, key, value string) error

	// Remove is a no-op for missing keys.
	Remove(ctx context.Context, key string) error

	// Close закрывает соединение (для Postgres и SQLite)
	Close() error
}
