// Package kvstore persists small typed records on the device.
package kvstore

import (
	"context"
	"errors"
	"strings"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Store interface {
	// Get decodes the value under key into dst. ok is false if the key is absent.
	Get(ctx context.Context, key string, dst any) (ok bool, err error)
	Set(ctx context.Context, key string, v any) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// NewByBackend picks the implementation named by opts.Backend.
func NewByBackend(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisDB, opts.RedisPrefix), nil
	default:
		return nil, errors.New("unsupported kv backend: " + opts.Backend)
	}
}
