// Package store persists the records of a mortgage analysis in a key-value
// backend: in memory, in a SQLite file or in Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Keys of the three persisted records. Values are JSON.
const (
	MortgageDataKey   = "mortgageAnalyzer_mortgageData"
	TimelineEventsKey = "mortgageAnalyzer_timelineEvents"
	InvestmentsKey    = "mortgageAnalyzer_investments"
)

// Keys lists every record key the repository manages.
var Keys = []string{MortgageDataKey, TimelineEventsKey, InvestmentsKey}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ErrClosed is returned by any operation on a closed store.
var ErrClosed = errors.New("store is closed")

// Storage is a key-value store of raw record values. A missing key is
// reported by ok == false, never by an error.
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// ReplaceAll applies every change in values at once: a nil value deletes
	// its key, anything else overwrites it. Either all changes land or none.
	ReplaceAll(ctx context.Context, values map[string][]byte) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	DSN       string
	RedisAddr string
}

// Open builds the storage named by opts.Backend. An empty backend means
// memory.
func Open(ctx context.Context, logger *zap.Logger, opts Options) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		logger.Info("using in-memory storage",
			zap.String("op", "store.Open"),
		)
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(logger, opts.DSN)
	case BackendRedis:
		return NewRedisStore(ctx, logger, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
