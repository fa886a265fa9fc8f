// Package kv is the blob storage the application persists into: opaque
// string values addressed by string keys. Every driver is fail-fast; no
// call retries.
package kv

import (
	"context"
	"fmt"
	"time"
)

// Store is the get/set/remove contract shared by all drivers.
// Get reports ok=false for a missing key; that is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options selects and configures a driver.
type Options struct {
	Driver        string
	BoltPath      string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	Prefix        string
	Timeout       time.Duration
}

// Open connects the configured driver and applies the key prefix, if any.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	var (
		s   Store
		err error
	)
	switch opts.Driver {
	case DriverMemory:
		s = NewMemory()
	case DriverBolt, "":
		s, err = OpenBolt(opts.BoltPath, opts.Timeout)
	case DriverPostgres:
		s, err = OpenPostgres(ctx, opts.DatabaseURL, opts.Timeout)
	case DriverMongo:
		s, err = OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Prefix != "" {
		s = WithPrefix(s, opts.Prefix)
	}
	return s, nil
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key of s. The browser app wrote its keys
// under "hoteza_"; the three it named differently are mapped back by the
// repository.
func WithPrefix(s Store, prefix string) Store {
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.Store.Remove(ctx, p.prefix+key)
}
