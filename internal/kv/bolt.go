package kv

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("hoteza")

// Bolt stores blobs in a single bbolt bucket on local disk.
type Bolt struct {
	db *bbolt.DB
}

func OpenBolt(path string, timeout time.Duration) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction.
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt get %s: %w", key, err)
	}
	return value, ok, nil
}

func (b *Bolt) Set(_ context.Context, key, value string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("bolt set %s: %w", key, err)
	}
	return nil
}

func (b *Bolt) Remove(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt remove %s: %w", key, err)
	}
	return nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
