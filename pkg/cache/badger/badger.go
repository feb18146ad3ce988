/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package badger is the BadgerDB implementation of the utmkeeper Cache
package badger

import (
	"errors"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	"github.com/dgraph-io/badger"
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// Cache describes a Badger Cache
type Cache struct {
	Name   string
	Config *options.Options
	dbh    *badger.DB
}

// New returns a new, unopened Badger Cache
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
		cfg.Provider = "badger"
	}
	cfg.Initialize(name)
	return &Cache{
		Name:   name,
		Config: cfg,
	}
}

// Configuration returns the Cache's options
func (c *Cache) Configuration() *options.Options {
	return c.Config
}

// Connect opens the configured Badger key-value store
func (c *Cache) Connect() error {
	opts := badger.DefaultOptions(c.Config.Badger.Directory)
	opts.ValueDir = c.Config.Badger.ValueDirectory
	var err error
	c.dbh, err = badger.Open(opts)
	return err
}

// Close closes the Badger key-value store
func (c *Cache) Close() error {
	if c.dbh == nil {
		return nil
	}
	return c.dbh.Close()
}

// Store places the the data into the Badger Cache using the provided Key and TTL
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	return c.dbh.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newEntry([]byte(cacheKey), data, ttl))
	})
}

// Retrieve gets data from the Badger Cache using the provided Key.
// Badger manages Object Expiration internally.
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	err := c.dbh.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == nil {
		return data, status.LookupStatusHit, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return nil, status.LookupStatusError, err
}

// SetTTL rewrites an existing entry with a new TTL
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	err := c.dbh.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(newEntry(item.KeyCopy(nil), data, ttl))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cache.ErrKNF
	}
	return err
}

// Remove removes the keys from the Badger Cache
func (c *Cache) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(txn *badger.Txn) error {
		for _, cacheKey := range cacheKeys {
			if err := txn.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

func newEntry(key, value []byte, ttl time.Duration) *badger.Entry {
	e := badger.NewEntry(key, value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e
}
