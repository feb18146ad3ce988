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

// Package bbolt is the bbolt implementation of the utmkeeper Cache
package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/envelope"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	"go.etcd.io/bbolt"
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// Cache describes a BBolt Cache
type Cache struct {
	Name   string
	Config *options.Options
	dbh    *bbolt.DB
	now    func() time.Time
}

// New returns a new bbolt cache as a utmkeeper Cache Interface type
func New(cacheName string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
		cfg.Provider = "bbolt"
	}
	cfg.Initialize(cacheName)
	return &Cache{
		Name:   cacheName,
		Config: cfg,
		now:    time.Now,
	}
}

// Configuration returns the Cache's options
func (c *Cache) Configuration() *options.Options {
	return c.Config
}

// Connect opens the database file and creates the bucket
func (c *Cache) Connect() error {
	if err := os.MkdirAll(filepath.Dir(c.Config.BBolt.Filename), 0o755); err != nil {
		return err
	}
	var err error
	c.dbh, err = bbolt.Open(c.Config.BBolt.Filename, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(c.Config.BBolt.Bucket)); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return nil
	})
}

// Close closes the database
func (c *Cache) Close() error {
	if c.dbh == nil {
		return nil
	}
	return c.dbh.Close()
}

// Store places the data into the bucket with an expiration header
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	v := envelope.Wrap(data, envelope.Expiration(c.now(), ttl))
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(c.Config.BBolt.Bucket)).Put([]byte(cacheKey), v)
	})
}

// Retrieve returns the data for cacheKey. An expired entry is deleted and
// reported as a miss.
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	var expired bool
	err := c.dbh.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.BBolt.Bucket)).Get([]byte(cacheKey))
		if b == nil {
			return cache.ErrKNF
		}
		payload, expires, err := envelope.Unwrap(b)
		if err != nil {
			return err
		}
		if envelope.Expired(expires, c.now()) {
			expired = true
			return cache.ErrKNF
		}
		// values are only valid for the life of the transaction
		data = make([]byte, len(payload))
		copy(data, payload)
		return nil
	})
	if expired {
		c.Remove(cacheKey)
	}
	switch {
	case err == nil:
		return data, status.LookupStatusHit, nil
	case err == cache.ErrKNF:
		return nil, status.LookupStatusKeyMiss, err
	default:
		return nil, status.LookupStatusError, err
	}
}

// SetTTL rewrites the expiration header of an existing entry
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	now := c.now()
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket([]byte(c.Config.BBolt.Bucket))
		b := bk.Get([]byte(cacheKey))
		if b == nil {
			return cache.ErrKNF
		}
		_, expires, err := envelope.Unwrap(b)
		if err != nil {
			return err
		}
		if envelope.Expired(expires, now) {
			return cache.ErrKNF
		}
		v := make([]byte, len(b))
		copy(v, b)
		if err := envelope.SetExpiration(v, envelope.Expiration(now, ttl)); err != nil {
			return err
		}
		return bk.Put([]byte(cacheKey), v)
	})
}

// Remove deletes the keys from the bucket
func (c *Cache) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.BBolt.Bucket))
		for _, cacheKey := range cacheKeys {
			if err := b.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}
