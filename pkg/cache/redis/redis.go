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

// Package redis is the redis implementation of the utmkeeper Cache
// and supports Standalone, Sentinel and Cluster
package redis

import (
	"fmt"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	"github.com/go-redis/redis"
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// Cache represents a redis cache client that conforms to the cache.Cache interface
type Cache struct {
	Name   string
	Config *options.Options
	client redis.Cmdable
	closer func() error
}

// New returns a new, unconnected redis Cache
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
		cfg.Provider = "redis"
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

// Connect connects to the configured Redis endpoint
func (c *Cache) Connect() error {
	if err := c.Config.Redis.Validate(); err != nil {
		return err
	}
	ct := clientTypeNames[c.Config.Redis.ClientType]
	switch ct {
	case clientTypeSentinel:
		client := redis.NewFailoverClient(sentinelOpts(c.Config.Redis))
		c.closer = client.Close
		c.client = client
	case clientTypeCluster:
		client := redis.NewClusterClient(clusterOpts(c.Config.Redis))
		c.closer = client.Close
		c.client = client
	default:
		client := redis.NewClient(clientOpts(c.Config.Redis))
		c.closer = client.Close
		c.client = client
	}
	if err := c.client.Ping().Err(); err != nil {
		return fmt.Errorf("redis %s ping: %w", ct, err)
	}
	return nil
}

// Store places the the data into the Redis Cache using the provided Key and TTL
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(cacheKey, data, ttl).Err()
}

// Retrieve gets data from the Redis Cache using the provided Key.
// Redis manages Object Expiration internally.
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	data, err := c.client.Get(cacheKey).Bytes()
	if err == nil {
		return data, status.LookupStatusHit, nil
	}
	if err == redis.Nil {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return nil, status.LookupStatusError, err
}

// SetTTL updates the expiration of an existing key
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	var cmd *redis.BoolCmd
	if ttl <= 0 {
		cmd = c.client.Persist(cacheKey)
	} else {
		cmd = c.client.Expire(cacheKey, ttl)
	}
	ok, err := cmd.Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if ttl > 0 {
		return cache.ErrKNF
	}
	// PERSIST is also false for an existing key with no expiration
	n, err := c.client.Exists(cacheKey).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return cache.ErrKNF
	}
	return nil
}

// Remove removes the keys from the Redis Cache
func (c *Cache) Remove(cacheKeys ...string) error {
	if len(cacheKeys) == 0 {
		return nil
	}
	return c.client.Del(cacheKeys...).Err()
}

// Close disconnects from the Redis Cache
func (c *Cache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
