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

// Package metrics observes cache operations into the cache Prometheus metrics
package metrics

import (
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"
)

// ObserveCacheOperation increments counters as cache operations occur
func ObserveCacheOperation(cache, cacheType, operation, status string, bytes float64) {
	metrics.CacheObjectOperations.WithLabelValues(cache, cacheType, operation, status).Inc()
	if bytes > 0 {
		metrics.CacheByteOperations.WithLabelValues(cache, cacheType, operation, status).Add(bytes)
	}
}

// ObserveCacheEvent increments counters as cache events occur
func ObserveCacheEvent(cache, cacheType, event, reason string) {
	metrics.CacheEvents.WithLabelValues(cache, cacheType, event, reason).Inc()
}

// ObserveCacheDel records a cache deletion event
func ObserveCacheDel(cache, cacheType string, count float64) {
	ObserveCacheOperation(cache, cacheType, "del", "none", count)
}

// observed decorates a cache.Cache with operation metrics
type observed struct {
	cache.Cache
	name, provider string
}

// Wrap returns c decorated so that each operation is observed into the cache
// metrics
func Wrap(c cache.Cache) cache.Cache {
	if c == nil {
		return nil
	}
	if _, ok := c.(*observed); ok {
		return c
	}
	cfg := c.Configuration()
	return &observed{Cache: c, name: cfg.Name, provider: cfg.Provider}
}

// Unwrap returns the cache decorated by Wrap, or c when it is not decorated
func Unwrap(c cache.Cache) cache.Cache {
	if o, ok := c.(*observed); ok {
		return o.Cache
	}
	return c
}

func (o *observed) Store(cacheKey string, data []byte, ttl time.Duration) error {
	err := o.Cache.Store(cacheKey, data, ttl)
	if err != nil {
		ObserveCacheEvent(o.name, o.provider, "error", "failed to write object")
		return err
	}
	ObserveCacheOperation(o.name, o.provider, "set", "none", float64(len(data)))
	return nil
}

func (o *observed) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	data, s, err := o.Cache.Retrieve(cacheKey)
	switch s {
	case status.LookupStatusHit:
		ObserveCacheOperation(o.name, o.provider, "get", "hit", float64(len(data)))
	case status.LookupStatusKeyMiss:
		ObserveCacheOperation(o.name, o.provider, "get", "miss", 0)
	default:
		ObserveCacheEvent(o.name, o.provider, "error", "failed to read object")
	}
	return data, s, err
}

func (o *observed) SetTTL(cacheKey string, ttl time.Duration) error {
	err := o.Cache.SetTTL(cacheKey, ttl)
	switch {
	case err == nil:
		ObserveCacheOperation(o.name, o.provider, "update-ttl", "none", 0)
	case err == cache.ErrKNF:
		ObserveCacheOperation(o.name, o.provider, "update-ttl", "miss", 0)
	default:
		ObserveCacheEvent(o.name, o.provider, "error", "failed to update ttl")
	}
	return err
}

func (o *observed) Remove(cacheKeys ...string) error {
	err := o.Cache.Remove(cacheKeys...)
	if err != nil {
		ObserveCacheEvent(o.name, o.provider, "error", "failed to remove object")
		return err
	}
	ObserveCacheDel(o.name, o.provider, float64(len(cacheKeys)))
	return nil
}
