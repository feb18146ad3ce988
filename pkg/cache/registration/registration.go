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

// Package registration handles the registration of cache implementations
// to be used by the session store
package registration

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/badger"
	"github.com/trickstercache/utmkeeper/pkg/cache/bbolt"
	"github.com/trickstercache/utmkeeper/pkg/cache/filesystem"
	"github.com/trickstercache/utmkeeper/pkg/cache/memory"
	"github.com/trickstercache/utmkeeper/pkg/cache/metrics"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/providers"
	"github.com/trickstercache/utmkeeper/pkg/cache/redis"
	"github.com/trickstercache/utmkeeper/pkg/cache/sqlite"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
)

// LoadCachesFromConfig creates and connects each configured cache. On failure,
// the caches connected so far are closed.
func LoadCachesFromConfig(caches options.Lookup, logger logging.Logger) (cache.Lookup, error) {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	out := make(cache.Lookup, len(caches))
	for _, k := range slices.Sorted(maps.Keys(caches)) {
		v := caches[k]
		c, err := NewCache(k, v)
		if err != nil {
			CloseCaches(out)
			return nil, err
		}
		if err := c.Connect(); err != nil {
			CloseCaches(out)
			return nil, fmt.Errorf("could not connect to cache %s (%s): %w",
				k, v.Provider, err)
		}
		pairs := logging.Pairs{"name": k, "provider": v.Provider}
		if v.ProviderID == providers.RedisID && v.Redis != nil {
			pairs["clientType"] = v.Redis.ClientType
		}
		logger.Info("cache registered", pairs)
		out[k] = c
	}
	return out, nil
}

// CloseCaches iterates the set of caches and closes each, returning all errors
func CloseCaches(caches cache.Lookup) error {
	var errs []error
	for k, c := range caches {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// NewCache returns an unconnected, metrics-observed Cache for the provided options
func NewCache(cacheName string, cfg *options.Options) (cache.Cache, error) {
	if cfg == nil {
		cfg = options.New()
	}
	cfg.Initialize(cacheName)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var c cache.Cache
	switch cfg.ProviderID {
	case providers.FilesystemID:
		c = filesystem.New(cacheName, cfg)
	case providers.RedisID:
		c = redis.New(cacheName, cfg)
	case providers.BBoltID:
		c = bbolt.New(cacheName, cfg)
	case providers.BadgerDBID:
		c = badger.New(cacheName, cfg)
	case providers.SQLiteID:
		c = sqlite.New(cacheName, cfg)
	default:
		c = memory.New(cacheName, cfg)
	}
	return metrics.Wrap(c), nil
}
