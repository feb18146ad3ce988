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

// Package options provides the cache options
package options

import (
	"errors"
	"fmt"
	"strings"

	badger "github.com/trickstercache/utmkeeper/pkg/cache/badger/options"
	bbolt "github.com/trickstercache/utmkeeper/pkg/cache/bbolt/options"
	filesystem "github.com/trickstercache/utmkeeper/pkg/cache/filesystem/options"
	memory "github.com/trickstercache/utmkeeper/pkg/cache/memory/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/options/defaults"
	"github.com/trickstercache/utmkeeper/pkg/cache/providers"
	redis "github.com/trickstercache/utmkeeper/pkg/cache/redis/options"
	sqlite "github.com/trickstercache/utmkeeper/pkg/cache/sqlite/options"
)

// Lookup is a map of Options
type Lookup map[string]*Options

// Options is a collection of settings defining a cache
type Options struct {
	// Name is the Name of the cache, taken from the Key in the Caches map[string]*Options
	Name string `yaml:"-"`
	// Provider represents the type of cache that we wish to use:
	// "memory", "filesystem", "redis", "bbolt", "badger" or "sqlite"
	Provider string `yaml:"provider,omitempty"`
	// Memory provides options for Memory caching
	Memory *memory.Options `yaml:"memory,omitempty"`
	// Redis provides options for Redis caching
	Redis *redis.Options `yaml:"redis,omitempty"`
	// Filesystem provides options for Filesystem caching
	Filesystem *filesystem.Options `yaml:"filesystem,omitempty"`
	// BBolt provides options for BBolt caching
	BBolt *bbolt.Options `yaml:"bbolt,omitempty"`
	// Badger provides options for BadgerDB caching
	Badger *badger.Options `yaml:"badger,omitempty"`
	// SQLite provides options for SQLite caching
	SQLite *sqlite.Options `yaml:"sqlite,omitempty"`

	//  Synthetic Values

	// ProviderID represents the internal constant for the provided Provider string
	// and is automatically populated at startup
	ProviderID providers.Provider `yaml:"-"`
}

var (
	// ErrInvalidName is returned for a missing or reserved cache name
	ErrInvalidName = errors.New("invalid cache name")
	// ErrInvalidProvider is returned for an unsupported cache provider
	ErrInvalidProvider = errors.New("invalid cache provider")
)

var restrictedNames = map[string]struct{}{"": {}, "none": {}}

// New will return a pointer to an Options with the default configuration settings
func New() *Options {
	return &Options{
		Provider:   defaults.DefaultCacheProvider,
		ProviderID: defaults.DefaultCacheProviderID,
		Memory:     memory.New(),
		Redis:      redis.New(),
		Filesystem: filesystem.New(),
		BBolt:      bbolt.New(),
		Badger:     badger.New(),
		SQLite:     sqlite.New(),
	}
}

// Clone returns an exact copy of the Options
func (c *Options) Clone() *Options {
	out := &Options{
		Name:       c.Name,
		Provider:   c.Provider,
		ProviderID: c.ProviderID,
	}
	if c.Memory != nil {
		out.Memory = c.Memory.Clone()
	}
	if c.Redis != nil {
		out.Redis = c.Redis.Clone()
	}
	if c.Filesystem != nil {
		fo := *c.Filesystem
		out.Filesystem = &fo
	}
	if c.BBolt != nil {
		bo := *c.BBolt
		out.BBolt = &bo
	}
	if c.Badger != nil {
		bo := *c.Badger
		out.Badger = &bo
	}
	if c.SQLite != nil {
		so := *c.SQLite
		out.SQLite = &so
	}
	return out
}

// Initialize sets up the cache Options with default values and overlays
// any values that were set during YAML unmarshaling
func (c *Options) Initialize(name string) {
	c.Name = name
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = defaults.DefaultCacheProvider
	}
	if n, ok := providers.Names[c.Provider]; ok {
		c.ProviderID = n
	}
	if c.Memory == nil {
		c.Memory = memory.New()
	}
	if c.Redis == nil {
		c.Redis = redis.New()
	}
	if c.Redis.ClientType == "" {
		c.Redis.ClientType = redis.DefaultRedisClientType
	}
	if c.Redis.Protocol == "" {
		c.Redis.Protocol = redis.DefaultRedisProtocol
	}
	if c.Filesystem == nil {
		c.Filesystem = filesystem.New()
	}
	if c.BBolt == nil {
		c.BBolt = bbolt.New()
	}
	if c.Badger == nil {
		c.Badger = badger.New()
	}
	if c.SQLite == nil {
		c.SQLite = sqlite.New()
	}
}

// Validate returns an error if the Options are not usable
func (c *Options) Validate() error {
	if _, ok := restrictedNames[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrInvalidName, c.Name)
	}
	if _, ok := providers.Names[c.Provider]; !ok {
		return fmt.Errorf("%w: %q for cache %s", ErrInvalidProvider, c.Provider, c.Name)
	}
	if c.ProviderID == providers.RedisID {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("cache %s: %w", c.Name, err)
		}
	}
	return nil
}

// Initialize initializes all cache options in the lookup with default values
// and overlays any values that were set during YAML unmarshaling. It returns
// any warnings about the configuration.
func (l Lookup) Initialize() []string {
	var warnings []string
	for k, v := range l {
		if v == nil {
			v = New()
			l[k] = v
		}
		v.Initialize(k)
		if v.ProviderID != providers.RedisID {
			continue
		}
		hasEndpoint := v.Redis.Endpoint != ""
		hasEndpoints := len(v.Redis.Endpoints) > 0
		if v.Redis.ClientType == redis.ClientTypeStandard {
			if hasEndpoints && !hasEndpoint {
				warnings = append(warnings,
					"'standard' redis type configured, but 'endpoints' value is provided instead of 'endpoint'; using the first of 'endpoints'")
				v.Redis.Endpoint = v.Redis.Endpoints[0]
			}
		} else if hasEndpoint && !hasEndpoints {
			warnings = append(warnings, fmt.Sprintf(
				"'%s' redis type configured, but 'endpoint' value is provided instead of 'endpoints'; using 'endpoint'",
				v.Redis.ClientType))
			v.Redis.Endpoints = []string{v.Redis.Endpoint}
		}
	}
	return warnings
}

// Validate validates each Options in the Lookup
func (l Lookup) Validate() error {
	for k, c := range l {
		c.Name = k
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
