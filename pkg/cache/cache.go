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

// Package cache defines the utmkeeper cache interfaces and provides
// general cache functionality
package cache

import (
	"errors"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"
)

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.New("key not found in cache")

// ErrInvalidKey represents the error for an empty cache key
var ErrInvalidKey = errors.New("cache key is required")

// Cache is the interface for the supported caching fabrics.
// When making new cache providers, Retrieve() must return ErrKNF on cache
// miss, including when the entry has expired. A ttl of 0 stores the entry
// without expiration.
type Cache interface {
	Connect() error
	Store(cacheKey string, data []byte, ttl time.Duration) error
	Retrieve(cacheKey string) ([]byte, status.LookupStatus, error)
	// SetTTL updates the expiration of an existing entry. It returns ErrKNF
	// when the entry does not exist.
	SetTTL(cacheKey string, ttl time.Duration) error
	Remove(cacheKeys ...string) error
	Close() error
	Configuration() *options.Options
}

// Lookup is a map of Caches keyed by name
type Lookup map[string]Cache
