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

// Package defaults provides the default values for cache options
package defaults

import "github.com/trickstercache/utmkeeper/pkg/cache/providers"

const (
	// DefaultCacheName is the name of the cache created when none is configured
	DefaultCacheName = "default"
	// DefaultCacheProvider is the default cache provider
	DefaultCacheProvider = providers.Memory
	// DefaultCacheProviderID is the default cache provider ID
	DefaultCacheProviderID = providers.MemoryID
	// DefaultCachePath is the default base directory for on-disk providers
	DefaultCachePath = "/tmp/utmkeeper"
)
