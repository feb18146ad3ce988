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

// Package memory is the memory implementation of the utmkeeper Cache
// and uses a sync.Map to manage cache objects
package memory

import (
	"sync"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/envelope"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// Cache defines a a Memory Cache client that conforms to the Cache interface
type Cache struct {
	Name   string
	Config *options.Options
	client sync.Map

	mtx     sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	now     func() time.Time
}

type object struct {
	value   []byte
	expires time.Time
}

// New returns a new memory cache as a utmkeeper Cache Interface type
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
	}
	cfg.Initialize(name)
	return &Cache{
		Name:   name,
		Config: cfg,
		now:    time.Now,
	}
}

// Configuration returns the Cache's options
func (c *Cache) Configuration() *options.Options {
	return c.Config
}

// Connect starts the expired entry reaper
func (c *Cache) Connect() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.stop != nil {
		return nil
	}
	interval := c.Config.Memory.ReapInterval
	if interval <= 0 {
		return nil
	}
	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})
	go c.reap(interval, c.stop, c.stopped)
	return nil
}

func (c *Cache) reap(interval time.Duration, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.reapOnce()
		}
	}
}

func (c *Cache) reapOnce() {
	now := c.now()
	c.client.Range(func(k, v any) bool {
		if o, ok := v.(*object); ok && envelope.Expired(o.expires, now) {
			c.client.CompareAndDelete(k, v)
		}
		return true
	})
}

// Close stops the reaper and clears the cache
func (c *Cache) Close() error {
	c.mtx.Lock()
	stop, stopped := c.stop, c.stopped
	c.stop, c.stopped = nil, nil
	c.mtx.Unlock()
	if stop != nil {
		close(stop)
		<-stopped
	}
	c.client.Clear()
	return nil
}

// Store places an object in the cache using the specified key and ttl
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	v := make([]byte, len(data))
	copy(v, data)
	c.client.Store(cacheKey, &object{value: v,
		expires: envelope.Expiration(c.now(), ttl)})
	return nil
}

// Retrieve looks for an object in cache and returns it (or an error if not found)
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	o, ok := c.load(cacheKey)
	if !ok {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	out := make([]byte, len(o.value))
	copy(out, o.value)
	return out, status.LookupStatusHit, nil
}

// SetTTL updates the expiration of an existing object
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	o, ok := c.load(cacheKey)
	if !ok {
		return cache.ErrKNF
	}
	o2 := &object{value: o.value, expires: envelope.Expiration(c.now(), ttl)}
	// a concurrent Store or Remove wins over the refresh
	c.client.CompareAndSwap(cacheKey, o, o2)
	return nil
}

// Remove removes the objects from the cache
func (c *Cache) Remove(cacheKeys ...string) error {
	for _, k := range cacheKeys {
		c.client.Delete(k)
	}
	return nil
}

func (c *Cache) load(cacheKey string) (*object, bool) {
	v, ok := c.client.Load(cacheKey)
	if !ok {
		return nil, false
	}
	o := v.(*object)
	if envelope.Expired(o.expires, c.now()) {
		c.client.CompareAndDelete(cacheKey, v)
		return nil, false
	}
	return o, true
}

// Len returns the number of objects in the cache, including any expired
// objects not yet reaped
func (c *Cache) Len() int {
	var n int
	c.client.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
