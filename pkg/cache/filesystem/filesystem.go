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

// Package filesystem is the filesystem implementation of the utmkeeper Cache
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/envelope"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// Cache describes a Filesystem Cache
type Cache struct {
	Name   string
	Config *options.Options
	now    func() time.Time
}

// New returns a new Filesystem Cache
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
		cfg.Provider = "filesystem"
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

// Connect verifies that the cache directory exists and is writable
func (c *Cache) Connect() error {
	return makeDirectory(c.Config.Filesystem.CachePath)
}

// Close is a no-op for the filesystem cache
func (c *Cache) Close() error {
	return nil
}

// Store writes the data with an expiration header to the key's file
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	return c.writeFile(c.getFileName(cacheKey),
		envelope.Wrap(data, envelope.Expiration(c.now(), ttl)))
}

// Retrieve reads the key's file. An expired file is removed and reported as
// a miss.
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	dataFile := c.getFileName(cacheKey)
	b, err := os.ReadFile(dataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	data, expires, err := envelope.Unwrap(b)
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	if envelope.Expired(expires, c.now()) {
		os.Remove(dataFile)
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return data, status.LookupStatusHit, nil
}

// SetTTL rewrites the expiration header of the key's file
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	data, _, err := c.Retrieve(cacheKey)
	if err != nil {
		return err
	}
	return c.Store(cacheKey, data, ttl)
}

// Remove deletes the files for the provided keys. Missing files are ignored.
func (c *Cache) Remove(cacheKeys ...string) error {
	for _, cacheKey := range cacheKeys {
		err := os.Remove(c.getFileName(cacheKey))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// writeFile writes to a temporary file and renames it over the target so that
// readers never observe a partial write
func (c *Cache) writeFile(name string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err = f.Write(b); err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	if err == nil {
		err = os.Rename(tmp, name)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

var keyReplacer = strings.NewReplacer("/", "~1", "\\", "~2", "..", "~3", ".", "~4")

func (c *Cache) getFileName(cacheKey string) string {
	return filepath.Join(
		c.Config.Filesystem.CachePath,
		keyReplacer.Replace(cacheKey),
	) + ".data"
}

// makeDirectory creates a directory on the filesystem and returns the error in the event of a failure.
func makeDirectory(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err == nil {
		// verify writability by attempting to touch a test file in the cache path
		tf := filepath.Join(path, ".test."+strconv.FormatInt(time.Now().UnixNano(), 10))
		err = os.WriteFile(tf, []byte(""), 0o600)
		if err == nil {
			os.Remove(tf)
		}
	}
	if err != nil {
		return fmt.Errorf("[%s] directory is not writeable by utmkeeper: %w", path, err)
	}
	return nil
}
