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

package badger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "sess1.utmParams"

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "badger")
	cfg := options.New()
	cfg.Provider = "badger"
	cfg.Badger.Directory = dir
	cfg.Badger.ValueDirectory = dir
	c := New("test", cfg)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStoreRetrieve(t *testing.T) {
	c := newTestCache(t)
	require.Equal(t, "test", c.Configuration().Name)

	_, s, err := c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)

	require.NoError(t, c.Store(cacheKey, []byte(`{"utm_source":"newsletter"}`), time.Minute))
	b, s, err := c.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, `{"utm_source":"newsletter"}`, string(b))

	require.ErrorIs(t, c.Store("", b, time.Minute), cache.ErrInvalidKey)

	require.NoError(t, c.Remove(cacheKey))
	_, _, err = c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
}

func TestSetTTL(t *testing.T) {
	c := newTestCache(t)
	require.ErrorIs(t, c.SetTTL(cacheKey, time.Minute), cache.ErrKNF)

	require.NoError(t, c.Store(cacheKey, []byte("v"), 0))
	require.NoError(t, c.SetTTL(cacheKey, time.Hour))
	b, _, err := c.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, "v", string(b))

	// badger expiry has one second resolution
	require.NoError(t, c.SetTTL(cacheKey, time.Second))
	require.Eventually(t, func() bool {
		_, _, err := c.Retrieve(cacheKey)
		return err == cache.ErrKNF
	}, 5*time.Second, 100*time.Millisecond)
}
