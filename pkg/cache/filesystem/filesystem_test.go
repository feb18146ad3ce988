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

package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "utmk.sess1/../utmParams"

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	cfg := options.New()
	cfg.Provider = "filesystem"
	cfg.Filesystem.CachePath = filepath.Join(t.TempDir(), "sessions")
	c := New("test", cfg)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c, &now
}

func TestStoreRetrieve(t *testing.T) {
	c, _ := newTestCache(t)
	require.Equal(t, "test", c.Configuration().Name)

	_, s, err := c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)

	require.NoError(t, c.Store(cacheKey, []byte(`{"utm_source":"newsletter"}`), time.Minute))
	fn := c.getFileName(cacheKey)
	require.Equal(t, c.Config.Filesystem.CachePath, filepath.Dir(fn))

	b, s, err := c.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, `{"utm_source":"newsletter"}`, string(b))

	require.ErrorIs(t, c.Store("", b, time.Minute), cache.ErrInvalidKey)

	require.NoError(t, c.Remove(cacheKey))
	require.NoError(t, c.Remove(cacheKey))
	_, _, err = c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
}

func TestExpiration(t *testing.T) {
	c, now := newTestCache(t)
	require.ErrorIs(t, c.SetTTL(cacheKey, time.Minute), cache.ErrKNF)
	require.NoError(t, c.Store(cacheKey, []byte("v"), time.Minute))

	*now = now.Add(50 * time.Second)
	require.NoError(t, c.SetTTL(cacheKey, time.Minute))
	*now = now.Add(50 * time.Second)
	_, _, err := c.Retrieve(cacheKey)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	_, _, err = c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	_, err = os.Stat(c.getFileName(cacheKey))
	require.True(t, os.IsNotExist(err))
}

func TestConnectUnwritable(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))
	cfg := options.New()
	cfg.Filesystem.CachePath = filepath.Join(f, "sub")
	require.Error(t, New("bad", cfg).Connect())
}
