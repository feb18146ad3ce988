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

package metrics

import (
	"testing"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/memory"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	require.Nil(t, Wrap(nil))

	mc := memory.New("metrics-test", nil)
	require.NoError(t, mc.Connect())
	defer mc.Close()

	c := Wrap(mc)
	require.Same(t, c, Wrap(c))
	require.Same(t, mc, Unwrap(c).(*memory.Cache))
	require.Same(t, mc, Unwrap(mc).(*memory.Cache))
	require.Equal(t, "metrics-test", c.Configuration().Name)

	hits := metrics.CacheObjectOperations.WithLabelValues("metrics-test", "memory", "get", "hit")
	misses := metrics.CacheObjectOperations.WithLabelValues("metrics-test", "memory", "get", "miss")
	sets := metrics.CacheByteOperations.WithLabelValues("metrics-test", "memory", "set", "none")
	h0, m0, s0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses), testutil.ToFloat64(sets)

	_, _, err := c.Retrieve("k")
	require.ErrorIs(t, err, cache.ErrKNF)
	require.NoError(t, c.Store("k", []byte("12345"), time.Minute))
	_, _, err = c.Retrieve("k")
	require.NoError(t, err)
	require.NoError(t, c.SetTTL("k", time.Minute))
	require.ErrorIs(t, c.SetTTL("missing", time.Minute), cache.ErrKNF)
	require.NoError(t, c.Remove("k"))

	require.Equal(t, h0+1, testutil.ToFloat64(hits))
	require.Equal(t, m0+1, testutil.ToFloat64(misses))
	require.Equal(t, s0+5, testutil.ToFloat64(sets))
}
