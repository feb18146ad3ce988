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

package utm

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging/level"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var errTestStore = errors.New("store unavailable")

type testStore struct {
	data    []byte
	has     bool
	saves   int
	loadErr error
	saveErr error
}

func (s *testStore) Load(_ context.Context) ([]byte, bool, error) {
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	return s.data, s.has, nil
}

func (s *testStore) Save(_ context.Context, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.data = append([]byte(nil), data...)
	s.has = true
	return nil
}

func mustParse(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestPersistStores(t *testing.T) {
	s := &testStore{}
	u := mustParse(t, "https://site.test/landing?utm_source=newsletter&utm_campaign=spring")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeStored, res.Outcome)
	require.False(t, res.Changed)
	require.Same(t, u, res.URL)
	require.Equal(t, 1, s.saves)
	require.Equal(t, `{"utm_source":"newsletter","utm_campaign":"spring"}`, string(s.data))
}

func TestPersistStoresFullMap(t *testing.T) {
	s := &testStore{data: []byte(`{"utm_source":"old"}`), has: true}
	u := mustParse(t, "https://site.test/?page=2&utm_medium=email")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeStored, res.Outcome)
	require.Equal(t, `{"page":"2","utm_medium":"email"}`, string(s.data))
}

func TestPersistRestores(t *testing.T) {
	s := &testStore{data: []byte(`{"utm_source":"newsletter"}`), has: true}
	u := mustParse(t, "https://site.test/pricing?page=2#plans")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeRestored, res.Outcome)
	require.True(t, res.Changed)
	require.Equal(t, "page=2&utm_source=newsletter", res.URL.RawQuery)
	require.Equal(t, "https://site.test/pricing?page=2&utm_source=newsletter", res.URL.String())
	require.Equal(t, 0, s.saves)
	// the input URL is not modified
	require.Equal(t, "page=2", u.RawQuery)
	require.Equal(t, "plans", u.Fragment)
}

func TestPersistSnapshotWins(t *testing.T) {
	s := &testStore{data: []byte(`{"utm_source":"newsletter","page":"1"}`), has: true}
	u := mustParse(t, "https://site.test/?page=2&utm_source=")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeRestored, res.Outcome)
	require.Equal(t, "page=1&utm_source=newsletter", res.URL.RawQuery)
}

func TestPersistUnchanged(t *testing.T) {
	s := &testStore{}
	u := mustParse(t, "https://site.test/?page=2")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, res.Outcome)
	require.False(t, res.Changed)
	require.Same(t, u, res.URL)
	require.Equal(t, 0, s.saves)
	require.False(t, s.has)
}

func TestPersistRestoreWithoutChange(t *testing.T) {
	s := &testStore{data: []byte(`{"page":"2"}`), has: true}
	u := mustParse(t, "https://site.test/?page=2")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeRestored, res.Outcome)
	require.False(t, res.Changed)
}

func TestPersistRestoreDropsUserinfo(t *testing.T) {
	s := &testStore{data: []byte(`{"utm_source":"a"}`), has: true}
	u := mustParse(t, "https://u:p@site.test/p?q=1#top")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeRestored, res.Outcome)
	require.Nil(t, res.URL.User)
	require.Equal(t, "https://site.test/p?q=1&utm_source=a", res.URL.String())
	require.NotNil(t, u.User)
}

func TestPersistEmptySnapshot(t *testing.T) {
	buf := &bytes.Buffer{}
	s := &testStore{data: []byte{}, has: true}
	u := mustParse(t, "https://site.test/?page=2")
	res, err := NewPersistor(logging.StreamLogger(buf, level.Warn), nil).
		Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, res.Outcome)
	require.False(t, res.Changed)
	require.Same(t, u, res.URL)
	require.Empty(t, buf.String())
}

func TestPersistStoresOnlyValidUTF8(t *testing.T) {
	s := &testStore{}
	u := mustParse(t, "https://site.test/?v=%FF&utm_source=a")
	res, err := NewPersistor(nil, nil).Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeStored, res.Outcome)
	require.Equal(t, `{"utm_source":"a"}`, string(s.data))
}

func TestPersistCorrupt(t *testing.T) {
	buf := &bytes.Buffer{}
	s := &testStore{data: []byte(`{"utm_source":`), has: true}
	u := mustParse(t, "https://site.test/?page=2")
	c := metrics.PersistOutcomes.WithLabelValues("corrupt")
	c0 := testutil.ToFloat64(c)

	res, err := NewPersistor(logging.StreamLogger(buf, level.Warn), nil).
		Persist(context.Background(), s, u)
	require.NoError(t, err)
	require.Equal(t, OutcomeCorrupt, res.Outcome)
	require.False(t, res.Changed)
	require.Same(t, u, res.URL)
	require.Contains(t, buf.String(), "level=warn")
	require.Equal(t, c0+1, testutil.ToFloat64(c))
}

func TestPersistStoreErrors(t *testing.T) {
	p := NewPersistor(nil, nil)
	_, err := p.Persist(context.Background(), &testStore{saveErr: errTestStore},
		mustParse(t, "https://site.test/?utm_source=a"))
	require.ErrorIs(t, err, ErrSnapshotWrite)
	require.ErrorIs(t, err, errTestStore)

	_, err = p.Persist(context.Background(), &testStore{loadErr: errTestStore},
		mustParse(t, "https://site.test/"))
	require.ErrorIs(t, err, ErrSnapshotRead)
	require.ErrorIs(t, err, errTestStore)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "unchanged", OutcomeUnchanged.String())
	require.Equal(t, "stored", OutcomeStored.String())
	require.Equal(t, "restored", OutcomeRestored.String())
	require.Equal(t, "corrupt", OutcomeCorrupt.String())
	require.Equal(t, "9", Outcome(9).String())
}
