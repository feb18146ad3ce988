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

package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging/level"

	"github.com/stretchr/testify/require"
)

func TestOriginProxy(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte("origin"))
	}))
	defer ts.Close()

	u, err := url.Parse(ts.URL + "/base/")
	require.NoError(t, err)
	p := NewOriginProxy(u, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/pricing?utm_source=news", nil)
	p.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "origin", w.Body.String())
	require.NotNil(t, got)
	require.Equal(t, "/base/pricing", got.URL.Path)
	require.Equal(t, "utm_source=news", got.URL.RawQuery)
	require.Equal(t, ViaValue, got.Header.Get("Via"))
	require.Equal(t, "example.com", got.Header.Get("X-Forwarded-Host"))
	require.Equal(t, u.Host, got.Host)
}

func TestOriginProxyError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u, _ := url.Parse(ts.URL)
	ts.Close()

	buf := &bytes.Buffer{}
	p := NewOriginProxy(u, logging.StreamLogger(buf, level.Error))
	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, buf.String(), `event="origin request failed"`)
}

type testConfig string

func (c testConfig) String() string { return string(c) }

func TestPingHandleFunc(t *testing.T) {
	w := httptest.NewRecorder()
	PingHandleFunc(w, httptest.NewRequest(http.MethodGet, "/utmkeeper/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	b, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	require.Equal(t, "pong", string(b))
	require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
}

func TestConfigHandleFunc(t *testing.T) {
	w := httptest.NewRecorder()
	ConfigHandleFunc(testConfig("main:\n  instance_id: 0\n"))(w,
		httptest.NewRequest(http.MethodGet, "/utmkeeper/config", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Body.String(), "main:"))
	require.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
}
