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

package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/trickstercache/utmkeeper/cmd/utmkeeper/config"
	"github.com/trickstercache/utmkeeper/pkg/cache/memory"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/session"
	"github.com/trickstercache/utmkeeper/pkg/utm"

	"github.com/stretchr/testify/require"
)

const testSessionID = "5b0b3f9e-2f4f-4a43-9b8e-1d0a3f7c2e11"

func testConf(t *testing.T, originURL string) *config.Config {
	t.Helper()
	conf, err := config.Load(&config.Flags{Origin: originURL},
		map[string]string{"UTMK_LOG_LEVEL": "none"})
	require.NoError(t, err)
	return conf
}

func newTestRouter(t *testing.T, conf *config.Config) http.Handler {
	t.Helper()
	mc := memory.New("default", nil)
	require.NoError(t, mc.Connect())
	t.Cleanup(func() { mc.Close() })
	store, err := session.New(mc, conf.Session, nil)
	require.NoError(t, err)
	logger := logging.NoopLogger()
	return newFrontendRouter(conf, store, utm.NewPersistor(logger, nil), nil, logger)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.AddCookie(&http.Cookie{Name: "utmk_session", Value: testSessionID})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestFrontendRouter(t *testing.T) {
	var originQuery string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originQuery = r.URL.RawQuery
		w.Write([]byte("landing"))
	}))
	defer origin.Close()

	h := newTestRouter(t, testConf(t, origin.URL))

	w := get(h, "http://example.com/utmkeeper/ping")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())

	w = get(h, "http://example.com/utmkeeper/config")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), origin.URL)

	w = get(h, "http://example.com/?utm_source=news&utm_medium=email")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "landing", w.Body.String())
	require.Equal(t, "utm_source=news&utm_medium=email", originQuery)

	w = get(h, "http://example.com/pricing?plan=pro")
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.Equal(t, "http://example.com/pricing?plan=pro&utm_source=news&utm_medium=email", loc)

	w = get(h, loc)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "plan=pro&utm_source=news&utm_medium=email", originQuery)
}

func TestFrontendRouterRewrite(t *testing.T) {
	var originQuery string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originQuery = r.URL.RawQuery
	}))
	defer origin.Close()

	conf := testConf(t, origin.URL)
	conf.Persist.Mode = "rewrite"
	h := newTestRouter(t, conf)

	get(h, "http://example.com/?utm_campaign=spring")
	w := get(h, "http://example.com/shop")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "utm_campaign=spring", originQuery)
}

func TestMetricsRouter(t *testing.T) {
	conf := testConf(t, "http://origin")
	h := newMetricsRouter(conf, logging.NoopLogger())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "utmkeeper_session_issued_total")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	conf.Main.PprofServer = "off"
	h = newMetricsRouter(conf, logging.NoopLogger())
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer origin.Close()

	conf := testConf(t, origin.URL)
	conf.Frontend.ListenAddress = "127.0.0.1"
	conf.Frontend.ListenPort = freePort(t)
	conf.Metrics.ListenPort = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, conf) }()

	pingURL := "http://" + net.JoinHostPort("127.0.0.1",
		strconv.Itoa(conf.Frontend.ListenPort)) + conf.Main.PingHandlerPath
	require.Eventually(t, func() bool {
		resp, err := http.Get(pingURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return string(b) == "pong"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
