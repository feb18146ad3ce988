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

// Package middleware provides http.Handler decorators for the frontend
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"
)

// Decorate decorates a function in such a way that it captures both the
// returned status and the time used to execute a request from the front end
// perspective
func Decorate(originName, path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observer := &responseObserver{
			ResponseWriter: w,
			status:         "unknown",
		}

		n := time.Now()
		next.ServeHTTP(observer, r)
		if !observer.wroteHeader && observer.bytesWritten > 0 {
			observer.status = statusClass(http.StatusOK)
		}

		metrics.FrontendRequestDuration.WithLabelValues(originName,
			r.Method, path, observer.status).Observe(time.Since(n).Seconds())
		metrics.FrontendRequestStatus.WithLabelValues(originName,
			r.Method, path, observer.status).Inc()
		metrics.FrontendRequestWrittenBytes.WithLabelValues(originName,
			r.Method, path, observer.status).Add(observer.bytesWritten)
	})
}

type responseObserver struct {
	http.ResponseWriter

	status       string
	bytesWritten float64
	wroteHeader  bool
}

func statusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

func (w *responseObserver) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	if !w.wroteHeader {
		w.wroteHeader = true
		w.status = statusClass(statusCode)
	}
}

func (w *responseObserver) Write(b []byte) (int, error) {
	bytesWritten, err := w.ResponseWriter.Write(b)

	w.bytesWritten += float64(bytesWritten)

	return bytesWritten, err
}

// Flush implements http.Flusher when the wrapped writer does
func (w *responseObserver) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the wrapped writer for http.ResponseController
func (w *responseObserver) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
