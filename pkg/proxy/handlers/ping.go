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
	"fmt"
	"net/http"

	"github.com/trickstercache/utmkeeper/pkg/proxy/headers"
)

// PingHandleFunc responds to an HTTP Request with 200 OK and "pong"
func PingHandleFunc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headers.NameContentType, headers.ValueTextPlain)
	w.Header().Set(headers.NameCacheControl, headers.ValueNoStore)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// ConfigHandleFunc responds to an HTTP Request with the running configuration
// as YAML. The Stringer is expected to mask secrets.
func ConfigHandleFunc(conf fmt.Stringer) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headers.NameContentType, headers.ValueYAML)
		w.Header().Set(headers.NameCacheControl, headers.ValueNoStore)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(conf.String()))
	}
}
