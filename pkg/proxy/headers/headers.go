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

// Package headers provides functionality for HTTP Headers not provided by
// the builtin net/http package
package headers

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

const (
	// Common HTTP Header Values

	// ValueApplicationJSON represents the HTTP Header Value of "application/json"
	ValueApplicationJSON = "application/json"
	// ValueNoStore represents the HTTP Header Value of "no-store"
	ValueNoStore = "no-store"
	// ValueTextPlain represents the HTTP Header Value of "text/plain"
	ValueTextPlain = "text/plain"
	// ValueYAML represents the HTTP Header Value of "application/yaml"
	ValueYAML = "application/yaml"

	// Common HTTP Header Names

	// NameCacheControl represents the HTTP Header Name of "Cache-Control"
	NameCacheControl = "Cache-Control"
	// NameContentType represents the HTTP Header Name of "Content-Type"
	NameContentType = "Content-Type"
	// NameLocation represents the HTTP Header Name of "Location"
	NameLocation = "Location"
	// NameSetCookie represents the HTTP Header Name of "Set-Cookie"
	NameSetCookie = "Set-Cookie"
	// NameVia represents the HTTP Header Name of "Via"
	NameVia = "Via"
	// NameXForwardedProto represents the HTTP Header Name of "X-Forwarded-Proto"
	NameXForwardedProto = "X-Forwarded-Proto"
	// NameXForwardedHost represents the HTTP Header Name of "X-Forwarded-Host"
	NameXForwardedHost = "X-Forwarded-Host"
	// NameAuthorization represents the HTTP Header Name of "Authorization"
	NameAuthorization = "Authorization"
	// NameCookie represents the HTTP Header Name of "Cookie"
	NameCookie = "Cookie"
)

// UpdateHeaders updates the provided headers collection with the provided updates.
// A name prefixed with "-" removes the header, and "+" appends a value.
func UpdateHeaders(headers http.Header, updates map[string]string) {
	if headers == nil || len(updates) == 0 {
		return
	}
	for k, v := range updates {
		if k == "" {
			continue
		}
		if k[0:1] == "-" {
			headers.Del(k[1:])
			continue
		}
		if k[0:1] == "+" {
			headers.Add(k[1:], v)
			continue
		}
		headers.Set(k, v)
	}
}

var sensitiveNames = map[string]struct{}{
	NameAuthorization: {},
	NameCookie:        {},
	NameSetCookie:     {},
}

// LogString returns a compact string representation of the headers suitable for
// use with logging. Credential-bearing headers are masked.
func LogString(h http.Header) string {
	if len(h) == 0 {
		return "{}"
	}

	names := slices.Sorted(maps.Keys(h))
	sb := &strings.Builder{}
	sb.WriteString("{")
	sep := ""
	for _, k := range names {
		v := h[k]
		if len(v) == 0 {
			continue
		}
		val := v[0]
		if _, ok := sensitiveNames[http.CanonicalHeaderKey(k)]; ok {
			val = "*****"
		}
		fmt.Fprintf(sb, "%s[%s:%s]", sep, k, val)
		sep = ","
	}
	sb.WriteString("}")
	return sb.String()
}
