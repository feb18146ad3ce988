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

package headers

import (
	"net/http"
	"strings"
)

// ResultHeaderParts defines the components for building the persist result header
type ResultHeaderParts struct {
	Outcome string
	Mode    string
	Session string
}

func (p ResultHeaderParts) String() string {
	var sb strings.Builder
	sb.WriteString("outcome=" + p.Outcome)
	if p.Mode != "" {
		sb.WriteString("; mode=" + p.Mode)
	}
	if p.Session != "" {
		sb.WriteString("; session=" + p.Session)
	}
	return sb.String()
}

// SetResultsHeader adds a response header summarizing the handling of the request.
// It does nothing when name or outcome is empty.
func SetResultsHeader(h http.Header, name string, p ResultHeaderParts) {
	if h == nil || name == "" || p.Outcome == "" {
		return
	}
	h.Set(name, p.String())
}
