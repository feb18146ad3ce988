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
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// ParseQuery parses a raw query string into Params. Segments are split on '&'
// and then on their first '='. Keys are percent-decoded; values have '+'
// mapped to a space before being percent-decoded. A segment without '=' has
// an empty value. Empty segments and empty keys are skipped, and a component
// with a malformed escape is kept undecoded. Duplicate keys overwrite.
func ParseQuery(rawQuery string) *Params {
	p := NewParams()
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return p
	}
	for _, seg := range strings.Split(rawQuery, "&") {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		key := decodeComponent(k)
		if key == "" {
			continue
		}
		var val string
		if v != "" {
			val = decodeComponent(strings.ReplaceAll(v, "+", " "))
		}
		p.Set(key, val)
	}
	return p
}

func decodeComponent(s string) string {
	d, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return d
}

// Encode renders p as a query string (without the leading '?') in insertion
// order. Keys and values are escaped with EscapeComponent, and encoded spaces
// in values are written as '+'.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(k))
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(EscapeComponent(p.values[k]), "%20", "+"))
	}
	return b.String()
}

// EscapeComponent percent-encodes s the way browsers encode a URI component:
// ASCII letters, digits and - _ . ! ~ * ' ( ) pass through, and every other
// byte of the UTF-8 encoding is written as %XX.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	b := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b = append(b, c)
			continue
		}
		b = append(b, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(b)
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
