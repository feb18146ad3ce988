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
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// ErrCorruptSnapshot indicates stored snapshot text could not be decoded
// into a flat string-to-string object
var ErrCorruptSnapshot = errors.New("corrupt utm snapshot")

// Params is an insertion-ordered mapping of query parameter names to values.
// Setting a key that already exists replaces its value but keeps its position.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty Params
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// ParamsFromPairs returns a Params populated from alternating key, value
// arguments. A trailing key without a value is assigned an empty value.
func ParamsFromPairs(kv ...string) *Params {
	p := NewParams()
	for i := 0; i < len(kv); i += 2 {
		var v string
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		p.Set(kv[i], v)
	}
	return p
}

// Len returns the number of parameters
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Get returns the value for key and whether it was present
func (p *Params) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Set assigns value to key
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Keys returns a copy of the parameter names in insertion order
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Merge copies every entry of src into p. Values from src win on collision.
func (p *Params) Merge(src *Params) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		p.Set(k, src.values[k])
	}
}

// Clone returns a deep copy of p
func (p *Params) Clone() *Params {
	out := NewParams()
	out.Merge(p)
	return out
}

// Map returns the parameters as an unordered map
func (p *Params) Map() map[string]string {
	out := make(map[string]string, p.Len())
	if p == nil {
		return out
	}
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Equal returns true when p and p2 hold the same entries in the same order
func (p *Params) Equal(p2 *Params) bool {
	if p.Len() != p2.Len() {
		return false
	}
	for i, k := range p.Keys() {
		if p2.keys[i] != k || p2.values[k] != p.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the parameters as a JSON object, preserving order.
// Entries whose key or value is not valid UTF-8 are omitted, since JSON
// text cannot carry them unchanged.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if p != nil {
		n := 0
		for _, k := range p.keys {
			if !utf8.ValidString(k) || !utf8.ValidString(p.values[k]) {
				continue
			}
			if n > 0 {
				buf.WriteByte(',')
			}
			n++
			if err := writeJSONString(&buf, k); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONString(&buf, p.values[k]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes a flat JSON object into p in document order.
// String values are taken as-is; numbers, booleans and null are taken as their
// literal text. Nested objects or arrays, or a non-object document, yield
// ErrCorruptSnapshot.
func (p *Params) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return ErrCorruptSnapshot
	}
	out := NewParams()
	err := jsonparser.ObjectEach(data,
		func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			switch dataType {
			case jsonparser.String:
				s, err := jsonparser.ParseString(value)
				if err != nil {
					return err
				}
				out.Set(string(key), s)
			case jsonparser.Number, jsonparser.Boolean, jsonparser.Null:
				out.Set(string(key), string(value))
			default:
				return ErrCorruptSnapshot
			}
			return nil
		})
	if err != nil {
		return ErrCorruptSnapshot
	}
	*p = *out
	return nil
}
