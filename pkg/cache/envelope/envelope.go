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

// Package envelope prefixes stored values with their expiration time, for
// providers that have no native per-key TTL
package envelope

import (
	"encoding/binary"
	"errors"
	"time"
)

// HeaderSize is the number of bytes prepended to each value
const HeaderSize = 8

// ErrShortValue is returned when a stored value is too short to hold a header
var ErrShortValue = errors.New("stored value is missing its expiration header")

// Expiration returns the absolute expiration for a ttl from now. A ttl <= 0
// returns the zero Time, which never expires.
func Expiration(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// Wrap returns data prefixed with the expiration header
func Wrap(data []byte, expires time.Time) []byte {
	out := make([]byte, HeaderSize+len(data))
	var n int64
	if !expires.IsZero() {
		n = expires.UnixNano()
	}
	binary.BigEndian.PutUint64(out, uint64(n)) // #nosec G115 - unix nanos are positive
	copy(out[HeaderSize:], data)
	return out
}

// Unwrap splits a stored value into its payload and expiration. The payload
// aliases b.
func Unwrap(b []byte) ([]byte, time.Time, error) {
	if len(b) < HeaderSize {
		return nil, time.Time{}, ErrShortValue
	}
	var expires time.Time
	if n := int64(binary.BigEndian.Uint64(b)); n > 0 { // #nosec G115
		expires = time.Unix(0, n)
	}
	return b[HeaderSize:], expires, nil
}

// Expired returns true if expires is set and is not after now
func Expired(expires, now time.Time) bool {
	return !expires.IsZero() && !expires.After(now)
}

// SetExpiration rewrites the header of a stored value in place
func SetExpiration(b []byte, expires time.Time) error {
	if len(b) < HeaderSize {
		return ErrShortValue
	}
	var n int64
	if !expires.IsZero() {
		n = expires.UnixNano()
	}
	binary.BigEndian.PutUint64(b, uint64(n)) // #nosec G115
	return nil
}
