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

package envelope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWrapUnwrap(t *testing.T) {
	now := time.Unix(1700000000, 0)
	exp := Expiration(now, time.Minute)
	b := Wrap([]byte(`{"utm_source":"newsletter"}`), exp)
	require.Len(t, b, HeaderSize+27)

	data, e2, err := Unwrap(b)
	require.NoError(t, err)
	require.Equal(t, `{"utm_source":"newsletter"}`, string(data))
	require.True(t, exp.Equal(e2))
	require.False(t, Expired(e2, now))
	require.True(t, Expired(e2, now.Add(time.Minute)))

	require.NoError(t, SetExpiration(b, time.Time{}))
	_, e3, err := Unwrap(b)
	require.NoError(t, err)
	require.True(t, e3.IsZero())
	require.False(t, Expired(e3, now.Add(time.Hour)))
}

func TestShortValue(t *testing.T) {
	_, _, err := Unwrap([]byte("abc"))
	require.ErrorIs(t, err, ErrShortValue)
	require.ErrorIs(t, SetExpiration([]byte("abc"), time.Now()), ErrShortValue)
	require.True(t, Expiration(time.Now(), 0).IsZero())
}
