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

package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	o := &Options{}
	require.NoError(t, o.Validate())
	require.Equal(t, DefaultCookieName, o.CookieName)
	require.Equal(t, "/", o.CookiePath)
	require.Equal(t, DefaultIdleTimeout, o.IdleTimeout)
	require.Equal(t, "default", o.CacheName)
	require.Empty(t, o.KeyPrefix)

	o = New()
	o.CookieName = "utmk session"
	require.ErrorIs(t, o.Validate(), ErrInvalidCookieName)

	o = New()
	o.IdleTimeout = -time.Second
	require.ErrorIs(t, o.Validate(), ErrInvalidIdleTimeout)

	o2 := New().Clone()
	require.Equal(t, New(), o2)
}
