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
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	o := New()
	require.Equal(t, ModeRedirect, o.Mode)
	require.Equal(t, http.StatusFound, o.RedirectCode)
	require.Equal(t, DefaultOutcomeHeader, o.OutcomeHeader)
	require.True(t, o.AppliesTo(http.MethodGet))
	require.True(t, o.AppliesTo(http.MethodHead))
	require.False(t, o.AppliesTo(http.MethodPost))
}

func TestValidate(t *testing.T) {
	o := &Options{Mode: " Rewrite ", Methods: []string{"get", "post"}}
	require.NoError(t, o.Validate())
	require.Equal(t, ModeRewrite, o.Mode)
	require.Equal(t, DefaultRedirectCode, o.RedirectCode)
	require.True(t, o.AppliesTo(http.MethodPost))
	require.False(t, o.AppliesTo(http.MethodHead))

	o = &Options{}
	require.NoError(t, o.Validate())
	require.Equal(t, ModeRedirect, o.Mode)
	require.Equal(t, DefaultMethods, o.Methods)

	o = &Options{Mode: "pushState"}
	require.ErrorIs(t, o.Validate(), ErrInvalidMode)

	o = &Options{RedirectCode: http.StatusOK}
	require.ErrorIs(t, o.Validate(), ErrInvalidRedirectCode)

	for _, code := range []int{301, 302, 303, 307, 308} {
		o = &Options{RedirectCode: code}
		require.NoError(t, o.Validate())
	}
}

func TestAppliesToUncompiled(t *testing.T) {
	o := &Options{Methods: []string{"GET"}}
	require.True(t, o.AppliesTo("get"))
	require.False(t, o.AppliesTo("PUT"))
}

func TestClone(t *testing.T) {
	o := New()
	o2 := o.Clone()
	o2.Methods[0] = http.MethodPut
	o2.Mode = ModeRewrite
	require.Equal(t, http.MethodGet, o.Methods[0])
	require.Equal(t, ModeRedirect, o.Mode)
}
