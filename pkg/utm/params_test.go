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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParamsSetGet(t *testing.T) {
	p := NewParams()
	require.Equal(t, 0, p.Len())
	p.Set("b", "1")
	p.Set("a", "2")
	p.Set("b", "3")
	require.Equal(t, 2, p.Len())
	v, ok := p.Get("b")
	require.True(t, ok)
	require.Equal(t, "3", v)
	_, ok = p.Get("c")
	require.False(t, ok)
	if diff := cmp.Diff([]string{"b", "a"}, p.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	var np *Params
	require.Equal(t, 0, np.Len())
	require.Nil(t, np.Keys())
	_, ok = np.Get("a")
	require.False(t, ok)
}

func TestParamsFromPairs(t *testing.T) {
	p := ParamsFromPairs("a", "1", "b")
	require.Equal(t, map[string]string{"a": "1", "b": ""}, p.Map())
}

func TestMerge(t *testing.T) {
	p := ParamsFromPairs("page", "2", "utm_source", "old")
	p.Merge(ParamsFromPairs("utm_source", "newsletter", "utm_medium", "email"))
	if diff := cmp.Diff([]string{"page", "utm_source", "utm_medium"}, p.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]string{"page": "2", "utm_source": "newsletter",
		"utm_medium": "email"}, p.Map())
	p.Merge(nil)
	require.Equal(t, 3, p.Len())
}

func TestCloneAndEqual(t *testing.T) {
	p := ParamsFromPairs("a", "1", "b", "2")
	c := p.Clone()
	require.True(t, p.Equal(c))
	c.Set("a", "x")
	require.False(t, p.Equal(c))
	require.False(t, p.Equal(ParamsFromPairs("b", "2", "a", "1")))
	require.False(t, p.Equal(ParamsFromPairs("a", "1")))
}

func TestMarshalJSON(t *testing.T) {
	b, err := ParamsFromPairs("utm_source", "newsletter", "utm_campaign", "spring").MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"utm_source":"newsletter","utm_campaign":"spring"}`, string(b))

	b, err = ParamsFromPairs("q", `a "b" <c> & \d`).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"q":"a \"b\" <c> & \\d"}`, string(b))

	b, err = NewParams().MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{}`, string(b))

	b, err = ParamsFromPairs("v", "\xff", "utm_source", "a", "\xfe", "x").MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"utm_source":"a"}`, string(b))
}

func TestUnmarshalJSON(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.UnmarshalJSON(
		[]byte(` {"utm_campaign":"spring","utm_source":"newsletter","n":1,"t":true,"z":null} `)))
	if diff := cmp.Diff([]string{"utm_campaign", "utm_source", "n", "t", "z"}, p.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]string{"utm_campaign": "spring", "utm_source": "newsletter",
		"n": "1", "t": "true", "z": "null"}, p.Map())

	require.NoError(t, p.UnmarshalJSON([]byte(`{}`)))
	require.Equal(t, 0, p.Len())
}

func TestUnmarshalJSONCorrupt(t *testing.T) {
	for _, in := range []string{"", "{", "not json", `["a"]`, `"s"`, `{"a":{"b":"c"}}`,
		`{"a":["b"]}`, `{"a":"b",}`} {
		t.Run(in, func(t *testing.T) {
			p := ParamsFromPairs("keep", "me")
			require.ErrorIs(t, p.UnmarshalJSON([]byte(in)), ErrCorruptSnapshot)
			require.Equal(t, map[string]string{"keep": "me"}, p.Map())
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	p := ParamsFromPairs("utm_term", "a+b c", "utm_content", "✓", "x", "")
	b, err := p.MarshalJSON()
	require.NoError(t, err)
	p2 := NewParams()
	require.NoError(t, p2.UnmarshalJSON(b))
	require.True(t, p.Equal(p2))
}

func TestMarketing(t *testing.T) {
	p := ParseQuery("page=2&utm_medium=email&x=1&utm_source=news")
	if diff := cmp.Diff([]string{"utm_medium", "utm_source"}, p.Marketing().Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	var np *Params
	require.Equal(t, 0, np.Marketing().Len())
}

func TestHasMarketingParams(t *testing.T) {
	require.True(t, HasMarketingParams(ParseQuery("utm_source=a")))
	require.True(t, HasMarketingParams(ParseQuery("utm_content=a&b=2")))
	require.False(t, HasMarketingParams(ParseQuery("utm_source=&page=2")))
	require.False(t, HasMarketingParams(ParseQuery("utm_id=7&UTM_SOURCE=x")))
	require.False(t, HasMarketingParams(NewParams()))
	for _, n := range Names {
		require.True(t, IsMarketingParam(n))
	}
	require.False(t, IsMarketingParam("utm_id"))
}
