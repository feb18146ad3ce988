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

package span

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/exporters/stdout"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/options"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNilTracer(t *testing.T) {
	ctx, span := NewChildSpan(context.Background(), nil, "test")
	require.NotNil(t, ctx)
	require.Nil(t, span)
	SetAttributes(nil, span, attribute.String("k", "v"))

	r := httptest.NewRequest("GET", "http://example.com/", nil)
	r2, span := PrepareRequest(r, nil)
	require.Same(t, r, r2)
	require.Nil(t, span)
}

func TestSpans(t *testing.T) {
	buf := &bytes.Buffer{}
	o := options.New()
	o.Provider = "stdout"
	o.OmitTagsList = []string{"omitted"}
	require.NoError(t, o.Validate())
	tr, err := stdout.NewWithWriter(o, buf)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "http://example.com/landing?page=2", nil)
	r, parent := PrepareRequest(r, tr)
	require.NotNil(t, parent)

	_, child := NewChildSpan(r.Context(), tr, "Persist")
	require.NotNil(t, child)
	SetAttributes(tr, child, attribute.String("utm.outcome", "stored"),
		attribute.String("omitted", "x"))
	require.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	child.End()
	parent.End()
	require.NoError(t, tr.Shutdown(context.Background()))

	out := buf.String()
	require.True(t, strings.Contains(out, "utm.outcome"))
	require.False(t, strings.Contains(out, `"omitted"`))
	require.True(t, strings.Contains(out, "Persist"))
}
