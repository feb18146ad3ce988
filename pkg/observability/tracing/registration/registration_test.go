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

package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	errs "github.com/trickstercache/utmkeeper/pkg/observability/tracing/errors"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/options"
)

func TestGetTracer(t *testing.T) {

	tr, err := GetTracer(nil, nil, false)
	if err != nil || tr != nil {
		t.Error("expected nil tracer for nil options")
	}

	o := options.New()
	tr, err = GetTracer(o, logging.NoopLogger(), false)
	if err != nil || tr != nil {
		t.Error("expected nil tracer for none provider")
	}

	o.Provider = "stdout"
	tr, err = GetTracer(o, logging.NoopLogger(), false)
	if err != nil {
		t.Fatal(err)
	}
	if tr == nil || tr.Tracer == nil {
		t.Fatal("expected stdout tracer")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Error(err)
	}

	o.Provider = "zipkin"
	o.CollectorURL = "http://127.0.0.1:9411/api/v2/spans"
	tr, err = GetTracer(o, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if tr == nil {
		t.Fatal("expected zipkin tracer")
	}
	if tr.ShutdownFunc == nil {
		t.Error("expected shutdown func")
	}

	o.Provider = "invalid"
	_, err = GetTracer(o, nil, true)
	if !errors.Is(err, errs.ErrInvalidProvider) {
		t.Errorf("expected %v got %v", errs.ErrInvalidProvider, err)
	}
}
