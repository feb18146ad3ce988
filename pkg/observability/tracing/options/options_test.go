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
	"errors"
	"testing"

	errs "github.com/trickstercache/utmkeeper/pkg/observability/tracing/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		o    *Options
		exp  error
	}{
		{"default", New(), nil},
		{"empty provider", &Options{}, nil},
		{"bad provider", &Options{Provider: "otlp"}, errs.ErrInvalidProvider},
		{"bad sample rate", &Options{Provider: "stdout", SampleRate: 2},
			errs.ErrInvalidSampleRate},
		{"zipkin no url", &Options{Provider: "zipkin"}, errs.ErrInvalidEndpointURL},
		{"jaeger ok", &Options{Provider: "jaeger",
			CollectorURL: "http://127.0.0.1:14268/api/traces"}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.o.Validate()
			if !errors.Is(err, test.exp) {
				t.Errorf("expected %v got %v", test.exp, err)
			}
		})
	}
}

func TestCloneAndOmitTags(t *testing.T) {
	o := New()
	o.Provider = "zipkin"
	o.CollectorURL = "http://127.0.0.1:9411/api/v2/spans"
	o.Tags = map[string]string{"env": "test"}
	o.OmitTagsList = []string{"utm.changed"}
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, ok := o.OmitTags["utm.changed"]; !ok {
		t.Error("expected omit tag to be generated")
	}
	if !o.AttachTagsToSpan() {
		t.Error("expected zipkin with tags to attach tags to span")
	}
	o2 := o.Clone()
	o2.Tags["env"] = "prod"
	o2.StdOutOptions.PrettyPrint = true
	if o.Tags["env"] != "test" || o.StdOutOptions.PrettyPrint {
		t.Error("expected clone to be independent")
	}
}
