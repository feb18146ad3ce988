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
	"fmt"
	"maps"
	"slices"

	errs "github.com/trickstercache/utmkeeper/pkg/observability/tracing/errors"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/providers"
)

const (
	// DefaultTracerProvider is the default tracing provider
	DefaultTracerProvider = "none"
	// DefaultTracerServiceName is the default service name reported to collectors
	DefaultTracerServiceName = "utmkeeper"
	// DefaultSampleRate is the default sample rate
	DefaultSampleRate = 1.0
)

// Options is a Tracing Options collection
type Options struct {
	Name          string            `yaml:"-"`
	Provider      string            `yaml:"provider,omitempty"`
	ServiceName   string            `yaml:"service_name,omitempty"`
	CollectorURL  string            `yaml:"collector_url,omitempty"`
	CollectorUser string            `yaml:"collector_user,omitempty"`
	CollectorPass string            `yaml:"collector_pass,omitempty"`
	SampleRate    float64           `yaml:"sample_rate,omitempty"`
	Tags          map[string]string `yaml:"tags,omitempty"`
	OmitTagsList  []string          `yaml:"omit_tags,omitempty"`

	StdOutOptions *StdOutOptions `yaml:"stdout,omitempty"`
	JaegerOptions *JaegerOptions `yaml:"jaeger,omitempty"`

	OmitTags map[string]struct{} `yaml:"-"`
}

// StdOutOptions are options for the stdout exporter
type StdOutOptions struct {
	PrettyPrint bool `yaml:"pretty_print,omitempty"`
}

// JaegerOptions are options for the jaeger exporter
type JaegerOptions struct {
	// EndpointType is "collector" (default) or "agent"
	EndpointType string `yaml:"endpoint_type,omitempty"`
}

// New returns a new *Options with the default values
func New() *Options {
	return &Options{
		Name:          DefaultTracerServiceName,
		Provider:      DefaultTracerProvider,
		ServiceName:   DefaultTracerServiceName,
		SampleRate:    DefaultSampleRate,
		StdOutOptions: &StdOutOptions{},
		JaegerOptions: &JaegerOptions{},
	}
}

// Clone returns an exact copy of a tracing config
func (o *Options) Clone() *Options {
	out := &Options{
		Name:          o.Name,
		Provider:      o.Provider,
		ServiceName:   o.ServiceName,
		CollectorURL:  o.CollectorURL,
		CollectorUser: o.CollectorUser,
		CollectorPass: o.CollectorPass,
		SampleRate:    o.SampleRate,
		Tags:          maps.Clone(o.Tags),
		OmitTagsList:  slices.Clone(o.OmitTagsList),
		OmitTags:      maps.Clone(o.OmitTags),
	}
	if o.StdOutOptions != nil {
		so := *o.StdOutOptions
		out.StdOutOptions = &so
	}
	if o.JaegerOptions != nil {
		jo := *o.JaegerOptions
		out.JaegerOptions = &jo
	}
	return out
}

// Validate checks the Options and fills the derived fields
func (o *Options) Validate() error {
	if o.Provider == "" {
		o.Provider = DefaultTracerProvider
	}
	p, ok := providers.Names[o.Provider]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrInvalidProvider, o.Provider)
	}
	if o.SampleRate < 0 || o.SampleRate > 1 {
		return errs.ErrInvalidSampleRate
	}
	if (p == providers.Jaeger || p == providers.Zipkin) && o.CollectorURL == "" {
		return fmt.Errorf("%w: collector_url is required for %s",
			errs.ErrInvalidEndpointURL, o.Provider)
	}
	if o.ServiceName == "" {
		o.ServiceName = DefaultTracerServiceName
	}
	o.generateOmitTags()
	return nil
}

func (o *Options) generateOmitTags() {
	o.OmitTags = make(map[string]struct{}, len(o.OmitTagsList))
	for _, k := range o.OmitTagsList {
		o.OmitTags[k] = struct{}{}
	}
}

// AttachTagsToSpan indicates that Tags should be attached to each span,
// for exporters that have no process-level tags (e.g., Zipkin)
func (o *Options) AttachTagsToSpan() bool {
	return o.Provider == providers.Zipkin.String() && len(o.Tags) > 0
}
