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

package tracing

import (
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/options"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampler returns the sdk sampler for the provided sample rate
func Sampler(rate float64) sdktrace.Sampler {
	switch rate {
	case 0:
		return sdktrace.NeverSample()
	case 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Resource returns the process resource for the provided options, carrying
// the service name and any configured tags
func Resource(opts *options.Options) *resource.Resource {
	tags := make([]attribute.KeyValue, 1, len(opts.Tags)+1)
	tags[0] = attribute.String("service.name", opts.ServiceName)
	tags = append(tags, Tags(opts.Tags).ToAttr()...)
	return resource.NewWithAttributes("", tags...)
}

// FromProvider wraps an sdk TracerProvider into a *Tracer whose
// ShutdownFunc flushes the provider
func FromProvider(tp *sdktrace.TracerProvider, opts *options.Options) *Tracer {
	return &Tracer{
		Name:         opts.Name,
		Tracer:       tp.Tracer(opts.Name),
		Options:      opts,
		ShutdownFunc: tp.Shutdown,
	}
}
