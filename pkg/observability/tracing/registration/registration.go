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

// Package registration builds the configured tracer for use with handlers
package registration

import (
	"fmt"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing"
	errs "github.com/trickstercache/utmkeeper/pkg/observability/tracing/errors"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/exporters/jaeger"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/exporters/stdout"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/exporters/zipkin"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/options"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing/providers"
)

// GetTracer returns a *Tracer based on the provided options. The "none"
// provider, or nil options, return a nil *Tracer, which all span helpers
// accept.
func GetTracer(opts *options.Options, logger logging.Logger,
	isDryRun bool) (*tracing.Tracer, error) {

	if opts == nil {
		return nil, nil
	}

	p, ok := providers.Names[opts.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidProvider, opts.Provider)
	}
	if p == providers.None {
		return nil, nil
	}

	if !isDryRun && logger != nil {
		logger.Info("tracer registration",
			logging.Pairs{
				"name":        opts.Name,
				"provider":    opts.Provider,
				"serviceName": opts.ServiceName,
				"collector":   opts.CollectorURL,
				"sampleRate":  opts.SampleRate,
			},
		)
	}

	switch p {
	case providers.Stdout:
		return stdout.New(opts)
	case providers.Jaeger:
		return jaeger.New(opts)
	case providers.Zipkin:
		return zipkin.New(opts)
	}
	return nil, nil
}
