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
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing"
	tspan "github.com/trickstercache/utmkeeper/pkg/observability/tracing/span"
	"github.com/trickstercache/utmkeeper/pkg/proxy/urls"

	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrSnapshotRead indicates the session store could not be read
	ErrSnapshotRead = errors.New("could not read utm snapshot")
	// ErrSnapshotWrite indicates the session store could not be written
	ErrSnapshotWrite = errors.New("could not write utm snapshot")
)

// SnapshotStore is the session-scoped storage for a single snapshot
type SnapshotStore interface {
	// Load returns the stored snapshot text, and false if none exists
	Load(ctx context.Context) ([]byte, bool, error)
	// Save replaces the stored snapshot text
	Save(ctx context.Context, data []byte) error
}

// Outcome enumerates the results of a Persist run
type Outcome int

const (
	// OutcomeUnchanged means no marketing parameters and no snapshot
	OutcomeUnchanged = Outcome(iota)
	// OutcomeStored means marketing parameters were present and saved
	OutcomeStored
	// OutcomeRestored means a snapshot was merged into the current parameters
	OutcomeRestored
	// OutcomeCorrupt means a snapshot existed but could not be decoded
	OutcomeCorrupt
)

var outcomeNames = map[Outcome]string{
	OutcomeUnchanged: "unchanged",
	OutcomeStored:    "stored",
	OutcomeRestored:  "restored",
	OutcomeCorrupt:   "corrupt",
}

func (o Outcome) String() string {
	if v, ok := outcomeNames[o]; ok {
		return v
	}
	return strconv.Itoa(int(o))
}

// Result describes what a Persist run did
type Result struct {
	Outcome Outcome
	// Params is the parameter map after the run (merged, for a restore)
	Params *Params
	// URL is the rewritten URL for a restore, or the input URL otherwise
	URL *url.URL
	// Changed is true when URL's query differs from the input query
	Changed bool
}

// Persistor saves marketing parameters on the way in and restores them when
// a later URL in the same session lacks them
type Persistor struct {
	logger logging.Logger
	tracer *tracing.Tracer
}

// NewPersistor returns a Persistor. Either argument may be nil.
func NewPersistor(logger logging.Logger, tracer *tracing.Tracer) *Persistor {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Persistor{logger: logger, tracer: tracer}
}

// Persist runs the save-or-restore procedure for u against store
func (p *Persistor) Persist(ctx context.Context, store SnapshotStore,
	u *url.URL) (*Result, error) {

	ctx, span := tspan.NewChildSpan(ctx, p.tracer, "Persist")
	if span != nil {
		defer span.End()
	}

	res, err := p.persist(ctx, store, u)
	if res != nil {
		metrics.PersistOutcomes.WithLabelValues(res.Outcome.String()).Inc()
		tspan.SetAttributes(p.tracer, span,
			attribute.String("utm.outcome", res.Outcome.String()),
			attribute.Bool("utm.changed", res.Changed),
		)
	} else {
		metrics.PersistOutcomes.WithLabelValues("error").Inc()
	}
	return res, err
}

func (p *Persistor) persist(ctx context.Context, store SnapshotStore,
	u *url.URL) (*Result, error) {

	params := ParseQuery(u.RawQuery)
	res := &Result{Outcome: OutcomeUnchanged, Params: params, URL: u}

	if HasMarketingParams(params) {
		b, err := params.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := store.Save(ctx, b); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
		}
		res.Outcome = OutcomeStored
		p.logger.Debug("utm snapshot stored",
			logging.Pairs{"params": params.Marketing().Encode()})
		return res, nil
	}

	b, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotRead, err)
	}
	if !ok || len(b) == 0 {
		return res, nil
	}

	snapshot := NewParams()
	if err := snapshot.UnmarshalJSON(b); err != nil {
		res.Outcome = OutcomeCorrupt
		p.logger.Warn("utm snapshot could not be decoded",
			logging.Pairs{"detail": err, "size": len(b)})
		return res, nil
	}

	params.Merge(snapshot)
	q := params.Encode()
	res.Outcome = OutcomeRestored
	nu := urls.Clone(u)
	nu.User = nil
	nu.RawQuery = q
	nu.Fragment = ""
	nu.RawFragment = ""
	res.URL = nu
	res.Changed = q != u.RawQuery
	p.logger.Debug("utm snapshot restored",
		logging.Pairs{"query": q, "changed": res.Changed})
	return res, nil
}
