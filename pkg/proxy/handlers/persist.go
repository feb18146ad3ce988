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

// Package handlers provides the HTTP handlers served by utmkeeper
package handlers

import (
	"net/http"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	tl "github.com/trickstercache/utmkeeper/pkg/observability/logging/logger"
	"github.com/trickstercache/utmkeeper/pkg/proxy/headers"
	"github.com/trickstercache/utmkeeper/pkg/proxy/urls"
	"github.com/trickstercache/utmkeeper/pkg/session"
	"github.com/trickstercache/utmkeeper/pkg/utm"
	"github.com/trickstercache/utmkeeper/pkg/utm/options"
)

// PersistHandler saves the marketing parameters of each request into its
// session and restores them into later requests of the same session that
// arrive without them
func PersistHandler(opts *options.Options, store *session.Store,
	p *utm.Persistor, logger logging.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = tl.Logger()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !opts.AppliesTo(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		sc, issued := store.Resolve(w, r)
		rhp := headers.ResultHeaderParts{Session: "existing"}
		if issued {
			rhp.Session = "new"
		}

		res, err := p.Persist(r.Context(), sc, urls.FromRequest(r))
		if err != nil {
			logger.Error("utm persist failed", logging.Pairs{
				"path": r.URL.Path, "detail": err.Error()})
			rhp.Outcome = "error"
			headers.SetResultsHeader(w.Header(), opts.OutcomeHeader, rhp)
			next.ServeHTTP(w, r)
			return
		}
		rhp.Outcome = res.Outcome.String()

		if res.Outcome != utm.OutcomeRestored || !res.Changed {
			headers.SetResultsHeader(w.Header(), opts.OutcomeHeader, rhp)
			next.ServeHTTP(w, r)
			return
		}

		rhp.Mode = opts.Mode
		headers.SetResultsHeader(w.Header(), opts.OutcomeHeader, rhp)

		if opts.Mode == options.ModeRedirect {
			w.Header().Set(headers.NameLocation, res.URL.String())
			w.Header().Set(headers.NameCacheControl, headers.ValueNoStore)
			w.WriteHeader(opts.RedirectCode)
			return
		}

		r = r.Clone(r.Context())
		r.URL.RawQuery = res.URL.RawQuery
		r.RequestURI = r.URL.RequestURI()
		next.ServeHTTP(w, r)
	})
}
