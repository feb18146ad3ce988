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

// Package session provides the browser-session-scoped store for utm
// snapshots, keyed by a session cookie and backed by a cache provider
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"
	"github.com/trickstercache/utmkeeper/pkg/session/options"
	"github.com/trickstercache/utmkeeper/pkg/utm"

	"github.com/google/uuid"
)

// ErrNoCache is returned when a Store is created without a cache
var ErrNoCache = errors.New("session store requires a cache")

// Store is the session store
type Store struct {
	cache  cache.Cache
	opts   *options.Options
	logger logging.Logger
}

// Scope is a single session's view of the Store. It implements utm.SnapshotStore.
type Scope struct {
	store *Store
	id    string
	key   string
}

var _ utm.SnapshotStore = &Scope{}

// New returns a Store over c
func New(c cache.Cache, opts *options.Options, logger logging.Logger) (*Store, error) {
	if c == nil {
		return nil, ErrNoCache
	}
	if opts == nil {
		opts = options.New()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Store{cache: c, opts: opts, logger: logger}, nil
}

// Options returns the Store's options
func (s *Store) Options() *options.Options {
	return s.opts
}

// Key returns the cache key of the snapshot for the session id
func (s *Store) Key(id string) string {
	return s.opts.KeyPrefix + id + "." + utm.SnapshotKey
}

// Scope returns the session-scoped accessor for id
func (s *Store) Scope(id string) *Scope {
	return &Scope{store: s, id: id, key: s.Key(id)}
}

// ID returns the session ID of the Scope
func (sc *Scope) ID() string {
	return sc.id
}

// Load returns the session's snapshot, and false if there is none. A hit
// slides the entry's TTL forward.
func (sc *Scope) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, _, err := sc.store.cache.Retrieve(sc.key)
	if errors.Is(err, cache.ErrKNF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := sc.store.cache.SetTTL(sc.key, sc.store.opts.IdleTimeout); err != nil {
		sc.store.logger.Debug("could not refresh session ttl",
			logging.Pairs{"detail": err, "session": sc.id})
	}
	return b, true, nil
}

// Save replaces the session's snapshot
func (sc *Scope) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sc.store.cache.Store(sc.key, data, sc.store.opts.IdleTimeout)
}

// NewID returns a new random session ID
func NewID() string {
	return uuid.NewString()
}

// ValidID returns true if id is a well-formed session ID
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && len(id) == 36 && u.Version() == 4
}

// Resolve returns the Scope for the request's session. When the request has
// no valid session cookie, a new session is issued, its cookie is set on w,
// and issued is true.
func (s *Store) Resolve(w http.ResponseWriter, r *http.Request) (sc *Scope, issued bool) {
	if c, err := r.Cookie(s.opts.CookieName); err == nil && ValidID(c.Value) {
		return s.Scope(c.Value), false
	}
	id := NewID()
	http.SetCookie(w, s.Cookie(id))
	metrics.SessionsIssued.Inc()
	return s.Scope(id), true
}

// Cookie returns the session cookie for id. It has no Max-Age or Expires,
// so the browser drops it when the browser session ends.
func (s *Store) Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    id,
		Path:     s.opts.CookiePath,
		Domain:   s.opts.CookieDomain,
		Secure:   s.opts.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
