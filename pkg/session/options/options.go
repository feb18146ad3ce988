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

// Package options holds the session store configuration
package options

import (
	"errors"
	"strings"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache/options/defaults"
)

const (
	// DefaultCookieName is the default name of the session cookie
	DefaultCookieName = "utmk_session"
	// DefaultCookiePath is the default path of the session cookie
	DefaultCookiePath = "/"
	// DefaultIdleTimeout is the default lifetime of an untouched session entry
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultKeyPrefix is the default prefix of session entry keys
	DefaultKeyPrefix = "utmk."
	// DefaultCacheName is the default cache holding the session entries
	DefaultCacheName = defaults.DefaultCacheName
)

var (
	// ErrInvalidCookieName indicates a cookie name that is not a valid token
	ErrInvalidCookieName = errors.New("invalid session cookie_name")
	// ErrInvalidIdleTimeout indicates a non-positive idle_timeout
	ErrInvalidIdleTimeout = errors.New("session idle_timeout must be positive")
)

// Options is a collection of session settings
type Options struct {
	// CookieName is the name of the browser-session cookie carrying the session ID
	CookieName string `yaml:"cookie_name,omitempty"`
	// CookiePath is the Path attribute of the cookie
	CookiePath string `yaml:"cookie_path,omitempty"`
	// CookieDomain is the Domain attribute of the cookie; empty means host-only
	CookieDomain string `yaml:"cookie_domain,omitempty"`
	// CookieSecure sets the Secure attribute of the cookie
	CookieSecure bool `yaml:"cookie_secure,omitempty"`
	// IdleTimeout is the TTL of a session entry, refreshed on each access
	IdleTimeout time.Duration `yaml:"idle_timeout,omitempty"`
	// KeyPrefix is prepended to each session entry key
	KeyPrefix string `yaml:"key_prefix,omitempty"`
	// CacheName names the cache holding the session entries
	CacheName string `yaml:"cache_name,omitempty"`
}

// New returns Options with default values
func New() *Options {
	return &Options{
		CookieName:  DefaultCookieName,
		CookiePath:  DefaultCookiePath,
		IdleTimeout: DefaultIdleTimeout,
		KeyPrefix:   DefaultKeyPrefix,
		CacheName:   DefaultCacheName,
	}
}

// Clone returns a copy of the Options
func (o *Options) Clone() *Options {
	o2 := *o
	return &o2
}

// Validate fills empty values with defaults and checks the Options
func (o *Options) Validate() error {
	if o.CookieName == "" {
		o.CookieName = DefaultCookieName
	}
	if !validToken(o.CookieName) {
		return ErrInvalidCookieName
	}
	if o.CookiePath == "" {
		o.CookiePath = DefaultCookiePath
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.IdleTimeout < 0 {
		return ErrInvalidIdleTimeout
	}
	if o.CacheName == "" {
		o.CacheName = DefaultCacheName
	}
	return nil
}

// validToken reports whether s is an RFC 7230 token
func validToken(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return false
		}
		return !strings.ContainsRune("!#$%&'*+-.^_`|~", r)
	}) < 0
}
