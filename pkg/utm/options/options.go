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

// Package options holds the configuration for the utm persist middleware
package options

import (
	"errors"
	"net/http"
	"strings"
)

const (
	// ModeRedirect answers a restore with a redirect to the rewritten URL
	ModeRedirect = "redirect"
	// ModeRewrite rewrites the request URL in place and continues the chain
	ModeRewrite = "rewrite"

	// DefaultMode is the default restore mode
	DefaultMode = ModeRedirect
	// DefaultRedirectCode is the default status code for a restore redirect
	DefaultRedirectCode = http.StatusFound
	// DefaultOutcomeHeader is the response header that reports the outcome
	DefaultOutcomeHeader = "X-Utm-Persist"
)

// DefaultMethods are the request methods the middleware acts on by default
var DefaultMethods = []string{http.MethodGet, http.MethodHead}

var (
	// ErrInvalidMode indicates an unsupported restore mode
	ErrInvalidMode = errors.New("invalid persist mode")
	// ErrInvalidRedirectCode indicates a status code that is not a redirect
	ErrInvalidRedirectCode = errors.New("invalid persist redirect_code")
)

// Options defines how restored parameters are delivered back to the client
type Options struct {
	// Mode is "redirect" or "rewrite"
	Mode string `yaml:"mode,omitempty"`
	// RedirectCode is the 3xx status used in redirect mode
	RedirectCode int `yaml:"redirect_code,omitempty"`
	// Methods lists the request methods the middleware acts on
	Methods []string `yaml:"methods,omitempty"`
	// OutcomeHeader, when not empty, names a response header reporting the outcome
	OutcomeHeader string `yaml:"outcome_header,omitempty"`

	methods map[string]struct{}
}

// New returns Options with default values
func New() *Options {
	o := &Options{
		Mode:          DefaultMode,
		RedirectCode:  DefaultRedirectCode,
		Methods:       append([]string(nil), DefaultMethods...),
		OutcomeHeader: DefaultOutcomeHeader,
	}
	o.compileMethods()
	return o
}

// Clone returns a copy of the Options
func (o *Options) Clone() *Options {
	o2 := &Options{
		Mode:          o.Mode,
		RedirectCode:  o.RedirectCode,
		Methods:       append([]string(nil), o.Methods...),
		OutcomeHeader: o.OutcomeHeader,
	}
	o2.compileMethods()
	return o2
}

// Validate normalizes and checks the Options
func (o *Options) Validate() error {
	o.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Mode != ModeRedirect && o.Mode != ModeRewrite {
		return ErrInvalidMode
	}
	if o.RedirectCode == 0 {
		o.RedirectCode = DefaultRedirectCode
	}
	switch o.RedirectCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return ErrInvalidRedirectCode
	}
	if len(o.Methods) == 0 {
		o.Methods = append([]string(nil), DefaultMethods...)
	}
	o.compileMethods()
	return nil
}

func (o *Options) compileMethods() {
	o.methods = make(map[string]struct{}, len(o.Methods))
	for _, m := range o.Methods {
		o.methods[strings.ToUpper(m)] = struct{}{}
	}
}

// AppliesTo returns true if the middleware acts on the request method
func (o *Options) AppliesTo(method string) bool {
	if o.methods == nil {
		for _, m := range o.Methods {
			if strings.EqualFold(m, method) {
				return true
			}
		}
		return false
	}
	_, ok := o.methods[method]
	return ok
}
