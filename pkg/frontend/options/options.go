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

// Package options holds the configuration for the http frontend
package options

import (
	"errors"
	"time"
)

// ErrInvalidListenPort indicates a listen port outside of 1-65535
var ErrInvalidListenPort = errors.New("invalid frontend listen_port")

// Options is a collection of configurations for the main http frontend for the application
type Options struct {
	// ListenAddress is IP address for the main http listener for the application
	ListenAddress string `yaml:"listen_address,omitempty"`
	// ListenPort is TCP Port for the main http listener for the application
	ListenPort int `yaml:"listen_port,omitempty"`
	// ConnectionsLimit indicates how many concurrent front end connections utmkeeper will handle at any time
	ConnectionsLimit int `yaml:"connections_limit,omitempty"`
	// ReadHeaderTimeout is the time allowed to read request headers
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout,omitempty"`
	// DrainTimeout is the time allowed for in-flight requests to finish on shutdown
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty"`
}

// New returns a new Frontend Options with default values
func New() *Options {
	return &Options{
		ListenPort:        DefaultProxyListenPort,
		ListenAddress:     DefaultProxyListenAddress,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		DrainTimeout:      DefaultDrainTimeout,
	}
}

// Equal returns true if the FrontendConfigs are identical in value.
func (o *Options) Equal(o2 *Options) bool {
	return *o == *o2
}

// Clone returns a clone of the Options
func (o *Options) Clone() *Options {
	o2 := *o
	return &o2
}

// Validate checks the Options and fills unset timeouts with defaults
func (o *Options) Validate() error {
	if o.ListenPort < 1 || o.ListenPort > 65535 {
		return ErrInvalidListenPort
	}
	if o.ReadHeaderTimeout <= 0 {
		o.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = DefaultDrainTimeout
	}
	return nil
}
