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

// Package config provides utmkeeper configuration abilities, including
// parsing and printing configuration files, command line parameters, and
// environment variables, as well as default values.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	co "github.com/trickstercache/utmkeeper/pkg/cache/options"
	fo "github.com/trickstercache/utmkeeper/pkg/frontend/options"
	lo "github.com/trickstercache/utmkeeper/pkg/observability/logging/options"
	mo "github.com/trickstercache/utmkeeper/pkg/observability/metrics/options"
	to "github.com/trickstercache/utmkeeper/pkg/observability/tracing/options"
	so "github.com/trickstercache/utmkeeper/pkg/session/options"
	uo "github.com/trickstercache/utmkeeper/pkg/utm/options"

	"gopkg.in/yaml.v2"
)

var (
	// ErrInvalidPprofServerName returns an error for invalid pprof server name
	ErrInvalidPprofServerName = errors.New("invalid pprof server name")
	// ErrInvalidOriginURL indicates a missing or unusable origin url
	ErrInvalidOriginURL = errors.New("invalid origin url")
	// ErrUnknownCacheName indicates the session references an undefined cache
	ErrUnknownCacheName = errors.New("session references an undefined cache")
)

const maskedValue = "*****"

// Config is the main configuration object
type Config struct {
	// Main is the primary MainConfig section
	Main *MainConfig `yaml:"main,omitempty"`
	// Frontend provides configurations about the Proxy Front End
	Frontend *fo.Options `yaml:"frontend,omitempty"`
	// Origin is the upstream that requests are proxied to
	Origin *OriginConfig `yaml:"origin,omitempty"`
	// Session configures the session cookie and snapshot storage
	Session *so.Options `yaml:"session,omitempty"`
	// Persist configures how restored parameters are delivered
	Persist *uo.Options `yaml:"persist,omitempty"`
	// Caches is a map of cache Options
	Caches co.Lookup `yaml:"caches,omitempty"`
	// Logging provides configurations that affect logging behavior
	Logging *lo.Options `yaml:"logging,omitempty"`
	// Metrics provides configurations for collecting Metrics about the application
	Metrics *mo.Options `yaml:"metrics,omitempty"`
	// Tracing provides the distributed tracing configuration
	Tracing *to.Options `yaml:"tracing,omitempty"`

	// LoaderWarnings holds non-fatal issues found while loading
	LoaderWarnings []string `yaml:"-"`

	configFilePath string
}

// MainConfig is a collection of general configuration values.
type MainConfig struct {
	// InstanceID represents a unique ID for the current instance, when multiple instances on the same host
	InstanceID int `yaml:"instance_id,omitempty"`
	// ConfigHandlerPath provides the path to register the Config Handler for outputting the running configuration
	ConfigHandlerPath string `yaml:"config_handler_path,omitempty"`
	// PingHandlerPath provides the path to register the Ping Handler for checking that utmkeeper is running
	PingHandlerPath string `yaml:"ping_handler_path,omitempty"`
	// PprofServer provides the name of the http listener that will host the pprof debugging routes
	// Options are: "metrics", "frontend", "both", or "off"; default is metrics
	PprofServer string `yaml:"pprof_server,omitempty"`
}

// OriginConfig describes the upstream origin
type OriginConfig struct {
	// Name labels the origin in metrics and traces
	Name string `yaml:"name,omitempty"`
	// URL is the base URL of the origin
	URL string `yaml:"url,omitempty"`

	parsedURL *url.URL
}

// ParsedURL returns the validated origin URL
func (o *OriginConfig) ParsedURL() *url.URL {
	return o.parsedURL
}

// Validate parses and checks the origin URL
func (o *OriginConfig) Validate() error {
	if o.Name == "" {
		o.Name = DefaultOriginName
	}
	u, err := url.Parse(strings.TrimSpace(o.URL))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOriginURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidOriginURL, o.URL)
	}
	o.parsedURL = u
	return nil
}

// Clone returns a copy of the OriginConfig
func (o *OriginConfig) Clone() *OriginConfig {
	o2 := *o
	return &o2
}

// NewConfig returns a Config initialized with default values.
func NewConfig() *Config {
	return &Config{
		Main: &MainConfig{
			ConfigHandlerPath: DefaultConfigHandlerPath,
			PingHandlerPath:   DefaultPingHandlerPath,
			PprofServer:       DefaultPprofServerName,
		},
		Frontend: fo.New(),
		Origin:   &OriginConfig{Name: DefaultOriginName},
		Session:  so.New(),
		Persist:  uo.New(),
		Logging:  lo.New(),
		Metrics:  mo.New(),
		Tracing:  to.New(),
	}
}

// ConfigFilePath returns the file path from which this configuration is based
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Validate checks every section of the Config
func (c *Config) Validate() error {
	switch c.Main.PprofServer {
	case "metrics", "frontend", "off", "both":
	case "":
		c.Main.PprofServer = DefaultPprofServerName
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPprofServerName, c.Main.PprofServer)
	}
	if err := c.Frontend.Validate(); err != nil {
		return err
	}
	if err := c.Origin.Validate(); err != nil {
		return err
	}
	if err := c.Persist.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Caches.Validate(); err != nil {
		return err
	}
	if _, ok := c.Caches[c.Session.CacheName]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCacheName, c.Session.CacheName)
	}
	return c.Tracing.Validate()
}

// Clone returns an exact copy of the subject *Config
func (c *Config) Clone() *Config {
	mc := *c.Main
	nc := &Config{
		Main:           &mc,
		Frontend:       c.Frontend.Clone(),
		Origin:         c.Origin.Clone(),
		Session:        c.Session.Clone(),
		Persist:        c.Persist.Clone(),
		Logging:        c.Logging.Clone(),
		Metrics:        c.Metrics.Clone(),
		Tracing:        c.Tracing.Clone(),
		Caches:         make(co.Lookup, len(c.Caches)),
		LoaderWarnings: append([]string(nil), c.LoaderWarnings...),
		configFilePath: c.configFilePath,
	}
	for k, v := range c.Caches {
		nc.Caches[k] = v.Clone()
	}
	return nc
}

// String returns the Config as YAML, with secrets masked
func (c *Config) String() string {
	cp := c.Clone()

	// strip Redis passwords
	for _, v := range cp.Caches {
		if v != nil && v.Redis != nil && v.Redis.Password != "" {
			v.Redis.Password = maskedValue
		}
	}
	if cp.Tracing.CollectorPass != "" {
		cp.Tracing.CollectorPass = maskedValue
	}
	if u, err := url.Parse(cp.Origin.URL); err == nil && u.User != nil {
		cp.Origin.URL = u.Redacted()
	}

	bytes, err := yaml.Marshal(cp)
	if err == nil {
		return string(bytes)
	}

	return ""
}
