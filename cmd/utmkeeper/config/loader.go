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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	co "github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/options/defaults"
	"github.com/trickstercache/utmkeeper/pkg/cache/providers"

	"gopkg.in/yaml.v2"
)

// Load returns the application configuration, layered from defaults, the
// config file, the UTMK_* environment and the command line flags, in that
// order of increasing precedence. The result is validated.
func Load(flags *Flags, environ map[string]string) (*Config, error) {
	if flags == nil {
		flags = &Flags{}
	}
	ec, err := parseEnv(environ)
	if err != nil {
		return nil, err
	}

	c := NewConfig()

	path, customPath := DefaultConfigPath, false
	switch {
	case flags.ConfigPath != "":
		path, customPath = flags.ConfigPath, true
	case ec.ConfigPath != "":
		path, customPath = ec.ConfigPath, true
	}
	if err := c.loadFile(path); err != nil {
		// a missing config file at the default location means defaults
		if customPath || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	c.fillNilSections()
	if len(c.Caches) == 0 {
		c.Caches = co.Lookup{defaults.DefaultCacheName: co.New()}
	}
	c.LoaderWarnings = append(c.LoaderWarnings, c.Caches.Initialize()...)

	if err := c.loadEnvVars(ec); err != nil {
		return nil, err
	}
	c.loadFlags(flags)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.LoaderWarnings = append(c.LoaderWarnings, c.sessionCacheWarnings()...)
	return c, nil
}

// sessionCacheWarnings flags a numbered instance whose sessions live in a
// cache that other instances cannot read
func (c *Config) sessionCacheWarnings() []string {
	if c.Main.InstanceID <= 0 {
		return nil
	}
	cc, ok := c.Caches[c.Session.CacheName]
	if !ok || !providers.IsLocal(cc.Provider) {
		return nil
	}
	return []string{fmt.Sprintf("session cache %q uses local provider %q; "+
		"sessions are not shared between instances", c.Session.CacheName, cc.Provider)}
}

// fillNilSections restores defaults for sections set to null in the file
func (c *Config) fillNilSections() {
	d := NewConfig()
	if c.Main == nil {
		c.Main = d.Main
	}
	if c.Frontend == nil {
		c.Frontend = d.Frontend
	}
	if c.Origin == nil {
		c.Origin = d.Origin
	}
	if c.Session == nil {
		c.Session = d.Session
	}
	if c.Persist == nil {
		c.Persist = d.Persist
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
	if c.Tracing == nil {
		c.Tracing = d.Tracing
	}
}

// loadFile loads application configuration from a YAML-formatted file.
func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.loadYAMLConfig(b); err != nil {
		return err
	}
	c.configFilePath = path
	return nil
}

// loadYAMLConfig loads application configuration from a YAML-formatted byte slice.
func (c *Config) loadYAMLConfig(yml []byte) error {
	return yaml.UnmarshalStrict(yml, c)
}
