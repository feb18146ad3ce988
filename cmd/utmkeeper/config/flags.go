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
	"github.com/spf13/pflag"
)

const (
	// Command-line flags
	cfConfig      = "config"
	cfLogLevel    = "log-level"
	cfInstanceID  = "instance-id"
	cfOrigin      = "origin-url"
	cfProxyPort   = "proxy-port"
	cfMetricsPort = "metrics-port"
	cfMode        = "mode"
)

// Flags holds the values for whitelisted flags
type Flags struct {
	ConfigPath        string
	LogLevel          string
	InstanceID        int
	Origin            string
	ProxyListenPort   int
	MetricsListenPort int
	PersistMode       string
}

// Register binds the Flags to the flag set
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, cfConfig, "",
		"Path to utmkeeper Config File (default "+DefaultConfigPath+")")
	fs.StringVar(&f.LogLevel, cfLogLevel, "",
		"Level of Logging to use (debug, info, warn, error)")
	fs.IntVar(&f.InstanceID, cfInstanceID, 0,
		"Instance ID is for running multiple utmkeeper processes"+
			" from the same config while logging to their own files")
	fs.StringVar(&f.Origin, cfOrigin, "",
		"URL to the Origin, e.g., http://site:8080")
	fs.IntVar(&f.ProxyListenPort, cfProxyPort, 0,
		"Port that the primary Proxy server will listen on")
	fs.IntVar(&f.MetricsListenPort, cfMetricsPort, 0,
		"Port that the /metrics endpoint will listen on")
	fs.StringVar(&f.PersistMode, cfMode, "",
		"How restored parameters are delivered (redirect, rewrite)")
}

// loadFlags loads configuration from command line flags.
func (c *Config) loadFlags(flags *Flags) {
	if flags == nil {
		return
	}
	if flags.Origin != "" {
		c.Origin.URL = flags.Origin
	}
	if flags.ProxyListenPort > 0 {
		c.Frontend.ListenPort = flags.ProxyListenPort
	}
	if flags.MetricsListenPort > 0 {
		c.Metrics.ListenPort = flags.MetricsListenPort
	}
	if flags.LogLevel != "" {
		c.Logging.LogLevel = flags.LogLevel
	}
	if flags.InstanceID > 0 {
		c.Main.InstanceID = flags.InstanceID
	}
	if flags.PersistMode != "" {
		c.Persist.Mode = flags.PersistMode
	}
}
