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
	"fmt"
	"strconv"
	"strings"
	"time"

	co "github.com/trickstercache/utmkeeper/pkg/cache/options"

	"github.com/caarlos0/env/v11"
)

// envConfig holds the values that may be overridden by UTMK_* environment
// variables. Empty values leave the configuration untouched.
type envConfig struct {
	ConfigPath          string        `env:"CONFIG"`
	OriginURL           string        `env:"ORIGIN_URL"`
	ListenAddress       string        `env:"FRONTEND_LISTEN_ADDRESS"`
	ListenPort          int           `env:"FRONTEND_LISTEN_PORT"`
	MetricsListenPort   int           `env:"METRICS_LISTEN_PORT"`
	LogLevel            string        `env:"LOG_LEVEL"`
	LogFile             string        `env:"LOG_FILE"`
	PersistMode         string        `env:"PERSIST_MODE"`
	CookieDomain        string        `env:"SESSION_COOKIE_DOMAIN"`
	CookieSecure        string        `env:"SESSION_COOKIE_SECURE"`
	IdleTimeout         time.Duration `env:"SESSION_IDLE_TIMEOUT"`
	CacheProvider       string        `env:"CACHE_PROVIDER"`
	RedisEndpoint       string        `env:"REDIS_ENDPOINT"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	TracingProvider     string        `env:"TRACING_PROVIDER"`
	TracingCollectorURL string        `env:"TRACING_COLLECTOR_URL"`
}

func parseEnv(environ map[string]string) (*envConfig, error) {
	ec := &envConfig{}
	if err := env.ParseWithOptions(ec, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return ec, nil
}

// EnvironMap converts a KEY=value list, as returned by os.Environ, to a map
func EnvironMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// loadEnvVars applies the environment overrides to the Config
func (c *Config) loadEnvVars(ec *envConfig) error {
	if ec == nil {
		return nil
	}
	if ec.OriginURL != "" {
		c.Origin.URL = ec.OriginURL
	}
	if ec.ListenAddress != "" {
		c.Frontend.ListenAddress = ec.ListenAddress
	}
	if ec.ListenPort > 0 {
		c.Frontend.ListenPort = ec.ListenPort
	}
	if ec.MetricsListenPort > 0 {
		c.Metrics.ListenPort = ec.MetricsListenPort
	}
	if ec.LogLevel != "" {
		c.Logging.LogLevel = ec.LogLevel
	}
	if ec.LogFile != "" {
		c.Logging.LogFile = ec.LogFile
	}
	if ec.PersistMode != "" {
		c.Persist.Mode = ec.PersistMode
	}
	if ec.CookieDomain != "" {
		c.Session.CookieDomain = ec.CookieDomain
	}
	if ec.CookieSecure != "" {
		b, err := strconv.ParseBool(ec.CookieSecure)
		if err != nil {
			return fmt.Errorf("%sSESSION_COOKIE_SECURE: %w", EnvPrefix, err)
		}
		c.Session.CookieSecure = b
	}
	if ec.IdleTimeout > 0 {
		c.Session.IdleTimeout = ec.IdleTimeout
	}
	if ec.CacheProvider != "" || ec.RedisEndpoint != "" || ec.RedisPassword != "" {
		cc, ok := c.Caches[c.Session.CacheName]
		if !ok || cc == nil {
			cc = co.New()
			c.Caches[c.Session.CacheName] = cc
		}
		if ec.CacheProvider != "" {
			cc.Provider = ec.CacheProvider
		}
		cc.Initialize(c.Session.CacheName)
		if ec.RedisEndpoint != "" {
			cc.Redis.Endpoint = ec.RedisEndpoint
		}
		if ec.RedisPassword != "" {
			cc.Redis.Password = ec.RedisPassword
		}
	}
	if ec.TracingProvider != "" {
		c.Tracing.Provider = ec.TracingProvider
	}
	if ec.TracingCollectorURL != "" {
		c.Tracing.CollectorURL = ec.TracingCollectorURL
	}
	return nil
}
