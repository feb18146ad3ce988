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

package redis

import (
	"crypto/tls"

	ro "github.com/trickstercache/utmkeeper/pkg/cache/redis/options"

	"github.com/go-redis/redis"
)

func clientOpts(c *ro.Options) *redis.Options {

	o := &redis.Options{
		Addr: c.Endpoint,
	}

	if c.UseTLS {
		o.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if c.Protocol != "" {
		o.Network = c.Protocol
	}

	if c.Password != "" {
		o.Password = c.Password
	}

	if c.DB != 0 {
		o.DB = c.DB
	}

	if c.MaxRetries != 0 {
		o.MaxRetries = c.MaxRetries
	}

	if c.MinRetryBackoff != 0 {
		o.MinRetryBackoff = c.MinRetryBackoff
	}

	if c.MaxRetryBackoff != 0 {
		o.MaxRetryBackoff = c.MaxRetryBackoff
	}

	if c.DialTimeout != 0 {
		o.DialTimeout = c.DialTimeout
	}

	if c.ReadTimeout != 0 {
		o.ReadTimeout = c.ReadTimeout
	}

	if c.WriteTimeout != 0 {
		o.WriteTimeout = c.WriteTimeout
	}

	if c.PoolSize != 0 {
		o.PoolSize = c.PoolSize
	}

	if c.MinIdleConns != 0 {
		o.MinIdleConns = c.MinIdleConns
	}

	if c.MaxConnAge != 0 {
		o.MaxConnAge = c.MaxConnAge
	}

	if c.PoolTimeout != 0 {
		o.PoolTimeout = c.PoolTimeout
	}

	if c.IdleTimeout != 0 {
		o.IdleTimeout = c.IdleTimeout
	}

	return o
}
