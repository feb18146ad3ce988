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

package options

import "time"

// DefaultReapInterval is the default interval between scans for expired entries
const DefaultReapInterval = time.Minute

// Options holds memory-cache-specific configuration
type Options struct {
	// ReapInterval is the interval at which expired entries are removed
	ReapInterval time.Duration `yaml:"reap_interval,omitempty"`
}

// New returns a new Options with default values set
func New() *Options {
	return &Options{ReapInterval: DefaultReapInterval}
}

// Clone returns a copy of the Options
func (o *Options) Clone() *Options {
	return &Options{ReapInterval: o.ReapInterval}
}
