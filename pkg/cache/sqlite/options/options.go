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

import (
	"path/filepath"

	d "github.com/trickstercache/utmkeeper/pkg/cache/options/defaults"
)

// DefaultTable is the default table holding session entries
const DefaultTable = "utmkeeper_sessions"

// Options is a collection of Configurations for storing cached data in a SQLite database
type Options struct {
	// Filename represents the filename (including path) of the SQLite database
	Filename string `yaml:"filename,omitempty"`
	// Table is the name of the table holding the entries
	Table string `yaml:"table,omitempty"`
}

// New returns a reference to a new SQLite Options
func New() *Options {
	return &Options{Filename: filepath.Join(d.DefaultCachePath, "utmkeeper.sqlite"),
		Table: DefaultTable}
}
