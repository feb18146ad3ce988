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

const (
	// DefaultConfigPath is the default location of the utmkeeper config file
	DefaultConfigPath = "/etc/utmkeeper/utmkeeper.yaml"
	// DefaultConfigHandlerPath is the default value for the Config Printout Handler path
	DefaultConfigHandlerPath = "/utmkeeper/config"
	// DefaultPingHandlerPath is the default value for the Ping Handler path
	DefaultPingHandlerPath = "/utmkeeper/ping"
	// DefaultPprofServerName defines the default Pprof Server Name
	DefaultPprofServerName = "metrics"
	// DefaultOriginName is the default name of the origin in metrics and traces
	DefaultOriginName = "origin"
	// EnvPrefix is the prefix of the environment variables read by utmkeeper
	EnvPrefix = "UTMK_"
)
