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

package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	tl "github.com/trickstercache/utmkeeper/pkg/observability/logging/logger"
	"github.com/trickstercache/utmkeeper/pkg/proxy/headers"
	"github.com/trickstercache/utmkeeper/pkg/proxy/urls"
)

// ViaValue is appended to the Via header of proxied requests
const ViaValue = "1.1 utmkeeper"

// NewOriginProxy returns a reverse proxy to the origin. The request path and
// query are appended to the origin URL.
func NewOriginProxy(origin *url.URL, logger logging.Logger) *httputil.ReverseProxy {
	if logger == nil {
		logger = tl.Logger()
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL = urls.BuildUpstreamURL(pr.In, origin)
			pr.Out.Host = ""
			pr.SetXForwarded()
			headers.UpdateHeaders(pr.Out.Header,
				map[string]string{"+" + headers.NameVia: ViaValue})
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("origin request failed", logging.Pairs{
				"originURL": origin.String(), "path": r.URL.Path,
				"detail": err.Error()})
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
