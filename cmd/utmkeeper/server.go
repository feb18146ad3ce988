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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/trickstercache/utmkeeper/cmd/utmkeeper/config"
	"github.com/trickstercache/utmkeeper/pkg/cache/registration"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	tl "github.com/trickstercache/utmkeeper/pkg/observability/logging/logger"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"
	"github.com/trickstercache/utmkeeper/pkg/observability/pprof"
	"github.com/trickstercache/utmkeeper/pkg/observability/tracing"
	tr "github.com/trickstercache/utmkeeper/pkg/observability/tracing/registration"
	"github.com/trickstercache/utmkeeper/pkg/proxy/handlers"
	"github.com/trickstercache/utmkeeper/pkg/proxy/listener"
	"github.com/trickstercache/utmkeeper/pkg/session"
	"github.com/trickstercache/utmkeeper/pkg/util/middleware"
	"github.com/trickstercache/utmkeeper/pkg/utm"

	"github.com/gorilla/mux"
)

const (
	frontendListenerName = "frontend"
	metricsListenerName  = "metrics"
	tracerShutdownWait   = 5 * time.Second
)

// serve runs utmkeeper with conf until ctx is done
func serve(ctx context.Context, conf *config.Config) error {
	metrics.BuildInfo.WithLabelValues(applicationGoVersion,
		applicationGitCommitID, applicationVersion).Set(1)

	logger := logging.New(conf.Logging, conf.Main.InstanceID)
	defer logger.Close()
	tl.SetLogger(logger)
	logger.Info("application loaded from configuration",
		logging.Pairs{
			"name":      applicationName,
			"version":   applicationVersion,
			"goVersion": applicationGoVersion,
			"goArch":    applicationGoArch,
			"commitID":  applicationGitCommitID,
			"buildTime": applicationBuildTime,
			"logLevel":  conf.Logging.LogLevel,
			"config":    conf.ConfigFilePath(),
		},
	)
	for _, w := range conf.LoaderWarnings {
		logger.Warn(w, nil)
	}

	tracer, err := tr.GetTracer(conf.Tracing, logger, false)
	if err != nil {
		logger.Error("tracing registration failed", logging.Pairs{"detail": err.Error()})
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), tracerShutdownWait)
		defer cancel()
		if err := tracer.Shutdown(sctx); err != nil {
			logger.Error("tracer shutdown failed", logging.Pairs{"detail": err.Error()})
		}
	}()

	caches, err := registration.LoadCachesFromConfig(conf.Caches, logger)
	if err != nil {
		logger.Error("cache registration failed", logging.Pairs{"detail": err.Error()})
		return err
	}
	defer func() {
		if err := registration.CloseCaches(caches); err != nil {
			logger.Error("cache close failed", logging.Pairs{"detail": err.Error()})
		}
	}()

	store, err := session.New(caches[conf.Session.CacheName], conf.Session, logger)
	if err != nil {
		return err
	}

	lg := listener.NewListenerGroup(logger)
	err = lg.AddListener(frontendListenerName, conf.Frontend.ListenAddress,
		conf.Frontend.ListenPort, conf.Frontend.ConnectionsLimit,
		newFrontendRouter(conf, store, utm.NewPersistor(logger, tracer), tracer, logger),
		conf.Frontend.ReadHeaderTimeout)
	if err != nil {
		return err
	}
	if conf.Metrics.ListenPort > 0 {
		err = lg.AddListener(metricsListenerName, conf.Metrics.ListenAddress,
			conf.Metrics.ListenPort, 0, newMetricsRouter(conf, logger),
			conf.Frontend.ReadHeaderTimeout)
		if err != nil {
			lg.DrainAndClose(frontendListenerName, time.Second)
			return err
		}
	}

	metrics.LastConfigLoadSuccessfulTimestamp.SetToCurrentTime()
	err = lg.Serve(ctx, conf.Frontend.DrainTimeout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("utmkeeper stopped", nil)
	return nil
}

func pprofOn(conf *config.Config, listenerName string) bool {
	return conf.Main.PprofServer == "both" || conf.Main.PprofServer == listenerName
}

// newFrontendRouter returns the router for the frontend listener: the
// admin handlers, then every other request through the persist middleware
// to the origin
func newFrontendRouter(conf *config.Config, store *session.Store,
	persistor *utm.Persistor, tracer *tracing.Tracer, logger logging.Logger) http.Handler {

	router := mux.NewRouter()
	router.HandleFunc(conf.Main.PingHandlerPath, handlers.PingHandleFunc).
		Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(conf.Main.ConfigHandlerPath, handlers.ConfigHandleFunc(conf)).
		Methods(http.MethodGet)
	if pprofOn(conf, frontendListenerName) {
		pprof.RegisterRoutes(frontendListenerName, router, logger)
	}

	var h http.Handler = handlers.NewOriginProxy(conf.Origin.ParsedURL(), logger)
	h = handlers.PersistHandler(conf.Persist, store, persistor, logger, h)
	h = middleware.Trace(tracer, conf.Origin.Name, h)
	h = middleware.Decorate(conf.Origin.Name, "/", h)
	router.PathPrefix("/").Handler(h)
	return router
}

func newMetricsRouter(conf *config.Config, logger logging.Logger) http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if pprofOn(conf, metricsListenerName) {
		pprof.RegisterRoutes(metricsListenerName, router, logger)
	}
	return router
}
