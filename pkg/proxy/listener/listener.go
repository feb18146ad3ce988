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

// Package listener provides the observed, connection-limited http listeners
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging"
	tl "github.com/trickstercache/utmkeeper/pkg/observability/logging/logger"
	"github.com/trickstercache/utmkeeper/pkg/observability/metrics"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoSuchListener indicates the named listener is not in the group
	ErrNoSuchListener = errors.New("no such listener")
	// ErrListenerExists indicates the name is already used in the group
	ErrListenerExists = errors.New("listener already exists")
)

// Listener is the utmkeeper net.Listener implementation
type Listener struct {
	net.Listener
	server *http.Server
}

// observedConnection releases its connection metrics once, on the first Close
type observedConnection struct {
	net.Conn
	closeOnce sync.Once
}

func (o *observedConnection) Close() error {
	err := o.Conn.Close()
	o.closeOnce.Do(func() {
		metrics.ProxyActiveConnections.Dec()
		metrics.ProxyConnectionClosed.Inc()
	})
	return err
}

// Accept implements Listener.Accept
func (l *Listener) Accept() (net.Conn, error) {

	metrics.ProxyConnectionRequested.Inc()

	c, err := l.Listener.Accept()
	if err != nil {
		metrics.ProxyConnectionFailed.Inc()
		return c, err
	}

	metrics.ProxyActiveConnections.Inc()
	metrics.ProxyConnectionAccepted.Inc()

	return &observedConnection{Conn: c}, nil
}

// NewListener creates a new network listener which obeys the configured max
// connection limit. Accepts beyond the limit block until a connection closes.
func NewListener(listenAddress string, listenPort, connectionsLimit int,
	logger logging.Logger) (net.Listener, error) {

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", listenAddress, listenPort))
	if err != nil {
		// this usually means that the port is in use
		return nil, err
	}

	if connectionsLimit > 0 {
		listener = netutil.LimitListener(listener, connectionsLimit)
		metrics.ProxyMaxConnections.Set(float64(connectionsLimit))
	}

	if logger != nil {
		logger.Debug("starting proxy listener", logging.Pairs{
			"connectionsLimit": connectionsLimit,
			"address":          listenAddress,
			"port":             listenPort,
		})
	}

	return listener, nil
}

// ListenerGroup is a collection of listeners served and shut down together
type ListenerGroup struct {
	members       map[string]*Listener
	listenersLock sync.Mutex
	logger        logging.Logger
}

// NewListenerGroup returns a new ListenerGroup
func NewListenerGroup(logger logging.Logger) *ListenerGroup {
	if logger == nil {
		logger = tl.Logger()
	}
	return &ListenerGroup{
		members: make(map[string]*Listener),
		logger:  logger,
	}
}

// Get returns the listener if it exists
func (lg *ListenerGroup) Get(name string) *Listener {
	lg.listenersLock.Lock()
	defer lg.listenersLock.Unlock()
	return lg.members[name]
}

// AddListener binds a new listener serving handler and adds it to the group.
// It does not start serving until Serve is called.
func (lg *ListenerGroup) AddListener(listenerName, address string, port,
	connectionsLimit int, handler http.Handler, readHeaderTimeout time.Duration) error {

	lg.listenersLock.Lock()
	defer lg.listenersLock.Unlock()
	if _, ok := lg.members[listenerName]; ok {
		return ErrListenerExists
	}

	nl, err := NewListener(address, port, connectionsLimit, lg.logger)
	if err != nil {
		lg.logger.Error("http listener startup failed",
			logging.Pairs{"listenerName": listenerName, "detail": err})
		return err
	}
	lg.members[listenerName] = &Listener{
		Listener: nl,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
	return nil
}

func (lg *ListenerGroup) names() []string {
	lg.listenersLock.Lock()
	defer lg.listenersLock.Unlock()
	names := make([]string, 0, len(lg.members))
	for k := range lg.members {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Serve serves every listener in the group until ctx is done or one of them
// fails, then shuts all of them down, allowing drainTimeout for in-flight
// requests to finish
func (lg *ListenerGroup) Serve(ctx context.Context, drainTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range lg.names() {
		l := lg.Get(name)
		g.Go(func() error {
			lg.logger.Info("http listener starting",
				logging.Pairs{"listenerName": name, "address": l.Addr().String()})
			err := l.server.Serve(l)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.logger.Error("http listener stopping",
					logging.Pairs{"listenerName": name, "detail": err})
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		return lg.Shutdown(sctx)
	})
	return g.Wait()
}

// Shutdown gracefully shuts down every listener in the group
func (lg *ListenerGroup) Shutdown(ctx context.Context) error {
	var errs []error
	for _, name := range lg.names() {
		l := lg.Get(name)
		if err := l.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		lg.logger.Info("http listener stopped", logging.Pairs{"listenerName": name})
	}
	return errors.Join(errs...)
}

// DrainAndClose shuts down the named listener and removes it from the group
func (lg *ListenerGroup) DrainAndClose(listenerName string, drainWait time.Duration) error {
	lg.listenersLock.Lock()
	l, ok := lg.members[listenerName]
	if !ok || l == nil {
		lg.listenersLock.Unlock()
		return ErrNoSuchListener
	}
	delete(lg.members, listenerName)
	lg.listenersLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), drainWait)
	defer cancel()
	err := l.server.Shutdown(ctx)
	if cerr := l.Listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		err = errors.Join(err, cerr)
	}
	return err
}
