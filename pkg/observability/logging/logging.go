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

// Package logging provides structured logfmt logging
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/trickstercache/utmkeeper/pkg/observability/logging/level"
	"github.com/trickstercache/utmkeeper/pkg/observability/logging/options"

	gkl "github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/go-stack/stack"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Pairs represents a key=value pair that helps to describe a log event
type Pairs map[string]any

// Logger is the application logger
type Logger interface {
	SetLogLevel(level.Level)
	Level() level.Level
	Close()
	//
	Debug(event string, detail Pairs)
	Info(event string, detail Pairs)
	Warn(event string, detail Pairs)
	Error(event string, detail Pairs)
	Fatal(code int, event string, detail Pairs)
	//
	InfoOnce(key, event string, detail Pairs) bool
	WarnOnce(key, event string, detail Pairs) bool
	ErrorOnce(key, event string, detail Pairs) bool
	HasWarnedOnce(key string) bool
}

const appName = "utmkeeper"

var _ Logger = &logger{}

type logger struct {
	base     gkl.Logger
	filtered gkl.Logger
	level    level.Level
	closer   io.Closer
	mtx      sync.RWMutex

	onceRanEntries sync.Map
	exit           func(int)
}

// New returns a Logger for the provided logging options. When a log file is
// configured and instanceID > 0, the instance ID is inserted into the file
// name so that multiple processes sharing a config write separate files.
func New(opts *options.Options, instanceID int) Logger {
	if opts == nil {
		opts = options.New()
	}
	var w io.Writer
	if opts.LogFile == "" {
		w = os.Stdout
	} else {
		logFile := opts.LogFile
		if instanceID > 0 {
			logFile = strings.Replace(logFile, ".log",
				"."+strconv.Itoa(instanceID)+".log", 1)
		}
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    256,  // megabytes
			MaxBackups: 80,   // 256 megs @ 80 backups is 20GB of Logs
			MaxAge:     7,    // days
			Compress:   true, // Compress Rolled Backups
		}
	}
	return newLogger(w, level.Level(opts.LogLevel))
}

// StreamLogger returns a Logger that writes to w
func StreamLogger(w io.Writer, logLevel level.Level) Logger {
	return newLogger(w, logLevel)
}

// ConsoleLogger returns a Logger that writes to stdout
func ConsoleLogger(logLevel level.Level) Logger {
	return newLogger(os.Stdout, logLevel)
}

// NoopLogger returns a Logger that discards everything
func NoopLogger() Logger {
	l := &logger{
		base:     gkl.NewNopLogger(),
		filtered: gkl.NewNopLogger(),
		level:    level.Info,
		exit:     func(int) {},
	}
	return l
}

func newLogger(w io.Writer, logLevel level.Level) *logger {
	base := gkl.NewLogfmtLogger(gkl.NewSyncWriter(w))
	base = gkl.With(base,
		"time", gkl.DefaultTimestampUTC,
		"app", appName,
		"caller", gkl.Valuer(caller),
	)
	l := &logger{base: base, exit: os.Exit}
	if c, ok := w.(io.Closer); ok && w != os.Stdout && w != os.Stderr {
		l.closer = c
	}
	l.SetLogLevel(logLevel)
	return l
}

func (l *logger) SetLogLevel(logLevel level.Level) {
	logLevel = level.Level(strings.ToLower(string(logLevel)))
	id := level.GetID(logLevel)
	if id == 0 {
		defer l.WarnOnce("loglevel."+string(logLevel),
			"unknown log level; using INFO",
			Pairs{"providedLevel": string(logLevel)})
		logLevel = level.Info
		id = level.InfoID
	}
	var opt kitlevel.Option
	switch id {
	case level.DebugID:
		opt = kitlevel.AllowDebug()
	case level.InfoID:
		opt = kitlevel.AllowInfo()
	case level.WarnID:
		opt = kitlevel.AllowWarn()
	case level.ErrorID:
		opt = kitlevel.AllowError()
	default:
		opt = kitlevel.AllowNone()
	}
	l.mtx.Lock()
	l.level = logLevel
	l.filtered = kitlevel.NewFilter(l.base, opt)
	l.mtx.Unlock()
}

func (l *logger) Level() level.Level {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.level
}

func (l *logger) current() gkl.Logger {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.filtered
}

func (l *logger) Debug(event string, detail Pairs) {
	kitlevel.Debug(l.current()).Log(keyvals(event, detail)...)
}

func (l *logger) Info(event string, detail Pairs) {
	kitlevel.Info(l.current()).Log(keyvals(event, detail)...)
}

func (l *logger) Warn(event string, detail Pairs) {
	kitlevel.Warn(l.current()).Log(keyvals(event, detail)...)
}

func (l *logger) Error(event string, detail Pairs) {
	kitlevel.Error(l.current()).Log(keyvals(event, detail)...)
}

// Fatal logs regardless of the level and exits with code. A negative code
// logs without exiting.
func (l *logger) Fatal(code int, event string, detail Pairs) {
	gkl.WithPrefix(l.base, kitlevel.Key(), string(level.Fatal)).
		Log(keyvals(event, detail)...)
	if code < 0 {
		return
	}
	if code == 0 {
		code = 1
	}
	l.exit(code)
}

func (l *logger) logOnce(lvl level.Level, key, event string, detail Pairs) bool {
	key = string(lvl) + "." + key
	if _, loaded := l.onceRanEntries.LoadOrStore(key, true); loaded {
		return false
	}
	switch lvl {
	case level.Info:
		l.Info(event, detail)
	case level.Warn:
		l.Warn(event, detail)
	default:
		l.Error(event, detail)
	}
	return true
}

func (l *logger) InfoOnce(key, event string, detail Pairs) bool {
	return l.logOnce(level.Info, key, event, detail)
}

func (l *logger) WarnOnce(key, event string, detail Pairs) bool {
	return l.logOnce(level.Warn, key, event, detail)
}

func (l *logger) ErrorOnce(key, event string, detail Pairs) bool {
	return l.logOnce(level.Error, key, event, detail)
}

func (l *logger) HasWarnedOnce(key string) bool {
	_, ok := l.onceRanEntries.Load(string(level.Warn) + "." + key)
	return ok
}

func (l *logger) Close() {
	if l.closer != nil {
		l.closer.Close()
	}
}

// keyvals flattens the event and its detail into go-kit key/value order,
// with the event first and the detail keys sorted
func keyvals(event string, detail Pairs) []any {
	out := make([]any, 0, 2+len(detail)*2)
	out = append(out, "event", strings.TrimSpace(event))
	if len(detail) == 0 {
		return out
	}
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k, detail[k])
	}
	return out
}

const modulePath = "github.com/trickstercache/utmkeeper/"

// caller returns the first frame outside of the logging stack, relative to
// the module root
func caller() any {
	for _, c := range stack.Trace().TrimRuntime() {
		s := fmt.Sprintf("%+v", c)
		if strings.Contains(s, "/pkg/observability/logging") ||
			strings.Contains(s, "github.com/go-kit/log") ||
			strings.Contains(s, "github.com/go-stack/stack") {
			continue
		}
		return strings.TrimPrefix(s, modulePath)
	}
	return ""
}
