// Copyright 2016-2018, Pulumi Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package plog is the ambient, context-scoped logger used across
// pluginplay-go. It wraps github.com/hashicorp/go-hclog the way
// unstable/logging.InitLogging wraps hclog for the Pulumi host log, minus
// the gRPC-host/URN plumbing that package needs and this one does not:
// the module execution shell logs its own identity and call count as
// structured fields instead of a resource URN.
package plog

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"
)

// envVar controls default verbosity, mirroring the teacher's TF_LOG
// environment variable convention but scoped to this framework.
const envVar = "PLUGINPLAY_LOG"

type ctxKey struct{}

// CtxKey is the context key under which FromContext/WithLogger store a
// Logger.
var CtxKey = ctxKey{}

// Logger is the leveled logging interface module execution shells and
// cache adapters log against.
type Logger = hclog.Logger

// New returns a root Logger named name, with verbosity taken from the
// PLUGINPLAY_LOG environment variable (TRACE, DEBUG, INFO, WARN, ERROR,
// OFF); defaults to Warn, matching the teacher's choice that INFO-level
// framework-internal logs are too noisy for a default run.
func New(name string) Logger {
	level := hclog.LevelFromString(os.Getenv(envVar))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           level,
		IncludeLocation: true,
		JSONFormat:      false,
	})
}

// Null returns a Logger that discards everything, used as the default for
// shells constructed without an explicit logger.
func Null() Logger { return hclog.NewNullLogger() }

// WithLogger returns a copy of ctx carrying logger, retrievable with
// FromContext.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, CtxKey, logger)
}

// FromContext returns the Logger stored in ctx by WithLogger, or Null()
// if none was stored.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(CtxKey).(Logger); ok && l != nil {
		return l
	}
	return Null()
}
