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

// Package ppliterrors defines the sentinel error kinds shared across the
// field, proptype, module and cache packages. Call sites wrap a sentinel with
// github.com/pkg/errors to add context and compare with errors.Is.
package ppliterrors

import "errors"

var (
	// Empty is returned when an operation needs a value but the carrier,
	// request, or shell holds none.
	Empty = errors.New("pluginplay: empty")

	// TypeMismatch is returned when a requested static type is incompatible
	// with the stored type, including read-only-to-mutable violations.
	TypeMismatch = errors.New("pluginplay: type mismatch")

	// UnknownName is returned when a field or submodule name was never
	// declared on the shell or property type being addressed.
	UnknownName = errors.New("pluginplay: unknown name")

	// Locked is returned when a mutation is attempted on a locked shell.
	Locked = errors.New("pluginplay: locked")

	// NotReady is returned when a readiness check fails.
	NotReady = errors.New("pluginplay: not ready")

	// PropertyTypeNotSatisfied is returned by RunAs when the requested
	// property type is not among the shell's satisfied set, or when a
	// submodule is bound to a module that does not satisfy it.
	PropertyTypeNotSatisfied = errors.New("pluginplay: property type not satisfied")

	// InputsNotReady is returned when one of the input overrides passed to
	// Run is itself an empty carrier.
	InputsNotReady = errors.New("pluginplay: input override not ready")

	// InvalidWrap is returned when an adapter is constructed around a nil
	// inner adapter.
	InvalidWrap = errors.New("pluginplay: invalid wrap")

	// BackendFailure wraps an error propagated from an external key/value
	// engine, unmodified in meaning but tagged with this sentinel for
	// errors.Is matching.
	BackendFailure = errors.New("pluginplay: backend failure")

	// CycleDetected is returned by Lock when the submodule graph being
	// locked contains a cycle. Not present in the original C++ taxonomy;
	// added per the REDESIGN/Design-Notes guidance that implementations may
	// cheaply detect cycles at lock time.
	CycleDetected = errors.New("pluginplay: cycle detected")
)
