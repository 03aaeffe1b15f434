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

// Package module implements the submodule request (component C) and the
// module execution shell (component G): the per-module state machine that
// validates readiness, locks bound configuration, memoizes on inputs, and
// records call timing. Grounded on the lifecycle/locking shape of
// pkg/tfbridge's provider and the callback-binding/dispatch shape of
// x/muxer, generalized from routing a fixed token set to binding one
// named submodule per callback point.
package module

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// SubmoduleRequest holds the property-type contract for one callback point
// on a module, and optionally the module bound to satisfy it. Ported from
// src/pluginplay/submodule_request.hpp.
type SubmoduleRequest struct {
	mu sync.Mutex

	expectedPropertyType string
	representativeInputs field.Map
	boundModule           *Shell
	description           string
	locked                bool
}

// NewSubmoduleRequest returns an unset submodule request, optionally
// described by desc.
func NewSubmoduleRequest(desc string) *SubmoduleRequest {
	return &SubmoduleRequest{description: desc}
}

// SetExpectedType sets or refines the property type this request expects
// its bound module to satisfy, along with representative (sentinel,
// typed-but-unset) inputs used for readiness checks without real data.
// Fails ppliterrors.Locked if the request is itself locked, or
// ppliterrors.TypeMismatch (tagged as "TypeLocked" in meaning, per
// spec.md §3.4) if a bound module does not satisfy the new type.
func (r *SubmoduleRequest) SetExpectedType(propertyTypeID string, representativeInputs field.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return errors.Wrap(ppliterrors.Locked, "submodule request: already locked")
	}
	if r.boundModule != nil && !r.boundModule.satisfies(propertyTypeID) {
		return errors.Wrapf(ppliterrors.TypeMismatch,
			"submodule request: bound module does not satisfy property type %q", propertyTypeID)
	}
	r.expectedPropertyType = propertyTypeID
	r.representativeInputs = representativeInputs
	return nil
}

// Bind attaches m as the module satisfying this request. Rejects a nil
// module and rejects a module that does not advertise expectedPropertyType
// among its satisfied property types.
func (r *SubmoduleRequest) Bind(m *Shell) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return errors.Wrap(ppliterrors.Locked, "submodule request: already locked")
	}
	if m == nil {
		return errors.Wrap(ppliterrors.Empty, "submodule request: cannot bind a nil module")
	}
	if r.expectedPropertyType == "" {
		return errors.Wrap(ppliterrors.UnknownName, "submodule request: no expected property type set")
	}
	if !m.satisfies(r.expectedPropertyType) {
		return errors.Wrapf(ppliterrors.PropertyTypeNotSatisfied,
			"submodule request: bound module does not satisfy property type %q", r.expectedPropertyType)
	}
	r.boundModule = m
	return nil
}

// Description returns the request's free-text description, if any.
func (r *SubmoduleRequest) Description() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.description
}

// ExpectedPropertyType returns the property type this request expects its
// bound module to satisfy, or "" if unset.
func (r *SubmoduleRequest) ExpectedPropertyType() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expectedPropertyType
}

// BoundModule returns the module bound to this request, or nil.
func (r *SubmoduleRequest) BoundModule() *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boundModule
}

// Ready reports whether this request is ready to participate in a run:
// expectedPropertyType is set, a module is bound, and that module reports
// ready given this request's representative inputs.
func (r *SubmoduleRequest) Ready() bool {
	return r.readyVisited(mapset.NewSet[*Shell]())
}

// readyVisited is Ready, threading a visited set of shell pointers
// through the submodule graph so that a cycle (which the graph is
// assumed never to contain, per spec.md §9 "Cyclic ownership risks")
// reports not-ready instead of recursing forever. A shell reachable from
// itself can never actually satisfy every ready() check down its own
// chain, so treating a revisited shell as not-ready is the correct
// answer, not just a safety valve.
func (r *SubmoduleRequest) readyVisited(visited mapset.Set[*Shell]) bool {
	r.mu.Lock()
	bound := r.boundModule
	set := r.expectedPropertyType != ""
	repInputs := r.representativeInputs
	r.mu.Unlock()

	if !set || bound == nil {
		return false
	}
	return bound.readyVisited(repInputs, visited)
}

// repInputsSnapshot returns a copy of the representative inputs used for
// readiness checks, safe to read without the caller holding any lock.
func (r *SubmoduleRequest) repInputsSnapshot() field.Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.representativeInputs
}

// markLocked flips this request to locked; it does not lock the bound
// module, which Shell.lockVisited locks itself before calling markLocked.
// Callers must have already verified readiness of every submodule request
// on the owning shell before calling markLocked on any of them,
// preserving the shell's strong lock-atomicity guarantee.
func (r *SubmoduleRequest) markLocked() {
	r.mu.Lock()
	r.locked = true
	r.mu.Unlock()
}

// IsLocked reports whether this request has been locked.
func (r *SubmoduleRequest) IsLocked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked
}
