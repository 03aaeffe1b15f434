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

package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/modulecache"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// incrementImpl computes r = n + bump, where bump is swappable in-place
// to prove memoized calls never re-invoke the body.
type incrementImpl struct {
	name string
	bump int
}

func (i *incrementImpl) Identity() string                                  { return i.name }
func (i *incrementImpl) PropertyTypes() []string                           { return []string{"increment"} }
func (i *incrementImpl) DefaultSubmodules() map[string]*SubmoduleRequest   { return nil }
func (i *incrementImpl) Memoizable() bool                                  { return true }

func (i *incrementImpl) DefaultInputs() field.Map {
	m := field.NewMap()
	m.Set("n", field.NewOwnedConst(1))
	return m
}

func (i *incrementImpl) ResultSchema() field.Map {
	m := field.NewMap()
	m.Set("r", field.Empty())
	return m
}

func (i *incrementImpl) Run(inputs field.Map, _ SubmoduleMap) (field.Map, error) {
	n, _ := inputs.Get("n")
	nv, _ := field.CastTo[int](n)
	out := field.NewMap()
	out.Set("r", field.NewOwnedConst(nv+i.bump))
	return out, nil
}

func newMemoizedShell(t *testing.T, uuid string, bump int) (*Shell, *modulecache.Cache) {
	t.Helper()
	cache, err := modulecache.New(uuid)
	require.NoError(t, err)
	sh, err := New(&incrementImpl{name: "increment", bump: bump}, WithUUID(uuid), WithCache(cache))
	require.NoError(t, err)
	return sh, cache
}

// S3 (memoization): a call is memoized, and swapping the body afterward
// does not change the second call's result.
func TestRunMemoizes(t *testing.T) {
	sh, _ := newMemoizedShell(t, "mod-S3", 1)

	in := field.NewMap()
	in.Set("n", field.NewOwnedConst(1))
	out, err := sh.Run(in)
	require.NoError(t, err)
	r, _ := out.Get("r")
	rv, _ := field.CastTo[int](r)
	assert.Equal(t, 2, rv)

	sh.impl.(*incrementImpl).bump = 1000

	out2, err := sh.Run(in)
	require.NoError(t, err)
	r2, _ := out2.Get("r")
	rv2, _ := field.CastTo[int](r2)
	assert.Equal(t, 2, rv2, "second call must return the memoized result, not a recomputation")
}

// Testable property 6 / SPEC_FULL S-equivalent: a shell with no cache
// handle never memoizes, so the body runs every time.
func TestRunWithoutCacheNeverMemoizes(t *testing.T) {
	impl := &incrementImpl{name: "no-cache", bump: 1}
	sh, err := New(impl)
	require.NoError(t, err)

	in := field.NewMap()
	in.Set("n", field.NewOwnedConst(1))
	_, err = sh.Run(in)
	require.NoError(t, err)

	impl.bump = 41
	out, err := sh.Run(in)
	require.NoError(t, err)
	r, _ := out.Get("r")
	rv, _ := field.CastTo[int](r)
	assert.Equal(t, 42, rv)
}

// requiredInputImpl declares one required (no-default) input and one
// submodule callback point, for readiness-diagnosis tests.
type requiredInputImpl struct{}

func (requiredInputImpl) Identity() string        { return "required-input" }
func (requiredInputImpl) PropertyTypes() []string { return nil }
func (requiredInputImpl) Memoizable() bool         { return false }

func (requiredInputImpl) DefaultInputs() field.Map {
	m := field.NewMap()
	m.Set("n", field.Empty())
	return m
}

func (requiredInputImpl) DefaultSubmodules() map[string]*SubmoduleRequest {
	return map[string]*SubmoduleRequest{"sub": NewSubmoduleRequest("")}
}

func (requiredInputImpl) ResultSchema() field.Map { return field.NewMap() }

func (requiredInputImpl) Run(inputs field.Map, subs SubmoduleMap) (field.Map, error) {
	return field.NewMap(), nil
}

// S4 (not-ready diagnosis).
func TestDiagnoseNotReady(t *testing.T) {
	sh, err := New(requiredInputImpl{})
	require.NoError(t, err)

	d := sh.DiagnoseNotReady(field.NewMap())
	require.NotNil(t, d)
	assert.Contains(t, d.UnsetInputs, "n")
	assert.Contains(t, d.UnreadySubmodules, "sub")

	childImpl := &incrementImpl{name: "child", bump: 1}
	child, err := New(childImpl)
	require.NoError(t, err)
	require.NoError(t, child.AddPropertyType("x"))

	req, ok := sh.Submodule("sub")
	require.True(t, ok)
	require.NoError(t, req.SetExpectedType("x", child.inputs))
	require.NoError(t, req.Bind(child))

	extra := field.NewMap()
	extra.Set("n", field.NewOwnedConst(1))
	assert.Nil(t, sh.DiagnoseNotReady(extra))
}

// S5 (lock atomicity): a parent whose submodule is bound to a not-ready
// child fails Lock with NotReady and leaves the parent unlocked.
func TestLockAtomicityOnUnreadySubmodule(t *testing.T) {
	parent, err := New(requiredInputImpl{})
	require.NoError(t, err)

	childImpl := &incrementImpl{name: "child", bump: 1}
	// childImpl declares "n" with a default, so the child alone is
	// ready; make it not-ready by requiring an extra submodule the
	// parent never binds.
	notReadyChild, err := New(requiredInputImpl{})
	require.NoError(t, err)
	require.NoError(t, notReadyChild.AddPropertyType("x"))
	_ = childImpl

	req, ok := parent.Submodule("sub")
	require.True(t, ok)
	require.NoError(t, req.SetExpectedType("x", field.NewMap()))
	require.NoError(t, req.Bind(notReadyChild))

	err = parent.Lock()
	assert.ErrorIs(t, err, ppliterrors.NotReady)
	assert.False(t, parent.IsLocked())
	assert.False(t, notReadyChild.IsLocked())
}

// S7 (cycle detection): binding two shells' submodules to each other
// fails Lock with CycleDetected and leaves both shells unlocked.
func TestLockDetectsCycles(t *testing.T) {
	implA := requiredInputImplNoInput{}
	implB := requiredInputImplNoInput{}

	a, err := New(implA)
	require.NoError(t, err)
	require.NoError(t, a.AddPropertyType("pt"))

	b, err := New(implB)
	require.NoError(t, err)
	require.NoError(t, b.AddPropertyType("pt"))

	reqA, _ := a.Submodule("sub")
	require.NoError(t, reqA.SetExpectedType("pt", field.NewMap()))
	require.NoError(t, reqA.Bind(b))

	reqB, _ := b.Submodule("sub")
	require.NoError(t, reqB.SetExpectedType("pt", field.NewMap()))
	require.NoError(t, reqB.Bind(a))

	err = a.Lock()
	assert.ErrorIs(t, err, ppliterrors.CycleDetected)
	assert.False(t, a.IsLocked())
	assert.False(t, b.IsLocked())
}

// requiredInputImplNoInput is like requiredInputImpl but with no
// required inputs of its own, so readiness hinges only on its
// submodule — needed to isolate cycle detection from unrelated
// not-ready inputs in TestLockDetectsCycles.
type requiredInputImplNoInput struct{}

func (requiredInputImplNoInput) Identity() string        { return "cycle-node" }
func (requiredInputImplNoInput) PropertyTypes() []string { return nil }
func (requiredInputImplNoInput) Memoizable() bool         { return false }
func (requiredInputImplNoInput) DefaultInputs() field.Map { return field.NewMap() }

func (requiredInputImplNoInput) DefaultSubmodules() map[string]*SubmoduleRequest {
	return map[string]*SubmoduleRequest{"sub": NewSubmoduleRequest("")}
}

func (requiredInputImplNoInput) ResultSchema() field.Map { return field.NewMap() }

func (requiredInputImplNoInput) Run(inputs field.Map, subs SubmoduleMap) (field.Map, error) {
	return field.NewMap(), nil
}

// Run with an input override that is itself empty fails InputsNotReady.
func TestRunRejectsEmptyOverride(t *testing.T) {
	sh, _ := newMemoizedShell(t, "mod-empty-override", 1)
	overrides := field.NewMap()
	overrides.Set("n", field.Empty())
	_, err := sh.Run(overrides)
	assert.ErrorIs(t, err, ppliterrors.InputsNotReady)
}

func TestChangeInputRejectedWhenLocked(t *testing.T) {
	sh, _ := newMemoizedShell(t, "mod-locked", 1)
	require.NoError(t, sh.Lock())
	err := sh.ChangeInput("n", field.NewOwnedConst(2))
	assert.ErrorIs(t, err, ppliterrors.Locked)
}

func TestProfileInfoIncludesSubmoduleTrace(t *testing.T) {
	parentImpl := requiredInputImplNoInput{}
	parent, err := New(parentImpl)
	require.NoError(t, err)
	require.NoError(t, parent.AddPropertyType("pt"))

	childSh, cache := newMemoizedShell(t, "mod-profile-child", 1)
	_ = cache

	req, _ := parent.Submodule("sub")
	require.NoError(t, req.SetExpectedType("increment", field.NewMap()))
	require.NoError(t, req.Bind(childSh))

	in := field.NewMap()
	in.Set("n", field.NewOwnedConst(5))
	_, err = childSh.Run(in)
	require.NoError(t, err)

	info := parent.ProfileInfo()
	assert.Contains(t, info, "cycle-node")
	assert.Contains(t, info, "submodule \"sub\":")
	assert.Contains(t, info, "  module increment: 1 call(s)")
}
