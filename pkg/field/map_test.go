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

package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeysAreCaseInsensitiveAndSorted(t *testing.T) {
	m := NewMap()
	m.Set("Beta", NewOwnedConst(2))
	m.Set("alpha", NewOwnedConst(1))
	m.Set("GAMMA", NewOwnedConst(3))

	assert.Equal(t, []string{"alpha", "Beta", "GAMMA"}, m.Keys())

	c, ok := m.Get("BETA")
	require.True(t, ok)
	assert.Equal(t, 2, MustCastTo[int](c))
}

func TestMapCloneIsIndependent(t *testing.T) {
	m := NewMap()
	v := []int{1, 2}
	m.Set("v", NewBorrowed(&v))

	clone, err := m.Clone()
	require.NoError(t, err)

	v[0] = 99
	c, _ := clone.Get("v")
	assert.Equal(t, []int{1, 2}, MustCastTo[[]int](c))
}

func TestMapEqual(t *testing.T) {
	a := NewMap()
	a.Set("n", NewOwnedConst(1))
	b := NewMap()
	b.Set("n", NewOwnedMutable(1))
	assert.True(t, a.Equal(b))

	b.Set("n", NewOwnedConst(2))
	assert.False(t, a.Equal(b))
}

func TestMergeOverrideWins(t *testing.T) {
	base := NewMap()
	base.Set("n", NewOwnedConst(1))
	base.Set("m", NewOwnedConst(10))

	override := NewMap()
	override.Set("n", NewOwnedConst(2))

	merged := Merge(base, override)
	c, _ := merged.Get("n")
	assert.Equal(t, 2, MustCastTo[int](c))
	c, _ = merged.Get("m")
	assert.Equal(t, 10, MustCastTo[int](c))
}
