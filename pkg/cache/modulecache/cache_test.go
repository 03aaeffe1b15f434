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

package modulecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/uuidproxy"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

func sampleKey(n int) field.Map {
	m := field.NewMap()
	m.Set("n", field.NewOwnedConst(n))
	return m
}

func TestCacheInsertContainsGet(t *testing.T) {
	c, err := New("mod-1")
	require.NoError(t, err)

	key := sampleKey(1)
	ok, err := c.Contains(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Insert(key, field.NewOwnedConst("result-1")))

	ok, err = c.Contains(key)
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := c.Get(key)
	require.NoError(t, err)
	got, err := field.CastTo[string](entry.Value)
	require.NoError(t, err)
	assert.Equal(t, "result-1", got)
}

func TestCacheScopesByModuleUUID(t *testing.T) {
	mapper := uuidproxy.NewMapper()
	a, err := New("mod-a", WithSharedUUIDMapper(mapper))
	require.NoError(t, err)
	b, err := New("mod-b", WithSharedUUIDMapper(mapper))
	require.NoError(t, err)

	key := sampleKey(1)
	require.NoError(t, a.Insert(key, field.NewOwnedConst("a-result")))

	ok, err := b.Contains(key)
	require.NoError(t, err)
	assert.False(t, ok, "identical inputs in a different module's cache must not collide")
}

func TestCacheRemove(t *testing.T) {
	c, err := New("mod-remove")
	require.NoError(t, err)

	key := sampleKey(1)
	require.NoError(t, c.Insert(key, field.NewOwnedConst("x")))
	require.NoError(t, c.Remove(key))

	ok, err := c.Contains(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheDumpClearsLiveLayer(t *testing.T) {
	c, err := New("mod-dump")
	require.NoError(t, err)

	key := sampleKey(1)
	require.NoError(t, c.Insert(key, field.NewOwnedConst("x")))
	require.NoError(t, c.Dump())

	ok, err := c.Contains(key)
	require.NoError(t, err)
	assert.False(t, ok)
}
