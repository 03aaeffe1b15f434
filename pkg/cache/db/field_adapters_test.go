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

package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/uuidproxy"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

// valueKey renders a field.Map from its values (field.KeyOf) rather than
// Map.String(), whose carriers print a pointer address for types such as
// int and string and so differ between value-equal carriers.
func valueKey(m field.Map) (string, error) {
	var b strings.Builder
	for _, name := range m.Keys() {
		c, _ := m.Get(name)
		k := field.KeyOf(c)
		b.WriteString(name + "=" + k.TypeTag + ":" + k.Repr + ";")
	}
	return b.String(), nil
}

func TestKeyInjectorAugmentsEveryKey(t *testing.T) {
	memory := NewInMemory[string, string](nil)
	encode := valueKey
	serialized, err := NewSerializing[field.Map, int](memory, encode, nil)
	require.NoError(t, err)

	injected, err := NewKeyInjector[int]("module", field.NewOwnedConst("mod-1"), serialized)
	require.NoError(t, err)

	key := field.NewMap()
	key.Set("n", field.NewOwnedConst(1))

	require.NoError(t, injected.Insert(key, 42))
	ok, err := injected.Contains(key)
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := injected.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 42, entry.Value)

	// The raw serialized key must carry the injected field, so a caller
	// bypassing KeyInjector would see a different entry entirely.
	other := field.NewMap()
	other.Set("n", field.NewOwnedConst(1))
	other.Set("module", field.NewOwnedConst("mod-1"))
	rawKey, err := encode(other)
	require.NoError(t, err)
	ok, err = memory.Contains(rawKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTypeEraserWrapsAndEnumerates(t *testing.T) {
	memory := NewInMemory[field.Key, string](nil)
	wrap := func(n int) (*field.Carrier, error) { return field.NewOwnedConst(n), nil }
	unwrap := func(c *field.Carrier) (int, error) { return field.CastTo[int](c) }

	eraser, err := NewTypeEraser[int, string](memory, wrap, unwrap)
	require.NoError(t, err)

	require.NoError(t, eraser.Insert(7, "seven"))
	ok, err := eraser.Contains(7)
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := eraser.Keys()
	require.NoError(t, err)
	assert.Equal(t, []int{7}, keys)

	require.NoError(t, eraser.Remove(7))
	keys, err = eraser.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKeyAndValueProxyMappersRoundTrip(t *testing.T) {
	memory := NewInMemory[string, string](nil)
	mapper := uuidproxy.NewMapper()
	maker := uuidproxy.NewMaker(mapper)

	encode := valueKey
	serialized, err := NewSerializing[field.Map, string](memory, encode, nil)
	require.NoError(t, err)

	keyed, err := NewKeyProxyMapper[string](serialized, maker)
	require.NoError(t, err)

	valued, err := NewValueProxyMapper[field.Map](keyed, mapper)
	require.NoError(t, err)

	key := field.NewMap()
	key.Set("n", field.NewOwnedConst(1))

	require.NoError(t, valued.Insert(key, field.NewOwnedConst("result")))
	ok, err := valued.Contains(key)
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := valued.Get(key)
	require.NoError(t, err)
	got, err := field.CastTo[string](entry.Value)
	require.NoError(t, err)
	assert.Equal(t, "result", got)
}
