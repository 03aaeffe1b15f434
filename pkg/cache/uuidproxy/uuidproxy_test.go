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

package uuidproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

func TestMapperEnsureIsStableForEqualValues(t *testing.T) {
	m := NewMapper()

	id1, err := m.Ensure(field.NewOwnedConst(42))
	require.NoError(t, err)
	id2, err := m.Ensure(field.NewOwnedConst(42))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := m.Ensure(field.NewOwnedConst(43))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	c, ok := m.Lookup(id1)
	require.True(t, ok)
	assert.Equal(t, 42, field.MustCastTo[int](c))

	_, ok = m.Lookup("not-a-real-uuid")
	assert.False(t, ok)
}

func TestMakerProxyAndUnproxyRoundTrip(t *testing.T) {
	mapper := NewMapper()
	maker := NewMaker(mapper)

	original := field.NewMap()
	original.Set("n", field.NewOwnedConst(1))
	original.Set("s", field.NewOwnedConst("hello"))

	proxy, err := maker.Proxy(original)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "s"}, proxy.Keys())

	for _, name := range proxy.Keys() {
		c, _ := proxy.Get(name)
		_, err := field.CastTo[string](c)
		assert.NoError(t, err, "every proxied value must be a uuid string")
	}

	restored, err := maker.Unproxy(proxy)
	require.NoError(t, err)
	assert.True(t, original.Equal(restored))
}

func TestMakerUnproxyUnknownMap(t *testing.T) {
	maker := NewMaker(NewMapper())
	unknown := field.NewMap()
	unknown.Set("n", field.NewOwnedConst("some-uuid"))

	_, err := maker.Unproxy(unknown)
	assert.ErrorIs(t, err, ErrUnknownProxy)
}

func TestMakerSharedMapperReusesUUIDs(t *testing.T) {
	mapper := NewMapper()
	makerA := NewMaker(mapper)
	makerB := NewMaker(mapper)

	mA := field.NewMap()
	mA.Set("n", field.NewOwnedConst(7))
	mB := field.NewMap()
	mB.Set("n", field.NewOwnedConst(7))

	proxyA, err := makerA.Proxy(mA)
	require.NoError(t, err)
	proxyB, err := makerB.Proxy(mB)
	require.NoError(t, err)

	assert.True(t, proxyA.Equal(proxyB), "identical values shared across makers must proxy to the same uuid")
}
