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
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// KeyInjector adds a fixed (name, value) field to every incoming
// field.Map key before delegating, used to scope a shared backend by
// module UUID. Ported from src/pluginplay/cache/database/key_injector.hpp,
// generalized there (and here) to a single injected pair rather than an
// arbitrary map, since one pair is all the module cache pipeline needs.
type KeyInjector[V any] struct {
	inner        Store[field.Map, V]
	injectedName string
	injected     *field.Carrier
}

// NewKeyInjector wraps inner, injecting (name, value) into every key.
// Fails with ppliterrors.InvalidWrap if inner is nil.
func NewKeyInjector[V any](name string, value *field.Carrier, inner Store[field.Map, V]) (*KeyInjector[V], error) {
	if inner == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "key injector: nil inner store")
	}
	return &KeyInjector[V]{inner: inner, injectedName: name, injected: value}, nil
}

func (k *KeyInjector[V]) augment(key field.Map) field.Map {
	out := field.NewMap()
	for _, name := range key.Keys() {
		c, _ := key.Get(name)
		out.Set(name, c)
	}
	out.Set(k.injectedName, k.injected)
	return out
}

// Contains implements Store.
func (k *KeyInjector[V]) Contains(key field.Map) (bool, error) { return k.inner.Contains(k.augment(key)) }

// Insert implements Store.
func (k *KeyInjector[V]) Insert(key field.Map, value V) error {
	return k.inner.Insert(k.augment(key), value)
}

// Remove implements Store.
func (k *KeyInjector[V]) Remove(key field.Map) error { return k.inner.Remove(k.augment(key)) }

// Get implements Store.
func (k *KeyInjector[V]) Get(key field.Map) (Entry[V], error) { return k.inner.Get(k.augment(key)) }

// Checkpoint implements Store.
func (k *KeyInjector[V]) Checkpoint() error { return k.inner.Checkpoint() }

// Dump implements Store.
func (k *KeyInjector[V]) Dump() error { return k.inner.Dump() }
