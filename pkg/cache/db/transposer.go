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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// Transposer wraps a V->K adapter to present a K->V interface, for the
// case where the backend is optimized for small keys but the natural
// mapping has a large key and a small value. Because the wrapped map
// cannot enumerate by value efficiently, Transposer keeps its own set of
// known values (its own "keys").
//
// Ported from src/pluginplay/database/detail_/transposer.hpp: inserting
// two different K under colliding V silently overwrites the wrapped
// entry, exactly as the original documents; Transposer does nothing to
// prevent this.
type Transposer[K comparable, V comparable] struct {
	inner Store[V, K]
	known mapset.Set[V]
}

// NewTransposer wraps inner, failing with ppliterrors.InvalidWrap if it is
// nil.
func NewTransposer[K comparable, V comparable](inner Store[V, K]) (*Transposer[K, V], error) {
	if inner == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "transposer: nil inner store")
	}
	return &Transposer[K, V]{inner: inner, known: mapset.NewSet[V]()}, nil
}

// Contains implements Store by scanning known values for one that maps to
// key.
func (t *Transposer[K, V]) Contains(key K) (bool, error) {
	_, ok, err := t.find(key)
	return ok, err
}

func (t *Transposer[K, V]) find(key K) (V, bool, error) {
	var zero V
	for v := range t.known.Iter() {
		e, err := t.inner.Get(v)
		if err != nil && err != ErrNotFound {
			return zero, false, err
		}
		if err == nil && e.Value == key {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// Insert implements Store: stores key in the wrapped database under
// value, and records value in the known-value set.
func (t *Transposer[K, V]) Insert(key K, value V) error {
	if err := t.inner.Insert(value, key); err != nil {
		return err
	}
	t.known.Add(value)
	return nil
}

// Remove implements Store: frees whichever known value currently maps to
// key.
func (t *Transposer[K, V]) Remove(key K) error {
	v, ok, err := t.find(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := t.inner.Remove(v); err != nil {
		return err
	}
	t.known.Remove(v)
	return nil
}

// Get implements Store: returns the known value that maps to key.
func (t *Transposer[K, V]) Get(key K) (Entry[V], error) {
	v, ok, err := t.find(key)
	if err != nil {
		return Entry[V]{}, err
	}
	if !ok {
		return Entry[V]{}, ErrNotFound
	}
	return Entry[V]{Value: v, Owned: true}, nil
}

// Checkpoint implements Store by delegating to the wrapped database.
func (t *Transposer[K, V]) Checkpoint() error { return t.inner.Checkpoint() }

// Dump implements Store: dumps the wrapped database and clears the
// known-value set.
func (t *Transposer[K, V]) Dump() error {
	if err := t.inner.Dump(); err != nil {
		return err
	}
	t.known.Clear()
	return nil
}
