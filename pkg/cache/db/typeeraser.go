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
	"sync"

	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// TypeEraser wraps a field.Key->V adapter to present a K->V interface for
// an arbitrary user type K, converting each incoming K to a field.Carrier
// via a user-supplied Wrap function before delegating.
//
// field.Key (not *field.Carrier) is used as the wrapped adapter's key
// because it is comparable and value-derived: two carriers holding equal
// values must collide in the key space, which a pointer-identity key
// could never guarantee. TypeEraser keeps its own seen map from
// field.Key to the carrier that produced it so Keys() can enumerate and
// unwrap entries the wrapped adapter alone has no way to reconstruct K
// from.
type TypeEraser[K any, V any] struct {
	mu     sync.Mutex
	inner  Store[field.Key, V]
	wrap   func(K) (*field.Carrier, error)
	unwrap func(*field.Carrier) (K, error)
	seen   map[field.Key]*field.Carrier
}

// NewTypeEraser wraps inner, failing with ppliterrors.InvalidWrap if it,
// wrap, or unwrap is nil.
func NewTypeEraser[K any, V any](
	inner Store[field.Key, V],
	wrap func(K) (*field.Carrier, error),
	unwrap func(*field.Carrier) (K, error),
) (*TypeEraser[K, V], error) {
	if inner == nil || wrap == nil || unwrap == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "type eraser: nil inner store or (un)wrap function")
	}
	return &TypeEraser[K, V]{inner: inner, wrap: wrap, unwrap: unwrap, seen: map[field.Key]*field.Carrier{}}, nil
}

func (t *TypeEraser[K, V]) keyOf(key K) (field.Key, *field.Carrier, error) {
	c, err := t.wrap(key)
	if err != nil {
		return field.Key{}, nil, err
	}
	return field.KeyOf(c), c, nil
}

// Contains implements Store.
func (t *TypeEraser[K, V]) Contains(key K) (bool, error) {
	fk, _, err := t.keyOf(key)
	if err != nil {
		return false, err
	}
	return t.inner.Contains(fk)
}

// Insert implements Store.
func (t *TypeEraser[K, V]) Insert(key K, value V) error {
	fk, carrier, err := t.keyOf(key)
	if err != nil {
		return err
	}
	if err := t.inner.Insert(fk, value); err != nil {
		return err
	}
	t.mu.Lock()
	t.seen[fk] = carrier
	t.mu.Unlock()
	return nil
}

// Remove implements Store.
func (t *TypeEraser[K, V]) Remove(key K) error {
	fk, _, err := t.keyOf(key)
	if err != nil {
		return err
	}
	if err := t.inner.Remove(fk); err != nil {
		return err
	}
	t.mu.Lock()
	delete(t.seen, fk)
	t.mu.Unlock()
	return nil
}

// Get implements Store.
func (t *TypeEraser[K, V]) Get(key K) (Entry[V], error) {
	fk, _, err := t.keyOf(key)
	if err != nil {
		return Entry[V]{}, err
	}
	return t.inner.Get(fk)
}

// Keys implements Enumerable by unwrapping every carrier this adapter has
// seen back into K.
func (t *TypeEraser[K, V]) Keys() ([]K, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]K, 0, len(t.seen))
	for _, c := range t.seen {
		k, err := t.unwrap(c)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Checkpoint implements Store.
func (t *TypeEraser[K, V]) Checkpoint() error { return t.inner.Checkpoint() }

// Dump implements Store.
func (t *TypeEraser[K, V]) Dump() error {
	if err := t.inner.Dump(); err != nil {
		return err
	}
	t.mu.Lock()
	t.seen = map[field.Key]*field.Carrier{}
	t.mu.Unlock()
	return nil
}
