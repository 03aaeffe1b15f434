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

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/uuidproxy"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// ValueProxyMapper stores a carrier's UUID in place of the carrier itself,
// so a wrapped store only ever holds small, comparable strings even when
// the memoized value is large or unprintable. Ported from
// src/pluginplay/cache/database/uuid_mapper_wrapper.hpp, specialized here
// to proxy only the value half of a (key, value) pair.
type ValueProxyMapper[K any] struct {
	inner  Store[K, string]
	mapper *uuidproxy.Mapper
}

// NewValueProxyMapper wraps inner, proxying every inserted value through
// mapper and resolving every fetched value back through it. Fails with
// ppliterrors.InvalidWrap if inner or mapper is nil.
func NewValueProxyMapper[K any](inner Store[K, string], mapper *uuidproxy.Mapper) (*ValueProxyMapper[K], error) {
	if inner == nil || mapper == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "value proxy mapper: nil inner store or mapper")
	}
	return &ValueProxyMapper[K]{inner: inner, mapper: mapper}, nil
}

// Contains implements Store.
func (v *ValueProxyMapper[K]) Contains(key K) (bool, error) { return v.inner.Contains(key) }

// Insert implements Store: assigns value a UUID (reusing one if this exact
// value has been seen before) and stores that UUID under key.
func (v *ValueProxyMapper[K]) Insert(key K, value *field.Carrier) error {
	id, err := v.mapper.Ensure(value)
	if err != nil {
		return err
	}
	return v.inner.Insert(key, id)
}

// Remove implements Store.
func (v *ValueProxyMapper[K]) Remove(key K) error { return v.inner.Remove(key) }

// Get implements Store: resolves the stored UUID back to its carrier.
func (v *ValueProxyMapper[K]) Get(key K) (Entry[*field.Carrier], error) {
	e, err := v.inner.Get(key)
	if err != nil {
		return Entry[*field.Carrier]{}, err
	}
	c, ok := v.mapper.Lookup(e.Value)
	if !ok {
		return Entry[*field.Carrier]{}, errors.Wrap(ppliterrors.BackendFailure, "value proxy mapper: dangling uuid "+e.Value)
	}
	return Entry[*field.Carrier]{Value: c, Owned: false}, nil
}

// Checkpoint implements Store.
func (v *ValueProxyMapper[K]) Checkpoint() error { return v.inner.Checkpoint() }

// Dump implements Store.
func (v *ValueProxyMapper[K]) Dump() error { return v.inner.Dump() }
