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

// KeyProxyMapper replaces a field.Map key with its UUID proxy map before
// delegating, so the wrapped store never needs to compare or hash the
// original field values directly. Ported from
// src/pluginplay/cache/database/uuid_mapper_wrapper.hpp, specialized here
// to proxy only the key half of a (key, value) pair.
type KeyProxyMapper[V any] struct {
	inner Store[field.Map, V]
	maker *uuidproxy.Maker
}

// NewKeyProxyMapper wraps inner, proxying every incoming key through maker.
// Fails with ppliterrors.InvalidWrap if inner or maker is nil.
func NewKeyProxyMapper[V any](inner Store[field.Map, V], maker *uuidproxy.Maker) (*KeyProxyMapper[V], error) {
	if inner == nil || maker == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "key proxy mapper: nil inner store or maker")
	}
	return &KeyProxyMapper[V]{inner: inner, maker: maker}, nil
}

// Contains implements Store.
func (k *KeyProxyMapper[V]) Contains(key field.Map) (bool, error) {
	pk, err := k.maker.Proxy(key)
	if err != nil {
		return false, err
	}
	return k.inner.Contains(pk)
}

// Insert implements Store.
func (k *KeyProxyMapper[V]) Insert(key field.Map, value V) error {
	pk, err := k.maker.Proxy(key)
	if err != nil {
		return err
	}
	return k.inner.Insert(pk, value)
}

// Remove implements Store.
func (k *KeyProxyMapper[V]) Remove(key field.Map) error {
	pk, err := k.maker.Proxy(key)
	if err != nil {
		return err
	}
	return k.inner.Remove(pk)
}

// Get implements Store.
func (k *KeyProxyMapper[V]) Get(key field.Map) (Entry[V], error) {
	pk, err := k.maker.Proxy(key)
	if err != nil {
		return Entry[V]{}, err
	}
	return k.inner.Get(pk)
}

// Checkpoint implements Store.
func (k *KeyProxyMapper[V]) Checkpoint() error { return k.inner.Checkpoint() }

// Dump implements Store.
func (k *KeyProxyMapper[V]) Dump() error { return k.inner.Dump() }
