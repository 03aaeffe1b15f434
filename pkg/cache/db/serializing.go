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

	"github.com/NWChemEx-Project/pluginplay-go/pkg/codec"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// Serializing wraps a string-keyed, string-valued adapter (the binary
// backends this chain targets are addressed as byte strings) and presents
// a K/V interface, marshaling both sides through a user-supplied Codec.
// Keys additionally require a KeyEncode function because most K types
// (field maps, proxy maps) are not directly representable by a
// general-purpose value codec keyed the same way as an ordinary value.
type Serializing[K, V any] struct {
	inner     Store[string, string]
	keyEncode func(K) (string, error)
	valueCodec codec.Codec
}

// NewSerializing constructs a Serializing adapter. It fails with
// ppliterrors.InvalidWrap if inner is nil.
func NewSerializing[K, V any](
	inner Store[string, string],
	keyEncode func(K) (string, error),
	valueCodec codec.Codec,
) (*Serializing[K, V], error) {
	if inner == nil {
		return nil, errors.Wrap(ppliterrors.InvalidWrap, "serializing adapter: nil inner store")
	}
	if valueCodec == nil {
		valueCodec = codec.JSON{}
	}
	return &Serializing[K, V]{inner: inner, keyEncode: keyEncode, valueCodec: valueCodec}, nil
}

func (s *Serializing[K, V]) key(k K) (string, error) {
	return s.keyEncode(k)
}

// Contains implements Store.
func (s *Serializing[K, V]) Contains(key K) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	return s.inner.Contains(k)
}

// Insert implements Store: serializes both key and value.
func (s *Serializing[K, V]) Insert(key K, value V) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	raw, err := s.valueCodec.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "serializing value")
	}
	return s.inner.Insert(k, string(raw))
}

// Remove implements Store.
func (s *Serializing[K, V]) Remove(key K) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	return s.inner.Remove(k)
}

// Get implements Store: deserializes the value before returning.
func (s *Serializing[K, V]) Get(key K) (Entry[V], error) {
	k, err := s.key(key)
	if err != nil {
		return Entry[V]{}, err
	}
	raw, err := s.inner.Get(k)
	if err != nil {
		return Entry[V]{}, err
	}
	var out V
	if err := s.valueCodec.Unmarshal([]byte(raw.Value), &out); err != nil {
		return Entry[V]{}, errors.Wrap(err, "deserializing value")
	}
	return Entry[V]{Value: out, Owned: true}, nil
}

// Checkpoint implements Store.
func (s *Serializing[K, V]) Checkpoint() error { return s.inner.Checkpoint() }

// Dump implements Store.
func (s *Serializing[K, V]) Dump() error { return s.inner.Dump() }
