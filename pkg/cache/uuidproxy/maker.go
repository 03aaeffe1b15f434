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
	"errors"
	"sync"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

// ErrUnknownProxy is returned by Maker.Unproxy when the supplied proxy map
// was never produced by this Maker's Proxy method. This mirrors
// src/pluginplay/cache/proxy_map_maker.hpp's "Unknown" failure; it is
// deliberately a package-local error rather than part of the framework's
// general error taxonomy, since it is an artifact of this specific
// adapter.
var ErrUnknownProxy = errors.New("pluginplay/uuidproxy: proxy map not recognized")

// Maker turns a field.Map of real values into a field.Map of UUIDs (a
// "proxy map"), consulting a Mapper per value, and can restore a proxy map
// to an equivalent original map.
type Maker struct {
	mapper *Mapper

	mu      sync.Mutex
	reverse map[string]field.Map // canonical proxy-map encoding -> original map
}

// NewMaker constructs a Maker backed by mapper. Multiple Makers may share
// one Mapper so that identical values across different maps receive the
// same UUID.
func NewMaker(mapper *Mapper) *Maker {
	return &Maker{mapper: mapper, reverse: map[string]field.Map{}}
}

// Install ensures every value in m has an assigned UUID, assigning fresh
// ones on first sight.
func (mk *Maker) Install(m field.Map) error {
	for _, name := range m.Keys() {
		c, _ := m.Get(name)
		if _, err := mk.mapper.Ensure(c); err != nil {
			return err
		}
	}
	return nil
}

// Proxy returns {name -> uuid(value)} for every field in m, recording a
// reverse-lookup entry so a later Unproxy call can restore m.
func (mk *Maker) Proxy(m field.Map) (field.Map, error) {
	if err := mk.Install(m); err != nil {
		return field.Map{}, err
	}
	out := field.NewMap()
	for _, name := range m.Keys() {
		c, _ := m.Get(name)
		id, err := mk.mapper.Ensure(c)
		if err != nil {
			return field.Map{}, err
		}
		out.Set(name, field.NewOwnedConst(id))
	}

	original, err := m.Clone()
	if err != nil {
		return field.Map{}, err
	}
	mk.mu.Lock()
	mk.reverse[canonicalEncode(out)] = original
	mk.mu.Unlock()

	return out, nil
}

// Unproxy returns the original map that produced proxyMap via Proxy, or
// ErrUnknownProxy if proxyMap was never seen.
func (mk *Maker) Unproxy(proxyMap field.Map) (field.Map, error) {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	original, ok := mk.reverse[canonicalEncode(proxyMap)]
	if !ok {
		return field.Map{}, ErrUnknownProxy
	}
	return original, nil
}

// canonicalEncode renders a proxy map as a deterministic, value-derived
// string, in lowered-key order, suitable as a map key for the reverse
// index. It must go through field.KeyOf rather than Carrier.String(): the
// UUID carriers Proxy builds are freshly allocated on every call, so two
// value-equal proxy maps would otherwise stringify to different addresses
// and Unproxy would never recognize a map it had already produced.
func canonicalEncode(m field.Map) string {
	s := "{"
	for i, name := range m.Keys() {
		if i > 0 {
			s += ","
		}
		c, _ := m.Get(name)
		k := field.KeyOf(c)
		s += name + "=" + k.TypeTag + ":" + k.Repr
	}
	return s + "}"
}
