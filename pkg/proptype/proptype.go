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

// Package proptype implements the property-type contract: an immutable
// schema of named, ordered input and result fields that a module promises
// to satisfy. Declare validates name uniqueness and default-value type
// compatibility eagerly, the way a declarative schema table is validated
// at load time rather than on first use.
package proptype

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// FieldSchema declares one named field's static type and, for input
// fields, an optional default value.
type FieldSchema struct {
	Name    string
	Type    reflect.Type
	Default *field.Carrier // nil if the field has no default
}

// PropertyType is an immutable input/result schema.
type PropertyType struct {
	ID      string
	inputs  []FieldSchema
	results []FieldSchema
}

// Declare constructs a PropertyType from parallel slices of input and
// result field declarations, validating eagerly: names must be unique
// within each slice, and any default's runtime type must match its
// FieldSchema.Type.
func Declare(id string, inputs, results []FieldSchema) (*PropertyType, error) {
	if err := checkUnique("input", inputs); err != nil {
		return nil, err
	}
	if err := checkUnique("result", results); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if in.Default == nil {
			continue
		}
		if in.Default.TypeTag() != in.Type {
			return nil, errors.Wrapf(ppliterrors.TypeMismatch,
				"property type %q: default for input %q has type %s, declared %s",
				id, in.Name, in.Default.TypeTag(), in.Type)
		}
	}
	return &PropertyType{ID: id, inputs: append([]FieldSchema(nil), inputs...), results: append([]FieldSchema(nil), results...)}, nil
}

func checkUnique(kind string, schemas []FieldSchema) error {
	seen := make(map[string]struct{}, len(schemas))
	for _, s := range schemas {
		lowered := strings.ToLower(s.Name)
		if _, ok := seen[lowered]; ok {
			return errors.Wrapf(ppliterrors.UnknownName, "duplicate %s field name %q", kind, s.Name)
		}
		seen[lowered] = struct{}{}
	}
	return nil
}

// InputSchema returns the declared input fields, in order.
func (pt *PropertyType) InputSchema() []FieldSchema { return pt.inputs }

// ResultSchema returns the declared result fields, in order.
func (pt *PropertyType) ResultSchema() []FieldSchema { return pt.results }

// Inputs returns a representative input field map: every declared input
// is present, holding its default if one was declared or field.Empty()
// otherwise. An unset field's carrier records no type; the declared type
// is only in InputSchema(). Suitable as a submodule request's
// representative inputs for readiness checks without real data.
func (pt *PropertyType) Inputs() field.Map {
	m := field.NewMap()
	for _, in := range pt.inputs {
		if in.Default != nil {
			m.Set(in.Name, in.Default)
			continue
		}
		m.Set(in.Name, field.Empty())
	}
	return m
}

// Results returns an empty field map shaped like this property type's
// result schema (every declared result name present but empty).
func (pt *PropertyType) Results() field.Map {
	m := field.NewMap()
	for _, r := range pt.results {
		m.Set(r.Name, field.Empty())
	}
	return m
}

// WrapInputs packs args into m in declared input order, one Carrier per
// arg. len(args) may be less than len(InputSchema()); trailing fields are
// left as whatever m already holds (their declared default, typically).
func (pt *PropertyType) WrapInputs(m field.Map, args ...any) error {
	if len(args) > len(pt.inputs) {
		return errors.Wrapf(ppliterrors.TypeMismatch, "property type %q: %d args given, only %d input fields declared",
			pt.ID, len(args), len(pt.inputs))
	}
	for i, arg := range args {
		sch := pt.inputs[i]
		argType := reflect.TypeOf(arg)
		if argType != sch.Type {
			return errors.Wrapf(ppliterrors.TypeMismatch, "property type %q: arg %d for input %q has type %s, declared %s",
				pt.ID, i, sch.Name, argType, sch.Type)
		}
		m.Set(sch.Name, field.NewOwnedMutable(arg))
	}
	return nil
}

// UnwrapResults extracts m's result fields, in declared order, into dests
// (each a pointer to the field's static type). Fails with
// ppliterrors.UnknownName if a result field is missing, ppliterrors.Empty
// if it is empty, or ppliterrors.TypeMismatch if the number of dests, a
// dest's type, or the stored value's type does not match the schema.
func (pt *PropertyType) UnwrapResults(m field.Map, dests ...any) error {
	if len(dests) != len(pt.results) {
		return errors.Wrapf(ppliterrors.TypeMismatch, "property type %q: %d destinations given, %d result fields declared",
			pt.ID, len(dests), len(pt.results))
	}
	for i, sch := range pt.results {
		c, ok := m.Get(sch.Name)
		if !ok {
			return errors.Wrapf(ppliterrors.UnknownName, "property type %q: result %q missing from result map", pt.ID, sch.Name)
		}
		dst := reflect.ValueOf(dests[i])
		if dst.Kind() != reflect.Ptr || dst.Elem().Type() != sch.Type {
			return errors.Wrapf(ppliterrors.TypeMismatch, "property type %q: destination %d must be *%s", pt.ID, i, sch.Type)
		}
		v, err := field.CastToDynamic(c, sch.Type)
		if err != nil {
			return errors.Wrapf(err, "property type %q: result %q", pt.ID, sch.Name)
		}
		dst.Elem().Set(reflect.ValueOf(v))
	}
	return nil
}
