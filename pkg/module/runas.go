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

package module

import (
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/proptype"
)

// RunAs packs args into pt's input schema, runs this shell, and returns
// the raw result map for the caller to unpack with pt.UnwrapResults.
// Fails ppliterrors.PropertyTypeNotSatisfied if pt is not among the
// shell's satisfied property types.
func (s *Shell) RunAs(pt *proptype.PropertyType, args ...any) (field.Map, error) {
	if !s.satisfies(pt.ID) {
		return field.Map{}, errors.Wrapf(ppliterrors.PropertyTypeNotSatisfied,
			"run_as: shell does not satisfy property type %q", pt.ID)
	}
	in := pt.Inputs()
	if err := pt.WrapInputs(in, args...); err != nil {
		return field.Map{}, err
	}
	return s.Run(in)
}

// RunAs validates that pt matches this request's expected property type,
// then forwards to the bound module's RunAs. Fails
// ppliterrors.PropertyTypeNotSatisfied on a mismatch, or
// ppliterrors.Empty if no module is bound.
func (r *SubmoduleRequest) RunAs(pt *proptype.PropertyType, args ...any) (field.Map, error) {
	expected := r.ExpectedPropertyType()
	if pt.ID != expected {
		return field.Map{}, errors.Wrapf(ppliterrors.PropertyTypeNotSatisfied,
			"submodule run_as: expected property type %q, got %q", expected, pt.ID)
	}
	bound := r.BoundModule()
	if bound == nil {
		return field.Map{}, errors.Wrap(ppliterrors.Empty, "submodule run_as: no module bound")
	}
	return bound.RunAs(pt, args...)
}
