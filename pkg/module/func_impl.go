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

import "github.com/NWChemEx-Project/pluginplay-go/pkg/field"

// FuncImplementation adapts a plain Go function into an Implementation,
// for the facade/lambda-style modules spec.md §4.4 calls out by name:
// "a facade or lambda-style module uses memoizable = false so that
// non-deterministic or test-only modules never pollute the cache." It is
// not the out-of-scope facade-module convenience package itself, only the
// minimal Implementation adapter that convenience would sit on top of.
type FuncImplementation struct {
	Name    string
	Inputs  field.Map
	Results field.Map
	Body    func(field.Map, SubmoduleMap) (field.Map, error)
}

var _ Implementation = (*FuncImplementation)(nil)

// Identity implements Implementation.
func (f *FuncImplementation) Identity() string { return f.Name }

// PropertyTypes implements Implementation; FuncImplementation satisfies
// none by default.
func (f *FuncImplementation) PropertyTypes() []string { return nil }

// DefaultInputs implements Implementation.
func (f *FuncImplementation) DefaultInputs() field.Map { return f.Inputs }

// DefaultSubmodules implements Implementation; FuncImplementation takes
// no submodules.
func (f *FuncImplementation) DefaultSubmodules() map[string]*SubmoduleRequest { return nil }

// ResultSchema implements Implementation.
func (f *FuncImplementation) ResultSchema() field.Map { return f.Results }

// Memoizable implements Implementation, always false, so a Shell built on
// a FuncImplementation does not memoize unless it is constructed with
// WithMemoizable(true).
func (f *FuncImplementation) Memoizable() bool { return false }

// Run implements Implementation by delegating to Body.
func (f *FuncImplementation) Run(inputs field.Map, submodules SubmoduleMap) (field.Map, error) {
	return f.Body(inputs, submodules)
}
