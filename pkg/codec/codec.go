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

// Package codec defines the serialization contract the database adapter
// chain's Serializing adapter (db.Serializing) delegates to. No assumption is made about
// the wire format beyond round-trip fidelity; the default implementation
// here uses json-iterator for speed on hot (de)serialization paths.
package codec

import jsoniter "github.com/json-iterator/go"

// Codec marshals and unmarshals arbitrary Go values to and from bytes.
// Implementations must round-trip: Unmarshal(Marshal(v)) must reproduce a
// value equal to v.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, out any) error
}

// JSON is the default Codec, backed by json-iterator configured for
// standard-library-compatible output.
type JSON struct{}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return jsonAPI.Marshal(v) }

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, out any) error { return jsonAPI.Unmarshal(data, out) }
