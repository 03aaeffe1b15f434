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

// ExternalBackend is satisfied by any Store[string, string] meant to
// persist entries outside process memory: a disk file, a key/value
// service, an object store. No concrete implementation ships in this
// package; callers compose their own Store[string, string] (for example
// over a local file or a remote cache) and hand it to Serializing or
// InMemory's backup slot. Shipping a concrete disk-backed engine is out
// of scope here, but the seam is a plain Store so one drops in without
// touching the rest of the adapter chain.
type ExternalBackend = Store[string, string]
