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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/internal/plog"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/modulecache"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// SubmoduleMap is the map of bound submodules handed to a module body,
// keyed by callback-point name. Unbound requests never appear here:
// Run only reaches the body after readiness — which requires every
// request be bound — has already been confirmed.
type SubmoduleMap map[string]*Shell

// Implementation is what a module author writes: the algorithm and its
// default schemas. A Shell acquires exactly one Implementation at
// construction and never replaces it.
type Implementation interface {
	// Identity names this implementation for logging and fingerprinting.
	// Typically the module's registered name; must be stable across
	// process runs for memoization to survive an external backend.
	Identity() string
	// PropertyTypes lists the property-type ids this implementation
	// satisfies out of the box; a Shell may be given more via
	// AddPropertyType.
	PropertyTypes() []string
	// DefaultInputs returns the input field map a fresh Shell starts
	// with: every declared input present, holding its default or an
	// empty carrier (field.Empty(), which records no type).
	DefaultInputs() field.Map
	// DefaultSubmodules returns the submodule requests a fresh Shell
	// starts with, keyed by callback-point name.
	DefaultSubmodules() map[string]*SubmoduleRequest
	// ResultSchema returns an empty field map shaped like this
	// implementation's declared results (names present, values empty).
	ResultSchema() field.Map
	// Memoizable reports whether this implementation's results may be
	// cached. Facade or lambda-style modules return false so
	// non-deterministic or test-only bodies never pollute the cache.
	Memoizable() bool
	// Run computes results from inputs and bound submodules.
	Run(inputs field.Map, submodules SubmoduleMap) (field.Map, error)
}

// TimerEntry is one recorded call: start, end, and whether it was served
// from cache.
type TimerEntry struct {
	Start    time.Time
	End      time.Time
	CacheHit bool
}

// Diagnosis is the structured "why not ready" report diagnose_not_ready
// produces: the names of unset, required (no-default) inputs, and, for
// every unready submodule request, a nested Diagnosis of its bound module
// (or an empty Diagnosis if no module is bound at all).
type Diagnosis struct {
	UnsetInputs       []string
	UnreadySubmodules map[string]*Diagnosis
}

// IsEmpty reports whether d describes full readiness (a nil Diagnosis
// also counts as empty).
func (d *Diagnosis) IsEmpty() bool {
	return d == nil || (len(d.UnsetInputs) == 0 && len(d.UnreadySubmodules) == 0)
}

// Err flattens the diagnosis into a single aggregated error, one entry per
// unset input and per unready submodule (recursively), the way
// ReplaceErrorProperties aggregates config-rename failures with
// multierror.Append. Returns nil for an empty diagnosis.
func (d *Diagnosis) Err() error {
	return d.errPrefixed("")
}

func (d *Diagnosis) errPrefixed(prefix string) error {
	if d.IsEmpty() {
		return nil
	}
	var merr *multierror.Error
	for _, name := range d.UnsetInputs {
		merr = multierror.Append(merr, errors.Wrapf(ppliterrors.NotReady, "%sinput %q is unset", prefix, name))
	}
	names := make([]string, 0, len(d.UnreadySubmodules))
	for name := range d.UnreadySubmodules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		child := d.UnreadySubmodules[name]
		if child.IsEmpty() {
			merr = multierror.Append(merr, errors.Wrapf(ppliterrors.NotReady, "%ssubmodule %q is unbound", prefix, name))
			continue
		}
		if childErr := child.errPrefixed(prefix + name + "."); childErr != nil {
			merr = multierror.Append(merr, childErr)
		}
	}
	return merr.ErrorOrNil()
}

// Shell is the module execution shell (component G): the per-module
// state machine that validates readiness, locks bound configuration,
// memoizes on inputs, and records call timing. Grounded on the
// lifecycle/locking shape of pkg/tfbridge's provider type and the
// callback-dispatch shape of x/muxer.
type Shell struct {
	mu sync.Mutex

	impl          Implementation
	inputs        field.Map
	submodules    map[string]*SubmoduleRequest
	propertyTypes mapset.Set[string]

	locked     bool
	memoizable bool
	uuid       string

	cacheHandle *modulecache.Cache
	logger      plog.Logger
	timerLog    []TimerEntry
}

// Option customizes New.
type Option func(*Shell)

// WithUUID assigns the shell's opaque identity, assigned in the source by
// the (out-of-scope) module-manager registry at registration time. A
// shell without a UUID never memoizes, regardless of Memoizable().
func WithUUID(uuid string) Option {
	return func(s *Shell) { s.uuid = uuid }
}

// WithCache attaches the per-module memoization cache (component F).
func WithCache(c *modulecache.Cache) Option {
	return func(s *Shell) { s.cacheHandle = c }
}

// WithMemoizable overrides the implementation's own Memoizable() default,
// letting a caller disable memoization for a module instance (for
// instance, a test double) without changing the implementation type.
func WithMemoizable(memoizable bool) Option {
	return func(s *Shell) { s.memoizable = memoizable }
}

// WithLogger attaches a logger; shells default to plog.Null().
func WithLogger(l plog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Shell around impl. Fails with ppliterrors.Empty if
// impl is nil.
func New(impl Implementation, opts ...Option) (*Shell, error) {
	if impl == nil {
		return nil, errors.Wrap(ppliterrors.Empty, "module: nil implementation")
	}
	s := &Shell{
		impl:          impl,
		inputs:        impl.DefaultInputs(),
		submodules:    map[string]*SubmoduleRequest{},
		propertyTypes: mapset.NewSet[string](),
		memoizable:    impl.Memoizable(),
		logger:        plog.Null(),
	}
	for name, req := range impl.DefaultSubmodules() {
		s.submodules[name] = req
	}
	for _, pt := range impl.PropertyTypes() {
		s.propertyTypes.Add(pt)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Shell) identity() string { return s.impl.Identity() }

// UUID returns the shell's assigned identity, or "" if none was given.
func (s *Shell) UUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uuid
}

// IsLocked reports whether the shell has been locked.
func (s *Shell) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// PropertyTypes returns the property-type ids this shell currently
// satisfies (developer-declared plus any added via AddPropertyType).
func (s *Shell) PropertyTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.propertyTypes.ToSlice()
	sort.Strings(out)
	return out
}

func (s *Shell) satisfies(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyTypes.Contains(id)
}

// TimerLog returns a copy of every recorded call so far.
func (s *Shell) TimerLog() []TimerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TimerEntry(nil), s.timerLog...)
}

func submoduleNamesOf(m map[string]*SubmoduleRequest) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func (s *Shell) findSubmodule(name string) (string, *SubmoduleRequest, bool) {
	lname := strings.ToLower(name)
	for k, v := range s.submodules {
		if strings.ToLower(k) == lname {
			return k, v, true
		}
	}
	return "", nil, false
}

// Submodule returns the submodule request registered under name.
func (s *Shell) Submodule(name string) (*SubmoduleRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, req, ok := s.findSubmodule(name)
	return req, ok
}

// ChangeInput overwrites the carrier bound to name. Fails
// ppliterrors.Locked on a locked shell, ppliterrors.UnknownName if name
// was never declared, or ppliterrors.TypeMismatch if name already holds a
// value of a different type than c.
func (s *Shell) ChangeInput(name string, c *field.Carrier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return errors.Wrap(ppliterrors.Locked, "module: shell is locked")
	}
	existing, ok := s.inputs.Get(name)
	if !ok {
		return errors.Wrapf(ppliterrors.UnknownName, "module: unknown input %q", name)
	}
	if !existing.IsEmpty() && !c.IsEmpty() && existing.TypeTag() != c.TypeTag() {
		return errors.Wrapf(ppliterrors.TypeMismatch,
			"module: input %q expects %s, got %s", name, existing.TypeTag(), c.TypeTag())
	}
	s.inputs.Set(name, c)
	return nil
}

// ChangeSubmodule binds m to the submodule request registered under
// name. Fails ppliterrors.Locked on a locked shell, or
// ppliterrors.UnknownName if name was never declared.
func (s *Shell) ChangeSubmodule(name string, m *Shell) error {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return errors.Wrap(ppliterrors.Locked, "module: shell is locked")
	}
	_, req, ok := s.findSubmodule(name)
	s.mu.Unlock()
	if !ok {
		return errors.Wrapf(ppliterrors.UnknownName, "module: unknown submodule %q", name)
	}
	return req.Bind(m)
}

// AddPropertyType adds id to the set of property types this shell
// satisfies. Fails ppliterrors.Locked on a locked shell.
func (s *Shell) AddPropertyType(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return errors.Wrap(ppliterrors.Locked, "module: shell is locked")
	}
	s.propertyTypes.Add(id)
	return nil
}

// Ready reports whether every declared input is either bound to a value
// or overridden by name in extra, and every submodule request is ready.
// Side-effect free, per spec.md §7.
func (s *Shell) Ready(extra field.Map) bool {
	return s.readyVisited(extra, mapset.NewSet[*Shell]())
}

// readyVisited is Ready, carrying a visited set of shell pointers through
// the submodule graph. A revisited shell reports not-ready rather than
// recursing forever; see SubmoduleRequest.readyVisited for why that is
// the correct answer, not merely a safety valve.
func (s *Shell) readyVisited(extra field.Map, visited mapset.Set[*Shell]) bool {
	if visited.Contains(s) {
		return false
	}

	s.mu.Lock()
	inputs := s.inputs
	reqs := make([]*SubmoduleRequest, 0, len(s.submodules))
	for _, r := range s.submodules {
		reqs = append(reqs, r)
	}
	s.mu.Unlock()

	for _, name := range inputs.Keys() {
		c, _ := inputs.Get(name)
		if !c.IsEmpty() {
			continue
		}
		if ov, ok := extra.Get(name); ok && !ov.IsEmpty() {
			continue
		}
		return false
	}

	childVisited := visited.Clone()
	childVisited.Add(s)
	for _, r := range reqs {
		if !r.readyVisited(childVisited) {
			return false
		}
	}
	return true
}

// DiagnoseNotReady returns a structured report of exactly what is keeping
// the shell from being ready given extra, or nil when the shell is ready.
func (s *Shell) DiagnoseNotReady(extra field.Map) *Diagnosis {
	return s.diagnoseVisited(extra, mapset.NewSet[*Shell]())
}

func (s *Shell) diagnoseVisited(extra field.Map, visited mapset.Set[*Shell]) *Diagnosis {
	if visited.Contains(s) {
		return &Diagnosis{UnreadySubmodules: map[string]*Diagnosis{}}
	}

	s.mu.Lock()
	inputs := s.inputs
	reqs := make(map[string]*SubmoduleRequest, len(s.submodules))
	for k, v := range s.submodules {
		reqs[k] = v
	}
	s.mu.Unlock()

	d := &Diagnosis{UnreadySubmodules: map[string]*Diagnosis{}}
	for _, name := range inputs.Keys() {
		c, _ := inputs.Get(name)
		if !c.IsEmpty() {
			continue
		}
		if ov, ok := extra.Get(name); ok && !ov.IsEmpty() {
			continue
		}
		d.UnsetInputs = append(d.UnsetInputs, name)
	}

	childVisited := visited.Clone()
	childVisited.Add(s)
	for _, name := range submoduleNamesOf(reqs) {
		req := reqs[name]
		if req.readyVisited(childVisited) {
			continue
		}
		bound := req.BoundModule()
		if bound == nil {
			d.UnreadySubmodules[name] = &Diagnosis{}
			continue
		}
		d.UnreadySubmodules[name] = bound.diagnoseVisited(req.repInputsSnapshot(), childVisited)
	}
	if d.IsEmpty() {
		return nil
	}
	return d
}

// Lock locks every ready submodule request first, then this shell.
// Fails ppliterrors.NotReady, or ppliterrors.CycleDetected if the
// submodule graph reachable from this shell contains a cycle, leaving
// every shell and request touched by the failed call in its pre-call
// state (the strong guarantee of spec.md §4.4 / §8.7).
func (s *Shell) Lock() error {
	if s.hasCycle(mapset.NewSet[*Shell]()) {
		return errors.Wrap(ppliterrors.CycleDetected, "module: submodule graph contains a cycle")
	}
	return s.lockVisited(mapset.NewSet[*Shell]())
}

// hasCycle walks bound submodules depth-first, purely structurally
// (independent of readiness), reporting true iff the same shell appears
// twice along one path from the root. A diamond — the same shell reached
// via two different sibling branches — is not a cycle and is not
// flagged, since each branch gets its own copy of visited.
func (s *Shell) hasCycle(visited mapset.Set[*Shell]) bool {
	if visited.Contains(s) {
		return true
	}
	s.mu.Lock()
	reqs := make([]*SubmoduleRequest, 0, len(s.submodules))
	for _, r := range s.submodules {
		reqs = append(reqs, r)
	}
	s.mu.Unlock()

	child := visited.Clone()
	child.Add(s)
	for _, r := range reqs {
		if bound := r.BoundModule(); bound != nil && bound.hasCycle(child) {
			return true
		}
	}
	return false
}

func (s *Shell) lockVisited(visited mapset.Set[*Shell]) error {
	// Checked before acquiring s.mu: Lock already ran hasCycle, so this
	// only guards against the same shell being mutated twice within one
	// Lock() call's own recursion, never against a real cycle re-locking
	// an already-held mutex.
	if visited.Contains(s) {
		return errors.Wrap(ppliterrors.CycleDetected, "module: shell is reachable from itself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return nil
	}

	childVisited := visited.Clone()
	childVisited.Add(s)

	names := submoduleNamesOf(s.submodules)
	for _, name := range names {
		if !s.submodules[name].readyVisited(childVisited) {
			return errors.Wrapf(ppliterrors.NotReady, "lock: submodule %q not ready", name)
		}
	}
	for _, name := range names {
		req := s.submodules[name]
		if bound := req.BoundModule(); bound != nil {
			if err := bound.lockVisited(childVisited); err != nil {
				return err
			}
		}
		req.markLocked()
	}
	s.locked = true
	return nil
}

// fingerprintSeed is hashed to a digest that supplements, rather than
// replaces, the per-field UUID proxying modulecache.Cache already
// performs: it folds the implementation identity and the sorted
// submodule-uuid list into one extra synthetic field so two calls that
// differ only in bound submodule identity still diverge before ever
// reaching the cache's own key-proxy layer.
type fingerprintSeed struct {
	Identity   string
	Inputs     []inputIdentity
	Submodules []submoduleIdentity
}

// inputIdentity is one effective-input field's value-derived identity
// (field.KeyOf), not its Carrier.String() rendering: String() falls back
// to a pointer address for unprintable types, which would make the
// fingerprint diverge for value-equal inputs carried by distinct Carrier
// allocations.
type inputIdentity struct {
	Name    string
	TypeTag string
	Repr    string
}

type submoduleIdentity struct {
	Name string
	UUID string
}

// fingerprintKey builds the field.Map used as the module cache key from
// effective (the merged, locked input map): effective's own fields, plus
// one synthetic field per submodule recording its bound module's UUID,
// plus a digest field folding the implementation identity and submodule
// list together. See spec.md §5.3.
func (s *Shell) fingerprintKey(effective field.Map) (field.Map, error) {
	s.mu.Lock()
	reqs := make(map[string]*SubmoduleRequest, len(s.submodules))
	for k, v := range s.submodules {
		reqs[k] = v
	}
	identity := s.identity()
	s.mu.Unlock()

	out, err := effective.Clone()
	if err != nil {
		return field.Map{}, errors.Wrap(err, "fingerprint: cloning effective inputs")
	}

	seed := fingerprintSeed{Identity: identity}
	for _, name := range effective.Keys() {
		c, _ := effective.Get(name)
		k := field.KeyOf(c)
		seed.Inputs = append(seed.Inputs, inputIdentity{Name: name, TypeTag: k.TypeTag, Repr: k.Repr})
	}
	for _, name := range submoduleNamesOf(reqs) {
		req := reqs[name]
		var subUUID string
		if bound := req.BoundModule(); bound != nil {
			subUUID = bound.UUID()
		}
		seed.Submodules = append(seed.Submodules, submoduleIdentity{Name: name, UUID: subUUID})
		out.Set("__submodule__"+name, field.NewOwnedConst(subUUID))
	}

	digest, err := hashstructure.Hash(seed, nil)
	if err != nil {
		return field.Map{}, errors.Wrap(err, "fingerprint: hashing call identity")
	}
	out.Set("__fingerprint__", field.NewOwnedConst(fmt.Sprintf("%016x", digest)))
	return out, nil
}

// effectiveMemoizable is the conjunction of this shell's own memoizable
// flag, UUID presence, cache-handle presence, and every bound submodule's
// effectiveMemoizable, per spec.md §4.4.
func (s *Shell) effectiveMemoizable() bool {
	s.mu.Lock()
	memoizable := s.memoizable && s.uuid != "" && s.cacheHandle != nil
	reqs := make([]*SubmoduleRequest, 0, len(s.submodules))
	for _, r := range s.submodules {
		reqs = append(reqs, r)
	}
	s.mu.Unlock()

	if !memoizable {
		return false
	}
	for _, r := range reqs {
		if bound := r.BoundModule(); bound != nil && !bound.effectiveMemoizable() {
			return false
		}
	}
	return true
}

func (s *Shell) submoduleMapSnapshot() SubmoduleMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(SubmoduleMap, len(s.submodules))
	for name, req := range s.submodules {
		if bound := req.BoundModule(); bound != nil {
			out[name] = bound
		}
	}
	return out
}

func (s *Shell) recordCall(start time.Time, cacheHit bool) {
	end := time.Now()
	s.mu.Lock()
	s.timerLog = append(s.timerLog, TimerEntry{Start: start, End: end, CacheHit: cacheHit})
	logger := s.logger
	identity := s.identity()
	count := len(s.timerLog)
	s.mu.Unlock()

	logger.Debug("module call", "module", identity, "calls", count, "cache_hit", cacheHit,
		"duration", end.Sub(start).String())
}

// Run is the core algorithm (spec.md §4.4 RUN ALGORITHM): merge
// overrides into the bound inputs, confirm readiness, lock, compute the
// call fingerprint, probe the cache on a hit path, or invoke the
// implementation body and memoize its result.
func (s *Shell) Run(overrides field.Map) (field.Map, error) {
	for _, name := range overrides.Keys() {
		c, _ := overrides.Get(name)
		if c.IsEmpty() {
			return field.Map{}, errors.Wrapf(ppliterrors.InputsNotReady, "run: override %q is empty", name)
		}
	}

	if !s.Ready(overrides) {
		if diag := s.DiagnoseNotReady(overrides); diag != nil {
			return field.Map{}, errors.Wrap(diag.Err(), "run: shell not ready")
		}
		return field.Map{}, errors.Wrap(ppliterrors.NotReady, "run: shell not ready")
	}

	if err := s.Lock(); err != nil {
		return field.Map{}, err
	}

	s.mu.Lock()
	effective := field.Merge(s.inputs, overrides)
	impl := s.impl
	s.mu.Unlock()

	key, err := s.fingerprintKey(effective)
	if err != nil {
		return field.Map{}, err
	}

	start := time.Now()
	memo := s.effectiveMemoizable()

	if memo {
		if hit, cerr := s.cacheHandle.Contains(key); cerr == nil && hit {
			entry, gerr := s.cacheHandle.Get(key)
			if gerr == nil {
				if result, terr := field.CastTo[field.Map](entry.Value); terr == nil {
					s.recordCall(start, true)
					return result, nil
				}
			}
		}
	}

	result, err := impl.Run(effective, s.submoduleMapSnapshot())
	if err != nil {
		s.recordCall(start, false)
		return field.Map{}, errors.Wrap(err, "run: module body failed")
	}

	if memo {
		if err := s.cacheHandle.Insert(key, field.NewOwnedConst(result)); err != nil {
			s.recordCall(start, false)
			return field.Map{}, errors.Wrap(err, "run: inserting result into cache")
		}
	}

	s.recordCall(start, false)
	return result, nil
}

// ProfileInfo renders this shell's call timestamps plus each submodule's
// trace, indented two spaces per level, per spec.md §4.4.
func (s *Shell) ProfileInfo() string {
	return s.profileInfo(0)
}

func (s *Shell) profileInfo(depth int) string {
	s.mu.Lock()
	log := append([]TimerEntry(nil), s.timerLog...)
	reqs := make(map[string]*SubmoduleRequest, len(s.submodules))
	for k, v := range s.submodules {
		reqs[k] = v
	}
	identity := s.identity()
	s.mu.Unlock()

	indent := strings.Repeat("  ", depth)
	var b strings.Builder
	fmt.Fprintf(&b, "%smodule %s: %d call(s)\n", indent, identity, len(log))
	for _, e := range log {
		fmt.Fprintf(&b, "%s  %s -> %s (cacheHit=%v)\n",
			indent, e.Start.Format(time.RFC3339Nano), e.End.Format(time.RFC3339Nano), e.CacheHit)
	}
	for _, name := range submoduleNamesOf(reqs) {
		if bound := reqs[name].BoundModule(); bound != nil {
			fmt.Fprintf(&b, "%ssubmodule %q:\n", indent, name)
			b.WriteString(bound.profileInfo(depth + 1))
		}
	}
	return b.String()
}
