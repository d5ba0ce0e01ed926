//  Copyright (c) 2026 Uber Technologies, Inc.
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

// Package checker implements the second, path-sensitive pass. It hooks into
// the host engine's path exploration, tracks per-field clearance records in
// the per-path state, and verifies at every release point that all
// statically dangerous back-references were cleared on the path reaching it.
//
// Known limitation: reassigning a field to a fresh non-null object carries
// the previous object's clearance record over to the new one; only a
// null-valued reassignment re-seeds the record.
package checker

import (
	"go.uber.org/danglingref/config"
	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/match"
	"go.uber.org/danglingref/syntax"
)

// Per-path state slots. The clearance map is keyed per field; the other two
// are the bootstrap guard and the class handle, which must live in path state
// because the state is global to the call stack, not lexically scoped.
var (
	clearanceTrait = engine.NewTrait("danglingref.clearance")
	initDoneTrait  = engine.NewTrait("danglingref.initdone")
	classTrait     = engine.NewTrait("danglingref.class")
)

func pathClearance(st *engine.State) clearanceMap {
	if v := st.Get(clearanceTrait); v != nil {
		return v.(clearanceMap)
	}
	return clearanceMap{}
}

// Checker is the dynamic pass for one compiled unit. It reads the fact store
// populated by the fact finder and never writes to it.
type Checker struct {
	conf  *config.Config
	store *facts.Store
}

// New returns a Checker verifying against the given store.
func New(conf *config.Config, store *facts.Store) *Checker {
	return &Checker{conf: conf, store: store}
}

func (c *Checker) factsFor(class *syntax.Class) (*facts.ClassFacts, bool) {
	if class == nil {
		return nil, false
	}
	// A class that never reached fact finding has no interesting fields.
	return c.store.Get(class.Name)
}

// PreStmt runs the once-per-path bootstrap and, under automatic reference
// counting, verifies direct field overwrites: replacing a field's value is a
// release point for the previous value.
func (c *Checker) PreStmt(stmt syntax.Stmt, ctx engine.Context) {
	c.seedInitialState(ctx)

	// Under manual reference counting the verification happens on the
	// explicit release instead.
	if ctx.RefCountMode() != syntax.AutoRefCount {
		return
	}
	assign, ok := stmt.(*syntax.AssignStmt)
	if !ok {
		return
	}
	ref, ok := match.Unwrap(assign.LHS).(*syntax.FieldRef)
	if !ok || ref.Field == nil {
		return
	}
	// Nothing to leak when the overwritten value is provably null.
	if ctx.KnownNil(ctx.ValueOf(assign.LHS)) {
		return
	}
	c.verifyAgainstFacts(assign.Pos, ref.Field, ctx)
}

// seedInitialState runs once per path, before the first statement takes
// effect: it records the class handle and, inside a pseudo-constructor,
// optimistically seeds every interesting field as fully cleared, on the
// assumption that construction-time side effects took care of the past.
func (c *Checker) seedInitialState(ctx engine.Context) {
	st := ctx.State()
	if done, _ := st.Get(initDoneTrait).(bool); done {
		return
	}
	if class := ctx.TopClass(); class != nil {
		st = st.With(classTrait, class)
		if cf, ok := c.factsFor(class); ok && cf.PseudoConstructors[ctx.Method().Selector] {
			cm := pathClearance(st)
			cf.Fields.OrderedRange(func(name string, ff *facts.FieldFacts) bool {
				if f := class.FieldNamed(name); f != nil {
					cm = cm.with(f, seededClearance(ff))
				}
				return true
			})
			st = st.With(clearanceTrait, cm)
		}
	}
	st = st.With(initDoneTrait, true)
	ctx.SetState(st)
}

// verifyAgainstFacts is the release-point check: every statically dangerous
// property of the field must be cleared on this path.
func (c *Checker) verifyAgainstFacts(pos syntax.Pos, field *syntax.Field, ctx engine.Context) {
	cf, ok := c.factsFor(ctx.TopClass())
	if !ok {
		return
	}
	ff := cf.FieldFacts(field.Name)
	if ff == nil {
		// not an interesting field
		return
	}
	rec := pathClearance(ctx.State()).record(field)
	verifyCleared(ff, rec, field, "", pos, ctx.Report)

	// MayBeEventTarget / MayBeEventObserver are computed but a corresponding
	// verification is not wired in yet.
}

// PostCall updates clearance state from the call's effect, and verifies at
// the release points hiding in calls: explicit releases of a field's value
// and setter-driven replacement of the field itself.
func (c *Checker) PostCall(call *syntax.CallExpr, ctx engine.Context) {
	// An inlined call had its body explored; its effects are already in the
	// state.
	if ctx.WasInlined() {
		return
	}
	recv := call.Recv
	if recv == nil {
		return
	}
	// A null receiver makes the call a no-op.
	if ctx.KnownNil(ctx.ValueOf(recv)) {
		return
	}
	class := ctx.TopClass()
	cf, ok := c.factsFor(class)
	if !ok {
		return
	}

	// Setter invoked on the subject itself: the field is being replaced
	// through its accessor rather than by a direct write.
	if match.IsSubjectExpr(recv) {
		if prop := match.PropertySetter(call); prop != nil {
			c.subjectSetterCall(call, prop, class, cf, ctx)
			return
		}
	}

	// Otherwise: calls on an interesting field's value, the dual of the
	// fact-finding pass.
	field := match.FieldLValue(recv, class)
	if field == nil || cf.FieldFacts(field.Name) == nil {
		return
	}

	if c.conf.IsReleaseSelector(call.Selector) {
		c.verifyAgainstFacts(call.Pos, field, ctx)
		return
	}

	effect := classifyFieldCall(call, c.conf)
	if effect.kind == effectNone {
		// No transition: avoid needless path duplication.
		return
	}
	rec := pathClearance(ctx.State()).record(field)
	switch effect.kind {
	case effectPropertySet:
		// Storing the subject again reactivates the risk; storing anything
		// else clears it.
		rec = rec.withProperty(effect.prop, !effect.argIsSubject)
	case effectClearTarget:
		rec = rec.withTargetCleared()
	case effectClearObserver:
		rec = rec.withObserverCleared()
	}
	cm := pathClearance(ctx.State()).with(field, rec)
	ctx.SetState(ctx.State().With(clearanceTrait, cm))
}

// subjectSetterCall handles `self.x = v` expressed through the accessor. The
// old value is verified first (replacement is a release point), then a
// provably null new value seeds the field as fully cleared to suppress
// further warnings on this path.
func (c *Checker) subjectSetterCall(call *syntax.CallExpr, prop *syntax.Property, class *syntax.Class, cf *facts.ClassFacts, ctx engine.Context) {
	field := prop.Backing
	if field == nil {
		return
	}

	// Verify only setters with no transparent body to inline; an explicit
	// accessor body gets explored on its own and judged there.
	if class.MethodNamed(call.Selector) == nil {
		c.verifyAgainstFacts(call.Pos, field, ctx)
	}

	ff := cf.FieldFacts(field.Name)
	if ff == nil {
		return
	}
	if arg := match.Arg(call, 0); arg != nil && ctx.KnownNil(ctx.ValueOf(arg)) {
		cm := pathClearance(ctx.State()).with(field, seededClearance(ff))
		ctx.SetState(ctx.State().With(clearanceTrait, cm))
	}
}

// EndFunction verifies every interesting field when a path leaves the
// teardown method: under automatic reference counting the generated epilogue
// releases each field right after.
func (c *Checker) EndFunction(ctx engine.Context) {
	if ctx.RefCountMode() != syntax.AutoRefCount {
		return
	}
	class := ctx.TopClass()
	cf, ok := c.factsFor(class)
	if !ok {
		return
	}
	m := ctx.Method()
	if m == nil || m.Selector != c.conf.TeardownSelector {
		return
	}
	cm := pathClearance(ctx.State())
	cf.Fields.OrderedRange(func(name string, ff *facts.FieldFacts) bool {
		field := class.FieldNamed(name)
		if field == nil {
			return true
		}
		verifyCleared(ff, cm.record(field), field, "ARC-generated code", m.Pos, ctx.Report)
		return true
	})
}

// Assume intercepts branch conditions that restrict the path to favorable
// cases and marks the state accordingly for whatever happens next on the
// path. This is unsound past the guarded block, which is accepted: on this
// path at least, the programmer demonstrated awareness of the link.
func (c *Checker) Assume(st *engine.State, cond engine.SymValue, assumption bool) *engine.State {
	class, _ := st.Get(classTrait).(*syntax.Class)
	if class == nil {
		return st
	}
	cf, ok := c.store.Get(class.Name)
	if !ok {
		return st
	}

	switch m := matchAssumedCondition(cond, assumption, class, cf); m.kind {
	case condPropertyCleared:
		cm := pathClearance(st)
		rec := cm.record(m.field).withProperty(m.prop, true)
		return st.With(clearanceTrait, cm.with(m.field, rec))
	case condFieldNil:
		ff := cf.FieldFacts(m.field.Name)
		cm := pathClearance(st)
		return st.With(clearanceTrait, cm.with(m.field, seededClearance(ff)))
	}
	return st
}

// ReportUnclearedAtImplicitTeardown reports, at class level, the dangerous
// fields of a class with no teardown method at all: under automatic
// reference counting the generated teardown releases every field and clears
// nothing.
func (c *Checker) ReportUnclearedAtImplicitTeardown(class *syntax.Class, mode syntax.RefCountMode, r engine.Reporter) {
	if mode != syntax.AutoRefCount {
		return
	}
	cf, ok := c.store.Get(class.Name)
	if !ok || cf.HasExplicitTeardown {
		return
	}
	cf.Fields.OrderedRange(func(name string, ff *facts.FieldFacts) bool {
		field := class.FieldNamed(name)
		if field == nil {
			return true
		}
		verifyCleared(ff, nil, field, "ARC-generated dealloc", class.Pos, r.Report)
		return true
	})
}
