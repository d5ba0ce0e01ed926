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

// Package engine declares the boundary to the host's path-sensitive
// symbolic-execution engine: the per-path state container, the hook points a
// checker registers for, symbolic value introspection and the diagnostic
// sink. The engine itself is supplied by the host; enginetest carries a
// scripted reference host for the test suite.
package engine

import (
	"go.uber.org/danglingref/syntax"
)

// TraitID keys one checker-owned slot in the per-path state.
type TraitID int

var traitCount TraitID

// NewTrait allocates a fresh state slot. Traits are meant to be allocated in
// package variable initializers, before any path is explored.
func NewTrait(name string) TraitID {
	_ = name // debugging aid only
	traitCount++
	return traitCount
}

// State is an immutable per-path store keyed by trait. Each explored path
// owns its view: With never mutates, it returns a copy, so branch forks can
// share the parent state freely.
type State struct {
	values map[TraitID]any
}

// NewState returns the empty initial state of a path.
func NewState() *State {
	return &State{}
}

// Get returns the value under the trait, or nil when the trait was never set
// on this path.
func (s *State) Get(id TraitID) any {
	if s == nil {
		return nil
	}
	return s.values[id]
}

// With returns a copy of the state with the trait bound to v.
func (s *State) With(id TraitID, v any) *State {
	size := 1
	if s != nil {
		size += len(s.values)
	}
	next := &State{values: make(map[TraitID]any, size)}
	if s != nil {
		for k, old := range s.values {
			next.values[k] = old
		}
	}
	next.values[id] = v
	return next
}

// Finding is one diagnostic: a single unresolved dangerous property on a
// single field. Findings are forwarded once per failed verification; any
// deduplication is the sink's business.
type Finding struct {
	Title    string
	Category string
	Message  string
	Pos      syntax.Pos
}

// Reporter is the host's diagnostic sink.
type Reporter interface {
	Report(Finding)
}

// Context is what the engine hands a checker callback on one path: state
// access, the current frame, and symbolic value introspection.
type Context interface {
	// State returns the current per-path state.
	State() *State
	// SetState transitions the path to a new state.
	SetState(*State)

	// Method is the method of the innermost frame.
	Method() *syntax.Method
	// TopClass is the class whose implementation the outermost frame belongs
	// to, or nil when unknown.
	TopClass() *syntax.Class
	// RefCountMode is the reference-counting discipline of the unit.
	RefCountMode() syntax.RefCountMode
	// WasInlined reports whether the just-evaluated call was transparently
	// inlined by the engine, in which case its effects were already explored.
	WasInlined() bool

	// ValueOf evaluates an expression to its symbolic value on this path.
	ValueOf(syntax.Expr) SymValue
	// KnownNil reports whether the value is provably null on this path. It
	// adds no constraints; use it only for suppression.
	KnownNil(SymValue) bool

	// Report emits a finding attached to the current path.
	Report(Finding)
}

// Hooks is the set of callbacks a checker registers with the engine. Any nil
// hook is simply not invoked.
type Hooks struct {
	// ClassDecl fires once per class implementation, before any path of its
	// methods is explored.
	ClassDecl func(class *syntax.Class, mode syntax.RefCountMode, r Reporter)
	// PreStmt fires before each statement on a path.
	PreStmt func(stmt syntax.Stmt, ctx Context)
	// PostCall fires after a call expression is evaluated on a path.
	PostCall func(call *syntax.CallExpr, ctx Context)
	// EndFunction fires when a path reaches the end of the analyzed method.
	EndFunction func(ctx Context)
	// Assume fires when the engine resolves a branch condition to the given
	// outcome; the returned state replaces the path's state.
	Assume func(st *State, cond SymValue, assumption bool) *State
	// UnitEnd fires after the whole compiled unit is analyzed.
	UnitEnd func()
}
