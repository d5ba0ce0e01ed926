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

// Package enginetest provides a scripted reference host for the engine
// boundary, sufficient to exercise registered hooks in tests: it explores
// every acyclic path of each method body, forks path state on branches,
// tracks per-path nilness of field storage, and collects findings. It never
// inlines calls and applies no exploration budget.
package enginetest

import (
	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/syntax"
)

// Engine is a single-use host: register hooks, analyze one unit, read
// findings.
type Engine struct {
	mode     syntax.RefCountMode
	hooks    engine.Hooks
	byName   map[string]*syntax.Class
	findings []engine.Finding
}

// New returns a host for a unit compiled under the given mode.
func New(mode syntax.RefCountMode) *Engine {
	return &Engine{mode: mode, byName: make(map[string]*syntax.Class)}
}

// Register installs the checker's hooks.
func (e *Engine) Register(h engine.Hooks) {
	e.hooks = h
}

// Report implements engine.Reporter.
func (e *Engine) Report(f engine.Finding) {
	e.findings = append(e.findings, f)
}

// Findings returns every finding reported so far, in emission order.
func (e *Engine) Findings() []engine.Finding {
	return e.findings
}

// AnalyzeUnit drives one compiled unit: class declarations first (fact
// finding), then path exploration of every method body, then the unit-end
// event.
func (e *Engine) AnalyzeUnit(classes ...*syntax.Class) {
	for _, cl := range classes {
		e.byName[cl.Name] = cl
	}
	e.resolveReceivers(classes)

	for _, cl := range classes {
		if e.hooks.ClassDecl != nil {
			e.hooks.ClassDecl(cl, e.mode, e)
		}
	}
	for _, cl := range classes {
		for _, m := range cl.Methods {
			if m.Body == nil {
				continue
			}
			p := &path{
				eng:     e,
				class:   cl,
				method:  m,
				state:   engine.NewState(),
				nilness: make(map[*syntax.Field]nilness),
			}
			p.run(m.Body.Stmts)
		}
	}
	if e.hooks.UnitEnd != nil {
		e.hooks.UnitEnd()
	}
}

// resolveReceivers plays the host front end's name resolution: it fills in
// the statically known receiver class of every call in the unit.
func (e *Engine) resolveReceivers(classes []*syntax.Class) {
	for _, cl := range classes {
		for _, m := range cl.Methods {
			if m.Body == nil {
				continue
			}
			syntax.InspectExprs(m.Body, func(x syntax.Expr) bool {
				call, ok := x.(*syntax.CallExpr)
				if ok && call.ReceiverClass == nil {
					call.ReceiverClass = e.staticClassOf(call.Recv, cl)
				}
				return true
			})
		}
	}
}

func (e *Engine) staticClassOf(recv syntax.Expr, current *syntax.Class) *syntax.Class {
	switch r := unparen(recv).(type) {
	case *syntax.SelfExpr:
		return current
	case *syntax.FieldRef:
		if r.Field == nil {
			return nil
		}
		return e.byName[r.Field.TypeName]
	case *syntax.CallExpr:
		// a getter on self reading a declared field
		if _, ok := unparen(r.Recv).(*syntax.SelfExpr); !ok {
			return nil
		}
		prop := current.PropertyNamed(r.Selector)
		if prop == nil || prop.Backing == nil || len(r.Args) != 0 {
			return nil
		}
		return e.byName[prop.Backing.TypeName]
	}
	return nil
}

func unparen(e syntax.Expr) syntax.Expr {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// nilness is the host's per-path constraint on a field's stored value.
type nilness uint8

const (
	unknownNil nilness = iota
	isNil
	notNil
)

// path is one explored execution path; it implements engine.Context.
type path struct {
	eng     *Engine
	class   *syntax.Class
	method  *syntax.Method
	state   *engine.State
	nilness map[*syntax.Field]nilness
}

var _ engine.Context = (*path)(nil)

func (p *path) State() *engine.State              { return p.state }
func (p *path) SetState(s *engine.State)          { p.state = s }
func (p *path) Method() *syntax.Method            { return p.method }
func (p *path) TopClass() *syntax.Class           { return p.class }
func (p *path) RefCountMode() syntax.RefCountMode { return p.eng.mode }
func (p *path) WasInlined() bool                  { return false }
func (p *path) Report(f engine.Finding)           { p.eng.Report(f) }

// ValueOf folds known-null storage reads to the null constant, mirroring a
// constraint manager that already pinned the value.
func (p *path) ValueOf(e syntax.Expr) engine.SymValue {
	switch e := unparen(e).(type) {
	case *syntax.NilLit:
		return &engine.NilValue{}
	case *syntax.SelfExpr:
		return &engine.SelfRegion{}
	case *syntax.FieldRef:
		if p.nilness[e.Field] == isNil {
			return &engine.NilValue{}
		}
		return &engine.FieldRegion{Field: e.Field}
	case *syntax.BinaryExpr:
		return &engine.Compare{Op: e.Op, LHS: p.ValueOf(e.X), RHS: p.ValueOf(e.Y)}
	case *syntax.CallExpr:
		if f := p.selfGetterField(e); f != nil && p.nilness[f] == isNil {
			return &engine.NilValue{}
		}
		return &engine.Conjured{Origin: e}
	}
	return &engine.Conjured{Origin: e}
}

func (p *path) KnownNil(v engine.SymValue) bool {
	switch v := v.(type) {
	case *engine.NilValue:
		return true
	case *engine.FieldRegion:
		return p.nilness[v.Field] == isNil
	}
	return false
}

// selfGetterField matches `self.x` reads: a no-argument call on self backed
// by a declared field.
func (p *path) selfGetterField(call *syntax.CallExpr) *syntax.Field {
	if _, ok := unparen(call.Recv).(*syntax.SelfExpr); !ok {
		return nil
	}
	if len(call.Args) != 0 {
		return nil
	}
	prop := p.class.PropertyNamed(call.Selector)
	if prop == nil {
		return nil
	}
	return prop.Backing
}

func (p *path) fork() *path {
	n := make(map[*syntax.Field]nilness, len(p.nilness))
	for k, v := range p.nilness {
		n[k] = v
	}
	// state is immutable, sharing the pointer is safe
	return &path{eng: p.eng, class: p.class, method: p.method, state: p.state, nilness: n}
}

// run explores the statement list to the end of the path. Branches fork the
// path, run the taken branch and then the continuation, so every acyclic
// path through the method is explored exactly once.
func (p *path) run(stmts []syntax.Stmt) {
	for i := 0; i < len(stmts); i++ {
		s := stmts[i]
		if pre := p.eng.hooks.PreStmt; pre != nil {
			pre(s, p)
		}
		switch s := s.(type) {
		case *syntax.ExprStmt:
			p.evalForEffect(s.X)
		case *syntax.AssignStmt:
			p.evalForEffect(s.RHS)
			if ref, ok := unparen(s.LHS).(*syntax.FieldRef); ok && ref.Field != nil {
				p.nilness[ref.Field] = p.nilnessOf(s.RHS)
			}
		case *syntax.ReturnStmt:
			p.endFunction()
			return
		case *syntax.Block:
			p.run(concat(s.Stmts, stmts[i+1:]))
			return
		case *syntax.IfStmt:
			cond := p.ValueOf(s.Cond)
			rest := stmts[i+1:]
			for _, outcome := range [2]bool{true, false} {
				b := p.fork()
				if as := p.eng.hooks.Assume; as != nil {
					b.state = as(b.state, cond, outcome)
				}
				b.learn(s.Cond, outcome)
				var branch []syntax.Stmt
				if outcome && s.Then != nil {
					branch = s.Then.Stmts
				} else if !outcome && s.Else != nil {
					branch = s.Else.Stmts
				}
				b.run(concat(branch, rest))
			}
			return
		}
	}
	p.endFunction()
}

func (p *path) endFunction() {
	if h := p.eng.hooks.EndFunction; h != nil {
		h(p)
	}
}

// evalForEffect evaluates nested calls receiver-and-arguments first, firing
// the post-call event for each.
func (p *path) evalForEffect(e syntax.Expr) {
	if e == nil {
		return
	}
	switch e := unparen(e).(type) {
	case *syntax.CallExpr:
		p.evalForEffect(e.Recv)
		for _, a := range e.Args {
			p.evalForEffect(a)
		}
		if post := p.eng.hooks.PostCall; post != nil {
			post(e, p)
		}
	case *syntax.BinaryExpr:
		p.evalForEffect(e.X)
		p.evalForEffect(e.Y)
	}
}

func (p *path) nilnessOf(e syntax.Expr) nilness {
	switch e := unparen(e).(type) {
	case *syntax.NilLit:
		return isNil
	case *syntax.SelfExpr:
		return notNil
	case *syntax.FieldRef:
		return p.nilness[e.Field]
	}
	return unknownNil
}

// learn applies a branch outcome to the host's own constraints: comparisons
// of a field (directly or via its getter on self) against the null literal
// pin the field's nilness on the taken path.
func (p *path) learn(cond syntax.Expr, outcome bool) {
	be, ok := unparen(cond).(*syntax.BinaryExpr)
	if !ok {
		return
	}
	for _, ops := range [2][2]syntax.Expr{{be.X, be.Y}, {be.Y, be.X}} {
		if _, ok := unparen(ops[1]).(*syntax.NilLit); !ok {
			continue
		}
		var field *syntax.Field
		switch x := unparen(ops[0]).(type) {
		case *syntax.FieldRef:
			field = x.Field
		case *syntax.CallExpr:
			field = p.selfGetterField(x)
		}
		if field == nil {
			continue
		}
		if (be.Op == syntax.Eq) == outcome {
			p.nilness[field] = isNil
		} else {
			p.nilness[field] = notNil
		}
		return
	}
}

func concat(a, b []syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
