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

package checker

import (
	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/match"
	"go.uber.org/danglingref/syntax"
)

// The branch idioms treated as clearing evidence form a small closed set, so
// the intentional unsoundness of assuming them for the remainder of the path
// stays auditable:
//
//	field.property != self   assumed true  -> property cleared
//	field.property == nil    assumed true  -> property cleared
//	field == nil             assumed true  -> whole field cleared
//
// (and the symmetric opcode/outcome combinations of each).
type condKind uint8

const (
	condNone condKind = iota
	// condPropertyCleared marks one dangerous property of field cleared.
	condPropertyCleared
	// condFieldNil seeds a fully cleared record: a null field carries no risk
	// at all.
	condFieldNil
)

type condMatch struct {
	kind  condKind
	field *syntax.Field
	prop  string
}

// opcodeHolds reports whether the assumed outcome of the comparison
// establishes equality (wantEquality true) or inequality (wantEquality
// false). Four sign combinations: two opcodes times two outcomes.
func opcodeHolds(op syntax.CmpOp, assumption, wantEquality bool) bool {
	switch op {
	case syntax.Eq:
		return assumption == wantEquality
	case syntax.Ne:
		return assumption != wantEquality
	}
	return false
}

// matchAssumedCondition decomposes a resolved branch condition against the
// idiom set. class is the implementation under analysis on this path and cf
// its facts; reads of uninteresting fields never match.
func matchAssumedCondition(cond engine.SymValue, assumption bool, class *syntax.Class, cf *facts.ClassFacts) condMatch {
	cmp, ok := cond.(*engine.Compare)
	if !ok {
		return condMatch{}
	}

	// field.property != self
	if opcodeHolds(cmp.Op, assumption, false) {
		for _, ops := range [2][2]engine.SymValue{{cmp.LHS, cmp.RHS}, {cmp.RHS, cmp.LHS}} {
			if !engine.DenotesSubject(ops[1]) {
				continue
			}
			if field, prop, ok := interestingPropertyRead(ops[0], class, cf); ok {
				return condMatch{kind: condPropertyCleared, field: field, prop: prop}
			}
		}
	}

	if !opcodeHolds(cmp.Op, assumption, true) {
		return condMatch{}
	}
	for _, ops := range [2][2]engine.SymValue{{cmp.LHS, cmp.RHS}, {cmp.RHS, cmp.LHS}} {
		if !engine.IsNilValue(ops[1]) {
			continue
		}
		// field.property == nil
		if field, prop, ok := interestingPropertyRead(ops[0], class, cf); ok {
			return condMatch{kind: condPropertyCleared, field: field, prop: prop}
		}
		// field == nil, as a raw storage read or through the field's own
		// getter.
		if field, ok := interestingFieldRead(ops[0], class, cf); ok {
			return condMatch{kind: condFieldNil, field: field}
		}
	}
	return condMatch{}
}

// interestingPropertyRead matches an opaque value conjured by reading a
// non-owning property of an interesting field, e.g. `[_x delegate]` or
// `[self.x delegate]`.
func interestingPropertyRead(v engine.SymValue, class *syntax.Class, cf *facts.ClassFacts) (*syntax.Field, string, bool) {
	conj, ok := v.(*engine.Conjured)
	if !ok {
		return nil, "", false
	}
	call, ok := conj.Origin.(*syntax.CallExpr)
	if !ok {
		return nil, "", false
	}
	field := match.FieldLValue(call.Recv, class)
	if field == nil || cf.FieldFacts(field.Name) == nil {
		return nil, "", false
	}
	prop := match.PropertyGetter(call)
	if prop == nil || prop.Ownership != syntax.Assign {
		return nil, "", false
	}
	return field, prop.Name, true
}

// interestingFieldRead matches the value of an interesting field itself:
// either its storage region or the conjured result of its getter on the
// subject.
func interestingFieldRead(v engine.SymValue, class *syntax.Class, cf *facts.ClassFacts) (*syntax.Field, bool) {
	var field *syntax.Field
	switch v := v.(type) {
	case *engine.FieldRegion:
		field = v.Field
	case *engine.Conjured:
		field = match.FieldLValue(v.Origin, class)
	default:
		return nil, false
	}
	if field == nil || cf.FieldFacts(field.Name) == nil {
		return nil, false
	}
	return field, true
}
