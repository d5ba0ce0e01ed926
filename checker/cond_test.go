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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/syntax"
)

func TestOpcodeHolds(t *testing.T) {
	t.Parallel()

	// Two opcodes times two assumed outcomes, for each wanted relation.
	require.True(t, opcodeHolds(syntax.Eq, true, true))
	require.True(t, opcodeHolds(syntax.Ne, false, true))
	require.False(t, opcodeHolds(syntax.Eq, false, true))
	require.False(t, opcodeHolds(syntax.Ne, true, true))

	require.True(t, opcodeHolds(syntax.Eq, false, false))
	require.True(t, opcodeHolds(syntax.Ne, true, false))
	require.False(t, opcodeHolds(syntax.Eq, true, false))
	require.False(t, opcodeHolds(syntax.Ne, false, false))
}

// condFixture builds the class under analysis, its facts, and the conjured
// value of reading `[_bar delegate]`.
func condFixture() (*syntax.Class, *facts.ClassFacts, *engine.Conjured, *syntax.Field) {
	field := &syntax.Field{Name: "_bar", TypeName: "Bar"}
	bar := &syntax.Class{
		Name:       "Bar",
		Properties: []*syntax.Property{{Name: "delegate", Ownership: syntax.Assign}},
	}
	foo := &syntax.Class{
		Name:       "Foo",
		Fields:     []*syntax.Field{field},
		Properties: []*syntax.Property{{Name: "bar", Ownership: syntax.Retain, Backing: field}},
	}
	cf := facts.NewStore().Ensure("Foo")
	cf.FieldMayStoreSubject("_bar", "delegate")

	read := &engine.Conjured{Origin: &syntax.CallExpr{
		Selector:      "delegate",
		Recv:          &syntax.FieldRef{Field: field},
		ReceiverClass: bar,
	}}
	return foo, cf, read, field
}

func TestMatchPropertyNotSubject(t *testing.T) {
	t.Parallel()

	foo, cf, read, field := condFixture()
	self := &engine.SelfRegion{}

	testcases := []struct {
		name       string
		op         syntax.CmpOp
		assumption bool
		want       condKind
	}{
		{"ne assumed true", syntax.Ne, true, condPropertyCleared},
		{"eq assumed false", syntax.Eq, false, condPropertyCleared},
		{"ne assumed false", syntax.Ne, false, condNone},
		{"eq assumed true", syntax.Eq, true, condNone},
	}
	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Both operand orders must behave alike.
			for _, cond := range []*engine.Compare{
				{Op: tc.op, LHS: read, RHS: self},
				{Op: tc.op, LHS: self, RHS: read},
			} {
				m := matchAssumedCondition(cond, tc.assumption, foo, cf)
				require.Equal(t, tc.want, m.kind)
				if tc.want == condPropertyCleared {
					require.Equal(t, field, m.field)
					require.Equal(t, "delegate", m.prop)
				}
			}
		})
	}
}

func TestMatchPropertyNil(t *testing.T) {
	t.Parallel()

	foo, cf, read, field := condFixture()
	nilv := &engine.NilValue{}

	for _, cond := range []*engine.Compare{
		{Op: syntax.Eq, LHS: read, RHS: nilv},
		{Op: syntax.Eq, LHS: nilv, RHS: read},
		{Op: syntax.Ne, LHS: read, RHS: nilv},
	} {
		assumption := cond.Op == syntax.Eq
		m := matchAssumedCondition(cond, assumption, foo, cf)
		require.Equal(t, condPropertyCleared, m.kind)
		require.Equal(t, field, m.field)
		require.Equal(t, "delegate", m.prop)
	}

	// The unfavorable outcome proves nothing.
	m := matchAssumedCondition(&engine.Compare{Op: syntax.Eq, LHS: read, RHS: nilv}, false, foo, cf)
	require.Equal(t, condNone, m.kind)
}

func TestMatchFieldNil(t *testing.T) {
	t.Parallel()

	foo, cf, _, field := condFixture()
	nilv := &engine.NilValue{}

	// Raw storage read.
	m := matchAssumedCondition(&engine.Compare{
		Op: syntax.Eq, LHS: &engine.FieldRegion{Field: field}, RHS: nilv,
	}, true, foo, cf)
	require.Equal(t, condFieldNil, m.kind)
	require.Equal(t, field, m.field)

	// Getter chain on the subject conjures an opaque read of the same field.
	getter := &engine.Conjured{Origin: &syntax.CallExpr{
		Selector:      "bar",
		Recv:          &syntax.SelfExpr{},
		ReceiverClass: foo,
	}}
	m = matchAssumedCondition(&engine.Compare{Op: syntax.Ne, LHS: nilv, RHS: getter}, false, foo, cf)
	require.Equal(t, condFieldNil, m.kind)
	require.Equal(t, field, m.field)
}

func TestMatchRejectsUninteresting(t *testing.T) {
	t.Parallel()

	foo, cf, read, _ := condFixture()
	nilv := &engine.NilValue{}

	// A field without facts never matches.
	other := &syntax.Field{Name: "_other"}
	m := matchAssumedCondition(&engine.Compare{
		Op: syntax.Eq, LHS: &engine.FieldRegion{Field: other}, RHS: nilv,
	}, true, foo, cf)
	require.Equal(t, condNone, m.kind)

	// Non-comparison conditions never match.
	m = matchAssumedCondition(read, true, foo, cf)
	require.Equal(t, condNone, m.kind)

	// Comparing two opaque values never matches.
	m = matchAssumedCondition(&engine.Compare{Op: syntax.Eq, LHS: read, RHS: read}, true, foo, cf)
	require.Equal(t, condNone, m.kind)
}
