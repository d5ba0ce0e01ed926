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

package engine

import "go.uber.org/danglingref/syntax"

// SymValue is a value in the engine's symbolic value graph. The checker only
// needs enough structure to decompose (in)equality conditions and to tell
// apart "the subject", "a storage read" and "an opaque call result".
type SymValue interface {
	symValue()
}

// Conjured is the opaque result of evaluating a call the engine did not
// inline, e.g. a property getter. Origin is the producing expression.
type Conjured struct {
	Origin syntax.Expr
}

// FieldRegion is the value read from a field's storage.
type FieldRegion struct {
	Field *syntax.Field
}

// SelfRegion is the value of the receiver parameter: the subject.
type SelfRegion struct{}

// NilValue is the null constant.
type NilValue struct{}

// Compare is an (in)equality between two symbolic values.
type Compare struct {
	Op  syntax.CmpOp
	LHS SymValue
	RHS SymValue
}

func (*Conjured) symValue()    {}
func (*FieldRegion) symValue() {}
func (*SelfRegion) symValue()  {}
func (*NilValue) symValue()    {}
func (*Compare) symValue()     {}

// IsNilValue reports whether v is the null constant.
func IsNilValue(v SymValue) bool {
	_, ok := v.(*NilValue)
	return ok
}

// DenotesSubject reports whether v is known to denote the subject reference.
func DenotesSubject(v SymValue) bool {
	_, ok := v.(*SelfRegion)
	return ok
}
