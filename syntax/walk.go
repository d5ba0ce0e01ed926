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

package syntax

// InspectExprs walks every expression reachable from the block in depth-first
// order, calling f for each. If f returns false the walk does not descend
// into that expression's children.
func InspectExprs(b *Block, f func(Expr) bool) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		inspectStmt(s, f)
	}
}

func inspectStmt(s Stmt, f func(Expr) bool) {
	switch s := s.(type) {
	case *Block:
		InspectExprs(s, f)
	case *ExprStmt:
		inspectExpr(s.X, f)
	case *AssignStmt:
		inspectExpr(s.LHS, f)
		inspectExpr(s.RHS, f)
	case *IfStmt:
		inspectExpr(s.Cond, f)
		InspectExprs(s.Then, f)
		InspectExprs(s.Else, f)
	case *ReturnStmt:
		inspectExpr(s.X, f)
	}
}

func inspectExpr(e Expr, f func(Expr) bool) {
	if e == nil {
		return
	}
	if !f(e) {
		return
	}
	switch e := e.(type) {
	case *ParenExpr:
		inspectExpr(e.X, f)
	case *BinaryExpr:
		inspectExpr(e.X, f)
		inspectExpr(e.Y, f)
	case *CallExpr:
		inspectExpr(e.Recv, f)
		for _, a := range e.Args {
			inspectExpr(a, f)
		}
	}
}
