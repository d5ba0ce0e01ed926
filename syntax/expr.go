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

// Expr is implemented by all expression nodes.
type Expr interface {
	exprNode()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	stmtNode()
}

// SelfExpr is the reference to the receiver of the enclosing method.
type SelfExpr struct{}

// FieldRef is a direct reference to a field of the enclosing class.
type FieldRef struct {
	Field *Field
	Pos   Pos
}

// NilLit is the null literal.
type NilLit struct{}

// ParenExpr wraps an expression in grouping or an opaque-value node; the
// matchers look through it.
type ParenExpr struct {
	X Expr
}

// CmpOp is a comparison operator. Only (in)equality matters to the checker.
type CmpOp uint8

const (
	Eq CmpOp = iota
	Ne
)

// BinaryExpr is an (in)equality comparison.
type BinaryExpr struct {
	Op   CmpOp
	X, Y Expr
}

// CallExpr is a dynamically dispatched call ("message send"). Recv is the
// receiver expression for instance calls and nil for class-level calls, in
// which case ClassRecv holds the class name. ReceiverClass is the statically
// resolved class of the receiver when the host knows it; accessor resolution
// is performed against it.
type CallExpr struct {
	Selector      string
	Recv          Expr
	ClassRecv     string
	ReceiverClass *Class
	Args          []Expr
	Pos           Pos
}

// Block is a braced statement list.
type Block struct {
	Stmts []Stmt
}

// ExprStmt is an expression evaluated for effect, typically a call.
type ExprStmt struct {
	X Expr
}

// AssignStmt is a simple assignment. Only direct field stores are meaningful
// to the checker; property stores arrive as setter CallExprs instead.
type AssignStmt struct {
	LHS Expr
	RHS Expr
	Pos Pos
}

// IfStmt is a two-way branch. Else may be nil.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block
}

// ReturnStmt exits the enclosing method.
type ReturnStmt struct {
	X Expr
}

func (*SelfExpr) exprNode()   {}
func (*FieldRef) exprNode()   {}
func (*NilLit) exprNode()     {}
func (*ParenExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}

func (*Block) stmtNode()      {}
func (*ExprStmt) stmtNode()   {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode() {}
