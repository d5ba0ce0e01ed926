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

// Package syntax declares the host-facing syntax-tree types over which the
// checker operates: class implementations of a reference-counted language,
// their fields, accessor-backed properties and methods, and the statement and
// expression forms the analysis needs to see. The host front end owns parsing
// and name resolution; it hands the checker fully resolved values of these
// types.
package syntax

import "fmt"

// RefCountMode is the reference-counting discipline of a compiled unit.
type RefCountMode uint8

const (
	// ManualRefCount means object ownership ends at explicit release calls.
	ManualRefCount RefCountMode = iota
	// AutoRefCount means the compiler releases fields in a generated teardown.
	AutoRefCount
)

// Ownership is the memory-management kind of a declared property.
type Ownership uint8

const (
	// Retain properties take an owning reference to their assigned value.
	Retain Ownership = iota
	// Copy properties own a copy of their assigned value.
	Copy
	// Weak properties are non-owning but auto-zeroing, so they cannot dangle.
	Weak
	// Assign properties are non-owning and non-zeroing. Storing an object in
	// an Assign property does not keep it alive, and the pointer is left
	// dangling when the object dies.
	Assign
)

// Pos is a source position reported by the host front end.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Class is one class implementation: the unit of analysis for both passes.
type Class struct {
	Name       string
	Fields     []*Field
	Properties []*Property
	Methods    []*Method
	Pos        Pos
}

// FieldNamed returns the declared field with the given name, or nil.
func (c *Class) FieldNamed(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PropertyNamed returns the declared property with the given name, or nil.
func (c *Class) PropertyNamed(name string) *Property {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MethodNamed returns the method with the given selector, or nil. A non-nil
// result for an accessor selector means the class gives the accessor an
// explicit body instead of relying on the synthesized one.
func (c *Class) MethodNamed(selector string) *Method {
	for _, m := range c.Methods {
		if m.Selector == selector {
			return m
		}
	}
	return nil
}

// Field is an instance variable of a class. TypeName is the class name of the
// object it stores, when the host could resolve one.
type Field struct {
	Name     string
	TypeName string
	Pos      Pos
}

// Property is a declared accessor-backed property. Backing is the field the
// synthesized accessors read and write; it is nil for properties the host
// could not pair with storage.
type Property struct {
	Name      string
	Ownership Ownership
	Backing   *Field
}

// Method is one method implementation. IsInitializer is set by the host for
// designated-initializer-family selectors. Body is nil for declarations
// without an implementation.
type Method struct {
	Selector      string
	IsInitializer bool
	Body          *Block
	Pos           Pos
}
