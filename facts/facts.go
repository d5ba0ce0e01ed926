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

// Package facts implements the per-class fact store: the output of the
// syntactic fact-finding pass and the static side of the dynamic checker's
// verification. A store lives for exactly one compiled unit; it is populated
// before path exploration of a class begins and is read-only afterwards, so
// the two passes share it without synchronization.
package facts

import (
	"go.uber.org/danglingref/util/orderedmap"
)

// FieldFacts records why a field is interesting. An entry exists only when at
// least one fact is set; facts are write-only for the duration of pass 1 and
// never retracted.
type FieldFacts struct {
	// DangerousProperties are the non-owning properties of the field's value
	// through which the subject may have been stored, e.g. "delegate" after
	// seeing `[_x setDelegate:self]`.
	DangerousProperties *orderedmap.OrderedMap[string, bool]

	// MayBeEventTarget is set after seeing `[_x addTarget:self ...]`.
	MayBeEventTarget bool

	// MayBeEventObserver is set after seeing `[_x addObserver:self ...]`.
	MayBeEventObserver bool
}

func newFieldFacts() *FieldFacts {
	return &FieldFacts{DangerousProperties: orderedmap.New[string, bool]()}
}

// IsDangerousProperty reports whether the subject may have been stored into
// the named property of this field's value.
func (f *FieldFacts) IsDangerousProperty(name string) bool {
	return f.DangerousProperties.Value(name)
}

// SharedObserverFacts records, per observable singleton, the methods that may
// register the subject as an observer of it. Collected only; no verification
// consumes these yet.
type SharedObserverFacts struct {
	MayAddObserverInMethod map[string]bool
}

// ClassFacts is everything pass 1 learned about one class implementation.
// Fields are keyed by field name; names are unique within a class.
type ClassFacts struct {
	Fields              *orderedmap.OrderedMap[string, *FieldFacts]
	SharedObservers     *orderedmap.OrderedMap[string, *SharedObserverFacts]
	PseudoConstructors  map[string]bool
	HasExplicitTeardown bool
}

func newClassFacts() *ClassFacts {
	return &ClassFacts{
		Fields:             orderedmap.New[string, *FieldFacts](),
		SharedObservers:    orderedmap.New[string, *SharedObserverFacts](),
		PseudoConstructors: make(map[string]bool),
	}
}

// FieldFacts returns the facts for the named field, or nil when the field is
// not interesting.
func (c *ClassFacts) FieldFacts(fieldName string) *FieldFacts {
	f, _ := c.Fields.Load(fieldName)
	return f
}

func (c *ClassFacts) ensureField(fieldName string) *FieldFacts {
	if f, ok := c.Fields.Load(fieldName); ok {
		return f
	}
	f := newFieldFacts()
	c.Fields.Store(fieldName, f)
	return f
}

// FieldMayStoreSubject records that the subject may be stored in the named
// non-owning property of the field's value.
func (c *ClassFacts) FieldMayStoreSubject(fieldName, propName string) {
	c.ensureField(fieldName).DangerousProperties.Store(propName, true)
}

// FieldMayTargetSubject records a target-action registration of the subject
// on the field's value.
func (c *ClassFacts) FieldMayTargetSubject(fieldName string) {
	c.ensureField(fieldName).MayBeEventTarget = true
}

// FieldMayObserveSubject records an observer registration of the subject on
// the field's value.
func (c *ClassFacts) FieldMayObserveSubject(fieldName string) {
	c.ensureField(fieldName).MayBeEventObserver = true
}

// SharedObjectMayObserveSubject records that methodName may register the
// subject as an observer of the named singleton.
func (c *ClassFacts) SharedObjectMayObserveSubject(singletonKey, methodName string) {
	s, ok := c.SharedObservers.Load(singletonKey)
	if !ok {
		s = &SharedObserverFacts{MayAddObserverInMethod: make(map[string]bool)}
		c.SharedObservers.Store(singletonKey, s)
	}
	s.MayAddObserverInMethod[methodName] = true
}

// AddPseudoConstructor marks the selector as an "everything starts cleared"
// entry point.
func (c *ClassFacts) AddPseudoConstructor(selector string) {
	c.PseudoConstructors[selector] = true
}

// Store maps class names to their facts for one compiled unit.
type Store struct {
	classes *orderedmap.OrderedMap[string, *ClassFacts]
}

// NewStore returns an empty store. The unit driver owns it: one store per
// compiled unit, cleared when the unit completes.
func NewStore() *Store {
	return &Store{classes: orderedmap.New[string, *ClassFacts]()}
}

// Ensure returns the facts entry for the class, creating it if needed. Pass 1
// uses this.
func (s *Store) Ensure(className string) *ClassFacts {
	if c, ok := s.classes.Load(className); ok {
		return c
	}
	c := newClassFacts()
	s.classes.Store(className, c)
	return c
}

// Get returns the facts for a class without inserting. A class that never
// reached pass 1 (forward-declared, defined elsewhere) has no facts and the
// dynamic checker treats it as having no interesting fields.
func (s *Store) Get(className string) (*ClassFacts, bool) {
	return s.classes.Load(className)
}

// Len returns the number of classes with fact entries.
func (s *Store) Len() int {
	return s.classes.Len()
}

// Clear discards every entry. Facts must not outlive their compiled unit.
func (s *Store) Clear() {
	s.classes = orderedmap.New[string, *ClassFacts]()
}
