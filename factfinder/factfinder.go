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

// Package factfinder implements the first, purely syntactic pass: a
// depth-first scan of every method body of a class implementation that
// records which fields may end up holding a back-reference to the subject,
// and through which patterns. The pass never reports; unresolvable nodes are
// skipped, which can only narrow what pass 2 checks.
package factfinder

import (
	"go.uber.org/danglingref/config"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/match"
	"go.uber.org/danglingref/syntax"
)

// Finder populates a fact store from class implementations.
type Finder struct {
	conf  *config.Config
	store *facts.Store
}

// New returns a Finder writing into store.
func New(conf *config.Config, store *facts.Store) *Finder {
	return &Finder{conf: conf, store: store}
}

// AnalyzeImplementation gathers facts for one class implementation, creating
// the store entry if this is the first time the class is seen.
func (f *Finder) AnalyzeImplementation(class *syntax.Class) {
	cf := f.store.Ensure(class.Name)
	for _, m := range class.Methods {
		f.classifyMethod(cf, m)
		if m.Body != nil {
			f.scanBody(cf, class, m)
		}
	}
}

// classifyMethod pre-classifies the method declaration: designated
// initializers and selectors matching the configured prefixes are
// pseudo-constructors; the teardown selector flips HasExplicitTeardown.
func (f *Finder) classifyMethod(cf *facts.ClassFacts, m *syntax.Method) {
	if m.IsInitializer {
		cf.AddPseudoConstructor(m.Selector)
		return
	}
	if m.Selector == f.conf.TeardownSelector {
		cf.HasExplicitTeardown = true
	}
	if f.conf.IsPseudoConstructorName(m.Selector) {
		cf.AddPseudoConstructor(m.Selector)
	}
}

// scanBody records dangerous patterns from every call whose first argument is
// the subject.
func (f *Finder) scanBody(cf *facts.ClassFacts, class *syntax.Class, m *syntax.Method) {
	syntax.InspectExprs(m.Body, func(e syntax.Expr) bool {
		call, ok := e.(*syntax.CallExpr)
		if !ok {
			return true
		}
		if call.Recv == nil {
			// Class-level calls have no instance whose field could hold the
			// back-reference.
			return true
		}
		if !match.IsSubjectExpr(match.Arg(call, 0)) {
			return true
		}

		if field := match.FieldLValue(call.Recv, class); field != nil {
			if prop := match.PropertySetter(call); prop != nil && prop.Ownership == syntax.Assign {
				cf.FieldMayStoreSubject(field.Name, prop.Name)
			} else if config.HasAnyPrefix(call.Selector, f.conf.AddTargetPrefixes) {
				cf.FieldMayTargetSubject(field.Name)
			} else if config.HasAnyPrefix(call.Selector, f.conf.AddObserverPrefixes) {
				cf.FieldMayObserveSubject(field.Name)
			}
			return true
		}

		if key := match.ObservableSingleton(call.Recv, f.conf); key != "" {
			if config.HasAnyPrefix(call.Selector, f.conf.AddObserverPrefixes) {
				cf.SharedObjectMayObserveSubject(key, m.Selector)
			}
		}
		return true
	})
}
