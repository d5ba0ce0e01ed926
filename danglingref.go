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

// Package danglingref detects a memory-safety defect in reference-counted
// object graphs: an object that stored a back-reference to itself in another
// object's non-owning property and never cleared it before its own ownership
// of that object ends. If the other object outlives it, the back-reference
// dangles.
//
// The analysis runs in two passes over each class implementation. A
// syntactic fact-finding pass records which fields may hold such a
// back-reference and through which properties; a path-sensitive pass, driven
// by the host engine's path exploration, then verifies at every release
// point that all of them were cleared on the path reaching it. The design
// trades soundness for precision: branch guards like
// `if (field.property != self)` are trusted for the rest of the path.
package danglingref

import (
	"go.uber.org/danglingref/checker"
	"go.uber.org/danglingref/config"
	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/factfinder"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/syntax"
)

// Checker analyzes one compiled unit. It owns the unit's fact store: the
// store is constructed with the Checker and discarded by the unit-end hook,
// so facts never leak across units (a same-named class in another unit is a
// distinct class).
type Checker struct {
	conf    *config.Config
	store   *facts.Store
	finder  *factfinder.Finder
	dynamic *checker.Checker
}

// NewChecker builds a checker for one unit. A nil conf uses the default
// selector vocabulary.
func NewChecker(conf *config.Config) *Checker {
	if conf == nil {
		conf = config.Default()
	}
	store := facts.NewStore()
	return &Checker{
		conf:    conf,
		store:   store,
		finder:  factfinder.New(conf, store),
		dynamic: checker.New(conf, store),
	}
}

// Store exposes the unit's fact store, e.g. for host-side snapshot caching.
func (c *Checker) Store() *facts.Store {
	return c.store
}

// Hooks returns the callbacks to register with the host engine.
func (c *Checker) Hooks() engine.Hooks {
	return engine.Hooks{
		ClassDecl:   c.classDecl,
		PreStmt:     c.dynamic.PreStmt,
		PostCall:    c.dynamic.PostCall,
		EndFunction: c.dynamic.EndFunction,
		Assume:      c.dynamic.Assume,
		UnitEnd:     c.store.Clear,
	}
}

// classDecl runs fact finding for the class, then the one check that needs
// no path exploration: a class with dangerous fields and no teardown method
// leaves every back-reference uncleared in the generated teardown.
func (c *Checker) classDecl(class *syntax.Class, mode syntax.RefCountMode, r engine.Reporter) {
	c.finder.AnalyzeImplementation(class)
	c.dynamic.ReportUnclearedAtImplicitTeardown(class, mode, r)
}
