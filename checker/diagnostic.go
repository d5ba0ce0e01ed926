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
	"fmt"
	"strings"

	"go.uber.org/danglingref/engine"
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/syntax"
)

// FindingTitle and FindingCategory key every finding this checker emits.
const (
	FindingTitle    = "Leaking unsafe reference to self"
	FindingCategory = "Memory error"
)

// leakMessage builds the report text for one unresolved dangerous property.
// declContext names the release point when it is not the expression itself
// (e.g. "ARC-generated dealloc"); className is the declared class of the
// value stored in the field, when known.
func leakMessage(fieldName, propName, className, declContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Leaking unsafe reference to self stored in %s.%s", fieldName, propName)
	if declContext != "" {
		fmt.Fprintf(&b, " (in %s)", declContext)
	}
	b.WriteString(". ")

	fmt.Fprintf(&b, "The assign property '%s' of the ", propName)
	if className != "" {
		fmt.Fprintf(&b, "instance of %s", className)
	} else {
		b.WriteString("object")
	}
	fmt.Fprintf(&b, " stored in '%s' appears to occasionally point to self. ", fieldName)

	fmt.Fprintf(&b, "For memory safety, you need to clear this property explicitly "+
		"before losing reference to this object, typically by adding a line: "+
		"'%s.%s = nil;'. ", fieldName, propName)

	fmt.Fprintf(&b, "In case of a false warning, consider adding an assert instead: "+
		"'assert(%s.%s != self);' or, if applicable: 'assert(!%s);'.",
		fieldName, propName, fieldName)

	return b.String()
}

// verifyCleared reports every dangerous property of the field that the path's
// record does not prove cleared. rec may be nil (nothing cleared).
func verifyCleared(ff *facts.FieldFacts, rec *ClearanceRecord, field *syntax.Field, declContext string, pos syntax.Pos, report func(engine.Finding)) {
	for _, prop := range ff.DangerousProperties.Keys() {
		if rec.PropertyCleared(prop) {
			continue
		}
		report(engine.Finding{
			Title:    FindingTitle,
			Category: FindingCategory,
			Message:  leakMessage(field.Name, prop, field.TypeName, declContext),
			Pos:      pos,
		})
	}
}
