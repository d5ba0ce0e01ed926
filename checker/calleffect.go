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
	"go.uber.org/danglingref/config"
	"go.uber.org/danglingref/match"
	"go.uber.org/danglingref/syntax"
)

// callEffectKind classifies what a call on an interesting field's value does
// to that field's clearance state.
type callEffectKind uint8

const (
	// effectNone: no state transition; recording one would only fork
	// identical path states.
	effectNone callEffectKind = iota
	// effectPropertySet: a non-owning property setter ran; prop and
	// argIsSubject say which property and whether the subject was stored.
	effectPropertySet
	// effectClearTarget: a removeTarget-style call with the subject argument.
	effectClearTarget
	// effectClearObserver: a removeObserver-style call with the subject
	// argument.
	effectClearObserver
)

type callEffect struct {
	kind         callEffectKind
	prop         string
	argIsSubject bool
}

// classifyFieldCall computes the call's effect once, per call site. Setters
// of owning (or auto-zeroing) properties are deliberately effectNone: they
// cannot leave a dangling link, and cleared-state bookkeeping for them buys
// nothing.
func classifyFieldCall(call *syntax.CallExpr, conf *config.Config) callEffect {
	argIsSubject := match.IsSubjectExpr(match.Arg(call, 0))

	if prop := match.PropertySetter(call); prop != nil {
		if prop.Ownership != syntax.Assign {
			return callEffect{kind: effectNone}
		}
		return callEffect{kind: effectPropertySet, prop: prop.Name, argIsSubject: argIsSubject}
	}
	if argIsSubject && config.HasAnyPrefix(call.Selector, conf.RemoveTargetPrefixes) {
		return callEffect{kind: effectClearTarget}
	}
	if argIsSubject && config.HasAnyPrefix(call.Selector, conf.RemoveObserverPrefixes) {
		return callEffect{kind: effectClearObserver}
	}
	return callEffect{kind: effectNone}
}
