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

// Package match hosts the stateless predicates and extractors both passes
// share: recognizing the subject reference, field lvalues, property accessor
// calls and observable singletons. Matchers never fail loudly; an expression
// that fits no pattern simply yields a nil/empty result and the caller skips
// it.
package match

import (
	"strings"

	"go.uber.org/danglingref/config"
	"go.uber.org/danglingref/syntax"
)

// Unwrap strips grouping and opaque-value wrappers.
func Unwrap(e syntax.Expr) syntax.Expr {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// IsSubjectExpr reports whether the expression is the receiver of the
// enclosing method, looking through wrappers.
func IsSubjectExpr(e syntax.Expr) bool {
	if e == nil {
		return false
	}
	_, ok := Unwrap(e).(*syntax.SelfExpr)
	return ok
}

// Arg returns the i-th argument of the call, or nil when the call has fewer
// arguments.
func Arg(call *syntax.CallExpr, i int) syntax.Expr {
	if i >= len(call.Args) {
		return nil
	}
	return call.Args[i]
}

// PropertyNameFromSetter derives the property name from a setter selector:
// "setDelegate:" becomes "delegate". Fancy setter names are not supported and
// yield "".
func PropertyNameFromSetter(selector string) string {
	if len(selector) < len("setX:") || !strings.HasPrefix(selector, "set") || !strings.HasSuffix(selector, ":") {
		return ""
	}
	name := selector[len("set") : len(selector)-1]
	return strings.ToLower(name[:1]) + name[1:]
}

// PropertySetter resolves the call to the property whose setter it invokes on
// the receiver's statically known class, or nil.
func PropertySetter(call *syntax.CallExpr) *syntax.Property {
	if call.ReceiverClass == nil || len(call.Args) != 1 {
		return nil
	}
	name := PropertyNameFromSetter(call.Selector)
	if name == "" {
		return nil
	}
	return call.ReceiverClass.PropertyNamed(name)
}

// PropertyGetter resolves the call to the property whose getter it invokes on
// the receiver's statically known class, or nil.
func PropertyGetter(call *syntax.CallExpr) *syntax.Property {
	if call.ReceiverClass == nil || len(call.Args) != 0 {
		return nil
	}
	return call.ReceiverClass.PropertyNamed(call.Selector)
}

// FieldLValue matches the two syntactic idioms for "the field": a direct
// field reference `_x`, and a getter chain `self.x` reading a property of the
// class under analysis that is backed by a real field. Anything else yields
// nil.
func FieldLValue(e syntax.Expr, class *syntax.Class) *syntax.Field {
	if e == nil {
		return nil
	}
	switch e := Unwrap(e).(type) {
	case *syntax.FieldRef:
		return e.Field
	case *syntax.CallExpr:
		if !IsSubjectExpr(e.Recv) {
			return nil
		}
		prop := PropertyGetter(e)
		if prop == nil && class != nil && len(e.Args) == 0 {
			prop = class.PropertyNamed(e.Selector)
		}
		if prop == nil {
			return nil
		}
		return prop.Backing
	}
	return nil
}

// ObservableSingleton matches configured class-level singleton accessors such
// as `[NSNotificationCenter defaultCenter]` and returns their canonical key,
// or "".
func ObservableSingleton(e syntax.Expr, conf *config.Config) string {
	if e == nil {
		return ""
	}
	call, ok := Unwrap(e).(*syntax.CallExpr)
	if !ok || call.Recv != nil || call.ClassRecv == "" {
		return ""
	}
	return conf.SingletonKey(call.ClassRecv, call.Selector)
}
