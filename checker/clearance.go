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
	"go.uber.org/danglingref/facts"
	"go.uber.org/danglingref/syntax"
)

// ClearanceRecord is the dynamic state of one interesting field on one path:
// which dangerous links are proven to no longer point back to the subject.
// Records stored in path state are immutable; every update goes through a
// with* method returning a copy, so branch forks never see each other's
// writes. All methods tolerate a nil receiver, which is equivalent to
// "nothing cleared yet".
type ClearanceRecord struct {
	ClearedProperties map[string]bool
	TargetCleared     bool
	ObserverCleared   bool
}

// PropertyCleared reports whether the named property was cleared on this
// path.
func (r *ClearanceRecord) PropertyCleared(name string) bool {
	return r != nil && r.ClearedProperties[name]
}

func (r *ClearanceRecord) clone() *ClearanceRecord {
	next := &ClearanceRecord{ClearedProperties: make(map[string]bool)}
	if r != nil {
		for k := range r.ClearedProperties {
			next.ClearedProperties[k] = true
		}
		next.TargetCleared = r.TargetCleared
		next.ObserverCleared = r.ObserverCleared
	}
	return next
}

// withProperty returns a copy with the property marked cleared or, when
// cleared is false, re-armed (the subject was stored into it again).
func (r *ClearanceRecord) withProperty(name string, cleared bool) *ClearanceRecord {
	next := r.clone()
	if cleared {
		next.ClearedProperties[name] = true
	} else {
		delete(next.ClearedProperties, name)
	}
	return next
}

func (r *ClearanceRecord) withTargetCleared() *ClearanceRecord {
	next := r.clone()
	next.TargetCleared = true
	return next
}

func (r *ClearanceRecord) withObserverCleared() *ClearanceRecord {
	next := r.clone()
	next.ObserverCleared = true
	return next
}

// seededClearance builds the record of a field where every expected clearing
// event is assumed to have happened already: all statically dangerous
// properties cleared, target and observer links severed exactly when the
// facts say they may exist.
func seededClearance(ff *facts.FieldFacts) *ClearanceRecord {
	rec := &ClearanceRecord{ClearedProperties: make(map[string]bool)}
	for _, prop := range ff.DangerousProperties.Keys() {
		rec.ClearedProperties[prop] = true
	}
	rec.TargetCleared = ff.MayBeEventTarget
	rec.ObserverCleared = ff.MayBeEventObserver
	return rec
}

// clearanceMap is the per-path field-to-record mapping. The zero value is the
// empty map; with returns a copy, keeping each path's view independent by
// construction.
type clearanceMap struct {
	m map[*syntax.Field]*ClearanceRecord
}

// record returns the field's record, or nil when nothing was cleared yet.
func (c clearanceMap) record(f *syntax.Field) *ClearanceRecord {
	return c.m[f]
}

func (c clearanceMap) with(f *syntax.Field, rec *ClearanceRecord) clearanceMap {
	next := clearanceMap{m: make(map[*syntax.Field]*ClearanceRecord, len(c.m)+1)}
	for k, v := range c.m {
		next.m[k] = v
	}
	next.m[f] = rec
	return next
}
