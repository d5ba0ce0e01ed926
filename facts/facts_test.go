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

package facts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLazyEntries(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, ok := s.Get("Foo")
	require.False(t, ok)
	require.Equal(t, 0, s.Len())

	cf := s.Ensure("Foo")
	require.NotNil(t, cf)
	require.Same(t, cf, s.Ensure("Foo"))
	require.Equal(t, 1, s.Len())

	// An entry exists for a field only once a fact is recorded for it.
	require.Nil(t, cf.FieldFacts("_bar"))
	cf.FieldMayStoreSubject("_bar", "delegate")
	ff := cf.FieldFacts("_bar")
	require.NotNil(t, ff)
	require.True(t, ff.IsDangerousProperty("delegate"))
	require.False(t, ff.IsDangerousProperty("dataSource"))
	require.False(t, ff.MayBeEventTarget)
	require.False(t, ff.MayBeEventObserver)
}

func TestFieldFactsAccumulate(t *testing.T) {
	t.Parallel()

	cf := NewStore().Ensure("Foo")
	cf.FieldMayStoreSubject("_bar", "delegate")
	cf.FieldMayStoreSubject("_bar", "dataSource")
	cf.FieldMayTargetSubject("_bar")
	cf.FieldMayObserveSubject("_baz")

	ff := cf.FieldFacts("_bar")
	require.Equal(t, []string{"delegate", "dataSource"}, ff.DangerousProperties.Keys())
	require.True(t, ff.MayBeEventTarget)
	require.False(t, ff.MayBeEventObserver)
	require.True(t, cf.FieldFacts("_baz").MayBeEventObserver)
}

func TestSharedObservers(t *testing.T) {
	t.Parallel()

	cf := NewStore().Ensure("Foo")
	cf.SharedObjectMayObserveSubject("+[NSNotificationCenter defaultCenter]", "startObserving")
	cf.SharedObjectMayObserveSubject("+[NSNotificationCenter defaultCenter]", "init")

	so, ok := cf.SharedObservers.Load("+[NSNotificationCenter defaultCenter]")
	require.True(t, ok)
	require.True(t, so.MayAddObserverInMethod["startObserving"])
	require.True(t, so.MayAddObserverInMethod["init"])
	require.False(t, so.MayAddObserverInMethod["dealloc"])
}

func TestPseudoConstructors(t *testing.T) {
	t.Parallel()

	cf := NewStore().Ensure("Foo")
	cf.AddPseudoConstructor("initWithFrame:")
	require.True(t, cf.PseudoConstructors["initWithFrame:"])
	require.False(t, cf.PseudoConstructors["dealloc"])
}

func TestClear(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Ensure("Foo").FieldMayStoreSubject("_bar", "delegate")
	s.Clear()
	require.Equal(t, 0, s.Len())
	_, ok := s.Get("Foo")
	require.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore()
	foo := s.Ensure("Foo")
	foo.FieldMayStoreSubject("_bar", "delegate")
	foo.FieldMayStoreSubject("_bar", "dataSource")
	foo.FieldMayTargetSubject("_button")
	foo.AddPseudoConstructor("init")
	foo.HasExplicitTeardown = true
	foo.SharedObjectMayObserveSubject("+[NSNotificationCenter defaultCenter]", "init")
	s.Ensure("Baz").FieldMayObserveSubject("_center")

	b, err := s.Snapshot()
	require.NoError(t, err)

	restored, err := RestoreSnapshot(b)
	require.NoError(t, err)
	if diff := cmp.Diff(summarize(s), summarize(restored)); diff != "" {
		t.Errorf("restored store differs (-want +got):\n%s", diff)
	}
}

func TestRestoreSnapshotGarbage(t *testing.T) {
	t.Parallel()

	_, err := RestoreSnapshot([]byte("definitely not a snapshot"))
	require.Error(t, err)
}

// summarize flattens a store into plain maps for comparison.
func summarize(s *Store) map[string]map[string]any {
	out := make(map[string]map[string]any)
	s.classes.OrderedRange(func(name string, cf *ClassFacts) bool {
		entry := map[string]any{
			"pseudoConstructors": cf.PseudoConstructors,
			"teardown":           cf.HasExplicitTeardown,
		}
		fields := make(map[string][]string)
		targets := make(map[string][2]bool)
		cf.Fields.OrderedRange(func(fname string, ff *FieldFacts) bool {
			fields[fname] = append([]string{}, ff.DangerousProperties.Keys()...)
			targets[fname] = [2]bool{ff.MayBeEventTarget, ff.MayBeEventObserver}
			return true
		})
		observers := make(map[string]map[string]bool)
		cf.SharedObservers.OrderedRange(func(key string, so *SharedObserverFacts) bool {
			observers[key] = so.MayAddObserverInMethod
			return true
		})
		entry["fields"] = fields
		entry["registrations"] = targets
		entry["sharedObservers"] = observers
		out[name] = entry
		return true
	})
	return out
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
