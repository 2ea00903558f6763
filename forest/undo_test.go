package forest

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/npillmayer/canopy/oplog"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state[T comparable] struct {
	order    []T
	children map[T][]T
	parents  map[T]T
}

func stateOf[T comparable](f *Forest[T]) state[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := state[T]{
		order:    slices.Clone(f.order),
		children: make(map[T][]T, len(f.children)),
		parents:  maps.Clone(f.parents),
	}
	for n, ch := range f.children {
		s.children[n] = slices.Clone(ch)
	}
	return s
}

func (s state[T]) equals(other state[T]) bool {
	return slices.Equal(s.order, other.order) &&
		maps.Equal(s.parents, other.parents) &&
		maps.EqualFunc(s.children, other.children, func(a, b []T) bool {
			return slices.Equal(a, b)
		})
}

// ---------------------------------------------------------------------------

func TestAddRemoveReplay(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	l := oplog.New()
	f := New(WithLog[string](l))
	var events []oplog.Event
	h := l.Subscribe(func(ev oplog.Event) { events = append(events, ev) })
	require.NoError(t, f.Add("A", ""))
	require.NoError(t, f.Remove("A"))
	l.Unsubscribe(h)
	require.Len(t, events, 2)
	t.Logf("events = %v", events)
	assert.Equal(t, []any{"A"}, events[0].Undo.Args)
	assert.Equal(t, []any{"A", "", 0}, events[1].Undo.Args, "removal captures the prior parent")
	//
	require.NoError(t, l.Replay(events[1]))
	assert.Equal(t, []string{"A"}, f.Roots())
	p, err := f.Parent("A")
	assert.NoError(t, err)
	assert.Equal(t, "", p)
	//
	require.NoError(t, l.Replay(events[0]))
	assert.Zero(t, f.Len(), "replaying both events restores the initial state")
}

func TestRemoveReportsEveryNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := buildABC(t)
	require.NoError(t, f.Add("D", "B"))
	before := stateOf(f)
	rec := oplog.NewRecorder(f.Log())
	rec.Start()
	defer rec.Stop()
	require.NoError(t, f.Remove("A"))
	events := rec.Events()
	removed := make([]any, len(events))
	for i, ev := range events {
		removed[i] = ev.Args[0]
	}
	assert.Equal(t, []any{"C", "D", "B", "A"}, removed)
	assert.Equal(t, []any{"C", "A", 1}, events[0].Undo.Args)
	//
	require.NoError(t, rec.Undo())
	if !stateOf(f).equals(before) {
		t.Errorf("expected undo to restore %v, is %v", before.order, f.Nodes())
	}
	assert.NoError(t, checkInvariants(f))
}

func TestUndoReparent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := buildABC(t)
	require.NoError(t, f.Add("D", "A"))
	before := stateOf(f)
	rec := oplog.NewRecorder(f.Log())
	rec.Start()
	defer rec.Stop()
	require.NoError(t, f.Reparent("C", "D"))
	require.NoError(t, f.ReparentAt("B", "", 0))
	assert.Equal(t, []string{"B", "A", "D", "C"}, f.Nodes())
	require.Equal(t, 2, rec.Len())
	assert.Equal(t, []any{"C", "A", 1}, rec.Events()[0].Undo.Args)
	//
	require.NoError(t, rec.Undo())
	assert.Equal(t, []string{"A", "B", "C", "D"}, f.Nodes())
	assert.True(t, stateOf(f).equals(before))
	// redo
	require.NoError(t, rec.Undo())
	assert.Equal(t, []string{"B", "A", "D", "C"}, f.Nodes())
}

func TestNoEventsWithoutListeners(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := buildABC(t)
	ops := OperationsFor[string]()
	assert.Equal(t, oplog.ObservedInactive, f.Log().State(ops.Add))
	rec := oplog.NewRecorder(f.Log())
	rec.Start()
	assert.Equal(t, oplog.ObservedActive, f.Log().State(ops.Remove))
	rec.Stop()
	require.NoError(t, f.Remove("C"))
	assert.Zero(t, rec.Len())
}

func TestDisabledForestOperation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	l := oplog.New()
	ops := OperationsFor[string]()
	l.DisableDispatching(ops.Reparent)
	f := New(WithLog[string](l))
	rec := oplog.NewRecorder(l)
	rec.Start()
	defer rec.Stop()
	require.NoError(t, f.Add("A", ""))
	require.NoError(t, f.Add("B", ""))
	require.NoError(t, f.Reparent("B", "A"))
	assert.Equal(t, 2, rec.Len())
	assert.True(t, l.Registered(ops.Reparent))
}

func TestForestsShareLog(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	l := oplog.New()
	f1 := New(WithLog[string](l))
	f2 := New(WithLog[string](l))
	g := New(WithLog[int](l))
	if OperationsFor[string]().Add == OperationsFor[int]().Add {
		t.Error("expected operation names to differ per node type")
	}
	rec := oplog.NewRecorder(l)
	rec.Start()
	defer rec.Stop()
	require.NoError(t, f1.Add("A", ""))
	require.NoError(t, f2.Add("A", ""))
	require.NoError(t, g.Add(7, 0))
	require.Equal(t, 3, rec.Len())
	assert.Same(t, f2, rec.Events()[1].Target)
	require.NoError(t, rec.Undo())
	assert.Zero(t, f1.Len())
	assert.Zero(t, f2.Len())
	assert.Zero(t, g.Len())
}

func TestGuardedForestTransaction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := buildABC(t)
	before := stateOf(f)
	boom := errors.New("boom")
	err := oplog.Guard(f.Log(), func() error {
		if err := f.Remove("B"); err != nil {
			return err
		}
		if err := f.Add("X", "C"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, stateOf(f).equals(before), "failed transaction is reverted")
}

func TestRoundTripProperty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	check := func(prefix, script []uint16) bool {
		f := newTestForest[int]()
		runScript(f, prefix)
		before := stateOf(f)
		rec := oplog.NewRecorder(f.Log())
		rec.Start()
		defer rec.Stop()
		runScript(f, script)
		after := stateOf(f)
		if rec.Len() == 0 {
			return before.equals(after)
		}
		if err := rec.Undo(); err != nil {
			t.Logf("undo: %v", err)
			return false
		}
		if !stateOf(f).equals(before) {
			t.Logf("expected %v after undo, is %v", before.order, f.Nodes())
			return false
		}
		if err := rec.Undo(); err != nil { // redo
			t.Logf("redo: %v", err)
			return false
		}
		return stateOf(f).equals(after) && checkInvariants(f) == nil
	}
	if err := quick.Check(check, nil); err != nil {
		t.Error(err)
	}
}

func TestMutationAndEventAreAtomic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := newTestForest[string]()
	require.NoError(t, f.Add("A", ""))
	l := f.Log()
	rec := oplog.NewRecorder(l)
	rec.Start()
	defer rec.Stop()
	entered, release := make(chan struct{}), make(chan struct{})
	var once sync.Once
	h := l.Observe(func(ev oplog.Event) {
		if ev.Op == OperationsFor[string]().Add {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})
	defer l.Unobserve(h)
	addDone, removeDone := make(chan error), make(chan error)
	go func() { addDone <- f.Add("X", "A") }()
	<-entered // add(X) is applied, its event is being dispatched
	go func() { removeDone <- f.Remove("A") }()
	select {
	case err := <-removeDone:
		t.Fatalf("expected remove to wait for dispatch of add, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-addDone)
	require.NoError(t, <-removeDone)
	//
	events := rec.Events()
	ops := make([]string, len(events))
	for i, ev := range events {
		ops[i] = fmt.Sprintf("%s %v", ev.Op, ev.Args[0])
	}
	add, remove := OperationsFor[string]().Add, OperationsFor[string]().Remove
	assert.Equal(t, []string{
		fmt.Sprintf("%s X", add),
		fmt.Sprintf("%s X", remove),
		fmt.Sprintf("%s A", remove),
	}, ops)
	require.NoError(t, rec.Undo())
	assert.Equal(t, []string{"A"}, f.Nodes())
	assert.NoError(t, checkInvariants(f))
}

func TestConcurrentMutationsUndo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "canopy.forest")
	defer teardown()
	//
	f := newTestForest[string]()
	require.NoError(t, f.Add("shared", ""))
	before := stateOf(f)
	rec := oplog.NewRecorder(f.Log())
	rec.Start()
	defer rec.Stop()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			top := fmt.Sprintf("g%d", g)
			if err := f.Add(top, "shared"); err != nil {
				t.Errorf("cannot add %s: %v", top, err)
				return
			}
			for i := 0; i < 10; i++ {
				n := fmt.Sprintf("g%d-%d", g, i)
				f.Add(n, top)
				if i%3 == 0 {
					f.Reparent(n, "")
				}
				if i%4 == 1 {
					f.ReparentAt(n, "shared", 0)
				}
				if i%5 == 2 {
					f.Remove(n)
				}
				_ = f.Nodes()
			}
			if g%2 == 0 {
				f.Remove(top)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, checkInvariants(f))
	after := stateOf(f)
	//
	require.NoError(t, rec.Undo())
	if !stateOf(f).equals(before) {
		t.Errorf("expected undo to restore %v, is %v", before.order, f.Nodes())
	}
	require.NoError(t, rec.Undo()) // redo
	assert.True(t, stateOf(f).equals(after))
	assert.NoError(t, checkInvariants(f))
}
