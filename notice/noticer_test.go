package notice

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	name  string
	calls *[]string
}

func (r *recorder) handle(e Event) {
	*r.calls = append(*r.calls, r.name+":"+e.Base().Name())
}

type expiringScope struct{ expired bool }

func (s *expiringScope) Expired() bool { return s.expired }

func TestEventNoticer_Trigger_RegistrationOrder(t *testing.T) {
	n := NewEventNoticer("click", "sender")
	var calls []string
	a := &recorder{name: "a", calls: &calls}
	b := &recorder{name: "b", calls: &calls}

	if err := n.On(a.handle, a); err != nil {
		t.Fatal(err)
	}
	n.OnFunc(func(e Event) { calls = append(calls, "lambda") }, 7)
	if err := n.OnStatic(func(e Event, data any) { calls = append(calls, "static:"+data.(string)) }, "x"); err != nil {
		t.Fatal(err)
	}
	if err := n.On(b.handle, b); err != nil {
		t.Fatal(err)
	}

	n.Trigger(NewEvent(nil))

	want := []string{"a:click", "lambda", "static:x", "b:click"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("unexpected calls (-want +got):\n%s", diff)
	}
}

func TestEventNoticer_On_Duplicate(t *testing.T) {
	n := NewEventNoticer("click", nil)
	var calls []string
	a := &recorder{name: "a", calls: &calls}
	b := &recorder{name: "b", calls: &calls}

	if err := n.On(a.handle, a); err != nil {
		t.Fatal(err)
	}
	if err := n.On(a.handle, a); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
	// same method, different scope
	if err := n.On(b.handle, b); err != nil {
		t.Fatal(err)
	}
	// once and durable share the identity check
	if err := n.Once(b.handle, b); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
	if n.Count() != 2 {
		t.Errorf("expected 2 listeners, got %d", n.Count())
	}
}

func TestEventNoticer_On_ClosuresShareIdentity(t *testing.T) {
	n := NewEventNoticer("click", nil)
	var got []int
	listen := func(v int) Func {
		return func(Event) { got = append(got, v) }
	}
	scope := new(int)

	if err := n.On(listen(1), scope); err != nil {
		t.Fatal(err)
	}
	// a closure from the same literal is the same listener, whatever it captures
	if err := n.On(listen(2), scope); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
	n.OnFunc(listen(2), 0)
	n.OnFunc(listen(3), 0)
	n.Trigger(NewEvent(nil))
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("unexpected calls (-want +got):\n%s", diff)
	}
}

func staticListener(e Event, data any) {}

func TestEventNoticer_OnStatic_Duplicate(t *testing.T) {
	n := NewEventNoticer("click", nil)
	if err := n.OnStatic(staticListener, 1); err != nil {
		t.Fatal(err)
	}
	if err := n.OnStatic(staticListener, 1); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
	if err := n.OnStatic(staticListener, 2); err != nil {
		t.Fatal(err)
	}
	// non-comparable data never matches
	if err := n.OnStatic(staticListener, []int{1}); err != nil {
		t.Fatal(err)
	}
	if err := n.OnStatic(staticListener, []int{1}); err != nil {
		t.Fatal(err)
	}
	if !n.OffStatic(staticListener, 2) {
		t.Error("expected OffStatic to remove the listener")
	}
	if n.Count() != 3 {
		t.Errorf("expected 3 listeners, got %d", n.Count())
	}
}

func TestEventNoticer_Once(t *testing.T) {
	n := NewEventNoticer("load", nil)
	var count int
	n.OnceFunc(func(e Event) { count++ }, 0)
	if err := n.OnceStatic(func(e Event, data any) { count += data.(int) }, 10); err != nil {
		t.Fatal(err)
	}

	n.Trigger(NewEvent(nil))
	n.Trigger(NewEvent(nil))

	if count != 11 {
		t.Errorf("expected 11, got %d", count)
	}
	if n.Count() != 0 {
		t.Errorf("expected once listeners to be removed, got %d", n.Count())
	}
}

func TestEventNoticer_Once_Recursive(t *testing.T) {
	n := NewEventNoticer("load", nil)
	var count int
	n.OnceFunc(func(e Event) {
		count++
		n.Trigger(NewEvent(nil))
	}, 0)
	n.Trigger(NewEvent(nil))
	if count != 1 {
		t.Errorf("expected once listener to fire exactly once, got %d", count)
	}
}

func TestEventNoticer_OffFunc(t *testing.T) {
	n := NewEventNoticer("tick", nil)
	var count int
	n.OnFunc(func(e Event) { count++ }, 1)
	n.OnFunc(func(e Event) { count++ }, 1)
	n.OnFunc(func(e Event) { count += 100 }, 2)

	if removed := n.OffFunc(1); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	n.Trigger(NewEvent(nil))
	if count != 100 {
		t.Errorf("expected 100, got %d", count)
	}
}

func TestEventNoticer_OffDuringTrigger(t *testing.T) {
	n := NewEventNoticer("tick", nil)
	var calls []string
	b := &recorder{name: "b", calls: &calls}
	n.OnFunc(func(e Event) {
		calls = append(calls, "a")
		n.Off(b.handle, b)
	}, 0)
	if err := n.On(b.handle, b); err != nil {
		t.Fatal(err)
	}

	n.Trigger(NewEvent(nil))

	if diff := cmp.Diff([]string{"a"}, calls); diff != "" {
		t.Errorf("unexpected calls (-want +got):\n%s", diff)
	}
}

func TestEventNoticer_ExpiredScopePruned(t *testing.T) {
	n := NewEventNoticer("tick", nil)
	scope := &expiringScope{}
	var count int
	if err := n.On(func(e Event) { count++ }, scope); err != nil {
		t.Fatal(err)
	}

	n.Trigger(NewEvent(nil))
	scope.expired = true
	n.Trigger(NewEvent(nil))

	if count != 1 {
		t.Errorf("expected 1 call, got %d", count)
	}
	if n.Count() != 0 {
		t.Errorf("expected expired listener to be pruned, got %d", n.Count())
	}
}

func TestEventNoticer_TriggerFunc_Lazy(t *testing.T) {
	n := NewEventNoticer("tick", nil)
	built := false
	if ev := n.TriggerFunc(func() Event { built = true; return NewEvent(nil) }); ev != nil {
		t.Error("expected nil event without listeners")
	}
	if built {
		t.Error("event constructed without listeners")
	}

	n.OnFunc(func(e Event) { e.Base().ReturnValue = 3 }, 0)
	ev := n.TriggerFunc(func() Event { return NewEvent(nil) })
	if ev == nil || ev.Base().ReturnValue != 3 {
		t.Errorf("unexpected event: %#v", ev)
	}
}

func TestEventNoticer_Shell(t *testing.T) {
	child := NewEventNoticer("click", "child")
	parent := NewEventNoticer("click", "parent")

	var seen []string
	parent.OnFunc(func(e Event) {
		b := e.Base()
		seen = append(seen, b.Sender().(string)+"<"+b.Origin().(string))
	}, 0)
	if err := child.OnShell(parent); err != nil {
		t.Fatal(err)
	}
	if err := child.OnShell(parent); !errors.Is(err, ErrDuplicateListener) {
		t.Fatalf("expected ErrDuplicateListener, got %v", err)
	}
	child.OnFunc(func(e Event) {
		// identity restored after forwarding
		seen = append(seen, "after:"+e.Base().Sender().(string))
	}, 0)

	child.Trigger(NewEvent(nil))

	want := []string{"parent<child", "after:child"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("unexpected deliveries (-want +got):\n%s", diff)
	}

	if err := child.OnShell(child); err == nil {
		t.Error("expected error forwarding to self")
	}
}

func TestEventNoticer_Concurrent(t *testing.T) {
	n := NewEventNoticer("tick", nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n.OnFunc(func(e Event) {}, i)
				n.Trigger(NewEvent(nil))
				n.OffFunc(i)
			}
		}(i)
	}
	wg.Wait()
	if n.Count() != 0 {
		t.Errorf("expected no listeners, got %d", n.Count())
	}
}
