package runloop

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func drainQueue(q *taskQueue, now time.Time) []TaskID {
	var ids []TaskID
	for t := q.popDue(now); t != nil; t = q.popDue(now) {
		ids = append(ids, t.id)
	}
	return ids
}

func TestTaskQueue_DueThenFIFO(t *testing.T) {
	q := newTaskQueue()
	base := time.Now()
	a := q.push(func() {}, base.Add(2*time.Millisecond), 0)
	b := q.push(func() {}, base, 0)
	c := q.push(func() {}, base.Add(time.Millisecond), 0)
	d := q.push(func() {}, base, 0)
	e := q.push(func() {}, base.Add(2*time.Millisecond), 0)

	if due, ok := q.next(); !ok || !due.Equal(base) {
		t.Fatalf("unexpected next due: %v %v", due, ok)
	}

	if got := drainQueue(q, base); cmp.Diff([]TaskID{b, d}, got) != "" {
		t.Fatalf("unexpected due tasks: %v", got)
	}
	got := drainQueue(q, base.Add(time.Hour))
	if diff := cmp.Diff([]TaskID{c, a, e}, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if q.len() != 0 {
		t.Errorf("expected empty queue, got %d", q.len())
	}
}

func TestTaskQueue_Remove(t *testing.T) {
	q := newTaskQueue()
	now := time.Now()
	a := q.push(func() {}, now, 0)
	b := q.push(func() {}, now, 0)
	c := q.push(func() {}, now, 0)

	if !q.remove(b) {
		t.Fatal("expected remove to succeed")
	}
	if q.remove(b) {
		t.Error("expected second remove to fail")
	}
	if diff := cmp.Diff([]TaskID{a, c}, drainQueue(q, now)); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if q.remove(a) {
		t.Error("expected remove of popped task to fail")
	}
}

func TestTaskQueue_RemoveGroup(t *testing.T) {
	q := newTaskQueue()
	now := time.Now()
	a := q.push(func() {}, now, 1)
	b := q.push(func() {}, now.Add(time.Millisecond), 2)
	q.push(func() {}, now, 3)
	q.push(func() {}, now.Add(time.Millisecond), 3)
	c := q.push(func() {}, now.Add(2*time.Millisecond), 0)

	if n := q.groupLen(3); n != 2 {
		t.Fatalf("expected 2 tasks in group 3, got %d", n)
	}
	if n := q.removeGroup(3); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if n := q.removeGroup(0); n != 0 {
		t.Errorf("group 0 must never be bulk removed, got %d", n)
	}
	// indexes stay consistent after the rebuild
	if !q.remove(b) {
		t.Fatal("expected remove to succeed")
	}
	if diff := cmp.Diff([]TaskID{a, c}, drainQueue(q, now.Add(time.Hour))); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}
