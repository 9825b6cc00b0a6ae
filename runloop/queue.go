package runloop

import (
	"container/heap"
	"time"
)

// TaskID identifies a queued task. The zero value is never issued, and
// signals a refused post.
type TaskID uint64

// task is an entry in a loop's queue.
type task struct {
	due   time.Time
	fn    func()
	id    TaskID
	group uint64
	seq   uint64
	index int
}

// taskHeap orders tasks by due time, ties broken by insertion order.
type taskHeap []*task

// Implement heap.Interface for taskHeap
func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// taskQueue is a heap of tasks, indexed by id for cancellation.
// It is not safe for concurrent use.
type taskQueue struct {
	byID  map[TaskID]*task
	heap  taskHeap
	seq   uint64
	maxID TaskID
}

func newTaskQueue() *taskQueue {
	return &taskQueue{byID: make(map[TaskID]*task)}
}

func (q *taskQueue) len() int { return len(q.heap) }

// push enqueues fn, returning its (non-zero) id.
func (q *taskQueue) push(fn func(), due time.Time, group uint64) TaskID {
	q.maxID++
	q.seq++
	t := &task{
		id:    q.maxID,
		group: group,
		seq:   q.seq,
		due:   due,
		fn:    fn,
	}
	heap.Push(&q.heap, t)
	q.byID[t.id] = t
	return t.id
}

// next returns the due time of the earliest task.
func (q *taskQueue) next() (time.Time, bool) {
	if len(q.heap) == 0 {
		return time.Time{}, false
	}
	return q.heap[0].due, true
}

// popDue removes and returns the earliest task, if it is due at now.
func (q *taskQueue) popDue(now time.Time) *task {
	if len(q.heap) == 0 || q.heap[0].due.After(now) {
		return nil
	}
	t := heap.Pop(&q.heap).(*task)
	delete(q.byID, t.id)
	return t
}

// remove cancels a single queued task.
func (q *taskQueue) remove(id TaskID) bool {
	t, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&q.heap, t.index)
	delete(q.byID, id)
	return true
}

// removeGroup cancels every queued task tagged with group, returning the count.
func (q *taskQueue) removeGroup(group uint64) int {
	if group == 0 {
		return 0
	}
	var n int
	kept := q.heap[:0]
	for _, t := range q.heap {
		if t.group == group {
			delete(q.byID, t.id)
			n++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(q.heap); i++ {
		q.heap[i] = nil
	}
	q.heap = kept
	if n != 0 {
		for i, t := range q.heap {
			t.index = i
		}
		heap.Init(&q.heap)
	}
	return n
}

// groupLen counts the queued tasks tagged with group.
func (q *taskQueue) groupLen(group uint64) int {
	var n int
	for _, t := range q.heap {
		if t.group == group {
			n++
		}
	}
	return n
}
