package runloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an EventSource fed by push, from any goroutine.
type fakeSource struct {
	startErr error
	wake     func()
	handle   func(v int)
	pending  []int
	mu       sync.Mutex
	starts   int
	stops    int
}

func (s *fakeSource) Start(wake func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	s.wake = wake
	return nil
}

func (s *fakeSource) Drain() bool {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, v := range pending {
		s.handle(v)
	}
	return len(pending) != 0
}

func (s *fakeSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	s.wake = nil
}

func (s *fakeSource) push(v int) {
	s.mu.Lock()
	s.pending = append(s.pending, v)
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

func (s *fakeSource) counts() (starts, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

func TestRunLoop_EventSource(t *testing.T) {
	p, _ := newTestProcess(t)
	defer p.Current().Detach()
	l := p.CurrentLoop()

	var got []int
	src := &fakeSource{}
	src.handle = func(v int) {
		if !l.IsCurrent() {
			t.Error("drain must run on the loop's thread")
		}
		got = append(got, v)
		if v == 3 {
			l.Stop()
		}
	}
	require.NoError(t, l.AddSource(src))
	assert.Equal(t, 1, l.Stats().Sources)

	go func() {
		for i := 1; i <= 3; i++ {
			time.Sleep(5 * time.Millisecond)
			src.push(i)
		}
	}()

	// nothing is queued, so only the source's wake can unblock the loop
	require.NoError(t, l.Run(context.Background(), -1))
	assert.Equal(t, []int{1, 2, 3}, got)

	starts, stops := src.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)

	assert.True(t, l.RemoveSource(src))
	assert.False(t, l.RemoveSource(src))
	assert.Zero(t, l.Stats().Sources)
}

func TestRunLoop_AddSourceWhileRunning(t *testing.T) {
	p, _ := newTestProcess(t)
	defer p.Current().Detach()
	l := p.CurrentLoop()

	src := &fakeSource{handle: func(int) {}}
	failing := &fakeSource{startErr: errors.New("no device")}
	l.Post(func() {
		require.NoError(t, l.AddSource(src))
		starts, _ := src.counts()
		assert.Equal(t, 1, starts, "started immediately on a running loop")
		assert.Error(t, l.AddSource(failing))
		assert.True(t, l.RemoveSource(src))
		_, stops := src.counts()
		assert.Equal(t, 1, stops)
	}, 0)
	require.NoError(t, l.Run(context.Background(), 0))
	assert.Zero(t, l.Stats().Sources)
}

func TestRunLoop_AddSourceWrongThread(t *testing.T) {
	p, _ := newTestProcess(t)
	l, release, result := spawnLoop(t, p, "sources", 0)
	defer func() {
		release()
		_ = waitErr(t, result, time.Second)
	}()
	assert.ErrorIs(t, l.AddSource(&fakeSource{}), ErrWrongThread)
	assert.False(t, l.RemoveSource(&fakeSource{}))
}
