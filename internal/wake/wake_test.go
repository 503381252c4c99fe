package wake

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWaker_CoalescesUntilConsumed(t *testing.T) {
	var posts atomic.Int32
	w := NewWaker(func() { posts.Add(1) })

	for i := 0; i < 5; i++ {
		w.Wake()
	}
	if got := posts.Load(); got != 1 {
		t.Fatalf("posts = %d, want 1", got)
	}
	if !w.Consume() {
		t.Fatal("Consume() = false, want true")
	}
	if w.Consume() {
		t.Fatal("second Consume() = true, want false")
	}

	w.Wake()
	if got := posts.Load(); got != 2 {
		t.Fatalf("posts after consume = %d, want 2", got)
	}
}

func TestWaker_NoOpAfterClose(t *testing.T) {
	var posts atomic.Int32
	w := NewWaker(func() { posts.Add(1) })
	w.Close()
	w.Wake()
	if posts.Load() != 0 {
		t.Fatal("Wake after Close posted")
	}
	if !w.Closed() {
		t.Fatal("Closed() = false")
	}
}

func TestWaker_NilIsSafe(t *testing.T) {
	var w *Waker
	w.Wake()
	w.Close()
	if w.Consume() {
		t.Fatal("nil Consume() = true")
	}
}

func TestWaker_ConcurrentWakes(t *testing.T) {
	var posts atomic.Int32
	w := NewWaker(func() { posts.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.Wake()
			}
		}()
	}
	wg.Wait()

	if got := posts.Load(); got != 1 {
		t.Fatalf("posts = %d, want 1 while unconsumed", got)
	}
	if w.Posted() != 1 {
		t.Fatalf("Posted() = %d, want 1", w.Posted())
	}
}

func TestScheduler_PollIffAnimating(t *testing.T) {
	var s Scheduler
	if s.Mode() != Wait {
		t.Fatalf("zero Scheduler mode = %v, want wait", s.Mode())
	}
	seq := []bool{true, true, false, true, false, false}
	for _, animating := range seq {
		s.Observe(animating)
		want := Wait
		if animating {
			want = Poll
		}
		if s.Mode() != want {
			t.Fatalf("after Observe(%v) mode = %v, want %v", animating, s.Mode(), want)
		}
	}
}
