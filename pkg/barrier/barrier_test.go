package barrier

import (
	"sync"
	"testing"
	"time"

	"github.com/flowforge/flowforge/pkg/logging"
)

func TestThenRunsImmediatelyWhenIdle(t *testing.T) {
	b := New(logging.Discard())
	ran := false
	b.Then(Sync(func() { ran = true }))
	if !ran {
		t.Fatal("sync continuation did not run immediately on an idle barrier")
	}
}

func TestThenWaitsForOutstandingWork(t *testing.T) {
	b := New(logging.Discard())
	token := b.Begin("work")

	ran := false
	b.Then(Sync(func() { ran = true }))
	if ran {
		t.Fatal("continuation ran before outstanding work finished")
	}

	b.End(token)
	if !ran {
		t.Fatal("continuation did not run after outstanding work finished")
	}
}

func TestContinuationOrderIsFIFO(t *testing.T) {
	b := New(logging.Discard())
	token := b.Begin("work")

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		b.Then(Sync(func() { order = append(order, i) }))
	}
	b.End(token)

	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("got %d continuations, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestAsyncContinuationHoldsBarrier(t *testing.T) {
	b := New(logging.Discard())
	token := b.Begin("work")

	var mu sync.Mutex
	secondRan := false

	b.Then(Async(func(done func()) {
		go func() {
			time.Sleep(5 * time.Millisecond)
			done()
		}()
	}))
	b.Then(Sync(func() {
		mu.Lock()
		secondRan = true
		mu.Unlock()
	}))

	b.End(token)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := secondRan
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("second continuation never ran after async continuation completed")
}

func TestPanicInContinuationIsRecovered(t *testing.T) {
	b := New(logging.Discard())
	ranAfter := false
	b.Then(Sync(func() { panic("boom") }))
	b.Then(Sync(func() { ranAfter = true }))
	if !ranAfter {
		t.Fatal("continuation after a panicking one did not run")
	}
}
