package safego

import (
	"sync"
	"testing"
	"time"
)

func TestGoRunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go("plain", func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("function never ran")
	}
}

func TestGoRecoversPanic(t *testing.T) {
	var (
		mu    sync.Mutex
		name  string
		value any
	)
	done := make(chan struct{})

	OnPanic(func(n string, recovered any, stack []byte) {
		mu.Lock()
		name = n
		value = recovered
		mu.Unlock()
		close(done)
	})
	defer OnPanic(nil)

	Go("worker", func() { panic("oops") })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("panic hook not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if name != "worker" {
		t.Errorf("name = %q, want %q", name, "worker")
	}
	if value != "oops" {
		t.Errorf("recovered = %v, want oops", value)
	}
}

func TestGoEmptyNameFallsBack(t *testing.T) {
	got := make(chan string, 1)
	OnPanic(func(n string, recovered any, stack []byte) { got <- n })
	defer OnPanic(nil)

	Go("", func() { panic("x") })

	select {
	case n := <-got:
		if n != "goroutine" {
			t.Errorf("name = %q, want fallback", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("panic hook not invoked")
	}
}

func TestPanickingHookIsContained(t *testing.T) {
	done := make(chan struct{})
	OnPanic(func(string, any, []byte) {
		defer close(done)
		panic("hook panic")
	})
	defer OnPanic(nil)

	Go("worker", func() { panic("first") })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hook never ran")
	}
}
