package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/stockroom/pkg/event"
)

func TestFireSynchronousInOrder(t *testing.T) {
	d := event.NewDispatcher()

	var got []int
	d.Listen("thing.happened", func(payload interface{}) {
		got = append(got, payload.(int)*10)
	})
	d.Listen("thing.happened", func(payload interface{}) {
		got = append(got, payload.(int)*100)
	})

	d.Fire("thing.happened", 1)

	if len(got) != 2 || got[0] != 10 || got[1] != 100 {
		t.Fatalf("expected [10 100], got %v", got)
	}
}

func TestFireNoListeners(t *testing.T) {
	d := event.NewDispatcher()
	d.Fire("nobody.cares", "payload") // must not panic
}

func TestFireAsync(t *testing.T) {
	d := event.NewDispatcher()

	var wg sync.WaitGroup
	wg.Add(2)
	d.Listen("bg", func(interface{}) { wg.Done() })
	d.Listen("bg", func(interface{}) { wg.Done() })

	d.FireAsync("bg", nil)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run")
	}
}

func TestFlush(t *testing.T) {
	d := event.NewDispatcher()

	called := false
	d.Listen("x", func(interface{}) { called = true })
	d.Flush()
	d.Fire("x", nil)

	if called {
		t.Error("flushed listener must not fire")
	}
}
