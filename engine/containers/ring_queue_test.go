package containers

import (
	"errors"
	"sync"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)

	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek = %d, want 1", v)
	}

	// wrap around
	v, _ := rq.Dequeue()
	if v != 1 {
		t.Errorf("Dequeue = %d, want 1", v)
	}
	if err := rq.Enqueue(4); err != nil {
		t.Fatalf("Enqueue after dequeue: %v", err)
	}
	for _, want := range []int{2, 3, 4} {
		got, err := rq.Dequeue()
		if err != nil || got != want {
			t.Errorf("Dequeue = %d, %v; want %d", got, err, want)
		}
	}
	if !rq.IsEmpty() {
		t.Error("queue should be empty")
	}
}

func TestRingQueueReadWrite(t *testing.T) {
	rq := NewRingQueue[string](4)

	if n := rq.Write([]string{"a", "b", "c", "d", "e"}); n != 4 {
		t.Fatalf("Write = %d, want 4", n)
	}
	dst := make([]string, 3)
	if n := rq.Read(dst); n != 3 || dst[0] != "a" || dst[2] != "c" {
		t.Fatalf("Read = %d %v", n, dst)
	}
	if rq.Len() != 1 || rq.Cap() != 4 {
		t.Errorf("Len/Cap = %d/%d", rq.Len(), rq.Cap())
	}
	rq.Reset()
	if !rq.IsEmpty() {
		t.Error("Reset should empty the queue")
	}
}

func TestSyncRingQueueConcurrentProducer(t *testing.T) {
	q := NewSyncRingQueue[int](1024)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = q.Enqueue(i)
			}
		}()
	}
	wg.Wait()

	if got := len(q.Drain()); got != 400 {
		t.Errorf("drained %d items, want 400", got)
	}
	if q.Free() != 1024 {
		t.Errorf("Free = %d, want 1024", q.Free())
	}
	if q.Drain() != nil {
		t.Error("draining an empty queue should return nil")
	}
}
