package containers

import (
	"errors"
	"sync"
)

var (
	ErrQueueFull  = errors.New("queue is full")
	ErrQueueEmpty = errors.New("queue is empty")
)

// RingQueue is a fixed capacity FIFO. It is not safe for concurrent use.
type RingQueue[T any] struct {
	data       []T
	size       int
	readIndex  int
	writeIndex int
	count      int
}

// Create a new RingQueue
func NewRingQueue[T any](size int) *RingQueue[T] {
	if size < 1 {
		size = 1
	}
	return &RingQueue[T]{
		data: make([]T, size),
		size: size,
	}
}

// Enqueue adds an element to the queue
func (rq *RingQueue[T]) Enqueue(value T) error {
	if rq.IsFull() {
		return ErrQueueFull
	}

	rq.data[rq.writeIndex] = value
	rq.writeIndex = (rq.writeIndex + 1) % rq.size
	rq.count++
	return nil
}

// Dequeue removes and returns the front element in the queue
func (rq *RingQueue[T]) Dequeue() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, ErrQueueEmpty
	}

	value := rq.data[rq.readIndex]
	rq.data[rq.readIndex] = zero
	rq.readIndex = (rq.readIndex + 1) % rq.size
	rq.count--
	return value, nil
}

// Peek returns the front element without removing it
func (rq *RingQueue[T]) Peek() (T, error) {
	if rq.IsEmpty() {
		var zero T
		return zero, ErrQueueEmpty
	}
	return rq.data[rq.readIndex], nil
}

// IsEmpty checks if the queue is empty
func (rq *RingQueue[T]) IsEmpty() bool {
	return rq.count == 0
}

// IsFull checks if the queue is full
func (rq *RingQueue[T]) IsFull() bool {
	return rq.count == rq.size
}

func (rq *RingQueue[T]) Len() int { return rq.count }
func (rq *RingQueue[T]) Cap() int { return rq.size }

// Write enqueues as many items as fit and returns how many were written.
func (rq *RingQueue[T]) Write(items []T) int {
	n := 0
	for _, it := range items {
		if rq.Enqueue(it) != nil {
			break
		}
		n++
	}
	return n
}

// Read dequeues up to len(dst) items into dst and returns how many were read.
func (rq *RingQueue[T]) Read(dst []T) int {
	n := 0
	for n < len(dst) && !rq.IsEmpty() {
		dst[n], _ = rq.Dequeue()
		n++
	}
	return n
}

// Reset drops every element.
func (rq *RingQueue[T]) Reset() {
	clear(rq.data)
	rq.readIndex, rq.writeIndex, rq.count = 0, 0, 0
}

// SyncRingQueue is a RingQueue guarded by a mutex. It is the hand-off point
// between a subsystem's background goroutines or OS callback threads and the
// scheduler goroutine.
type SyncRingQueue[T any] struct {
	mu sync.Mutex
	rq *RingQueue[T]
}

func NewSyncRingQueue[T any](size int) *SyncRingQueue[T] {
	return &SyncRingQueue[T]{rq: NewRingQueue[T](size)}
}

func (q *SyncRingQueue[T]) Enqueue(value T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Enqueue(value)
}

func (q *SyncRingQueue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Dequeue()
}

func (q *SyncRingQueue[T]) Write(items []T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Write(items)
}

func (q *SyncRingQueue[T]) Read(dst []T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Read(dst)
}

// Drain removes every queued element and returns them in FIFO order.
func (q *SyncRingQueue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.rq.IsEmpty() {
		return nil
	}
	out := make([]T, q.rq.Len())
	q.rq.Read(out)
	return out
}

func (q *SyncRingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Len()
}

// Free returns the number of elements that can still be enqueued.
func (q *SyncRingQueue[T]) Free() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rq.Cap() - q.rq.Len()
}

func (q *SyncRingQueue[T]) Cap() int {
	return q.rq.Cap()
}

func (q *SyncRingQueue[T]) Reset() {
	q.mu.Lock()
	q.rq.Reset()
	q.mu.Unlock()
}
