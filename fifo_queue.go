// fifo_queue.go
package dispatch

const defaultPendingCapacity = 64

// fifoQueue is a growable circular buffer holding pending submissions in
// strict first-in-first-out order. No priorities, no reordering.
//
// It is not safe for concurrent use; the pool only touches it under its
// mutex.
type fifoQueue[E any] struct {
	buf        []E // circular buffer
	head, tail int // read/write indices
	size       int // number of entries currently buffered
	capacity   int
}

// newFifoQueue creates a FIFO queue with the given initial capacity.
// The buffer grows when more entries back up.
func newFifoQueue[E any](capacity int) *fifoQueue[E] {
	if capacity <= 0 {
		capacity = defaultPendingCapacity
	}
	return &fifoQueue[E]{
		buf:      make([]E, capacity),
		capacity: capacity,
	}
}

// Len returns the number of entries currently waiting in the queue.
func (q *fifoQueue[E]) Len() int { return q.size }

// Push inserts e at the tail of the queue, growing the buffer when full.
func (q *fifoQueue[E]) Push(e E) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = e
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// PushFront reinserts e at the head of the queue. Used to requeue the head
// submission when every idle worker was consumed by eviction before it could
// be dispatched, preserving FIFO order.
func (q *fifoQueue[E]) PushFront(e E) {
	if q.size == q.capacity {
		q.grow()
	}
	q.head--
	if q.head < 0 {
		q.head = q.capacity - 1
	}
	q.buf[q.head] = e
	q.size++
}

// Pop removes and returns the oldest entry.
//
// If the queue is empty, returns the zero value and false.
func (q *fifoQueue[E]) Pop() (E, bool) {
	var zero E
	if q.size == 0 {
		return zero, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = zero
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return e, true
}

// grow doubles the buffer, unwrapping the circular layout so head restarts
// at index zero.
func (q *fifoQueue[E]) grow() {
	next := make([]E, q.capacity*2)
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)%q.capacity]
	}
	q.buf = next
	q.head = 0
	q.tail = q.size
	q.capacity *= 2
}
