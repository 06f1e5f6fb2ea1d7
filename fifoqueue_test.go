package dispatch

import (
	"testing"
)

func TestFifoGrow_NoWrap(t *testing.T) {
	capacity := 4
	newSize := 5
	q := newFifoQueue[int](capacity)

	for i := 1; i <= capacity; i++ {
		q.Push(i)
	}

	if q.size != capacity {
		t.Fatalf("expected size=4, got %d", q.size)
	}

	q.Push(5)

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity, got %d", q.capacity)
	}

	if q.size != newSize {
		t.Fatalf("after grow: expected size=%d, got %d", newSize, q.size)
	}

	for expected := 1; expected <= newSize; expected++ {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop returned false, expected %d", expected)
		}
		if e != expected {
			t.Fatalf("FIFO order broken: expected %d, got %d", expected, e)
		}
	}
}

func TestFifoGrow_WithWrap(t *testing.T) {
	capacity := 4
	q := newFifoQueue[int](capacity)

	q.Push(1)
	q.Push(2)
	q.Push(3)

	// wrap-around: Pop moves head to 1
	e, _ := q.Pop()
	if e != 1 {
		t.Fatalf("expected to pop 1, got %d", e)
	}

	q.Push(4)
	q.Push(5)

	// queue state: [5,2,3,4], head=1 tail=1 size=4 (full, wrapped)

	q.Push(6)

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity")
	}

	if q.size != capacity+1 {
		t.Fatalf("expected size=%d after grow, got %d", capacity+1, q.size)
	}

	expected := []int{2, 3, 4, 5, 6}
	for i, exp := range expected {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d returned false", i)
		}
		if e != exp {
			t.Fatalf("FIFO order broken at %d: expected %d, got %d", i, exp, e)
		}
	}
}

func TestFifoGrow_MultipleGrows(t *testing.T) {
	capacity := 4
	size := 50
	q := newFifoQueue[int](capacity)
	for i := 1; i <= size; i++ {
		q.Push(i)
	}

	if q.size != size {
		t.Fatalf("expected size %d, got %d", size, q.size)
	}

	for i := 1; i <= size; i++ {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop returned false at %d", i)
		}
		if e != i {
			t.Fatalf("FIFO mismatch at %d: expected %d, got %d", i, i, e)
		}
	}
}

func TestFifoPushFront(t *testing.T) {
	q := newFifoQueue[int](4)

	q.Push(2)
	q.Push(3)
	q.PushFront(1)

	expected := []int{1, 2, 3}
	for i, exp := range expected {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d returned false", i)
		}
		if e != exp {
			t.Fatalf("order broken at %d: expected %d, got %d", i, exp, e)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned true")
	}
}

func TestFifoPushFrontGrows(t *testing.T) {
	capacity := 2
	q := newFifoQueue[int](capacity)

	q.Push(2)
	q.Push(3)
	q.PushFront(1) // full queue must grow, not drop

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity")
	}
	for _, exp := range []int{1, 2, 3} {
		e, ok := q.Pop()
		if !ok || e != exp {
			t.Fatalf("expected %d, got %d (ok=%v)", exp, e, ok)
		}
	}
}
