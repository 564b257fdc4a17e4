package minheap

// BaseFunc returns the base priority of a value. Lower values are popped first.
type BaseFunc[T any] func(T) int64

type entry[T any] struct {
	value    T
	priority int64
	seq      uint64
}

// less reports whether a must leave the heap before b.
func (a entry[T]) less(b entry[T]) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

// Heap is a min-heap keyed by (effective priority, insertion sequence).
type Heap[T any] struct {
	entries []entry[T]
	base    BaseFunc[T]
	seq     uint64
}

// New creates an empty heap. A nil base treats every value as base priority 0,
// which turns the heap into a FIFO ordered only by push offsets.
func New[T any](base BaseFunc[T]) *Heap[T] {
	if base == nil {
		base = func(T) int64 { return 0 }
	}
	return &Heap[T]{base: base}
}

// Push inserts v with effective priority base(v)+offset.
func (h *Heap[T]) Push(v T, offset int64) {
	h.seq++
	h.entries = append(h.entries, entry[T]{
		value:    v,
		priority: h.base(v) + offset,
		seq:      h.seq,
	})
	h.up(len(h.entries) - 1)
}

// Pop removes and returns the minimum element.
func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	n := len(h.entries)
	if n == 0 {
		return zero, false
	}

	top := h.entries[0]
	last := n - 1
	h.entries[0] = h.entries[last]
	h.entries[last] = entry[T]{} // release the reference held by the backing array
	h.entries = h.entries[:last]
	if last > 0 {
		h.down(0)
	}

	return top.value, true
}

// Peek returns the minimum element without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.entries) == 0 {
		var zero T
		return zero, false
	}
	return h.entries[0].value, true
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int {
	return len(h.entries)
}

// IsEmpty reports whether the heap holds no elements.
func (h *Heap[T]) IsEmpty() bool {
	return len(h.entries) == 0
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.entries[i].less(h.entries[parent]) {
			return
		}
		h.entries[i], h.entries[parent] = h.entries[parent], h.entries[i]
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	n := len(h.entries)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2

		if left < n && h.entries[left].less(h.entries[smallest]) {
			smallest = left
		}
		if right < n && h.entries[right].less(h.entries[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}

		h.entries[i], h.entries[smallest] = h.entries[smallest], h.entries[i]
		i = smallest
	}
}
