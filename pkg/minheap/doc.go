// Package minheap provides a generic binary min-heap with a deterministic FIFO
// tie-break.
//
// Every element is ordered by an effective priority (lower wins) and, when two
// priorities are equal, by the order in which the elements were pushed. The
// secondary comparison is applied in both sift directions, so elements of equal
// priority always leave the heap in insertion order regardless of how the heap
// rebalances.
//
// # Usage
//
//	h := minheap.New(func(j Job) int64 { return j.Rank })
//	h.Push(job, 0)        // effective priority = Rank
//	h.Push(retried, 3)    // effective priority = Rank + 3
//
//	next, ok := h.Pop()
//
// A Heap is not safe for concurrent use; callers serialise access.
package minheap
