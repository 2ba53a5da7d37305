// Package topk implements a bounded min-heap for tracking the N
// highest-scoring classifier.Results seen across an entire run without
// retaining every result in memory (spec.md §4.7's Top-K requirement under
// the memory-bound invariant P3). container/heap is stdlib: no example in
// the retrieved pack implements a reusable bounded top-K heap (only
// graph-search priority queues, which solve a different problem), so this
// component has no third-party grounding to draw on.
package topk

import (
	"container/heap"
	"sort"

	"github.com/dnsscience/dnsriskscan/internal/classifier"
)

// entry pairs a Result with a monotonically increasing sequence number so
// that ties on Score break in first-seen order (stable output, P1).
type entry struct {
	result classifier.Result
	seq    uint64
}

type minHeap []entry

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].result.Score != h[j].result.Score {
		return h[i].result.Score < h[j].result.Score
	}
	return h[i].seq > h[j].seq // higher seq (seen later) sits lower in a tie
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Aggregator tracks the N highest-scoring results seen via Add, in bounded
// O(N) memory regardless of how many records are actually classified.
type Aggregator struct {
	n    int
	h    minHeap
	next uint64
}

// New creates an Aggregator retaining at most n results. n <= 0 means no
// results are ever retained (Add becomes a no-op, Top always empty).
func New(n int) *Aggregator {
	return &Aggregator{n: n}
}

// Add offers a result to the aggregator. If fewer than n have been kept so
// far, result is always kept; otherwise it's kept only if it outranks the
// current lowest-scoring kept result, which is then evicted.
func (a *Aggregator) Add(result classifier.Result) {
	if a.n <= 0 {
		return
	}
	e := entry{result: result, seq: a.next}
	a.next++

	if a.h.Len() < a.n {
		heap.Push(&a.h, e)
		return
	}
	if a.h.Len() > 0 && e.result.Score > a.h[0].result.Score {
		heap.Pop(&a.h)
		heap.Push(&a.h, e)
	}
}

// Top returns the retained results in descending score order, ties broken
// by first-seen order (the order Add was called).
func (a *Aggregator) Top() []classifier.Result {
	entries := make([]entry, len(a.h))
	copy(entries, a.h)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].result.Score != entries[j].result.Score {
			return entries[i].result.Score > entries[j].result.Score
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]classifier.Result, len(entries))
	for i, e := range entries {
		out[i] = e.result
	}
	return out
}

// Len reports how many results are currently retained.
func (a *Aggregator) Len() int {
	return a.h.Len()
}
