package pipeline

import "container/heap"

type result struct {
	seq  int
	line []byte
	err  *RecordError
}

// reorderBuffer 按序号输出, 乱序到达的结果暂存在最小堆中
type reorderBuffer struct {
	next  int
	items resultHeap
}

func (b *reorderBuffer) push(r result) {
	heap.Push(&b.items, r)
}

// pop returns the buffered result for the next expected index, if present.
func (b *reorderBuffer) pop() (result, bool) {
	if len(b.items) == 0 || b.items[0].seq != b.next {
		return result{}, false
	}
	b.next++
	return heap.Pop(&b.items).(result), true
}

func (b *reorderBuffer) Len() int {
	return len(b.items)
}

type resultHeap []result

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return h[i].seq < h[j].seq }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(result))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = result{}
	*h = old[:n-1]
	return item
}
