package queue

import (
	"container/heap"
)

// Priorizable is an item a MinHeap can order. Ties on priority are broken
// by hop count, then by item id, so heap pop order is fully deterministic
// even when many frontier entries share a cost.
type Priorizable interface {
	Priority() float64
	HopCount() int
	ItemId() int
	Index() int
	SetIndex(index int)
}

type MinHeap[T Priorizable] struct {
	queue priorityQueue
}

func NewMinHeap[T Priorizable]() *MinHeap[T] {
	return &MinHeap[T]{}
}

// Implements heap.Interface
type priorityQueue []Priorizable

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].Priority() != q[j].Priority() {
		return q[i].Priority() < q[j].Priority()
	}
	if q[i].HopCount() != q[j].HopCount() {
		return q[i].HopCount() < q[j].HopCount()
	}
	return q[i].ItemId() < q[j].ItemId()
}

func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].SetIndex(i)
	q[j].SetIndex(j)
}

func (q *priorityQueue) Push(item any) {
	n := len(*q)
	pqItem := item.(Priorizable)
	pqItem.SetIndex(n)
	*q = append(*q, pqItem)
}

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.SetIndex(-1) // for safety
	*q = old[:n-1]
	return item
}

func (h *MinHeap[T]) Len() int      { return h.queue.Len() }
func (h *MinHeap[T]) Push(item T)   { heap.Push(&h.queue, item) }
func (h *MinHeap[T]) Pop() T        { return heap.Pop(&h.queue).(T) }
func (h *MinHeap[T]) Update(item T) { heap.Fix(&h.queue, item.Index()) }
func (h *MinHeap[T]) Peek() T       { return h.queue[0].(T) }
