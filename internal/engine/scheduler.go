package engine

import (
	"container/heap"
)

// timerItem - отложенный вызов в очереди приоритетов
type timerItem struct {
	due   float64 // Время срабатывания (секунды симуляции)
	seq   int     // Порядок постановки: при равном due раньше тот, кто раньше встал
	fn    func()
	index int // Индекс в куче
}

// timerQueue реализует heap.Interface (MinHeap по due)
type timerQueue []*timerItem

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x interface{}) {
	item := x.(*timerItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.index = -1 // для безопасности
	*q = old[0 : n-1]
	return item
}

// Scheduler - отложенные переходы конечного автомата (например, смена
// региона после затемнения). Время идёт только через Advance.
type Scheduler struct {
	queue timerQueue
	now   float64
	seq   int
}

func NewScheduler() *Scheduler {
	return &Scheduler{queue: make(timerQueue, 0)}
}

// After ставит fn на срабатывание через delay секунд.
func (s *Scheduler) After(delay float64, fn func()) {
	s.seq++
	heap.Push(&s.queue, &timerItem{due: s.now + delay, seq: s.seq, fn: fn})
}

// Advance двигает часы и вызывает все созревшие таймеры по порядку.
// Таймер, поставленный из колбэка с нулевой задержкой, сработает в этом же вызове.
func (s *Scheduler) Advance(dt float64) {
	s.now += dt
	for s.queue.Len() > 0 && s.queue[0].due <= s.now {
		item := heap.Pop(&s.queue).(*timerItem)
		item.fn()
	}
}

// Reset отменяет все ожидающие таймеры.
func (s *Scheduler) Reset() {
	s.queue = s.queue[:0]
}

func (s *Scheduler) Len() int { return s.queue.Len() }

func (s *Scheduler) Now() float64 { return s.now }
