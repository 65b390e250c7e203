package host

import (
	"time"

	"github.com/zeusync/warehouse/pkg/sequence"
)

type timerTask struct {
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler runs deferred tasks on simulated time. Tasks fire in due order,
// ties in scheduling order. There is no cancellation: a task whose subject has
// gone away is expected to find nothing to do.
type Scheduler struct {
	now   func() time.Duration
	queue *sequence.PriorityQueue[timerTask]
	seq   uint64
}

func NewScheduler(now func() time.Duration) *Scheduler {
	return &Scheduler{
		now: now,
		queue: sequence.NewPriorityQueue(func(a, b timerTask) bool {
			if a.due != b.due {
				return a.due < b.due
			}
			return a.seq < b.seq
		}),
	}
}

func (s *Scheduler) After(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.queue.Enqueue(timerTask{due: s.now() + delay, seq: s.seq, fn: fn})
}

// RunDue executes every task due at or before the current time, including
// tasks scheduled by tasks that are themselves already due.
func (s *Scheduler) RunDue() int {
	ran := 0
	for !s.queue.IsEmpty() {
		next, _ := s.queue.Peek()
		if next.due > s.now() {
			break
		}
		_, _ = s.queue.Dequeue()
		next.fn()
		ran++
	}
	return ran
}

func (s *Scheduler) Pending() int { return s.queue.Len() }
