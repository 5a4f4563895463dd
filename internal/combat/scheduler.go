package combat

import (
	"sort"

	"github.com/google/uuid"
)

type TaskID string

type task struct {
	id    TaskID
	owner string
	at    float64
	seq   uint64
	fn    func()
}

// Scheduler holds one-shot deferred callbacks polled from the tick loop.
// Tasks are keyed by id and grouped by owner so a disposed entity can drop
// everything it scheduled.
type Scheduler struct {
	tasks []*task
	seq   uint64
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// At schedules fn to run once the clock reaches atMs.
func (s *Scheduler) At(atMs float64, owner string, fn func()) TaskID {
	s.seq++
	t := &task{id: TaskID(uuid.NewString()), owner: owner, at: atMs, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t.id
}

func (s *Scheduler) Cancel(id TaskID) bool {
	for i, t := range s.tasks {
		if t.id == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// CancelOwner drops every pending task for owner and returns how many.
func (s *Scheduler) CancelOwner(owner string) int {
	kept := s.tasks[:0]
	n := 0
	for _, t := range s.tasks {
		if t.owner == owner {
			n++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
	return n
}

func (s *Scheduler) Clear() { s.tasks = nil }

func (s *Scheduler) Pending() int { return len(s.tasks) }

// Advance runs every task due at nowMs in time order. Tasks scheduled by a
// running callback that are already due run in the same call.
func (s *Scheduler) Advance(nowMs float64) int {
	ran := 0
	for {
		due := s.popDue(nowMs)
		if due == nil {
			return ran
		}
		due.fn()
		ran++
	}
}

func (s *Scheduler) popDue(nowMs float64) *task {
	if len(s.tasks) == 0 {
		return nil
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	if s.tasks[0].at > nowMs {
		return nil
	}
	t := s.tasks[0]
	s.tasks = s.tasks[1:]
	return t
}
