package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsInTimeOrder(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.At(200, "a", func() { got = append(got, "b") })
	s.At(100, "a", func() { got = append(got, "a") })
	s.At(200, "a", func() { got = append(got, "c") })
	s.At(900, "a", func() { got = append(got, "late") })

	assert.Equal(t, 0, s.Advance(50))
	assert.Equal(t, 3, s.Advance(500))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 1, s.Pending())
}

func TestSchedulerChainsDueTasks(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.At(100, "lvl", func() {
		got = append(got, "first")
		s.At(150, "lvl", func() { got = append(got, "second") })
		s.At(1000, "lvl", func() { got = append(got, "third") })
	})

	assert.Equal(t, 2, s.Advance(200))
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 1, s.Pending())
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	ran := 0
	id := s.At(100, "queen", func() { ran++ })
	s.At(100, "queen", func() { ran++ })
	s.At(100, "level", func() { ran++ })

	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))
	assert.Equal(t, 1, s.CancelOwner("queen"))
	assert.Equal(t, 0, s.CancelOwner("queen"))
	s.Advance(100)
	assert.Equal(t, 1, ran)

	s.At(10, "level", func() { ran++ })
	s.Clear()
	s.Advance(1000)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 0, s.Pending())
}
