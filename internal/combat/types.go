package combat

import (
	"github.com/google/uuid"
)

type Event struct {
	T       float64        `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Env carries simulation time in seconds.
type Env struct {
	Time  float64
	Delta float64
}

// NowMs is the env clock in milliseconds.
func (e *Env) NowMs() float64 { return e.Time * 1000 }

// DeltaMs is the current tick length in milliseconds.
func (e *Env) DeltaMs() float64 { return e.Delta * 1000 }

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

func nopEmit(Event) {}
