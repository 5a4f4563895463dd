package combat

import "breach_sim/internal/config"

// Feedback is the fire-and-forget presentation sink. Nothing it returns is
// consumed by combat logic.
type Feedback interface {
	Notify(text string, durationMs int)
	Shake(intensity float64)
	Flash(color string, intensity float64)
	PlayMusicPhase(phase int)
	EmitParticle(kind string, pos Vec3, scale float64)
}

// NopFeedback discards everything.
type NopFeedback struct{}

func (NopFeedback) Notify(string, int)                 {}
func (NopFeedback) Shake(float64)                      {}
func (NopFeedback) Flash(string, float64)              {}
func (NopFeedback) PlayMusicPhase(int)                 {}
func (NopFeedback) EmitParticle(string, Vec3, float64) {}

// Target is whatever the queen is fighting.
type Target interface {
	Position() Vec3
	// TakeDamage applies an already scaled amount and returns what landed.
	TakeDamage(amount int, source string) int
}

// SpawnFunc asks the orchestrator to create a hostile near pos.
type SpawnFunc func(kind config.EnemyKind, pos Vec3, zone string)

// Hooks bundles the collaborators a QueenController talks to.
type Hooks struct {
	Feedback Feedback
	Spawn    SpawnFunc
	Emit     func(Event)
	// Covers returns cover positions at resolution time.
	Covers func() []Vec3
}

func (h *Hooks) normalize() {
	if h.Feedback == nil {
		h.Feedback = NopFeedback{}
	}
	if h.Spawn == nil {
		h.Spawn = func(config.EnemyKind, Vec3, string) {}
	}
	if h.Emit == nil {
		h.Emit = nopEmit
	}
	if h.Covers == nil {
		h.Covers = func() []Vec3 { return nil }
	}
}
