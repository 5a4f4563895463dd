package combat

import "breach_sim/internal/config"

// QueenPhaser advances the queen through health-gated phases. Phases only
// move forward, one step per Tick.
type QueenPhaser struct {
	Cfg   *config.QueenConfig
	Queen *Queen
	Emit  func(Event)
}

func NewQueenPhaser(cfg *config.QueenConfig, q *Queen, emit func(Event)) *QueenPhaser {
	if emit == nil {
		emit = nopEmit
	}
	return &QueenPhaser{Cfg: cfg, Queen: q, Emit: emit}
}

func (qp *QueenPhaser) CurrentPhase() int { return qp.Queen.Phase }

// Threshold is the health ratio at or below which phase hands over to phase+1.
func (qp *QueenPhaser) Threshold(phase int) (float64, bool) {
	if phase < 1 || phase > len(qp.Cfg.PhaseThresholds) {
		return 0, false
	}
	return qp.Cfg.PhaseThresholds[phase-1], true
}

// Tick reports whether the queen entered a new phase on this evaluation.
func (qp *QueenPhaser) Tick(now float64) bool {
	q := qp.Queen
	if !q.Alive() {
		return false
	}
	limit, ok := qp.Threshold(q.Phase)
	if !ok || q.HealthRatio() > limit {
		return false
	}
	from := q.Phase
	q.Phase++
	q.updateGlow()
	qp.Emit(Event{T: now, Type: "PhaseEnter", Payload: map[string]any{
		"from":   from,
		"phase":  q.Phase,
		"health": q.Health,
	}})
	return true
}

// CheckDeathThroes latches death throes once health falls to the threshold.
// It reports true only on the evaluation that set the flag.
func (qp *QueenPhaser) CheckDeathThroes(now float64) bool {
	q := qp.Queen
	if !q.Alive() || q.AI.IsDeathThroes {
		return false
	}
	if q.HealthRatio() > qp.Cfg.DeathThroesThreshold {
		return false
	}
	q.AI.IsDeathThroes = true
	qp.Emit(Event{T: now, Type: "DeathThroes", Payload: map[string]any{
		"health": q.Health,
	}})
	return true
}
