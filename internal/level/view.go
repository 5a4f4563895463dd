package level

import (
	"breach_sim/internal/combat"
)

// EnemyView is a read-only copy of an active enemy.
type EnemyView struct {
	ID       string
	Kind     string
	State    combat.EnemyState
	Health   int
	Position combat.Vec3
}

// QueenView is a read-only copy of the queen's observable state.
type QueenView struct {
	Health           int
	MaxHealth        int
	Phase            int
	Position         combat.Vec3
	Forward          combat.Vec3
	Staggered        bool
	Frenzied         bool
	DeathThroes      bool
	Charging         bool
	Defeated         bool
	WeakPointVisible bool
	ScanCooldown     float64
	CurrentAttack    string
	WeakPoints       []WeakPointView
}

type WeakPointView struct {
	ID        string
	Center    combat.Vec3
	Health    int
	Destroyed bool
}

func (l *Level) Time() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.env.Time
}

func (l *Level) Enemies() []EnemyView {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EnemyView, 0, len(l.enemies))
	for _, ae := range l.enemies {
		e := ae.enemy
		out = append(out, EnemyView{ID: e.ID, Kind: string(e.Kind), State: e.State, Health: e.Health, Position: e.Position})
	}
	return out
}

// Queen returns nil until the player has entered the arena.
func (l *Level) Queen() *QueenView {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queen
	if q == nil {
		return nil
	}
	v := &QueenView{
		Health:           q.Health,
		MaxHealth:        q.MaxHealth,
		Phase:            q.Phase,
		Position:         q.Position,
		Forward:          q.Forward,
		Staggered:        q.AI.IsStaggered,
		Frenzied:         q.AI.IsFrenzied,
		DeathThroes:      q.AI.IsDeathThroes,
		Charging:         q.AI.IsCharging,
		Defeated:         q.Defeated,
		WeakPointVisible: q.WeakPointVisible,
		ScanCooldown:     q.ScanCooldown,
		CurrentAttack:    q.AI.CurrentAttack.String(),
	}
	for _, wp := range q.WeakPoints {
		v.WeakPoints = append(v.WeakPoints, WeakPointView{
			ID: wp.ID, Center: q.WeakPointCenter(wp), Health: wp.Health, Destroyed: wp.Destroyed,
		})
	}
	return v
}

func (l *Level) PlayerPosition() combat.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.player.Pos
}

func (l *Level) PlayerHealth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.player.Health
}

func (l *Level) DamageBySource() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.player.DamageBySource))
	for k, v := range l.player.DamageBySource {
		out[k] = v
	}
	return out
}

func (l *Level) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.PhaseEnteredAt = make(map[int]float64, len(l.stats.PhaseEnteredAt))
	for k, v := range l.stats.PhaseEnteredAt {
		s.PhaseEnteredAt[k] = v
	}
	return s
}

func (l *Level) Grenades() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grenades
}

func (l *Level) QueenDefeated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queenDefeated
}

func (l *Level) Complete() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.complete
}

// Failed reports whether the player has died.
func (l *Level) Failed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.player.Dead()
}

func (l *Level) PendingTasks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sched.Pending()
}
