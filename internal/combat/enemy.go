package combat

import (
	"fmt"
	"hash/fnv"
	"math"

	"breach_sim/internal/config"
)

type EnemyState int

const (
	StateIdle EnemyState = iota
	StatePatrol
	StateChase
	StateAttack
	StateDead
)

func (s EnemyState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

type Enemy struct {
	ID      string
	Kind    config.EnemyKind
	Profile config.EnemyProfile
	Zone    string

	Health    int
	MaxHealth int

	Position Vec3
	Velocity Vec3
	Yaw      float64

	AttackCooldown float64 // ms
	State          EnemyState

	MarkedForDisposal bool
	LastHitDir        Vec3
	LastHitCritical   bool

	phaseOffset float64
}

// NewEnemy builds an enemy with a fixed id; patrol motion is derived from it.
func NewEnemy(id string, prof config.EnemyProfile, health int, pos Vec3) *Enemy {
	return &Enemy{
		ID:          id,
		Kind:        prof.Type,
		Profile:     prof,
		Health:      health,
		MaxHealth:   health,
		Position:    pos,
		State:       StatePatrol,
		phaseOffset: patrolPhase(id),
	}
}

func (e *Enemy) Dead() bool { return e.State == StateDead }

func patrolPhase(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float64(h.Sum32()) / float64(math.MaxUint32) * 2 * math.Pi
}

// NextEnemyState is the transition policy for a live enemy.
func NextEnemyState(dist, cooldownMs, attackRange, detectionRange float64) EnemyState {
	switch {
	case dist < attackRange && cooldownMs <= 0:
		return StateAttack
	case dist < detectionRange:
		return StateChase
	default:
		return StatePatrol
	}
}

// EnemyAI runs the per-entity state machine with difficulty applied on read.
type EnemyAI struct {
	cfg      *config.EnemiesConfig
	model    DamageModel
	feedback Feedback
	emit     func(Event)
	spawned  int
}

func NewEnemyAI(b *config.Bundle, d config.Difficulty, fb Feedback, emit func(Event)) *EnemyAI {
	if fb == nil {
		fb = NopFeedback{}
	}
	if emit == nil {
		emit = nopEmit
	}
	return &EnemyAI{cfg: &b.Enemies, model: NewDamageModel(b, d), feedback: fb, emit: emit}
}

// Spawn creates a full-health enemy of kind. Ids are sequential per EnemyAI so
// a seeded run replays the same patrol paths.
func (ai *EnemyAI) Spawn(kind config.EnemyKind, pos Vec3, zone string) (*Enemy, error) {
	prof, err := ai.cfg.Profile(kind)
	if err != nil {
		return nil, err
	}
	ai.spawned++
	id := fmt.Sprintf("%s_%d", kind, ai.spawned)
	e := NewEnemy(id, *prof, ai.model.Scaled(config.TableHealth, float64(prof.Health)), pos)
	e.Zone = zone
	return e, nil
}

func (ai *EnemyAI) DetectionRange(e *Enemy) float64 {
	return ai.model.ScaledF(config.TableDetection, e.Profile.DetectionRange)
}

// Update advances one live enemy by one tick. Dead enemies are left untouched.
func (ai *EnemyAI) Update(env *Env, e *Enemy, target Vec3) {
	if e == nil || e.State == StateDead {
		return
	}
	e.AttackCooldown -= env.DeltaMs()

	dist := e.Position.Dist(target)
	next := NextEnemyState(dist, e.AttackCooldown, e.Profile.AttackRange, ai.DetectionRange(e))
	if next != e.State {
		ai.emit(Event{T: env.Time, Type: "EnemyState", Payload: map[string]any{
			"id": e.ID, "from": e.State.String(), "to": next.String(),
		}})
		e.State = next
	}

	switch e.State {
	case StateChase:
		dir := target.Sub(e.Position).Norm()
		e.Velocity = dir.Scale(e.Profile.Speed)
		e.Position = e.Position.Add(e.Velocity.Scale(env.Delta))
		e.Yaw = dir.Yaw()
	case StatePatrol:
		a := env.Time*0.6 + e.phaseOffset
		e.Velocity = Vec3{X: math.Cos(a), Z: math.Sin(a)}.Scale(e.Profile.Speed * 0.3)
		e.Position = e.Position.Add(e.Velocity.Scale(env.Delta))
		e.Yaw = e.Velocity.Yaw()
	case StateAttack:
		e.Velocity = Vec3{}
		e.Yaw = target.Sub(e.Position).Yaw()
	}
}

// AttackDamage resolves an attack and resets the cooldown when one lands.
// Call it at most once per enemy per tick.
func (ai *EnemyAI) AttackDamage(e *Enemy, target Vec3) int {
	if e == nil || e.State != StateAttack || e.AttackCooldown > 0 {
		return 0
	}
	if e.Position.Dist(target) >= e.Profile.AttackRange*1.5 {
		return 0
	}
	rate := ai.model.ScaledF(config.TableFireRate, e.Profile.FireRate)
	if rate <= 0 {
		rate = 1
	}
	e.AttackCooldown = 1000/rate + e.Profile.AttackRange*50
	return ai.model.Scaled(config.TableDamage, float64(e.Profile.Damage))
}

// Damage subtracts amount and reports whether this call killed the enemy.
// Health may go negative for overkill reporting. Hits on a dead enemy are ignored.
func (ai *EnemyAI) Damage(e *Enemy, amount int, hitDir *Vec3, critical bool) bool {
	if e == nil || e.State == StateDead {
		return false
	}
	e.Health -= amount
	e.LastHitCritical = critical
	if hitDir != nil {
		e.LastHitDir = hitDir.Norm()
	}
	particle := "hit"
	if critical {
		particle = "crit"
	}
	ai.feedback.EmitParticle(particle, e.Position, 1)
	if e.Health > 0 {
		return false
	}
	e.State = StateDead
	e.Velocity = Vec3{}
	e.MarkedForDisposal = true
	ai.feedback.EmitParticle("death", e.Position, 1.5)
	return true
}
