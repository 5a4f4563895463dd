package combat

import (
	"errors"
	"fmt"
	"math"

	"breach_sim/internal/config"
)

type AttackKind = config.AttackKind

var (
	ErrQueenDisposed = errors.New("queen disposed or defeated")
	ErrScanCooldown  = errors.New("scan on cooldown")
)

// bodyHeight lifts the body hit sphere off the ground.
const bodyHeight = 4.0

type WeakPoint struct {
	ID               string
	Health           int
	MaxHealth        int
	DamageMultiplier float64
	Destroyed        bool
	GlowIntensity    float64
	Offset           Vec3
	Radius           float64
}

// PendingAttack is an attack that has been telegraphed but not resolved yet.
type PendingAttack struct {
	ID         string
	Kind       AttackKind
	SelectedAt float64 // ms
	ResolveAt  float64 // ms
}

type AIState struct {
	CurrentAttack        AttackKind
	AttackAnimationTimer float64
	Pending              *PendingAttack

	IsStaggered  bool
	StaggerTimer float64

	IsFrenzied             bool
	FrenzyAttacksRemaining int

	IsCharging     bool
	ChargeTarget   Vec3
	ChargeVelocity Vec3
	ChargeTimer    float64

	IsDeathThroes    bool
	DeathThroesTimer float64

	DamageDealt int
}

type Queen struct {
	ID        string
	Health    int
	MaxHealth int
	Phase     int

	Position  Vec3
	Home      Vec3
	Forward   Vec3
	HitRadius float64

	WeakPoints []*WeakPoint
	AI         AIState

	AttackCooldown float64 // ms
	SpawnCooldown  float64 // ms

	WeakPointVisible bool
	WeakPointTimer   float64
	IsVulnerable     bool
	ScanCooldown     float64

	Defeated bool
	disposed bool

	cfg   *config.QueenConfig
	model DamageModel
}

// NewQueen builds the boss at pos with difficulty-scaled health pools.
func NewQueen(b *config.Bundle, d config.Difficulty, pos Vec3) (*Queen, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bundle", config.ErrInvalid)
	}
	qc := &b.Queen
	if len(qc.WeakPoints) == 0 {
		return nil, fmt.Errorf("%w: queen has no weak points", config.ErrInvalid)
	}
	model := NewDamageModel(b, d)
	health := model.Scaled(config.TableHealth, float64(qc.MaxHealth))
	if health <= 0 {
		return nil, fmt.Errorf("%w: queen health %d", config.ErrInvalid, health)
	}
	spawnCD, err := qc.SpawnCooldownMs(1)
	if err != nil {
		return nil, err
	}
	id := qc.ID
	if id == "" {
		id = "queen"
	}
	q := &Queen{
		ID:            newID(id),
		Health:        health,
		MaxHealth:     health,
		Phase:         1,
		Position:      pos,
		Home:          pos,
		Forward:       Vec3{Z: -1},
		HitRadius:     qc.HitRadius,
		SpawnCooldown: model.ScaledF(config.TableCooldown, spawnCD),
		cfg:           qc,
		model:         model,
	}
	for _, def := range qc.WeakPoints {
		hp := model.Scaled(config.TableHealth, float64(def.Health))
		mult := def.Multiplier
		if mult == 0 {
			mult = model.WeakPointMultiplier
		}
		q.WeakPoints = append(q.WeakPoints, &WeakPoint{
			ID:               def.ID,
			Health:           hp,
			MaxHealth:        hp,
			DamageMultiplier: mult,
			Offset:           V3(def.Offset),
			Radius:           def.Radius,
		})
	}
	q.updateGlow()
	return q, nil
}

func (q *Queen) HealthRatio() float64 {
	if q.MaxHealth <= 0 {
		return 0
	}
	return float64(q.Health) / float64(q.MaxHealth)
}

func (q *Queen) Alive() bool { return !q.Defeated && !q.disposed }

func (q *Queen) Disposed() bool { return q.disposed }

// Dispose releases the queen; later hits and ticks are ignored.
func (q *Queen) Dispose() {
	q.disposed = true
	q.AI.Pending = nil
	q.AI.IsCharging = false
}

// WeakPoint looks a part up by id.
func (q *Queen) WeakPoint(id string) *WeakPoint {
	for _, wp := range q.WeakPoints {
		if wp.ID == id {
			return wp
		}
	}
	return nil
}

// WeakPointCenter is the world position of wp. Offsets are authored facing +Z.
func (q *Queen) WeakPointCenter(wp *WeakPoint) Vec3 {
	yaw := q.Forward.Yaw()
	s, c := math.Sin(yaw), math.Cos(yaw)
	off := Vec3{X: wp.Offset.X*c + wp.Offset.Z*s, Y: wp.Offset.Y, Z: -wp.Offset.X*s + wp.Offset.Z*c}
	return q.Position.Add(off)
}

func (q *Queen) BodyCenter() Vec3 { return q.Position.Add(Vec3{Y: bodyHeight}) }

// Damage applies flat damage to the main pool and reports whether this call
// defeated the queen. Damage after defeat is a no-op.
func (q *Queen) Damage(amount int) bool {
	if !q.Alive() || amount <= 0 {
		return false
	}
	q.Health -= amount
	if q.Health > 0 {
		return false
	}
	q.Health = 0
	q.Defeated = true
	q.AI.Pending = nil
	q.AI.IsCharging = false
	q.AI.CurrentAttack = config.AttackNone
	q.WeakPointVisible = false
	q.IsVulnerable = false
	return true
}

// DamageWeakPoint multiplies raw by the part's multiplier, deducts the result
// from both the part and the main pool, and staggers the queen the first time
// the part is destroyed. It returns whether the part was destroyed by this call.
func (q *Queen) DamageWeakPoint(wp *WeakPoint, raw float64) bool {
	if wp == nil || !q.Alive() {
		return false
	}
	if wp.Destroyed {
		q.Damage(int(math.Round(raw)))
		return false
	}
	amount := int(math.Round(raw * wp.DamageMultiplier))
	wp.Health -= amount
	q.Damage(amount)
	if wp.Health > 0 {
		return false
	}
	wp.Health = 0
	wp.Destroyed = true
	wp.GlowIntensity = 0
	if q.Alive() {
		q.Stagger(q.cfg.StaggerMs)
	}
	return true
}

// Stagger interrupts any attack in flight and blocks selection for ms.
func (q *Queen) Stagger(ms float64) {
	if !q.Alive() {
		return
	}
	q.AI.IsStaggered = true
	if ms > q.AI.StaggerTimer {
		q.AI.StaggerTimer = ms
	}
	q.AI.Pending = nil
	q.AI.CurrentAttack = config.AttackNone
	q.AI.AttackAnimationTimer = 0
	if q.AI.IsCharging {
		q.endCharge()
	}
}

func (q *Queen) endCharge() {
	q.AI.IsCharging = false
	q.AI.ChargeVelocity = Vec3{}
	q.AI.ChargeTimer = 0
	q.Position = q.Home
}

// Scan reveals the weak points for the difficulty-scaled reveal window.
func (q *Queen) Scan() error {
	if !q.Alive() {
		return ErrQueenDisposed
	}
	if q.ScanCooldown > 0 {
		return fmt.Errorf("%w: %.0fms left", ErrScanCooldown, q.ScanCooldown)
	}
	q.WeakPointVisible = true
	q.IsVulnerable = true
	q.WeakPointTimer = q.model.ScaledF(config.TableWeakPointDuration, q.cfg.RevealMs)
	q.ScanCooldown = q.model.ScaledF(config.TableScanCooldown, q.cfg.ScanCooldownMs)
	q.updateGlow()
	return nil
}

// CheckWeakPointHit returns the nearest revealed, intact weak point on the ray.
func (q *Queen) CheckWeakPointHit(origin, dir Vec3) *WeakPoint {
	if !q.Alive() || !q.WeakPointVisible {
		return nil
	}
	dir = dir.Norm()
	var best *WeakPoint
	bestT := math.MaxFloat64
	for _, wp := range q.WeakPoints {
		if wp.Destroyed {
			continue
		}
		if t, ok := RaySphere(origin, dir, q.WeakPointCenter(wp), wp.Radius); ok && t < bestT {
			best, bestT = wp, t
		}
	}
	return best
}

// RayDistance is the distance along the ray to the first part of the queen it
// touches, counting weak points only while revealed.
func (q *Queen) RayDistance(origin, dir Vec3) (float64, bool) {
	if !q.Alive() {
		return 0, false
	}
	dir = dir.Norm()
	best, hit := RaySphere(origin, dir, q.BodyCenter(), q.HitRadius)
	if wp := q.CheckWeakPointHit(origin, dir); wp != nil {
		if t, ok := RaySphere(origin, dir, q.WeakPointCenter(wp), wp.Radius); ok && (!hit || t < best) {
			best, hit = t, true
		}
	}
	return best, hit
}

type HitResult struct {
	Hit       bool
	WeakPoint string
	Damage    int
	Destroyed bool
	Defeated  bool
}

// HandleHit routes a hitscan shot: a revealed weak point on the ray takes the
// multiplied damage, otherwise the body takes flat damage.
func (q *Queen) HandleHit(origin, dir Vec3, base float64) HitResult {
	if !q.Alive() {
		return HitResult{}
	}
	if wp := q.CheckWeakPointHit(origin, dir); wp != nil {
		before := q.Health
		destroyed := q.DamageWeakPoint(wp, base)
		return HitResult{
			Hit: true, WeakPoint: wp.ID, Damage: before - q.Health,
			Destroyed: destroyed, Defeated: q.Defeated,
		}
	}
	if _, ok := RaySphere(origin, dir.Norm(), q.BodyCenter(), q.HitRadius); !ok {
		return HitResult{}
	}
	amount := q.model.QueenDamage(base, false)
	defeated := q.Damage(amount)
	return HitResult{Hit: true, Damage: amount, Defeated: defeated}
}

// tickTimers advances the reveal window and scan cooldown.
func (q *Queen) tickTimers(dtMs float64) {
	if q.ScanCooldown > 0 {
		q.ScanCooldown = math.Max(0, q.ScanCooldown-dtMs)
	}
	if q.WeakPointVisible {
		q.WeakPointTimer -= dtMs
		if q.WeakPointTimer <= 0 {
			q.WeakPointTimer = 0
			q.WeakPointVisible = false
			q.IsVulnerable = false
		}
	}
	q.updateGlow()
}

func (q *Queen) updateGlow() {
	base := 0.6 + 0.2*float64(q.Phase-1)
	if q.WeakPointVisible {
		base *= 1.2
	}
	for _, wp := range q.WeakPoints {
		if wp.Destroyed {
			wp.GlowIntensity = 0
			continue
		}
		wp.GlowIntensity = base
	}
}
