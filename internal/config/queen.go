package config

import "fmt"

type QueenConfig struct {
	ID                   string         `yaml:"id"`
	MaxHealth            int            `yaml:"max_health"`
	HitRadius            float64        `yaml:"hit_radius"`
	PhaseThresholds      []float64      `yaml:"phase_thresholds"`
	DeathThroesThreshold float64        `yaml:"death_throes_threshold"`
	PhaseTransitionMs    float64        `yaml:"phase_transition_ms"`
	StaggerMs            float64        `yaml:"stagger_ms"`
	FrenzyAttackCount    int            `yaml:"frenzy_attack_count"`
	FrenzyCooldownMs     float64        `yaml:"frenzy_cooldown_ms"`
	AttackCooldownsMs    []float64      `yaml:"attack_cooldown_ms"`
	SpawnCooldownsMs     []float64      `yaml:"spawn_cooldown_ms"`
	SpawnCounts          []int          `yaml:"spawn_count"`
	DeathThroesSpawnMs   float64        `yaml:"death_throes_spawn_ms"`
	DeathThroesSpawn     SpawnDef       `yaml:"death_throes_spawn"`
	WaveKind             EnemyKind      `yaml:"wave_kind"`
	WeakPointMultiplier  float64        `yaml:"weak_point_multiplier"`
	RevealMs             float64        `yaml:"reveal_ms"`
	ScanCooldownMs       float64        `yaml:"scan_cooldown_ms"`
	CoverFactor          float64        `yaml:"cover_factor"`
	Charge               ChargeConfig   `yaml:"charge"`
	Bands                BandConfig     `yaml:"bands"`
	WeakPoints           []WeakPointDef `yaml:"weak_points"`
	Attacks              []AttackDef    `yaml:"attacks"`
	PhaseAttacks         [][]AttackKind `yaml:"phase_attacks"`
	WeightScript         string         `yaml:"weight_script"`
	Note                 string         `yaml:"note"`
}

type ChargeConfig struct {
	Speed           float64 `yaml:"speed"`
	CollisionRadius float64 `yaml:"collision_radius"`
	TimeoutMs       float64 `yaml:"timeout_ms"`
}

// BandConfig splits target distance into melee/mid/ranged brackets.
type BandConfig struct {
	Melee float64 `yaml:"melee"`
	Mid   float64 `yaml:"mid"`
	Bonus float64 `yaml:"bonus"`
}

func (b BandConfig) Classify(dist float64) Band {
	switch {
	case dist < b.Melee:
		return BandMelee
	case dist < b.Mid:
		return BandMid
	default:
		return BandRanged
	}
}

type WeakPointDef struct {
	ID         string  `yaml:"id"`
	Health     int     `yaml:"health"`
	Multiplier float64 `yaml:"multiplier"`
	Offset     Vec3Def `yaml:"offset"`
	Radius     float64 `yaml:"radius"`
}

type Vec3Def struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Attack returns the definition for kind.
func (q *QueenConfig) Attack(kind AttackKind) (*AttackDef, error) {
	for i := range q.Attacks {
		if q.Attacks[i].Kind == kind {
			return &q.Attacks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAttack, kind)
}

// AvailableAttacks returns the cumulative attack set unlocked at phase (1-based).
func (q *QueenConfig) AvailableAttacks(phase int) ([]AttackKind, error) {
	if phase < 1 || phase > len(q.PhaseAttacks) {
		return nil, fmt.Errorf("%w: %d", ErrPhaseIndex, phase)
	}
	var out []AttackKind
	for i := 0; i < phase; i++ {
		out = append(out, q.PhaseAttacks[i]...)
	}
	return out, nil
}

func (q *QueenConfig) AttackCooldownMs(phase int) (float64, error) {
	return phaseIndexed(q.AttackCooldownsMs, phase)
}

func (q *QueenConfig) SpawnCooldownMs(phase int) (float64, error) {
	return phaseIndexed(q.SpawnCooldownsMs, phase)
}

func (q *QueenConfig) SpawnCount(phase int) (int, error) {
	if phase < 1 || phase > len(q.SpawnCounts) {
		return 0, fmt.Errorf("%w: %d", ErrPhaseIndex, phase)
	}
	return q.SpawnCounts[phase-1], nil
}

// MaxPhase is the number of health-gated phases.
func (q *QueenConfig) MaxPhase() int { return len(q.PhaseThresholds) + 1 }

func phaseIndexed(v []float64, phase int) (float64, error) {
	if phase < 1 || phase > len(v) {
		return 0, fmt.Errorf("%w: %d", ErrPhaseIndex, phase)
	}
	return v[phase-1], nil
}
