package config

import (
	"fmt"
	"strings"
)

// AttackKind names one of the queen's attacks.
type AttackKind int

const (
	AttackNone AttackKind = iota
	AttackAcidSpray
	AttackTailSwipe
	AttackScreech
	AttackEggBurst
	AttackCharge
	AttackPoisonCloud
	AttackFrenzy
)

// AllAttacks lists every selectable kind in table order.
var AllAttacks = []AttackKind{
	AttackAcidSpray,
	AttackTailSwipe,
	AttackScreech,
	AttackEggBurst,
	AttackCharge,
	AttackPoisonCloud,
	AttackFrenzy,
}

var attackNames = map[AttackKind]string{
	AttackNone:        "none",
	AttackAcidSpray:   "acid_spray",
	AttackTailSwipe:   "tail_swipe",
	AttackScreech:     "screech",
	AttackEggBurst:    "egg_burst",
	AttackCharge:      "charge",
	AttackPoisonCloud: "poison_cloud",
	AttackFrenzy:      "frenzy",
}

func (k AttackKind) String() string {
	if n, ok := attackNames[k]; ok {
		return n
	}
	return fmt.Sprintf("attack(%d)", int(k))
}

// ParseAttackKind maps a config name such as "tail_swipe" to its kind.
func ParseAttackKind(s string) (AttackKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range attackNames {
		if n == s {
			return k, nil
		}
	}
	return AttackNone, fmt.Errorf("%w: %q", ErrUnknownAttack, s)
}

func (k AttackKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AttackKind) UnmarshalText(b []byte) error {
	v, err := ParseAttackKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Band is the distance bracket an attack prefers.
type Band string

const (
	BandMelee  Band = "melee"
	BandMid    Band = "mid"
	BandRanged Band = "ranged"
)

// AttackDef is the static tuning for one attack kind.
type AttackDef struct {
	Kind        AttackKind `yaml:"kind"`
	Name        string     `yaml:"name"`
	Damage      float64    `yaml:"damage"`
	TelegraphMs float64    `yaml:"telegraph_ms"`
	RecoveryMs  float64    `yaml:"recovery_ms"`
	Range       float64    `yaml:"range"`
	Arc         float64    `yaml:"arc"` // minimum facing dot product, -1 is omnidirectional
	Weight      float64    `yaml:"weight"`
	Band        Band       `yaml:"band"`
	Cover       bool       `yaml:"cover"`
	Spawn       SpawnDef   `yaml:"spawn"`
	Note        string     `yaml:"note"`
}

// SpawnDef describes minions released when an attack resolves.
type SpawnDef struct {
	Kind  EnemyKind `yaml:"kind"`
	Count int       `yaml:"count"`
}

func (d AttackDef) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Kind.String()
}
