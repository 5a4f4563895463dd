package config

import (
	"fmt"
	"strings"
)

// EnemyKind is one of the fixed hostile profiles.
type EnemyKind string

const (
	EnemyDrone   EnemyKind = "drone"
	EnemyGrunt   EnemyKind = "grunt"
	EnemySpitter EnemyKind = "spitter"
	EnemyBrute   EnemyKind = "brute"
)

func (k *EnemyKind) UnmarshalText(b []byte) error {
	s := EnemyKind(strings.ToLower(strings.TrimSpace(string(b))))
	switch s {
	case EnemyDrone, EnemyGrunt, EnemySpitter, EnemyBrute, "":
		*k = s
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEnemy, string(b))
}

type EnemiesConfig struct {
	Enemies []EnemyProfile `yaml:"enemies"`
}

type EnemyProfile struct {
	Type           EnemyKind `yaml:"type"`
	Health         int       `yaml:"health"`
	Damage         int       `yaml:"damage"`
	Speed          float64   `yaml:"speed"`
	AttackRange    float64   `yaml:"attack_range"`
	DetectionRange float64   `yaml:"detection_range"`
	FireRate       float64   `yaml:"fire_rate"` // attacks per second
	HitRadius      float64   `yaml:"hit_radius"`
	Note           string    `yaml:"note"`
}

func (ec *EnemiesConfig) Profile(kind EnemyKind) (*EnemyProfile, error) {
	for i := range ec.Enemies {
		if ec.Enemies[i].Type == kind {
			return &ec.Enemies[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEnemy, string(kind))
}
