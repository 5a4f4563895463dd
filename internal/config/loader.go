package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Bundle is the full balance set for one level.
type Bundle struct {
	Queen      QueenConfig      `yaml:"queen"`
	Enemies    EnemiesConfig    `yaml:"-"`
	Difficulty DifficultyConfig `yaml:"-"`
	Player     PlayerConfig     `yaml:"player"`
	Arena      ArenaConfig      `yaml:"arena"`

	// Script holds the weight script source when Queen.WeightScript is set.
	Script []byte `yaml:"-"`
}

type queenFile struct {
	Queen QueenConfig `yaml:"queen"`
}

type playerFile struct {
	Player PlayerConfig `yaml:"player"`
	Arena  ArenaConfig  `yaml:"arena"`
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func loadEmbedded(name string, out any) error {
	b, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// LoadAll reads queen.yaml, enemies.yaml, difficulty.yaml and player.yaml from dir.
func LoadAll(dir string) (*Bundle, error) {
	b, err := load(func(name string, out any) error {
		return loadYAML(filepath.Join(dir, name), out)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	if b.Queen.WeightScript != "" {
		src, err := os.ReadFile(filepath.Join(dir, b.Queen.WeightScript))
		if err != nil {
			return nil, fmt.Errorf("load weight script: %w", err)
		}
		b.Script = src
	}
	return b, nil
}

// Default returns the balance embedded in the binary.
func Default() (*Bundle, error) {
	b, err := load(loadEmbedded)
	if err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	return b, nil
}

// MustDefault is Default for tests and tools with a known-good embedded set.
func MustDefault() *Bundle {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

func load(read func(name string, out any) error) (*Bundle, error) {
	var qf queenFile
	var pf playerFile
	var b Bundle
	if err := read("queen.yaml", &qf); err != nil {
		return nil, err
	}
	if err := read("enemies.yaml", &b.Enemies); err != nil {
		return nil, err
	}
	if err := read("difficulty.yaml", &b.Difficulty); err != nil {
		return nil, err
	}
	if err := read("player.yaml", &pf); err != nil {
		return nil, err
	}
	b.Queen = qf.Queen
	b.Player = pf.Player
	b.Arena = pf.Arena
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate rejects bundles that would produce a broken encounter.
func (b *Bundle) Validate() error {
	q := &b.Queen
	if q.MaxHealth <= 0 {
		return fmt.Errorf("%w: queen max_health must be positive", ErrInvalid)
	}
	if len(q.WeakPoints) == 0 {
		return fmt.Errorf("%w: queen has no weak points", ErrInvalid)
	}
	for _, wp := range q.WeakPoints {
		if wp.ID == "" || wp.Health <= 0 || wp.Multiplier < 0 {
			return fmt.Errorf("%w: weak point %q", ErrInvalid, wp.ID)
		}
	}
	if len(q.PhaseThresholds) == 0 {
		return fmt.Errorf("%w: no phase thresholds", ErrInvalid)
	}
	prev := 1.0
	for _, t := range q.PhaseThresholds {
		if t <= 0 || t >= prev {
			return fmt.Errorf("%w: phase thresholds must strictly decrease in (0,1)", ErrInvalid)
		}
		prev = t
	}
	phases := q.MaxPhase()
	if len(q.PhaseAttacks) != phases || len(q.AttackCooldownsMs) != phases || len(q.SpawnCooldownsMs) != phases || len(q.SpawnCounts) != phases {
		return fmt.Errorf("%w: per-phase tables need %d entries", ErrInvalid, phases)
	}
	for _, set := range q.PhaseAttacks {
		for _, k := range set {
			if _, err := q.Attack(k); err != nil {
				return err
			}
		}
	}
	for _, a := range q.Attacks {
		if a.Spawn.Count > 0 {
			if _, err := b.Enemies.Profile(a.Spawn.Kind); err != nil {
				return fmt.Errorf("attack %s spawns: %w", a.Kind, err)
			}
		}
	}
	for _, k := range []EnemyKind{EnemyDrone, EnemyGrunt, EnemySpitter, EnemyBrute} {
		if _, err := b.Enemies.Profile(k); err != nil {
			return err
		}
	}
	if q.FrenzyAttackCount <= 0 {
		return fmt.Errorf("%w: frenzy_attack_count must be positive", ErrInvalid)
	}
	if b.Player.MaxHealth <= 0 {
		return fmt.Errorf("%w: player max_health must be positive", ErrInvalid)
	}
	return nil
}
