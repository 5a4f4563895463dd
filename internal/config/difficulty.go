package config

import "math"

// Difficulty is the persisted difficulty setting, read once per level.
type Difficulty string

const (
	Easy      Difficulty = "easy"
	Normal    Difficulty = "normal"
	Hard      Difficulty = "hard"
	Nightmare Difficulty = "nightmare"
)

// Table names one of the multiplier tables.
type Table string

const (
	TableHealth            Table = "health"
	TableDamage            Table = "damage"
	TableCooldown          Table = "cooldown"
	TableWeakPointDuration Table = "weak_point_duration"
	TableScanCooldown      Table = "scan_cooldown"
	TableIFrames           Table = "invincibility_frames"
	TableDetection         Table = "detection_range"
	TableFireRate          Table = "fire_rate"
)

// DifficultyConfig holds multiplier tables keyed by difficulty. Multipliers
// are applied when a value is read, never baked into base stats.
type DifficultyConfig struct {
	Tables map[Table]map[Difficulty]float64 `yaml:"tables"`
}

// Multiplier returns the table entry for d, or 1.0 when either is unknown.
func (dc *DifficultyConfig) Multiplier(t Table, d Difficulty) float64 {
	if dc == nil {
		return 1.0
	}
	tbl, ok := dc.Tables[t]
	if !ok {
		return 1.0
	}
	m, ok := tbl[d]
	if !ok || m <= 0 {
		return 1.0
	}
	return m
}

// Scale returns round(base * multiplier).
func (dc *DifficultyConfig) Scale(t Table, d Difficulty, base float64) int {
	return int(math.Round(base * dc.Multiplier(t, d)))
}

// ScaleF is Scale without rounding, for ranges and timers.
func (dc *DifficultyConfig) ScaleF(t Table, d Difficulty, base float64) float64 {
	return base * dc.Multiplier(t, d)
}
