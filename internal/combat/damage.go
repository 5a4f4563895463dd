package combat

import (
	"math"

	"breach_sim/internal/config"
)

// DamageModel bundles the constant inputs of the combat math.
type DamageModel struct {
	WeakPointMultiplier float64
	CoverFactor         float64
	Difficulty          config.Difficulty
	Tables              *config.DifficultyConfig
}

func NewDamageModel(b *config.Bundle, d config.Difficulty) DamageModel {
	return DamageModel{
		WeakPointMultiplier: b.Queen.WeakPointMultiplier,
		CoverFactor:         b.Queen.CoverFactor,
		Difficulty:          d,
		Tables:              &b.Difficulty,
	}
}

// QueenDamage is base scaled by the weak point multiplier when isWeakPoint.
func (m DamageModel) QueenDamage(base float64, isWeakPoint bool) int {
	return CalculateQueenDamage(base, isWeakPoint, m.WeakPointMultiplier)
}

// Scaled applies table t for the model's difficulty.
func (m DamageModel) Scaled(t config.Table, base float64) int {
	return m.Tables.Scale(t, m.Difficulty, base)
}

func (m DamageModel) ScaledF(t config.Table, base float64) float64 {
	return m.Tables.ScaleF(t, m.Difficulty, base)
}

// Covered scales amount down when the target sits behind cover.
func (m DamageModel) Covered(amount int, from, target Vec3, covers []Vec3) int {
	if !BehindCover(from, target, covers) {
		return amount
	}
	f := m.CoverFactor
	if f <= 0 {
		f = 0.3
	}
	return int(math.Round(float64(amount) * f))
}

func CalculateQueenDamage(base float64, isWeakPoint bool, multiplier float64) int {
	if isWeakPoint {
		base *= multiplier
	}
	return int(math.Round(base))
}

// GrenadeDamage falls off linearly to exactly zero at radius.
func GrenadeDamage(radius, maxDamage, distance float64) int {
	if radius <= 0 || distance >= radius {
		return 0
	}
	if distance < 0 {
		distance = 0
	}
	return int(math.Round(maxDamage * (1 - distance/radius)))
}

// BehindCover reports whether some cover object lies between from and target:
// it is within 3 units of the target and within ~37 degrees of the line of attack.
func BehindCover(from, target Vec3, covers []Vec3) bool {
	toTarget := target.Sub(from).Norm()
	for _, c := range covers {
		toCover := c.Sub(from).Norm()
		if toCover.Dot(toTarget) > 0.8 && target.Dist(c) < 3 {
			return true
		}
	}
	return false
}
