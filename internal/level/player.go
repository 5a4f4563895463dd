package level

import (
	"breach_sim/internal/combat"
)

// Player is the queen's and the enemies' target.
type Player struct {
	Pos       combat.Vec3
	Health    int
	MaxHealth int

	DamageTaken    int
	DamageBySource map[string]int

	iframes   float64 // ms left
	iframesMs float64
	onHealth  func(int)
	onDamage  func()
}

func (p *Player) Position() combat.Vec3 { return p.Pos }

func (p *Player) Dead() bool { return p.Health <= 0 }

// TakeDamage applies amount unless the player is dead or still inside the
// invincibility window of a previous hit. It returns what landed.
func (p *Player) TakeDamage(amount int, source string) int {
	if amount <= 0 || p.Dead() || p.iframes > 0 {
		return 0
	}
	if amount > p.Health {
		amount = p.Health
	}
	p.Health -= amount
	p.DamageTaken += amount
	p.DamageBySource[source] += amount
	p.iframes = p.iframesMs
	if p.onDamage != nil {
		p.onDamage()
	}
	if p.onHealth != nil {
		p.onHealth(p.Health)
	}
	return amount
}

func (p *Player) tick(dtMs float64) {
	if p.iframes > 0 {
		p.iframes -= dtMs
	}
}
