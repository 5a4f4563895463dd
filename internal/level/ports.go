package level

import (
	"breach_sim/internal/combat"
	"breach_sim/internal/config"
)

// EnemyHandle is the scene's opaque object for a spawned hostile.
type EnemyHandle interface {
	SetTransform(pos combat.Vec3, yaw float64)
}

// Scene creates and destroys the visual side of enemies.
type Scene interface {
	SpawnEnemy(kind config.EnemyKind, pos combat.Vec3, zone string) EnemyHandle
	DisposeEnemy(h EnemyHandle)
}

// Input is polled once per tick.
type Input interface {
	IsFiring() bool
	AimRay() (origin, dir combat.Vec3)
	ConsumeAmmo() bool
}

type CommsMessage struct {
	Sender string
	Text   string
}

// Callbacks are optional notifications to the host. They run inside Tick and
// must not call back into the Level.
type Callbacks struct {
	OnCommsMessage    func(CommsMessage)
	OnObjectiveUpdate func(title, description string)
	OnHealthChange    func(value int)
	OnKill            func()
	OnDamage          func()
	OnLevelComplete   func()
}

type nopHandle struct{}

func (nopHandle) SetTransform(combat.Vec3, float64) {}

type nopScene struct{}

func (nopScene) SpawnEnemy(config.EnemyKind, combat.Vec3, string) EnemyHandle { return nopHandle{} }
func (nopScene) DisposeEnemy(EnemyHandle)                                     {}

type idleInput struct{}

func (idleInput) IsFiring() bool                     { return false }
func (idleInput) AimRay() (combat.Vec3, combat.Vec3) { return combat.Vec3{}, combat.Vec3{Z: 1} }
func (idleInput) ConsumeAmmo() bool                  { return false }
