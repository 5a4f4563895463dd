package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breach_sim/internal/config"
)

func testProfile() config.EnemyProfile {
	return config.EnemyProfile{
		Type:           config.EnemyGrunt,
		Health:         100,
		Damage:         15,
		Speed:          6,
		AttackRange:    3,
		DetectionRange: 20,
		FireRate:       1,
		HitRadius:      1,
	}
}

func TestNextEnemyState(t *testing.T) {
	assert.Equal(t, StateChase, NextEnemyState(10, 0, 3, 20))
	assert.Equal(t, StateAttack, NextEnemyState(1, 0, 3, 20))
	assert.Equal(t, StateChase, NextEnemyState(1, 250, 3, 20))
	assert.Equal(t, StatePatrol, NextEnemyState(25, 0, 3, 20))
}

func TestEnemyTransitions(t *testing.T) {
	var events []Event
	ai := NewEnemyAI(config.MustDefault(), config.Normal, nil, func(ev Event) { events = append(events, ev) })
	e := NewEnemy("grunt_1", testProfile(), 100, Vec3{X: 10})
	env := &Env{Time: 0.05, Delta: 0.05}
	target := Vec3{}

	require.Equal(t, StatePatrol, e.State)
	ai.Update(env, e, target)
	assert.Equal(t, StateChase, e.State)
	assert.Less(t, e.Position.Dist(target), 10.0)
	require.Len(t, events, 1)
	assert.Equal(t, "patrol", events[0].Payload["from"])
	assert.Equal(t, "chase", events[0].Payload["to"])

	e.Position = Vec3{X: 1}
	ai.Update(env, e, target)
	assert.Equal(t, StateAttack, e.State)
	assert.Equal(t, Vec3{}, e.Velocity)

	e.State = StateDead
	e.Position = Vec3{X: 5, Z: 5}
	before := *e
	env.Time += env.Delta
	ai.Update(env, e, target)
	assert.Equal(t, before, *e)
}

func TestEnemyLosesTargetAndPatrols(t *testing.T) {
	ai := NewEnemyAI(config.MustDefault(), config.Normal, nil, nil)
	e := NewEnemy("grunt_2", testProfile(), 100, Vec3{X: 10})
	env := &Env{Time: 0.05, Delta: 0.05}
	ai.Update(env, e, Vec3{})
	require.Equal(t, StateChase, e.State)

	ai.Update(env, e, Vec3{X: 100})
	assert.Equal(t, StatePatrol, e.State)
}

func TestEnemyDetectionScalesWithDifficulty(t *testing.T) {
	b := config.MustDefault()
	e := NewEnemy("grunt_3", testProfile(), 100, Vec3{X: 22})
	env := &Env{Time: 0.05, Delta: 0.05}

	NewEnemyAI(b, config.Normal, nil, nil).Update(env, e, Vec3{})
	assert.Equal(t, StatePatrol, e.State)

	e.Position = Vec3{X: 22}
	NewEnemyAI(b, config.Nightmare, nil, nil).Update(env, e, Vec3{})
	assert.Equal(t, StateChase, e.State)
}

func TestEnemyAttackDamage(t *testing.T) {
	ai := NewEnemyAI(config.MustDefault(), config.Normal, nil, nil)
	e := NewEnemy("grunt_4", testProfile(), 100, Vec3{X: 1})
	target := Vec3{}

	assert.Equal(t, 0, ai.AttackDamage(e, target), "patrolling enemies do not attack")

	ai.Update(&Env{Time: 0.05, Delta: 0.05}, e, target)
	require.Equal(t, StateAttack, e.State)
	assert.Equal(t, 15, ai.AttackDamage(e, target))
	assert.InDelta(t, 1000.0+150.0, e.AttackCooldown, 1e-9)
	assert.Equal(t, 0, ai.AttackDamage(e, target))

	e.AttackCooldown = 0
	e.Position = Vec3{X: 4}
	assert.Equal(t, 15, ai.AttackDamage(e, target), "inside the 1.5x window")
	e.AttackCooldown = 0
	e.Position = Vec3{X: 5}
	assert.Equal(t, 0, ai.AttackDamage(e, target))

	hard := NewEnemyAI(config.MustDefault(), config.Hard, nil, nil)
	e.Position = Vec3{X: 1}
	e.AttackCooldown = 0
	assert.Equal(t, 20, hard.AttackDamage(e, target))
}

func TestEnemyDamageKillsOnce(t *testing.T) {
	ai := NewEnemyAI(config.MustDefault(), config.Normal, nil, nil)
	e := NewEnemy("grunt_5", testProfile(), 100, Vec3{})
	dir := Vec3{X: 3}

	assert.False(t, ai.Damage(e, 60, &dir, false))
	assert.Equal(t, 40, e.Health)
	assert.Equal(t, Vec3{X: 1}, e.LastHitDir)

	assert.True(t, ai.Damage(e, 70, nil, true))
	assert.Equal(t, -30, e.Health)
	assert.True(t, e.MarkedForDisposal)
	assert.True(t, e.Dead())
	assert.True(t, e.LastHitCritical)

	assert.False(t, ai.Damage(e, 70, nil, false))
	assert.Equal(t, -30, e.Health)
}

func TestEnemyPatrolIsDeterministic(t *testing.T) {
	ai := NewEnemyAI(config.MustDefault(), config.Normal, nil, nil)
	a := NewEnemy("spitter_1", testProfile(), 60, Vec3{Z: -80})
	b := NewEnemy("spitter_1", testProfile(), 60, Vec3{Z: -80})
	far := Vec3{Z: 200}
	for i := 1; i <= 40; i++ {
		env := &Env{Time: float64(i) * 0.05, Delta: 0.05}
		ai.Update(env, a, far)
		ai.Update(env, b, far)
	}
	assert.Equal(t, StatePatrol, a.State)
	assert.Equal(t, a.Position, b.Position)
	assert.NotEqual(t, Vec3{Z: -80}, a.Position)
}

func TestSpawnUsesProfile(t *testing.T) {
	b := config.MustDefault()
	e, err := NewEnemyAI(b, config.Hard, nil, nil).Spawn(config.EnemyGrunt, Vec3{X: 2}, "arena")
	require.NoError(t, err)
	assert.Equal(t, 140, e.Health)
	assert.Equal(t, 140, e.MaxHealth)
	assert.Equal(t, "grunt_1", e.ID)
	assert.Equal(t, "arena", e.Zone)
	assert.Equal(t, StatePatrol, e.State)

	_, err = NewEnemyAI(b, config.Normal, nil, nil).Spawn(config.EnemyKind("titan"), Vec3{}, "")
	assert.ErrorIs(t, err, config.ErrUnknownEnemy)
}
