package level

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breach_sim/internal/combat"
	"breach_sim/internal/config"
)

type testHandle struct{ moves int }

func (h *testHandle) SetTransform(combat.Vec3, float64) { h.moves++ }

type testScene struct {
	spawned  []config.EnemyKind
	disposed int
}

func (s *testScene) SpawnEnemy(kind config.EnemyKind, _ combat.Vec3, _ string) EnemyHandle {
	s.spawned = append(s.spawned, kind)
	return &testHandle{}
}

func (s *testScene) DisposeEnemy(EnemyHandle) { s.disposed++ }

type hostLog struct {
	comms      []string
	objectives []string
	health     []int
	kills      int
	completed  int
}

func (h *hostLog) callbacks() Callbacks {
	return Callbacks{
		OnCommsMessage:    func(m CommsMessage) { h.comms = append(h.comms, m.Text) },
		OnObjectiveUpdate: func(title, _ string) { h.objectives = append(h.objectives, title) },
		OnHealthChange:    func(v int) { h.health = append(h.health, v) },
		OnKill:            func() { h.kills++ },
		OnLevelComplete:   func() { h.completed++ },
	}
}

func (h *hostLog) heard(prefix string) bool {
	for _, c := range h.comms {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func newTestLevel(t *testing.T) (*Level, *hostLog, *testScene) {
	t.Helper()
	host := &hostLog{}
	scene := &testScene{}
	l, err := New(config.MustDefault(), Options{Scene: scene, Callbacks: host.callbacks()})
	require.NoError(t, err)
	return l, host, scene
}

func ticks(l *Level, n int) {
	for i := 0; i < n; i++ {
		l.Tick(0.05)
	}
}

// enterArena moves the player to the arena center and runs one tick.
func enterArena(t *testing.T, l *Level) {
	t.Helper()
	l.MovePlayer(combat.Vec3{})
	l.Tick(0.05)
	require.NotNil(t, l.Queen())
}

// killQueen drops the queen to 1 HP and finishes her with a body shot.
func killQueen(t *testing.T, l *Level) {
	t.Helper()
	l.mu.Lock()
	l.queen.Health = 1
	l.mu.Unlock()
	res := l.Fire(combat.Vec3{Y: 4}, combat.Vec3{Z: 1})
	require.True(t, res.Queen.Hit)
	require.True(t, res.Queen.Defeated)
}

func TestNewRejectsInvalidBundle(t *testing.T) {
	b := config.MustDefault()
	b.Queen.PhaseThresholds = nil
	_, err := New(b, Options{})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = New(nil, Options{})
	assert.Error(t, err)
}

func TestNewPlacesPatrols(t *testing.T) {
	l, _, scene := newTestLevel(t)
	assert.Len(t, l.Enemies(), 3)
	assert.Equal(t, []config.EnemyKind{config.EnemyGrunt, config.EnemySpitter, config.EnemyDrone}, scene.spawned)
	assert.Nil(t, l.Queen())
	assert.Equal(t, combat.Vec3{Z: -120}, l.PlayerPosition())
	assert.Equal(t, 200, l.PlayerHealth())
	assert.ErrorIs(t, l.Scan(), ErrNotInArena)

	l.Dispose()
	assert.ErrorIs(t, l.Scan(), combat.ErrQueenDisposed)
}

func TestArenaEntryWakesQueen(t *testing.T) {
	l, host, _ := newTestLevel(t)
	ticks(l, 5)
	assert.Nil(t, l.Queen(), "queen waits for the player")

	enterArena(t, l)
	q := l.Queen()
	assert.Equal(t, 1, q.Phase)
	assert.Equal(t, 5000, q.MaxHealth)
	assert.Equal(t, combat.Vec3{Z: 30}, q.Position)
	assert.Equal(t, []string{"KILL THE QUEEN"}, host.objectives)
	assert.True(t, host.heard("That's the hive queen"))
	assert.Contains(t, l.Stats().PhaseEnteredAt, 1)

	require.NoError(t, l.Scan())
	assert.True(t, l.Queen().WeakPointVisible)
	assert.ErrorIs(t, l.Scan(), combat.ErrScanCooldown)
}

func TestPhaseCommsArriveLater(t *testing.T) {
	l, host, _ := newTestLevel(t)
	enterArena(t, l)

	l.mu.Lock()
	l.queen.Health = 3000
	l.mu.Unlock()
	l.Tick(0.05)
	assert.Equal(t, 2, l.Queen().Phase)
	assert.Equal(t, 1, l.PendingTasks())
	assert.False(t, host.heard("She's bleeding"))

	ticks(l, 40)
	assert.True(t, host.heard("She's bleeding"))
	assert.Equal(t, 0, l.PendingTasks())
	assert.Contains(t, l.Stats().PhaseEnteredAt, 2)
}

func TestQueenDeathCancelsPhaseComms(t *testing.T) {
	l, host, _ := newTestLevel(t)
	enterArena(t, l)

	l.mu.Lock()
	l.queen.Health = 3000
	l.mu.Unlock()
	l.Tick(0.05)
	require.Equal(t, 1, l.PendingTasks())

	killQueen(t, l)
	assert.Equal(t, 4, l.PendingTasks())
	ticks(l, 60)
	assert.False(t, host.heard("She's bleeding"))
}

func TestDeathSequenceCompletesLevel(t *testing.T) {
	l, host, _ := newTestLevel(t)
	enterArena(t, l)
	killQueen(t, l)

	assert.True(t, l.QueenDefeated())
	assert.False(t, l.Complete())
	assert.Equal(t, 4, l.PendingTasks())

	second := l.Fire(combat.Vec3{Y: 4}, combat.Vec3{Z: 1})
	assert.False(t, second.Queen.Hit)

	ticks(l, 130)
	assert.True(t, l.Complete())
	assert.Equal(t, 1, host.completed)
	assert.Equal(t, []string{"KILL THE QUEEN", "ESCAPE THE HIVE"}, host.objectives)
	assert.True(t, host.heard("Confirmed kill."))
	assert.Equal(t, 0, l.PendingTasks())
}

func TestDisposeDropsPendingWork(t *testing.T) {
	l, host, scene := newTestLevel(t)
	enterArena(t, l)
	killQueen(t, l)
	require.Equal(t, 4, l.PendingTasks())

	l.Dispose()
	assert.Equal(t, 0, l.PendingTasks())
	assert.Equal(t, 3, scene.disposed)
	ticks(l, 200)
	assert.False(t, l.Complete())
	assert.Equal(t, 0, host.completed)
	assert.Empty(t, l.Enemies())

	l.Dispose()
	assert.Equal(t, 0, l.ThrowGrenade(combat.Vec3{}))
	assert.True(t, l.Fire(combat.Vec3{}, combat.Vec3{Z: 1}).Missed)
}

func TestGrenadeKills(t *testing.T) {
	l, host, scene := newTestLevel(t)
	grunt := combat.Vec3{Z: -90}

	assert.Equal(t, 1, l.ThrowGrenade(grunt))
	assert.Equal(t, 1, l.ThrowGrenade(grunt))
	assert.Equal(t, 1, host.kills)
	assert.Equal(t, 1, l.Stats().Kills)
	assert.Equal(t, 4, l.Grenades())
	assert.Equal(t, 2, l.Stats().GrenadesThrown)

	l.Tick(0.05)
	assert.Len(t, l.Enemies(), 2)
	assert.Equal(t, 1, scene.disposed)

	for i := 0; i < 4; i++ {
		l.ThrowGrenade(combat.Vec3{X: 500})
	}
	assert.Equal(t, 0, l.Grenades())
	assert.Equal(t, 0, l.ThrowGrenade(combat.Vec3{Z: -80}))
}

func TestFireHitsNearestEnemy(t *testing.T) {
	l, _, _ := newTestLevel(t)

	res := l.Fire(combat.Vec3{Z: -120}, combat.Vec3{Z: 1})
	require.False(t, res.Missed)
	assert.Equal(t, "grunt_1", res.EnemyID)
	if res.Critical {
		assert.Equal(t, 50, res.Damage)
	} else {
		assert.Equal(t, 25, res.Damage)
	}
	assert.Equal(t, 100-res.Damage, l.Enemies()[0].Health)

	miss := l.Fire(combat.Vec3{Z: -120}, combat.Vec3{X: 1})
	assert.True(t, miss.Missed)
	st := l.Stats()
	assert.Equal(t, 2, st.ShotsFired)
	assert.Equal(t, 1, st.ShotsHit)
}

func TestPlayerInvincibilityWindow(t *testing.T) {
	var changes []int
	p := &Player{Health: 30, MaxHealth: 30, DamageBySource: map[string]int{}, iframesMs: 500, onHealth: func(v int) { changes = append(changes, v) }}

	assert.Equal(t, 10, p.TakeDamage(10, "acid_spray"))
	assert.Equal(t, 0, p.TakeDamage(10, "acid_spray"))
	p.tick(499)
	assert.Equal(t, 0, p.TakeDamage(10, "drone"))
	p.tick(1)
	assert.Equal(t, 20, p.TakeDamage(40, "tail_swipe"), "damage is clamped to remaining health")
	assert.True(t, p.Dead())
	p.tick(1000)
	assert.Equal(t, 0, p.TakeDamage(5, "drone"))

	assert.Equal(t, []int{20, 0}, changes)
	assert.Equal(t, map[string]int{"acid_spray": 10, "tail_swipe": 20}, p.DamageBySource)
	assert.Equal(t, 30, p.DamageTaken)
}

func TestGrenadeDamagesQueen(t *testing.T) {
	l, _, _ := newTestLevel(t)
	enterArena(t, l)
	before := l.Queen().Health

	assert.Equal(t, 1, l.ThrowGrenade(combat.Vec3{Z: 30}))
	assert.Equal(t, before-80, l.Queen().Health)
	assert.Equal(t, 80, l.Stats().QueenDamage)

	assert.Equal(t, 1, l.ThrowGrenade(combat.Vec3{Z: 40}))
	assert.Equal(t, before-80-40, l.Queen().Health, "falloff starts at the hit radius")
}
