// Package level wires player input, hit-testing and host callbacks into the
// Breach combat core.
package level

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"breach_sim/internal/combat"
	"breach_sim/internal/config"
	"breach_sim/internal/util"
)

const (
	ownerLevel = "level"
	critChance = 0.1
	commsDelay = 1500.0 // ms after a phase change
)

// ErrNotInArena is returned for queen actions before the player reaches the arena.
var ErrNotInArena = errors.New("queen not in arena yet")

type Options struct {
	Difficulty config.Difficulty
	Scene      Scene
	Feedback   combat.Feedback
	Input      Input
	Callbacks  Callbacks
	Rng        *rand.Rand
	Emit       func(combat.Event)
	Weigher    combat.Weigher
	// PlayerStart defaults to the first patrol zone entrance.
	PlayerStart *combat.Vec3
}

type activeEnemy struct {
	enemy  *combat.Enemy
	handle EnemyHandle
}

type Stats struct {
	Kills               int
	ShotsFired          int
	ShotsHit            int
	QueenDamage         int
	WeakPointsDestroyed int
	GrenadesThrown      int
	PhaseEnteredAt      map[int]float64
}

// Level is one Breach run: patrol tunnels, the arena and the queen fight.
// All methods are safe for concurrent use; state changes are serialized.
type Level struct {
	mu sync.Mutex

	cfg  *config.Bundle
	opts Options
	emit func(combat.Event)
	rng  *rand.Rand

	env     combat.Env
	sched   *combat.Scheduler
	player  *Player
	enemyAI *combat.EnemyAI
	enemies []*activeEnemy

	queen    *combat.Queen
	queenCtl *combat.QueenController

	arenaCenter combat.Vec3
	covers      []combat.Vec3

	fireCooldown float64
	grenades     int

	queenDefeated bool
	complete      bool
	disposed      bool
	stats         Stats
}

// New validates the bundle and places the patrols. Invalid balance aborts the load.
func New(b *config.Bundle, opts Options) (*Level, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bundle", config.ErrInvalid)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("level load: %w", err)
	}
	if opts.Scene == nil {
		opts.Scene = nopScene{}
	}
	if opts.Feedback == nil {
		opts.Feedback = combat.NopFeedback{}
	}
	if opts.Input == nil {
		opts.Input = idleInput{}
	}
	if opts.Rng == nil {
		opts.Rng = util.New(1)
	}
	if opts.Difficulty == "" {
		opts.Difficulty = config.Normal
	}
	l := &Level{
		cfg:         b,
		opts:        opts,
		rng:         opts.Rng,
		sched:       combat.NewScheduler(),
		arenaCenter: combat.V3(b.Arena.Center),
		grenades:    b.Player.Grenades,
		stats:       Stats{PhaseEnteredAt: map[int]float64{}},
	}
	l.emit = func(ev combat.Event) {
		l.observe(ev)
		if opts.Emit != nil {
			opts.Emit(ev)
		}
	}
	for _, c := range b.Arena.Covers {
		l.covers = append(l.covers, combat.V3(c))
	}
	start := l.arenaCenter.Add(combat.Vec3{Z: -b.Arena.Radius * 2})
	if opts.PlayerStart != nil {
		start = *opts.PlayerStart
	}
	model := combat.NewDamageModel(b, opts.Difficulty)
	l.player = &Player{
		Pos:            start,
		Health:         b.Player.MaxHealth,
		MaxHealth:      b.Player.MaxHealth,
		DamageBySource: map[string]int{},
		iframesMs:      model.ScaledF(config.TableIFrames, b.Player.IFramesMs),
		onHealth:       opts.Callbacks.OnHealthChange,
		onDamage:       opts.Callbacks.OnDamage,
	}
	l.enemyAI = combat.NewEnemyAI(b, opts.Difficulty, opts.Feedback, l.emit)
	for _, p := range b.Arena.Patrols {
		if err := l.spawnEnemy(p.Kind, combat.V3(p.At), p.Zone); err != nil {
			return nil, fmt.Errorf("level load: %w", err)
		}
	}
	return l, nil
}

func (l *Level) observe(ev combat.Event) {
	if ev.Type != "PhaseEnter" || l.queen == nil {
		return
	}
	phase, _ := ev.Payload["phase"].(int)
	l.stats.PhaseEnteredAt[phase] = l.env.Time
	queen := l.queen
	text := map[int]string{
		2: "She's bleeding! Watch for the charge - get behind cover!",
		3: "She's enraged! Hit those weak points with everything you've got!",
	}[phase]
	if text == "" {
		return
	}
	l.sched.At(l.env.NowMs()+commsDelay, queen.ID, func() {
		if l.disposed || !queen.Alive() {
			return
		}
		l.comms("Command", text)
	})
}

func (l *Level) comms(sender, text string) {
	if cb := l.opts.Callbacks.OnCommsMessage; cb != nil {
		cb(CommsMessage{Sender: sender, Text: text})
	}
	l.emit(combat.Event{T: l.env.Time, Type: "Comms", Payload: map[string]any{"sender": sender, "text": text}})
}

func (l *Level) objective(title, desc string) {
	if cb := l.opts.Callbacks.OnObjectiveUpdate; cb != nil {
		cb(title, desc)
	}
	l.emit(combat.Event{T: l.env.Time, Type: "Objective", Payload: map[string]any{"title": title, "description": desc}})
}

func (l *Level) spawnEnemy(kind config.EnemyKind, pos combat.Vec3, zone string) error {
	e, err := l.enemyAI.Spawn(kind, pos, zone)
	if err != nil {
		return err
	}
	h := l.opts.Scene.SpawnEnemy(kind, pos, zone)
	if h == nil {
		h = nopHandle{}
	}
	l.enemies = append(l.enemies, &activeEnemy{enemy: e, handle: h})
	l.emit(combat.Event{T: l.env.Time, Type: "Spawn", Payload: map[string]any{
		"id": e.ID, "kind": string(kind), "zone": zone, "hp": e.Health,
	}})
	return nil
}

// Tick advances the level by dt seconds.
func (l *Level) Tick(dt float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.env.Delta = dt
	l.env.Time += dt
	dtMs := l.env.DeltaMs()

	l.sched.Advance(l.env.NowMs())
	l.player.tick(dtMs)
	if l.fireCooldown > 0 {
		l.fireCooldown -= dtMs
	}

	if l.queen == nil && l.player.Pos.Flat().Dist(l.arenaCenter.Flat()) <= l.cfg.Arena.Radius {
		l.enterArena()
	}

	if !l.player.Dead() && l.opts.Input.IsFiring() && l.fireCooldown <= 0 && l.opts.Input.ConsumeAmmo() {
		origin, dir := l.opts.Input.AimRay()
		l.fire(origin, dir)
	}

	target := l.player.Pos
	for _, ae := range l.enemies {
		e := ae.enemy
		if e.Dead() {
			continue
		}
		l.enemyAI.Update(&l.env, e, target)
		if dmg := l.enemyAI.AttackDamage(e, target); dmg > 0 {
			l.player.TakeDamage(dmg, string(e.Kind))
		}
		ae.handle.SetTransform(e.Position, e.Yaw)
	}

	if l.queenCtl != nil && !l.player.Dead() {
		l.queenCtl.Update(&l.env, l.player)
	}
	l.cleanup()
}

func (l *Level) enterArena() {
	pos := l.arenaCenter.Add(combat.V3(l.cfg.Arena.QueenOffset))
	q, err := combat.NewQueen(l.cfg, l.opts.Difficulty, pos)
	if err != nil {
		l.emit(combat.Event{T: l.env.Time, Type: "LogLine", Payload: map[string]any{
			"text": fmt.Sprintf("queen load failed: %v", err), "source": "system",
		}})
		return
	}
	l.queen = q
	l.queenCtl = combat.NewQueenController(l.cfg, q, l.opts.Difficulty, combat.Hooks{
		Feedback: l.opts.Feedback,
		Emit:     l.emit,
		Spawn: func(kind config.EnemyKind, pos combat.Vec3, zone string) {
			if err := l.spawnEnemy(kind, pos, zone); err != nil {
				l.emit(combat.Event{T: l.env.Time, Type: "LogLine", Payload: map[string]any{
					"text": fmt.Sprintf("minion spawn failed: %v", err), "source": "system",
				}})
			}
		},
		Covers: func() []combat.Vec3 { return l.covers },
	}, l.rng)
	if l.opts.Weigher != nil {
		l.queenCtl.SetWeigher(l.opts.Weigher)
	}
	l.stats.PhaseEnteredAt[1] = l.env.Time
	l.opts.Feedback.PlayMusicPhase(1)
	l.opts.Feedback.Notify("THE QUEEN AWAKENS", 3000)
	l.objective("KILL THE QUEEN", "Scan to reveal her weak points, then destroy them.")
	l.comms("Command", "That's the hive queen. Scan her - hit the glowing spots!")
	l.emit(combat.Event{T: l.env.Time, Type: "Spawn", Payload: map[string]any{
		"id": q.ID, "boss": true, "hp": q.Health, "max_hp": q.MaxHealth,
	}})
}

// cleanup disposes dead enemies.
func (l *Level) cleanup() {
	kept := l.enemies[:0]
	for _, ae := range l.enemies {
		if ae.enemy.MarkedForDisposal {
			l.opts.Scene.DisposeEnemy(ae.handle)
			continue
		}
		kept = append(kept, ae)
	}
	for i := len(kept); i < len(l.enemies); i++ {
		l.enemies[i] = nil
	}
	l.enemies = kept
}

type ShotResult struct {
	EnemyID  string
	Killed   bool
	Queen    combat.HitResult
	Critical bool
	Missed   bool
	Damage   int
	Overkill int
}

// Fire resolves one hitscan shot outside the input poll, e.g. from a host
// that drives the weapon itself.
func (l *Level) Fire(origin, dir combat.Vec3) ShotResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return ShotResult{Missed: true}
	}
	return l.fire(origin, dir)
}

func (l *Level) fire(origin, dir combat.Vec3) ShotResult {
	dir = dir.Norm()
	l.stats.ShotsFired++
	if rate := l.cfg.Player.FireRate; rate > 0 {
		l.fireCooldown = 1000 / rate
	}

	var nearest *combat.Enemy
	nearestT := math.MaxFloat64
	for _, ae := range l.enemies {
		e := ae.enemy
		if e.Dead() {
			continue
		}
		if t, ok := combat.RaySphere(origin, dir, e.Position, e.Profile.HitRadius); ok && t < nearestT {
			nearest, nearestT = e, t
		}
	}
	if l.queen != nil {
		if t, ok := l.queen.RayDistance(origin, dir); ok && t < nearestT {
			return l.shootQueen(origin, dir)
		}
	}
	if nearest == nil {
		return ShotResult{Missed: true}
	}

	l.stats.ShotsHit++
	dmg := l.cfg.Player.WeaponDamage
	crit := l.rng.Float64() < critChance
	if crit {
		dmg *= 2
	}
	killed := l.enemyAI.Damage(nearest, dmg, &dir, crit)
	res := ShotResult{EnemyID: nearest.ID, Killed: killed, Critical: crit, Damage: dmg}
	if killed {
		res.Overkill = -nearest.Health
		l.onKill(nearest)
	}
	return res
}

func (l *Level) shootQueen(origin, dir combat.Vec3) ShotResult {
	hit := l.queen.HandleHit(origin, dir, float64(l.cfg.Player.WeaponDamage))
	if !hit.Hit {
		return ShotResult{Missed: true}
	}
	l.stats.ShotsHit++
	l.stats.QueenDamage += hit.Damage
	if hit.Destroyed {
		l.onWeakPointDestroyed(hit.WeakPoint)
	}
	if hit.WeakPoint != "" {
		l.opts.Feedback.EmitParticle("weak_point_hit", l.queen.Position, 1)
	}
	l.afterQueenDamage(hit.Defeated)
	return ShotResult{Queen: hit, Damage: hit.Damage, Critical: hit.WeakPoint != ""}
}

func (l *Level) onKill(e *combat.Enemy) {
	l.stats.Kills++
	if cb := l.opts.Callbacks.OnKill; cb != nil {
		cb()
	}
	l.emit(combat.Event{T: l.env.Time, Type: "Kill", Payload: map[string]any{
		"id": e.ID, "kind": string(e.Kind), "overkill": -e.Health,
	}})
}

func (l *Level) onWeakPointDestroyed(id string) {
	l.stats.WeakPointsDestroyed++
	l.opts.Feedback.Notify(fmt.Sprintf("WEAK POINT DESTROYED: %s", id), 2000)
	l.opts.Feedback.Shake(0.5)
	l.emit(combat.Event{T: l.env.Time, Type: "WeakPointDestroyed", Payload: map[string]any{"id": id}})
}

func (l *Level) afterQueenDamage(defeated bool) {
	if !defeated || l.queenDefeated {
		return
	}
	l.queenDefeated = true
	l.startDeathSequence()
}

// startDeathSequence paces the victory beats with scheduled tasks owned by the level.
func (l *Level) startDeathSequence() {
	l.sched.CancelOwner(l.queen.ID)
	steps := l.cfg.Arena.DeathSequence
	at := func(i int) float64 {
		if i < len(steps) {
			return l.env.NowMs() + steps[i]
		}
		return l.env.NowMs() + float64(i)*2000
	}
	l.emit(combat.Event{T: l.env.Time, Type: "QueenDefeated", Payload: map[string]any{
		"damage_dealt": l.queen.AI.DamageDealt,
	}})
	l.sched.At(at(0), ownerLevel, func() {
		if l.disposed {
			return
		}
		l.opts.Feedback.Notify("THE QUEEN IS DEAD", 4000)
		l.opts.Feedback.Shake(1.0)
		l.opts.Feedback.Flash("white", 0.8)
	})
	l.sched.At(at(1), ownerLevel, func() {
		if l.disposed {
			return
		}
		l.comms("Command", fmt.Sprintf("Confirmed kill. %d hostiles down, %d damage to the queen in %.0fs.",
			l.stats.Kills, l.stats.QueenDamage, l.env.Time))
	})
	l.sched.At(at(2), ownerLevel, func() {
		if l.disposed {
			return
		}
		l.objective("ESCAPE THE HIVE", "The hive is collapsing. Get to the extraction point.")
	})
	l.sched.At(at(3), ownerLevel, func() {
		if l.disposed || l.complete {
			return
		}
		l.complete = true
		if cb := l.opts.Callbacks.OnLevelComplete; cb != nil {
			cb()
		}
		l.emit(combat.Event{T: l.env.Time, Type: "LevelComplete"})
	})
}

// ThrowGrenade detonates at pos and returns how many targets took damage.
func (l *Level) ThrowGrenade(pos combat.Vec3) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed || l.grenades <= 0 {
		return 0
	}
	l.grenades--
	l.stats.GrenadesThrown++
	radius, maxDmg := l.cfg.Player.GrenadeRadius, l.cfg.Player.GrenadeDamage
	l.opts.Feedback.EmitParticle("explosion", pos, radius/4)
	hits := 0
	for _, ae := range l.enemies {
		e := ae.enemy
		if e.Dead() {
			continue
		}
		dmg := combat.GrenadeDamage(radius, maxDmg, e.Position.Dist(pos))
		if dmg <= 0 {
			continue
		}
		hits++
		dir := e.Position.Sub(pos)
		if l.enemyAI.Damage(e, dmg, &dir, false) {
			l.onKill(e)
		}
	}
	if q := l.queen; q != nil && q.Alive() {
		d := math.Max(0, q.Position.Flat().Dist(pos.Flat())-q.HitRadius)
		if dmg := combat.GrenadeDamage(radius, maxDmg, d); dmg > 0 {
			hits++
			l.stats.QueenDamage += dmg
			l.afterQueenDamage(q.Damage(dmg))
		}
	}
	return hits
}

// Scan reveals the queen's weak points.
func (l *Level) Scan() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return combat.ErrQueenDisposed
	}
	if l.queen == nil {
		return ErrNotInArena
	}
	if err := l.queen.Scan(); err != nil {
		return err
	}
	l.opts.Feedback.Notify("WEAK POINTS REVEALED", 1500)
	l.emit(combat.Event{T: l.env.Time, Type: "Scan", Payload: map[string]any{"reveal_ms": l.queen.WeakPointTimer}})
	return nil
}

func (l *Level) MovePlayer(pos combat.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.player.Dead() {
		return
	}
	l.player.Pos = pos
}

// Dispose tears the level down. Pending scheduled work is dropped.
func (l *Level) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.disposed = true
	l.sched.Clear()
	if l.queen != nil {
		l.queen.Dispose()
	}
	for _, ae := range l.enemies {
		l.opts.Scene.DisposeEnemy(ae.handle)
	}
	l.enemies = nil
}
