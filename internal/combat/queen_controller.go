package combat

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"breach_sim/internal/config"
)

// Weigher rewrites the attack weight table before a roll. Keys are attack names.
type Weigher interface {
	Adjust(dist float64, phase int, healthRatio float64, weights map[string]float64) (map[string]float64, error)
}

// minTelegraphMs is the shortest warning before any attack resolves.
const minTelegraphMs = 100.0

type weightedAttack struct {
	def    *config.AttackDef
	weight float64
}

// QueenController owns attack selection, telegraph resolution, charge,
// frenzy, spawning and phase side effects for one queen.
type QueenController struct {
	cfg     *config.QueenConfig
	queen   *Queen
	phaser  *QueenPhaser
	hooks   Hooks
	rng     *rand.Rand
	model   DamageModel
	weigher Weigher

	frenzyOnRecover bool
	bossName        string
	now             float64
	// config errors already logged
	reported map[string]bool
}

func NewQueenController(b *config.Bundle, q *Queen, d config.Difficulty, hooks Hooks, rng *rand.Rand) *QueenController {
	hooks.normalize()
	name := b.Queen.ID
	if name == "" {
		name = q.ID
	}
	return &QueenController{
		cfg:      &b.Queen,
		queen:    q,
		phaser:   NewQueenPhaser(&b.Queen, q, hooks.Emit),
		hooks:    hooks,
		rng:      rng,
		model:    NewDamageModel(b, d),
		bossName: name,
		reported: map[string]bool{},
	}
}

func (c *QueenController) Queen() *Queen { return c.queen }

func (c *QueenController) SetWeigher(w Weigher) { c.weigher = w }

func (c *QueenController) emitLog(t float64, format string, args ...any) {
	c.hooks.Emit(Event{T: t, Type: "LogLine", Payload: map[string]any{
		"text":   fmt.Sprintf(format, args...),
		"source": "boss",
		"id":     c.queen.ID,
	}})
}

// logConfigErr logs err once per distinct message.
func (c *QueenController) logConfigErr(t float64, what string, err error) {
	msg := what + ": " + err.Error()
	if c.reported[msg] {
		return
	}
	c.reported[msg] = true
	c.emitLog(t, "%s", msg)
}

// Weights returns the phase-gated attack table for a target at dist.
// Attacks in the preferred band for that distance get the band bonus.
func (c *QueenController) Weights(dist float64) ([]weightedAttack, error) {
	q := c.queen
	kinds, err := c.cfg.AvailableAttacks(q.Phase)
	if err != nil {
		return nil, err
	}
	band := c.cfg.Bands.Classify(dist)
	bonus := c.cfg.Bands.Bonus
	if bonus <= 0 {
		bonus = 1
	}
	out := make([]weightedAttack, 0, len(kinds))
	for _, k := range kinds {
		def, err := c.cfg.Attack(k)
		if err != nil {
			return nil, err
		}
		w := math.Max(def.Weight, 0)
		if def.Band == band {
			w *= bonus
		}
		out = append(out, weightedAttack{def: def, weight: w})
	}
	if c.weigher == nil {
		return out, nil
	}
	in := make(map[string]float64, len(out))
	for _, wa := range out {
		in[wa.def.Kind.String()] = wa.weight
	}
	adj, err := c.weigher.Adjust(dist, q.Phase, q.HealthRatio(), in)
	if err != nil {
		return out, err
	}
	for i := range out {
		if w, ok := adj[out[i].def.Kind.String()]; ok {
			out[i].weight = math.Max(w, 0)
		}
	}
	return out, nil
}

// SelectNextAttack picks the next attack or AttackNone. It never fires while
// staggered or cooling down, and always picks frenzy while a frenzy is running.
func (c *QueenController) SelectNextAttack(dist float64) AttackKind {
	q := c.queen
	if !q.Alive() || q.AI.IsStaggered || q.AttackCooldown > 0 {
		return config.AttackNone
	}
	if q.AI.IsFrenzied && q.AI.FrenzyAttacksRemaining > 0 {
		return config.AttackFrenzy
	}
	weights, err := c.Weights(dist)
	if err != nil {
		c.logConfigErr(c.now, "attack table", err)
		if len(weights) == 0 {
			return config.AttackNone
		}
	}
	total := 0.0
	for _, w := range weights {
		total += w.weight
	}
	if total <= 0 {
		return config.AttackNone
	}
	pick := c.rng.Float64() * total
	acc := 0.0
	for _, w := range weights {
		acc += w.weight
		if pick < acc {
			return w.def.Kind
		}
	}
	return weights[len(weights)-1].def.Kind
}

// StartFrenzy arms a burst of frenzy attacks. Only available in the last phase.
func (c *QueenController) StartFrenzy(now float64) bool {
	q := c.queen
	if !q.Alive() || q.AI.IsFrenzied || q.Phase < c.cfg.MaxPhase() {
		return false
	}
	q.AI.IsFrenzied = true
	q.AI.FrenzyAttacksRemaining = c.cfg.FrenzyAttackCount
	c.hooks.Emit(Event{T: now, Type: "FrenzyStart", Payload: map[string]any{
		"attacks": q.AI.FrenzyAttacksRemaining,
	}})
	c.hooks.Feedback.Notify("THE QUEEN IS FRENZIED", 2000)
	c.hooks.Feedback.Flash("red", 0.5)
	return true
}

// Update runs one simulation tick against target.
func (c *QueenController) Update(env *Env, target Target) {
	q := c.queen
	if !q.Alive() {
		return
	}
	c.now = env.Time
	dt := env.DeltaMs()
	q.tickTimers(dt)

	if q.AI.IsStaggered {
		q.AI.StaggerTimer -= dt
		if q.AI.StaggerTimer <= 0 {
			q.AI.StaggerTimer = 0
			q.AI.IsStaggered = false
			c.hooks.Emit(Event{T: env.Time, Type: "StaggerEnd"})
			if c.frenzyOnRecover {
				c.frenzyOnRecover = false
				c.StartFrenzy(env.Time)
			}
		}
	}

	if c.phaser.Tick(env.Time) {
		c.enterPhase(env)
	}
	if c.phaser.CheckDeathThroes(env.Time) {
		c.enterDeathThroes(env)
	}

	c.tickSpawns(env, dt)
	c.tickAnimation(env, dt)
	if q.AttackCooldown > 0 {
		q.AttackCooldown = math.Max(0, q.AttackCooldown-dt)
	}

	if q.AI.IsStaggered || target == nil {
		return
	}
	if q.AI.IsCharging {
		c.tickCharge(env, target)
		return
	}
	if p := q.AI.Pending; p != nil {
		if env.NowMs() >= p.ResolveAt {
			c.resolve(env, target)
		}
		return
	}
	if q.AI.AttackAnimationTimer > 0 {
		return
	}
	tp := target.Position()
	kind := c.SelectNextAttack(q.Position.Flat().Dist(tp.Flat()))
	if kind != config.AttackNone {
		c.begin(env, kind, tp)
	}
}

func (c *QueenController) enterPhase(env *Env) {
	q := c.queen
	q.Stagger(c.cfg.PhaseTransitionMs)
	if cd, err := c.cfg.SpawnCooldownMs(q.Phase); err != nil {
		c.logConfigErr(env.Time, "phase spawn cooldown", err)
	} else {
		q.SpawnCooldown = c.model.ScaledF(config.TableCooldown, cd)
	}
	if q.Phase == c.cfg.MaxPhase() {
		c.frenzyOnRecover = true
	}
	fb := c.hooks.Feedback
	fb.Notify(fmt.Sprintf("THE QUEEN ENTERS PHASE %d", q.Phase), 3000)
	fb.Shake(0.6)
	fb.Flash("orange", 0.4)
	fb.PlayMusicPhase(q.Phase)
	c.emitLog(env.Time, "%s enters phase %d at %d HP", c.bossName, q.Phase, q.Health)
}

func (c *QueenController) enterDeathThroes(env *Env) {
	q := c.queen
	q.AI.DeathThroesTimer = c.cfg.DeathThroesSpawnMs
	c.hooks.Feedback.Notify("THE QUEEN IS DYING - SHE CALLS THE HIVE", 3000)
	c.hooks.Feedback.Shake(0.4)
	c.emitLog(env.Time, "%s enters death throes at %d HP", c.bossName, q.Health)
}

// tickSpawns releases minion waves. Death throes replace the regular cadence
// with a fixed interval.
func (c *QueenController) tickSpawns(env *Env, dt float64) {
	q := c.queen
	if q.AI.IsDeathThroes {
		q.AI.DeathThroesTimer -= dt
		if q.AI.DeathThroesTimer <= 0 {
			q.AI.DeathThroesTimer = c.cfg.DeathThroesSpawnMs
			c.spawnAround(env, c.cfg.DeathThroesSpawn.Kind, c.cfg.DeathThroesSpawn.Count)
		}
		return
	}
	count, err := c.cfg.SpawnCount(q.Phase)
	if err != nil {
		c.logConfigErr(env.Time, "spawn wave", err)
		return
	}
	cd, err := c.cfg.SpawnCooldownMs(q.Phase)
	if err != nil {
		c.logConfigErr(env.Time, "spawn wave", err)
		return
	}
	if next := q.SpawnCooldown - dt; next > 0 {
		q.SpawnCooldown = next
		return
	}
	q.SpawnCooldown = c.model.ScaledF(config.TableCooldown, cd)
	c.spawnAround(env, c.cfg.WaveKind, count)
}

func (c *QueenController) spawnAround(env *Env, kind config.EnemyKind, count int) {
	if count <= 0 || kind == "" {
		return
	}
	q := c.queen
	start := c.rng.Float64() * 2 * math.Pi
	for i := 0; i < count; i++ {
		a := start + 2*math.Pi*float64(i)/float64(count)
		pos := q.Position.Add(Vec3{X: math.Cos(a) * 8, Z: math.Sin(a) * 8})
		c.hooks.Spawn(kind, pos, "arena")
	}
	c.hooks.Emit(Event{T: env.Time, Type: "MinionSpawn", Payload: map[string]any{
		"kind": string(kind), "count": count,
	}})
}

// tickAnimation finishes the current attack cycle. Each finished cycle during
// a frenzy consumes one frenzy attack.
func (c *QueenController) tickAnimation(env *Env, dt float64) {
	q := c.queen
	if q.AI.AttackAnimationTimer <= 0 {
		return
	}
	q.AI.AttackAnimationTimer -= dt
	if q.AI.AttackAnimationTimer > 0 {
		return
	}
	q.AI.AttackAnimationTimer = 0
	finished := q.AI.CurrentAttack
	q.AI.CurrentAttack = config.AttackNone
	c.hooks.Emit(Event{T: env.Time, Type: "BossAttackEnd", Payload: map[string]any{
		"attack": finished.String(),
	}})
	if !q.AI.IsFrenzied {
		return
	}
	q.AI.FrenzyAttacksRemaining--
	if q.AI.FrenzyAttacksRemaining <= 0 {
		q.AI.FrenzyAttacksRemaining = 0
		q.AI.IsFrenzied = false
		c.hooks.Emit(Event{T: env.Time, Type: "FrenzyEnd"})
	}
}

// begin commits to an attack: cooldown, facing and the telegraph window.
func (c *QueenController) begin(env *Env, kind AttackKind, targetPos Vec3) {
	q := c.queen
	def, err := c.cfg.Attack(kind)
	if err != nil {
		c.logConfigErr(env.Time, "begin attack", err)
		return
	}
	var cooldown float64
	if kind == config.AttackFrenzy {
		cooldown = c.cfg.FrenzyCooldownMs
	} else if cooldown, err = c.cfg.AttackCooldownMs(q.Phase); err != nil {
		c.logConfigErr(env.Time, "begin attack", err)
		return
	}
	if kind == config.AttackFrenzy && !q.AI.IsFrenzied && !c.StartFrenzy(env.Time) {
		return
	}
	telegraph := math.Max(def.TelegraphMs, minTelegraphMs)
	if dir := targetPos.Sub(q.Position).Flat(); dir.Len() > 0 {
		q.Forward = dir.Norm()
	}
	now := env.NowMs()
	q.AttackCooldown = c.model.ScaledF(config.TableCooldown, cooldown)
	q.AI.CurrentAttack = kind
	q.AI.AttackAnimationTimer = telegraph + def.RecoveryMs
	q.AI.Pending = &PendingAttack{
		ID:         uuid.NewString(),
		Kind:       kind,
		SelectedAt: now,
		ResolveAt:  now + telegraph,
	}
	c.hooks.Feedback.EmitParticle("telegraph_"+kind.String(), q.Position, 1)
	c.hooks.Emit(Event{T: env.Time, Type: "BossAttackTelegraph", Payload: map[string]any{
		"attack": kind.String(),
		"name":   def.DisplayName(),
		"phase":  q.Phase,
		"id":     q.AI.Pending.ID,
	}})
}

func (c *QueenController) resolve(env *Env, target Target) {
	q := c.queen
	p := q.AI.Pending
	q.AI.Pending = nil
	def, err := c.cfg.Attack(p.Kind)
	if err != nil {
		c.emitLog(env.Time, "resolve attack: %v", err)
		return
	}
	switch p.Kind {
	case config.AttackCharge:
		c.startCharge(env, target)
	case config.AttackScreech:
		c.hooks.Feedback.Shake(0.3)
		c.strike(env, target, def)
		c.spawnAround(env, def.Spawn.Kind, def.Spawn.Count)
	case config.AttackEggBurst:
		c.hooks.Feedback.EmitParticle("egg_burst", q.Position, 2)
		c.strike(env, target, def)
		c.spawnAround(env, def.Spawn.Kind, def.Spawn.Count)
	case config.AttackAcidSpray, config.AttackTailSwipe, config.AttackPoisonCloud, config.AttackFrenzy:
		c.strike(env, target, def)
	default:
		c.emitLog(env.Time, "resolve attack: unhandled %s", p.Kind)
	}
}

// InReach reports whether pos is inside the attack's range and facing arc.
func (c *QueenController) InReach(def *config.AttackDef, pos Vec3) bool {
	q := c.queen
	to := pos.Sub(q.Position).Flat()
	dist := to.Len()
	if dist > def.Range {
		return false
	}
	if def.Arc <= -1 || dist == 0 {
		return true
	}
	return q.Forward.Flat().Norm().Dot(to.Norm()) >= def.Arc
}

func (c *QueenController) strike(env *Env, target Target, def *config.AttackDef) {
	tp := target.Position()
	if !c.InReach(def, tp) {
		c.hooks.Emit(Event{T: env.Time, Type: "BossMiss", Payload: map[string]any{
			"attack": def.Kind.String(),
		}})
		return
	}
	c.hit(env, target, def, tp)
}

func (c *QueenController) hit(env *Env, target Target, def *config.AttackDef, tp Vec3) {
	q := c.queen
	dmg := c.model.Scaled(config.TableDamage, def.Damage)
	if def.Cover {
		dmg = c.model.Covered(dmg, q.Position, tp, c.hooks.Covers())
	}
	landed := target.TakeDamage(dmg, def.Kind.String())
	q.AI.DamageDealt += landed
	c.hooks.Emit(Event{T: env.Time, Type: "BossHit", Payload: map[string]any{
		"attack": def.Kind.String(),
		"dmg":    landed,
	}})
	c.emitLog(env.Time, "%s's %s hits for %d", c.bossName, def.DisplayName(), landed)
}

func (c *QueenController) startCharge(env *Env, target Target) {
	q := c.queen
	tp := target.Position()
	dir := tp.Sub(q.Position).Flat().Norm()
	if dir.Len() == 0 {
		dir = q.Forward
	}
	q.Forward = dir
	q.AI.IsCharging = true
	q.AI.ChargeTarget = tp
	q.AI.ChargeVelocity = dir.Scale(c.cfg.Charge.Speed)
	q.AI.ChargeTimer = c.cfg.Charge.TimeoutMs
	c.hooks.Emit(Event{T: env.Time, Type: "ChargeStart", Payload: map[string]any{
		"to": []float64{tp.X, tp.Y, tp.Z},
	}})
}

// tickCharge moves the charging queen and tests collision every tick. The
// charge ends on the first collision, on timeout, or once it passes its target.
func (c *QueenController) tickCharge(env *Env, target Target) {
	q := c.queen
	def, err := c.cfg.Attack(config.AttackCharge)
	if err != nil {
		q.endCharge()
		return
	}
	q.Position = q.Position.Add(q.AI.ChargeVelocity.Scale(env.Delta))
	q.AI.ChargeTimer -= env.DeltaMs()
	tp := target.Position()
	if q.Position.Flat().Dist(tp.Flat()) < c.cfg.Charge.CollisionRadius {
		c.hit(env, target, def, tp)
		c.hooks.Feedback.Shake(0.8)
		q.endCharge()
		c.hooks.Emit(Event{T: env.Time, Type: "ChargeEnd", Payload: map[string]any{"hit": true}})
		return
	}
	passed := q.AI.ChargeTarget.Sub(q.Position).Flat().Dot(q.AI.ChargeVelocity) <= 0
	if q.AI.ChargeTimer <= 0 || passed {
		q.endCharge()
		c.hooks.Emit(Event{T: env.Time, Type: "ChargeEnd", Payload: map[string]any{"hit": false}})
	}
}
