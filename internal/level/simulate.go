package level

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"breach_sim/internal/combat"
	"breach_sim/internal/config"
	"breach_sim/internal/util"
)

type SimOptions struct {
	Seed       int64
	Difficulty config.Difficulty
	MaxSeconds float64
	Step       float64
	Record     bool
	Weigher    combat.Weigher
}

type SimResult struct {
	Win                 bool               `json:"win"`
	Failed              bool               `json:"failed"`
	Duration            float64            `json:"duration"`
	Events              []combat.Event     `json:"events,omitempty"`
	DamageTaken         int                `json:"damage_taken"`
	DamageBySource      map[string]int     `json:"damage_by_source,omitempty"`
	QueenHealth         int                `json:"queen_health"`
	Kills               int                `json:"kills"`
	ShotsFired          int                `json:"shots_fired"`
	ShotsHit            int                `json:"shots_hit"`
	WeakPointsDestroyed int                `json:"weak_points_destroyed"`
	PhaseEnteredAt      map[string]float64 `json:"phase_entered_at,omitempty"`
	Meta                SimMeta            `json:"meta"`
}

type SimMeta struct {
	Queen      string   `json:"queen"`
	MaxHealth  int      `json:"max_health"`
	Difficulty string   `json:"difficulty"`
	Seed       int64    `json:"seed"`
	Notes      []string `json:"notes,omitempty"`
}

// recordFeedback turns presentation calls into events for the run log.
type recordFeedback struct {
	now  func() float64
	emit func(combat.Event)
}

func (r recordFeedback) Notify(text string, durationMs int) {
	r.emit(combat.Event{T: r.now(), Type: "Notify", Payload: map[string]any{"text": text, "ms": durationMs}})
}

func (r recordFeedback) Shake(intensity float64) {
	r.emit(combat.Event{T: r.now(), Type: "Shake", Payload: map[string]any{"intensity": intensity}})
}

func (r recordFeedback) Flash(color string, intensity float64) {
	r.emit(combat.Event{T: r.now(), Type: "Flash", Payload: map[string]any{"color": color, "intensity": intensity}})
}

func (r recordFeedback) PlayMusicPhase(phase int) {
	r.emit(combat.Event{T: r.now(), Type: "Music", Payload: map[string]any{"phase": phase}})
}

func (r recordFeedback) EmitParticle(string, combat.Vec3, float64) {}

// bot is a scripted player: it walks to the arena, clears nearby enemies,
// scans on cooldown and circle-strafes the queen while shooting.
type bot struct {
	firing bool
	origin combat.Vec3
	dir    combat.Vec3
	ammo   int
	orbit  float64
}

func (b *bot) IsFiring() bool                     { return b.firing }
func (b *bot) AimRay() (combat.Vec3, combat.Vec3) { return b.origin, b.dir }
func (b *bot) ConsumeAmmo() bool {
	if b.ammo <= 0 {
		return false
	}
	b.ammo--
	return true
}

const (
	eyeHeight   = 1.6
	orbitRadius = 18.0
	engageRange = 20.0
)

func (b *bot) think(l *Level, cfg *config.Bundle, step float64) {
	pos := l.PlayerPosition()
	enemies := l.Enemies()
	q := l.Queen()
	speed := cfg.Player.Speed

	var target *EnemyView
	best := engageRange
	for i := range enemies {
		e := &enemies[i]
		if e.State == combat.StateDead {
			continue
		}
		if d := e.Position.Flat().Dist(pos.Flat()); d < best {
			target, best = e, d
		}
	}

	if target != nil && l.Grenades() > 0 {
		near := 0
		for _, e := range enemies {
			if e.ID != target.ID && e.Position.Dist(target.Position) < cfg.Player.GrenadeRadius/2 {
				near++
			}
		}
		if near >= 2 {
			l.ThrowGrenade(target.Position)
		}
	}

	switch {
	case q == nil:
		if target == nil || best > 12 {
			center := combat.V3(cfg.Arena.Center)
			dir := center.Sub(pos).Flat().Norm()
			pos = pos.Add(dir.Scale(speed * step))
		}
	case !q.Defeated:
		if q.ScanCooldown <= 0 && !q.WeakPointVisible {
			_ = l.Scan()
		}
		home := combat.V3(cfg.Arena.Center).Add(combat.V3(cfg.Arena.QueenOffset))
		b.orbit += speed / orbitRadius * step
		pos = home.Add(combat.Vec3{X: math.Sin(b.orbit) * orbitRadius, Z: -math.Cos(b.orbit) * orbitRadius})
		if q.Charging {
			pos = pos.Add(combat.Vec3{X: math.Cos(b.orbit) * 4, Z: math.Sin(b.orbit) * 4})
		}
	}
	l.MovePlayer(pos)

	b.origin = pos.Add(combat.Vec3{Y: eyeHeight})
	b.firing = false
	switch {
	case target != nil:
		b.dir = target.Position.Sub(b.origin).Norm()
		b.firing = true
	case q != nil && !q.Defeated:
		aim := q.Position.Add(combat.Vec3{Y: 4})
		if q.WeakPointVisible {
			for _, wp := range q.WeakPoints {
				if !wp.Destroyed {
					aim = wp.Center
					break
				}
			}
		}
		b.dir = aim.Sub(b.origin).Norm()
		b.firing = true
	}
}

// RunSingle plays one seeded fight with the scripted bot.
func RunSingle(cfg *config.Bundle, opts SimOptions) (SimResult, error) {
	if opts.Step <= 0 {
		opts.Step = 0.05
	}
	if opts.MaxSeconds <= 0 {
		opts.MaxSeconds = 300
	}
	if opts.Difficulty == "" {
		opts.Difficulty = config.Normal
	}

	var events []combat.Event
	emit := func(ev combat.Event) {
		if opts.Record {
			events = append(events, ev)
		}
	}
	var lvl *Level
	now := func() float64 {
		if lvl == nil {
			return 0
		}
		return lvl.env.Time
	}
	b := &bot{ammo: cfg.Player.Ammo}
	lvl, err := New(cfg, Options{
		Difficulty: opts.Difficulty,
		Feedback:   recordFeedback{now: now, emit: emit},
		Input:      b,
		Rng:        util.New(opts.Seed),
		Emit:       emit,
		Weigher:    opts.Weigher,
	})
	if err != nil {
		return SimResult{}, err
	}
	defer lvl.Dispose()

	for lvl.Time() < opts.MaxSeconds && !lvl.Complete() && !lvl.Failed() {
		b.think(lvl, cfg, opts.Step)
		lvl.Tick(opts.Step)
	}

	st := lvl.Stats()
	res := SimResult{
		Win:                 lvl.QueenDefeated(),
		Failed:              lvl.Failed(),
		Duration:            lvl.Time(),
		DamageTaken:         lvl.player.DamageTaken,
		DamageBySource:      lvl.DamageBySource(),
		Kills:               st.Kills,
		ShotsFired:          st.ShotsFired,
		ShotsHit:            st.ShotsHit,
		WeakPointsDestroyed: st.WeakPointsDestroyed,
		PhaseEnteredAt:      map[string]float64{},
		Meta: SimMeta{
			Queen:      cfg.Queen.ID,
			MaxHealth:  cfg.Queen.MaxHealth,
			Difficulty: string(opts.Difficulty),
			Seed:       opts.Seed,
		},
	}
	for p, t := range st.PhaseEnteredAt {
		res.PhaseEnteredAt[strconv.Itoa(p)] = t
	}
	if q := lvl.Queen(); q != nil {
		res.QueenHealth = q.Health
		res.Meta.MaxHealth = q.MaxHealth
	}
	if cfg.Queen.Note != "" {
		res.Meta.Notes = append(res.Meta.Notes, cfg.Queen.Note)
	}
	for i, t := range cfg.Queen.PhaseThresholds {
		res.Meta.Notes = append(res.Meta.Notes, fmt.Sprintf("Phase %d @%.0f%%", i+2, t*100))
	}
	if opts.Record {
		res.Events = events
	}
	return res, nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
