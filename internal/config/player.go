package config

type PlayerConfig struct {
	MaxHealth     int     `yaml:"max_health"`
	IFramesMs     float64 `yaml:"iframes_ms"`
	WeaponDamage  int     `yaml:"weapon_damage"`
	FireRate      float64 `yaml:"fire_rate"`
	Ammo          int     `yaml:"ammo"`
	GrenadeRadius float64 `yaml:"grenade_radius"`
	GrenadeDamage float64 `yaml:"grenade_damage"`
	Grenades      int     `yaml:"grenades"`
	Speed         float64 `yaml:"speed"`
}

type ArenaConfig struct {
	Center        Vec3Def     `yaml:"center"`
	Radius        float64     `yaml:"radius"`
	QueenOffset   Vec3Def     `yaml:"queen_offset"`
	SpawnRadius   float64     `yaml:"spawn_radius"`
	Covers        []Vec3Def   `yaml:"covers"`
	Patrols       []PatrolDef `yaml:"patrols"`
	DeathSequence []float64   `yaml:"death_sequence_ms"`
}

// PatrolDef places hostiles before the arena is reached.
type PatrolDef struct {
	Kind EnemyKind `yaml:"kind"`
	At   Vec3Def   `yaml:"at"`
	Zone string    `yaml:"zone"`
}
