package level

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breach_sim/internal/config"
)

func TestRunSingleTerminates(t *testing.T) {
	res, err := RunSingle(config.MustDefault(), SimOptions{Seed: 1, MaxSeconds: 120, Record: true})
	require.NoError(t, err)

	assert.LessOrEqual(t, res.Duration, 120.1)
	assert.NotEmpty(t, res.Events)
	assert.Contains(t, res.PhaseEnteredAt, "1", "the bot reaches the arena")
	assert.Greater(t, res.ShotsFired, 0)
	assert.Equal(t, int64(1), res.Meta.Seed)
	assert.Equal(t, "normal", res.Meta.Difficulty)
	if res.Win {
		assert.Equal(t, 0, res.QueenHealth)
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(MarshalPretty(res), &decoded))
	assert.Contains(t, decoded, "queen_health")
	assert.Contains(t, decoded, "meta")
}

func TestRunSingleIsSeeded(t *testing.T) {
	opts := SimOptions{Seed: 99, Difficulty: config.Hard, MaxSeconds: 60, Record: true}
	a, err := RunSingle(config.MustDefault(), opts)
	require.NoError(t, err)
	b, err := RunSingle(config.MustDefault(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Win, b.Win)
	assert.Equal(t, a.Duration, b.Duration)
	assert.Equal(t, a.DamageTaken, b.DamageTaken)
	assert.Equal(t, a.DamageBySource, b.DamageBySource)
	assert.Equal(t, a.ShotsFired, b.ShotsFired)
	assert.Equal(t, a.QueenHealth, b.QueenHealth)
	assert.Len(t, b.Events, len(a.Events))
}

func TestRunSingleRejectsBadBundle(t *testing.T) {
	b := config.MustDefault()
	b.Player.MaxHealth = 0
	_, err := RunSingle(b, SimOptions{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
