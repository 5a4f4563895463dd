package script

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustRewritesWeights(t *testing.T) {
	ws, err := Compile([]byte(`
if distance > 30 {
	weights.tail_swipe = 0.0
}
if phase >= 2 {
	weights.charge = weights.charge * 2
}
`))
	require.NoError(t, err)

	out, err := ws.Adjust(40, 2, 0.5, map[string]float64{"tail_swipe": 3, "charge": 1.5, "acid_spray": 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out["tail_swipe"])
	assert.Equal(t, 3.0, out["charge"])
	assert.Equal(t, 1.0, out["acid_spray"])

	out, err = ws.Adjust(5, 1, 1, map[string]float64{"tail_swipe": 3, "charge": 1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out["tail_swipe"])
	assert.Equal(t, 1.0, out["charge"])
}

func TestCompileError(t *testing.T) {
	_, err := Compile([]byte(`weights.x = (`))
	assert.Error(t, err)
}

func TestNonNumericWeight(t *testing.T) {
	ws, err := Compile([]byte(`weights.acid_spray = "lots"`))
	require.NoError(t, err)
	_, err = ws.Adjust(10, 1, 1, map[string]float64{"acid_spray": 1})
	assert.Error(t, err)
}

func TestShippedScript(t *testing.T) {
	src, err := os.ReadFile("../../assets/weights.tengo")
	require.NoError(t, err)
	ws, err := Compile(src)
	require.NoError(t, err)

	out, err := ws.Adjust(15, 2, 0.4, map[string]float64{"charge": 3, "tail_swipe": 1})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, out["charge"], 1e-9)
	assert.Equal(t, 1.0, out["tail_swipe"])

	out, err = ws.Adjust(35, 1, 1, map[string]float64{"acid_spray": 3, "tail_swipe": 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out["tail_swipe"])
	assert.Equal(t, 3.0, out["acid_spray"])
}
