// Package script runs designer-authored tengo scripts that tune the queen's
// attack weights at selection time.
package script

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// WeightScript is a compiled script that sees the globals distance, phase,
// health_ratio and weights, and may rewrite entries of weights in place.
type WeightScript struct {
	mu       sync.Mutex
	compiled *tengo.Compiled
}

func Compile(src []byte) (*WeightScript, error) {
	s := tengo.NewScript(src)
	_ = s.Add("distance", 0.0)
	_ = s.Add("phase", 0)
	_ = s.Add("health_ratio", 0.0)
	_ = s.Add("weights", map[string]any{})
	s.SetImports(stdlib.GetModuleMap("math"))
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile weight script: %w", err)
	}
	return &WeightScript{compiled: compiled}, nil
}

func (ws *WeightScript) Adjust(dist float64, phase int, healthRatio float64, weights map[string]float64) (map[string]float64, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	in := make(map[string]any, len(weights))
	for k, v := range weights {
		in[k] = v
	}
	if err := ws.compiled.Set("distance", dist); err != nil {
		return nil, err
	}
	if err := ws.compiled.Set("phase", phase); err != nil {
		return nil, err
	}
	if err := ws.compiled.Set("health_ratio", healthRatio); err != nil {
		return nil, err
	}
	if err := ws.compiled.Set("weights", in); err != nil {
		return nil, err
	}
	if err := ws.compiled.Run(); err != nil {
		return nil, fmt.Errorf("run weight script: %w", err)
	}

	out := make(map[string]float64, len(weights))
	for k, v := range ws.compiled.Get("weights").Map() {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case int64:
			out[k] = float64(n)
		case int:
			out[k] = float64(n)
		default:
			return nil, fmt.Errorf("weight %q is %T, want number", k, v)
		}
	}
	return out, nil
}
