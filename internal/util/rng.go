package util

import "math/rand"

func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// RunSeed spreads batch runs across distinct, reproducible seeds.
func RunSeed(base int64, run int) int64 {
	return base + int64(run)*7919
}
