package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"breach_sim/internal/combat"
	"breach_sim/internal/config"
	"breach_sim/internal/level"
	"breach_sim/internal/script"
	"breach_sim/internal/util"
)

type runFlags struct {
	cfgDir     string
	out        string
	difficulty string
	seed       int64
	n          int
	workers    int
	maxSeconds float64
	saveLog    bool
	watch      bool
}

func main() {
	var f runFlags
	flag.StringVar(&f.cfgDir, "config", "", "balance dir (empty uses embedded defaults)")
	flag.StringVar(&f.out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.StringVar(&f.difficulty, "difficulty", string(config.Normal), "easy|normal|hard|nightmare")
	flag.Int64Var(&f.seed, "seed", 12345, "seed")
	flag.IntVar(&f.n, "n", 1, "number of simulations")
	flag.IntVar(&f.workers, "workers", 8, "batch workers")
	flag.Float64Var(&f.maxSeconds, "max", 300, "max simulated seconds per fight")
	flag.BoolVar(&f.saveLog, "log", true, "save full event log when n==1")
	flag.BoolVar(&f.watch, "watch", false, "re-run whenever a balance file in -config changes")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
	if !f.watch {
		return
	}
	if f.cfgDir == "" {
		log.Fatal("-watch needs -config")
	}
	if err := watch(f); err != nil {
		log.Fatal(err)
	}
}

func loadBundle(dir string) (*config.Bundle, combat.Weigher, error) {
	var b *config.Bundle
	var err error
	if dir == "" {
		b, err = config.Default()
	} else {
		b, err = config.LoadAll(dir)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(b.Script) == 0 {
		return b, nil, nil
	}
	ws, err := script.Compile(b.Script)
	if err != nil {
		return nil, nil, err
	}
	return b, ws, nil
}

func run(f runFlags) error {
	bundle, weigher, err := loadBundle(f.cfgDir)
	if err != nil {
		return err
	}
	diff := config.Difficulty(f.difficulty)

	if f.n <= 1 {
		res, err := level.RunSingle(bundle, level.SimOptions{
			Seed:       f.seed,
			Difficulty: diff,
			MaxSeconds: f.maxSeconds,
			Record:     f.saveLog,
			Weigher:    weigher,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.out, level.MarshalPretty(res), 0644); err != nil {
			return err
		}
		fmt.Printf("Single simsvc finished. Win=%v, T=%.2fs, taken=%d, queen=%d -> %s\n",
			res.Win, res.Duration, res.DamageTaken, res.QueenHealth, f.out)
		return nil
	}

	type stat struct {
		Win      int
		SumT     float64
		SumTaken int
		SumKills int
		BySource map[string]int
	}
	st := stat{BySource: map[string]int{}}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(f.workers)
	for i := 0; i < f.n; i++ {
		seed := util.RunSeed(f.seed, i)
		g.Go(func() error {
			res, err := level.RunSingle(bundle, level.SimOptions{
				Seed:       seed,
				Difficulty: diff,
				MaxSeconds: f.maxSeconds,
				Weigher:    weigher,
			})
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Win {
				st.Win++
			}
			st.SumT += res.Duration
			st.SumTaken += res.DamageTaken
			st.SumKills += res.Kills
			for k, v := range res.DamageBySource {
				st.BySource[k] += v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	share := map[string]any{}
	for k, v := range st.BySource {
		ratio := 0.0
		if st.SumTaken > 0 {
			ratio = float64(v) / float64(st.SumTaken)
		}
		share[k] = map[string]any{"total": v, "ratio": ratio}
	}
	summary := map[string]any{
		"runs":             f.n,
		"difficulty":       f.difficulty,
		"win_rate":         float64(st.Win) / float64(f.n),
		"avg_time":         st.SumT / float64(f.n),
		"avg_damage_taken": float64(st.SumTaken) / float64(f.n),
		"avg_kills":        float64(st.SumKills) / float64(f.n),
		"damage_by_source": share,
	}
	if err := os.WriteFile(f.out, level.MarshalPretty(summary), 0644); err != nil {
		return err
	}
	fmt.Printf("Batch %d done -> %s\n", f.n, filepath.Base(f.out))
	return nil
}

func watch(f runFlags) error {
	w, err := config.NewWatcher(f.cfgDir)
	if err != nil {
		return err
	}
	defer w.Close()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	log.Printf("watching %s", f.cfgDir)
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			log.Printf("%s changed, re-running", filepath.Base(name))
			if err := run(f); err != nil {
				log.Printf("run: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		case <-sig:
			return nil
		}
	}
}
