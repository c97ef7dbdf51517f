// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	ga "github.com/galberding/ros-optimizer"
	"github.com/galberding/ros-optimizer/sim"
)

// emptyMap10 is the 10×10 free grid of the basic scenarios
const emptyMap10 = `..........
..........
..........
..........
..........
..........
..........
..........
..........
..........`

// scenarioConfig mirrors the "empty map, single straight" setup
func scenarioConfig(t *testing.T) *ga.Config {
	t.Helper()
	conf := new(ga.Config)
	conf.Default()
	conf.Seed = 1
	conf.MaxIterations = 5
	conf.InitIndividuals = 4
	conf.InitActions = 2
	conf.PopMin = 2
	conf.MinGenLen = 1
	conf.SelectIndividuals = 2
	conf.SelectKeepBest = 1
	conf.TournamentSize = 2
	conf.Start = ga.Pose{X: 5, Y: 5, Theta: 0}
	conf.Ends = []ga.Pose{{X: 5, Y: 9, Theta: 0}}
	conf.LogDir = t.TempDir()
	conf.LogName = "run.log"
	return conf
}

func newTestRobot(t *testing.T, conf *ga.Config) *sim.Robot {
	t.Helper()
	grid, err := sim.ParseGrid(emptyMap10, conf.MapResolution)
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	rob, err := sim.NewRobot(grid, sim.DefaultParams(), conf.Start)
	if err != nil {
		t.Fatalf("place robot: %v", err)
	}
	return rob
}

func newTestOptimizer(t *testing.T, conf *ga.Config) *ga.Optimizer {
	t.Helper()
	opt, err := ga.New(conf, newTestRobot(t, conf), zerolog.Nop())
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	opt.Clock = func() time.Time { return time.Unix(0, 0) } // fixed: Duration stays 0
	return opt
}

func readLog(t *testing.T, conf *ga.Config) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(conf.LogDir, conf.LogName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(b)
}

// S1: the driver terminates, logs every generation and finds some
// coverage even on a tiny budget
func TestRunEmptyMap(t *testing.T) {
	conf := scenarioConfig(t)
	opt := newTestOptimizer(t, conf)

	if err := opt.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(readLog(t, conf)), "\n")
	rows := len(lines) - 1 // minus header
	if rows < conf.MaxIterations {
		t.Errorf("log rows = %d, want at least %d", rows, conf.MaxIterations)
	}
	if cov := opt.Best().Coverage; cov < 0.05 {
		t.Errorf("best coverage = %v, want at least 0.05", cov)
	}
}

// S2: identical (config, seed, map) must reproduce the log and the
// snapshots byte for byte
func TestRunDeterminism(t *testing.T) {
	run := func() (string, string) {
		conf := scenarioConfig(t)
		conf.TakeSnapshotEvery = 5
		opt := newTestOptimizer(t, conf)
		if err := opt.Run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}
		snap, err := os.ReadFile(filepath.Join(conf.LogDir, "5_pool.actions"))
		if err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		return readLog(t, conf), string(snap)
	}
	log1, snap1 := run()
	log2, snap2 := run()
	if log1 != log2 {
		t.Error("two identical runs produced different log bytes")
	}
	if snap1 != snap2 {
		t.Error("two identical runs produced different snapshot bytes")
	}
}

// S3: a tournament larger than the pool is a configuration error
func TestTournamentBiggerThanPool(t *testing.T) {
	conf := scenarioConfig(t)
	conf.Scenario = ga.ScenarioTournament
	conf.SelectionStrategy = ga.SelTournament
	conf.InitIndividuals = 5
	conf.SelectIndividuals = 5
	conf.SelectKeepBest = 2
	conf.PopMin = 2
	conf.TournamentSize = 20

	_, err := ga.New(conf, newTestRobot(t, conf), zerolog.Nop())
	if err == nil {
		t.Fatal("want a configuration error")
	}
	if !errors.Is(err, ga.ErrConfigInvalid) {
		t.Errorf("error kind = %v, want ErrConfigInvalid", err)
	}
	if !strings.Contains(err.Error(), "Tournament bigger than pool") {
		t.Errorf("message = %q, want the legacy wording", err.Error())
	}
}

// S4: once the average genome length exceeds the guard the run ends
// with a collapse error, far before the iteration budget
func TestCollapseGuard(t *testing.T) {
	conf := scenarioConfig(t)
	conf.MaxIterations = 10000
	conf.InitActions = 1000 // runaway growth regime
	conf.MutaAddProba = 1
	conf.MutaRemoveProba = 0
	opt := newTestOptimizer(t, conf)

	err := opt.Run(context.Background())
	if !errors.Is(err, ga.ErrCollapse) {
		t.Fatalf("err = %v, want ErrCollapse", err)
	}
	if opt.State().CurrentIter >= conf.MaxIterations {
		t.Errorf("collapse must terminate early, stopped at %d", opt.State().CurrentIter)
	}
}

// property: the best-so-far fitness never decreases and the population
// stays within its bounds
func TestEliteMonotonicityAndBounds(t *testing.T) {
	for _, scenario := range []string{ga.ScenarioElitist, ga.ScenarioTournament} {
		conf := scenarioConfig(t)
		conf.Scenario = scenario
		conf.SelectionStrategy = ga.SelTournament
		conf.MaxIterations = 30
		conf.InitIndividuals = 8
		conf.SelectIndividuals = 4
		conf.PopMin = 4
		opt := newTestOptimizer(t, conf)

		prevBest := -1e30
		opt.OnGeneration = func(st *ga.RunState) {
			if st.CrossBestFit < prevBest {
				t.Errorf("%s: best-so-far decreased: %v -> %v", scenario, prevBest, st.CrossBestFit)
			}
			prevBest = st.CrossBestFit
			if st.PopSize < conf.PopMin || st.PopSize > conf.InitIndividuals+conf.SelectIndividuals {
				t.Errorf("%s: population size %d outside [%d, %d]",
					scenario, st.PopSize, conf.PopMin, conf.InitIndividuals+conf.SelectIndividuals)
			}
		}
		if err := opt.Run(context.Background()); err != nil {
			t.Fatalf("%s: run: %v", scenario, err)
		}
	}
}

// S5 (light): a snapshot restores into a runnable population
func TestSnapshotRestore(t *testing.T) {
	conf := scenarioConfig(t)
	conf.MaxIterations = 20
	conf.TakeSnapshotEvery = 10
	opt := newTestOptimizer(t, conf)
	if err := opt.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	snapPath := filepath.Join(conf.LogDir, "10_pool.actions")
	sequences, err := ga.ReadSnapshot(snapPath)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(sequences) == 0 {
		t.Fatal("snapshot must hold the population")
	}

	conf2 := scenarioConfig(t)
	conf2.MaxIterations = 5
	conf2.Restore = true
	conf2.Snapshot = snapPath
	opt2 := newTestOptimizer(t, conf2)
	if err := opt2.Run(context.Background()); err != nil {
		t.Fatalf("restored run: %v", err)
	}
	if opt2.Best().Coverage <= 0 {
		t.Error("restored run must evaluate the restored genomes")
	}
}

// cancellation is cooperative: the loop stops at the next generation
// boundary and keeps the current best
func TestCancellation(t *testing.T) {
	conf := scenarioConfig(t)
	conf.MaxIterations = 100000
	opt := newTestOptimizer(t, conf)

	ctx, cancel := context.WithCancel(context.Background())
	stopAt := 3
	opt.OnGeneration = func(st *ga.RunState) {
		if st.CurrentIter >= stopAt {
			cancel()
		}
	}
	if err := opt.Run(ctx); err != nil {
		t.Fatalf("cancelled run must return cleanly, got %v", err)
	}
	if opt.State().CurrentIter > stopAt+1 {
		t.Errorf("loop ran on after cancellation: iter %d", opt.State().CurrentIter)
	}
	if opt.Best().ID == 0 {
		t.Error("the current best must survive cancellation")
	}
}

// the tournament scenario refills from the elites when the population
// drops below pop_min
func TestTournamentScenarioRuns(t *testing.T) {
	conf := scenarioConfig(t)
	conf.Scenario = ga.ScenarioTournament
	conf.SelectionStrategy = ga.SelRankedRoulette
	conf.MaxIterations = 15
	conf.InitIndividuals = 8
	conf.SelectIndividuals = 4
	conf.PopMin = 6
	opt := newTestOptimizer(t, conf)
	if err := opt.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if size := len(opt.Pool()); size < conf.PopMin {
		t.Errorf("population %d below pop_min %d", size, conf.PopMin)
	}
}

// adaptive control: cross_length decays towards its floor
func TestCrossLengthDecays(t *testing.T) {
	conf := scenarioConfig(t)
	conf.MaxIterations = 10
	conf.CrossLength = 0.6
	opt := newTestOptimizer(t, conf)
	if err := opt.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	st := opt.State()
	if st.CrossLength >= conf.CrossLength {
		t.Errorf("cross length must decay below %v, got %v", conf.CrossLength, st.CrossLength)
	}
	if st.CrossLength < 0.4 {
		t.Errorf("cross length fell below its floor: %v", st.CrossLength)
	}
}
