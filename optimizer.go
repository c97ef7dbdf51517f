// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// adaptive parameter bounds
const (
	collapseLenAvg   = 400    // average action count that trips the collapse guard
	adaptIterations  = 1000   // generations over which cross_length decays
	crossLenStep     = 0.0003 // decay per generation
	crossLenFloor    = 0.4
	crossProbaLower  = 0.4
	crossProbaUpper  = 0.85
	crossProbaStep   = 0.01
	adaptImproveNear = 25 // adapter threshold below which pressure rises
	adaptImproveFar  = 50 // adapter threshold up to which pressure relaxes
)

// Optimizer coordinates initialization, fitness, selection, crossover
// and mutation over the generations. All strategy dispatch is resolved
// here, once, at construction.
type Optimizer struct {
	conf  *Config
	st    *RunState
	rob   Robot
	robs  []Robot // extra adapters for parallel evaluation, one per worker
	rnd   *Rand
	ids   idSeq
	fit   FitnessStrategy
	sel   SelectionStrategy
	cross CrossoverStrategy
	mut   *Mutator

	pool   Pool
	elite  Pool
	logger *runLogger
	zlog   zerolog.Logger
	ioFail bool

	// Clock is stubbed by tests to keep log bytes reproducible
	Clock func() time.Time

	// OnGeneration, when set, observes the run state after every
	// completed generation
	OnGeneration func(st *RunState)

	lastTick time.Time
}

// New binds the configured strategies and wires the engine random
// source. The elitist scenario always breeds through uniform selection
// without replacement; the tournament family uses the configured
// strategy.
func New(conf *Config, rob Robot, zlog zerolog.Logger) (*Optimizer, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{
		conf:   conf,
		st:     NewRunState(conf),
		rob:    rob,
		rnd:    NewRand(conf),
		fit:    NewFitnessStrategy(conf),
		cross:  NewCrossoverStrategy(conf),
		zlog:   zlog,
		logger: newRunLogger(conf.LogDir, conf.LogName, zlog),
		Clock:  time.Now,
	}
	if conf.Scenario == ScenarioElitist {
		o.sel = UniformSelection{}
	} else {
		o.sel = NewSelectionStrategy(conf)
	}
	o.mut = NewMutator(conf, o.rnd, &o.ids)
	return o, nil
}

// SetWorkerRobots hands the engine one additional simulator adapter
// per evaluation worker. Without them the fitness step stays serial.
func (o *Optimizer) SetWorkerRobots(robs []Robot) {
	o.robs = robs
}

// Best returns a copy of the best genome seen in the current
// generation
func (o *Optimizer) Best() Genome {
	return o.st.Best
}

// State exposes the mutable run state, mainly for inspection in tests
// and tooling
func (o *Optimizer) State() *RunState {
	return o.st
}

// Pool exposes the current population
func (o *Optimizer) Pool() Pool {
	return o.pool
}

// Run drives the configured scenario until termination. It returns nil
// on normal termination or cancellation, ErrConfigInvalid when a
// tournament exceeds the pool, and ErrCollapse when genomes grow past
// the guard.
func (o *Optimizer) Run(ctx context.Context) error {
	if err := o.prepare(); err != nil {
		return err
	}
	var err error
	if o.conf.Scenario == ScenarioTournament {
		err = o.runTournament(ctx)
	} else {
		err = o.runElitist(ctx)
	}
	o.logger.flush()
	return err
}

// prepare builds or restores the initial population and evaluates it
// once before the loop
func (o *Optimizer) prepare() error {
	o.lastTick = o.Clock()
	if o.conf.Retrain && o.st.CurrentIter != 0 {
		// keep the pool, restart counting, rebuild the coverage
		// denominator and log next to the previous run
		o.st.CurrentIter = 0
		o.rob.FreeArea(true)
		o.logger.redirect("retrain_run")
		o.fit.ApplyPool(o.pool, o.rob, o.conf)
		return nil
	}
	if o.conf.Restore {
		sequences, err := ReadSnapshot(o.conf.Snapshot)
		if err != nil {
			return err
		}
		o.pool = o.pool[:0]
		for _, actions := range sequences {
			o.pool = append(o.pool, NewGenome(o.ids.Next(), actions))
		}
	} else if len(o.pool) == 0 {
		Populate(&o.pool, o.conf, o.rnd, &o.ids)
	}
	o.evaluatePool(o.pool, false)
	return nil
}

// generationTop runs the shared per-generation skeleton: statistics,
// best tracking, pruning, logging and the termination checks. done is
// set on cancellation; err on a fatal condition.
func (o *Optimizer) generationTop(ctx context.Context) (done bool, err error) {
	select {
	case <-ctx.Done():
		o.zlog.Info().Int("iteration", o.st.CurrentIter).Msg("run cancelled")
		return true, nil
	default:
	}

	updateDiversity(o.pool, o.st)
	getBestGen(o.pool, o.st)
	trackPoolFitness(o.pool, o.st)
	o.st.DeadGens = countDeadGens(o.pool, o.conf)
	o.st.ZeroActionPercent = calZeroActionPercent(o.pool, o.conf)
	maybeClearZeros(o.pool, o.conf, o.st)
	o.evaluatePool(o.pool, true) // pruned genomes re-enter selection with fresh measurements
	o.logAndSnapshot()
	o.printRunInformation()

	if o.st.AcLenAvg > collapseLenAvg {
		o.zlog.Warn().Float64("aclen_avg", o.st.AcLenAvg).Msg("Max action sequence length reached!")
		return true, ErrCollapse
	}
	if o.conf.usesTournament() && len(o.pool) < o.conf.TournamentSize {
		o.zlog.Warn().Int("pool", len(o.pool)).Int("tournament", o.conf.TournamentSize).
			Msg("Tournament bigger than pool")
		return true, errors.Wrap(ErrConfigInvalid, "Tournament bigger than pool")
	}

	o.adaptParameters()
	return false, nil
}

// adaptParameters decays cross_length over the first generations and,
// when enabled, steers crossover_proba by the improvement counter
func (o *Optimizer) adaptParameters() {
	if o.st.CurrentIter < adaptIterations {
		o.st.CrossLength -= crossLenStep
		if o.st.CrossLength < crossLenFloor {
			o.st.CrossLength = crossLenFloor
		}
	}
	if !o.conf.AdaptCrossoverProba {
		return
	}
	if o.st.CrossAdapter < adaptImproveNear {
		o.st.CrossoverProba -= crossProbaStep
	} else if o.st.CrossAdapter < adaptImproveFar {
		o.st.CrossoverProba += crossProbaStep
	}
	if o.st.CrossoverProba < crossProbaLower {
		o.st.CrossoverProba = crossProbaLower
	}
	if o.st.CrossoverProba > crossProbaUpper {
		o.st.CrossoverProba = crossProbaUpper
	}
}

// runElitist breeds through uniform selection, crosses into the main
// pool, mutates both pools and merges back, overwriting the worst with
// the elites
func (o *Optimizer) runElitist(ctx context.Context) error {
	for o.st.CurrentIter <= o.conf.MaxIterations {
		done, err := o.generationTop(ctx)
		if done || err != nil {
			return err
		}
		o.st.MutaCount = 0
		o.st.PopFilled = 0

		o.saveBest()

		var fPool Pool
		o.sel.Select(&o.pool, &fPool, o.conf, o.rnd)

		// offspring land directly in the main pool
		o.cross.Cross(fPool, &o.pool, o.conf, o.st, o.rnd, &o.ids)
		maybeClearZeros(o.pool, o.conf, o.st)

		// wholesale replacement sweep over the survivors
		if len(o.pool) > 2 {
			for _, g := range o.pool[:len(o.pool)-1] {
				if o.mut.RandomReplaceGen(g) {
					o.st.MutaCount++
					o.fit.EstimateGen(g, o.rob, o.conf)
				}
			}
		}

		o.mut.MutatePool(fPool, o.st)
		o.evaluatePool(fPool, false)

		// merge breeding pool back and admit stale offspring
		o.pool = append(o.pool, fPool...)
		o.evaluatePool(o.pool, true)
		o.trimToCapacity()
		o.replaceWithBest()

		o.st.CurrentIter++
		if o.OnGeneration != nil {
			o.OnGeneration(o.st)
		}
	}
	return nil
}

// runTournament breeds through the configured selection into a fresh
// mating pool, mutates and re-evaluates only that pool and appends it
// to the population, refilling from the elites when short
func (o *Optimizer) runTournament(ctx context.Context) error {
	for o.st.CurrentIter <= o.conf.MaxIterations {
		done, err := o.generationTop(ctx)
		if done || err != nil {
			return err
		}
		o.st.MutaCount = 0
		o.st.PopFilled = 0

		o.saveBest()
		o.fit.ApplyPoolBias(o.pool, o.conf)

		var sPool Pool
		o.sel.Select(&o.pool, &sPool, o.conf, o.rnd)
		o.insertBest()

		var mPool Pool
		o.cross.Cross(sPool, &mPool, o.conf, o.st, o.rnd, &o.ids)

		for _, g := range mPool {
			mutated := o.mut.RandomReplaceGen(g)
			if !mutated {
				mutated = o.mut.AddRandomAngleOffset(g) || mutated
				mutated = o.mut.AddOrthogonalAngleOffset(g) || mutated
				mutated = o.mut.RandomScaleDistance(g) || mutated
			}
			g.Mutated = mutated
			if mutated {
				o.st.MutaCount++
			}
			o.fit.EstimateGen(g, o.rob, o.conf)
		}

		o.pool = append(o.pool, mPool...)
		o.trimToCapacity()
		o.balancePopulation()

		o.st.CurrentIter++
		if o.OnGeneration != nil {
			o.OnGeneration(o.st)
		}
	}
	return nil
}

// saveBest snapshots the sorted population as the elite set
func (o *Optimizer) saveBest() {
	sorted := make(Pool, len(o.pool))
	copy(sorted, o.pool)
	sorted.Sort()
	o.elite = sorted.Clone()
}

// replaceWithBest overwrites the worst select_keep_best genomes with
// the best elites, but never in favor of a lower-fitness elite
func (o *Optimizer) replaceWithBest() {
	if len(o.elite) == 0 {
		return
	}
	o.pool.Sort()
	k := utl.Imin(o.conf.SelectKeepBest, utl.Imin(len(o.pool), len(o.elite)))
	top := o.elite[len(o.elite)-k:]
	for i := 0; i < k; i++ {
		if top[i].Fitness > o.pool[i].Fitness {
			o.pool[i] = top[i].Clone()
		}
	}
}

// insertBest appends the best select_keep_best elites to the pool
func (o *Optimizer) insertBest() {
	if len(o.elite) == 0 {
		return
	}
	k := utl.Imin(o.conf.SelectKeepBest, len(o.elite))
	for _, g := range o.elite[len(o.elite)-k:] {
		o.pool = append(o.pool, g.Clone())
	}
}

// balancePopulation refills from a shuffled elite set when the
// population dropped below pop_min
func (o *Optimizer) balancePopulation() {
	if len(o.pool) >= o.conf.PopMin || len(o.elite) == 0 {
		return
	}
	missing := utl.Imin(o.conf.PopMin-len(o.pool), len(o.elite))
	refill := o.elite.Clone()
	o.rnd.Shuffle(len(refill), refill.Swap)
	o.pool = append(o.pool, refill[:missing]...)
	o.st.PopFilled = missing
}

// trimToCapacity drops the worst genomes once the population exceeds
// its initial size
func (o *Optimizer) trimToCapacity() {
	if len(o.pool) <= o.conf.InitIndividuals {
		return
	}
	o.pool.Sort()
	keep := make(Pool, o.conf.InitIndividuals)
	copy(keep, o.pool[len(o.pool)-o.conf.InitIndividuals:])
	o.pool = keep
}

// evaluatePool measures fitness, in parallel when worker adapters are
// available. staleOnly restricts the sweep to genomes whose
// measurements were invalidated by an operator.
func (o *Optimizer) evaluatePool(pool Pool, staleOnly bool) {
	workers := utl.Imin(o.conf.Workers, len(o.robs))
	if workers < 2 {
		for _, g := range pool {
			if staleOnly && g.Evaluated() {
				continue
			}
			o.fit.EstimateGen(g, o.rob, o.conf)
		}
		return
	}
	evaluatePoolParallel(pool, o.robs[:workers], o.fit, o.conf, staleOnly)
}

// logAndSnapshot emits the CSV row for this generation and, on the
// snapshot interval, stores the population and its performance table
func (o *Optimizer) logAndSnapshot() {
	now := o.Clock()
	duration := now.Sub(o.lastTick).Milliseconds()
	o.lastTick = now
	o.logger.logGeneration(o.st, duration)
	if o.st.CurrentIter == 0 {
		o.logger.flush()
	}
	if o.conf.TakeSnapshotEvery > 0 && o.st.CurrentIter%o.conf.TakeSnapshotEvery == 0 {
		o.snapshotPopulation()
		o.logger.flush()
	}
}

// snapshotPopulation writes <iter>_pool.actions and
// <iter>_pool.performance into the log directory
func (o *Optimizer) snapshotPopulation() {
	iter := io.Sf("%d", o.st.CurrentIter)
	dir := o.logger.dir // follows the retrain redirect
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.reportIOErr(err)
		return
	}
	if err := WriteSnapshot(o.pool, filepath.Join(dir, iter+"_pool.actions")); err != nil {
		o.reportIOErr(err)
	}
	if err := appendFile(dir, iter+"_pool.performance", []byte(performanceCSV(o.pool))); err != nil {
		o.reportIOErr(err)
	}
}

// reportIOErr degrades IO failures: one warning, then silence
func (o *Optimizer) reportIOErr(err error) {
	if o.ioFail {
		return
	}
	o.zlog.Warn().Err(err).Msg("snapshot write failed; further IO errors suppressed")
	o.ioFail = true
}

// printRunInformation mirrors the legacy console line through zerolog
func (o *Optimizer) printRunInformation() {
	if o.st.Best.ID == 0 {
		return
	}
	o.zlog.Debug().
		Int("iteration", o.st.CurrentIter).
		Float64("best_fitness", o.st.Best.Fitness).
		Float64("best_time", o.st.Best.FinalTime).
		Float64("best_coverage", o.st.Best.Coverage).
		Int("best_actions", len(o.st.Best.Actions)).
		Float64("fit_avg", o.st.FitAvg).
		Float64("aclen_avg", o.st.AcLenAvg).
		Float64("cross_length", o.st.CrossLength).
		Float64("div_mean", o.st.DivMean).
		Int("dead", o.st.DeadGens).
		Msg("generation")
}
