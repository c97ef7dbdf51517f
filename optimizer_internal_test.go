// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"testing"

	"github.com/rs/zerolog"
)

func internalOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	conf := testConfig()
	opt, err := New(conf, &stubRobot{free: 100}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return opt
}

func fitPool(fits ...float64) Pool {
	pool := make(Pool, len(fits))
	for i, f := range fits {
		g := NewGenome(uint64(i+1), someActions())
		g.Fitness = f
		pool[i] = g
	}
	return pool
}

// property: after the elite merge the worst positions hold the elites,
// and no non-elite is dropped for a lower-fitness elite
func TestReplaceWithBest(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.SelectKeepBest = 2

	o.pool = fitPool(0.9, 0.8, 0.7, 0.6)
	o.saveBest()
	// population degrades: the elites outrank the new worst
	o.pool = fitPool(0.5, 0.4, 0.3, 0.2)
	o.replaceWithBest()

	o.pool.Sort()
	// ascending: positions 0..1 are the bottom; the two best elites
	// (0.8, 0.9) must have displaced the two worst (0.2, 0.3)
	for _, g := range o.pool {
		if g.Fitness == 0.2 || g.Fitness == 0.3 {
			t.Errorf("worst genome %v survived the elite merge", g.Fitness)
		}
	}
	found := map[float64]bool{}
	for _, g := range o.pool {
		found[g.Fitness] = true
	}
	if !found[0.9] || !found[0.8] {
		t.Error("the best elites must be back in the pool")
	}
}

func TestReplaceWithBestNeverDowngrades(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.SelectKeepBest = 2

	o.pool = fitPool(0.1, 0.05)
	o.saveBest()
	// population improved past the elites: nothing may be replaced
	o.pool = fitPool(0.9, 0.8, 0.7, 0.6)
	o.replaceWithBest()

	for _, g := range o.pool {
		if g.Fitness < 0.6 {
			t.Errorf("a lower-fitness elite (%v) displaced a better genome", g.Fitness)
		}
	}
}

func TestInsertBestAppendsTopElites(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.SelectKeepBest = 2
	o.pool = fitPool(0.9, 0.1, 0.5, 0.7)
	o.saveBest()

	before := len(o.pool)
	o.insertBest()
	if len(o.pool) != before+2 {
		t.Fatalf("pool grew by %d, want 2", len(o.pool)-before)
	}
	inserted := o.pool[before:]
	for _, g := range inserted {
		if g.Fitness < 0.7 {
			t.Errorf("inserted elite fitness %v, want the top of the elite set", g.Fitness)
		}
	}
}

func TestBalancePopulationRefills(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.PopMin = 6
	o.pool = fitPool(0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2)
	o.saveBest()

	o.pool = o.pool[:2]
	o.balancePopulation()
	if len(o.pool) != 6 {
		t.Fatalf("pool size = %d, want pop_min 6", len(o.pool))
	}
	if o.st.PopFilled != 4 {
		t.Errorf("PopFilled = %d, want 4", o.st.PopFilled)
	}
}

func TestTrimToCapacityKeepsBest(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.InitIndividuals = 3
	o.pool = fitPool(0.1, 0.9, 0.5, 0.7, 0.3)
	o.trimToCapacity()
	if len(o.pool) != 3 {
		t.Fatalf("pool size = %d, want 3", len(o.pool))
	}
	for _, g := range o.pool {
		if g.Fitness < 0.5 {
			t.Errorf("trim kept a weak genome (%v)", g.Fitness)
		}
	}
}

func TestAdaptCrossoverProbaFlagged(t *testing.T) {
	o := internalOptimizer(t)
	o.conf.AdaptCrossoverProba = false
	start := o.st.CrossoverProba
	o.st.CrossAdapter = 10
	o.adaptParameters()
	if o.st.CrossoverProba != start {
		t.Error("crossover_proba must stay put while the flag is off")
	}

	o.conf.AdaptCrossoverProba = true
	for i := 0; i < 200; i++ {
		o.adaptParameters()
	}
	if p := o.st.CrossoverProba; p < 0.4 || p > 0.85 {
		t.Errorf("adapted crossover_proba %v escaped [0.4, 0.85]", p)
	}
}
