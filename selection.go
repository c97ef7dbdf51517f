// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

// rwsEps keeps zero-weight genomes selectable
const rwsEps = 1e-9

// SelectionStrategy samples a breeding pool of exactly
// select_individuals genomes. Strategies that sample with replacement
// emit copies and leave the main pool untouched; the uniform strategy
// removes its picks, which is what the elitist driver expects.
type SelectionStrategy interface {
	Name() string
	Select(pool *Pool, out *Pool, conf *Config, rnd *Rand)
}

// NewSelectionStrategy resolves the configured strategy once
func NewSelectionStrategy(conf *Config) SelectionStrategy {
	switch conf.SelectionStrategy {
	case SelTournament:
		return TournamentSelection{}
	case SelRoulette:
		return RouletteSelection{}
	case SelRankedRoulette:
		return RankedRouletteSelection{}
	}
	return UniformSelection{}
}

// UniformSelection shuffles the pool and moves the first
// select_individuals genomes into the breeding pool, without
// replacement
type UniformSelection struct{}

func (o UniformSelection) Name() string { return SelElitistUniform }

func (o UniformSelection) Select(pool *Pool, out *Pool, conf *Config, rnd *Rand) {
	p := *pool
	rnd.Shuffle(len(p), p.Swap)
	n := conf.SelectIndividuals
	if n > len(p) {
		n = len(p)
	}
	*out = append(*out, p[:n]...)
	*pool = p[n:]
}

// TournamentSelection repeats select_individuals tournaments of
// tournament_size genomes drawn uniformly with replacement; each emits
// a copy of its winner. Ties go to the shorter genome.
type TournamentSelection struct{}

func (o TournamentSelection) Name() string { return SelTournament }

func (o TournamentSelection) Select(pool *Pool, out *Pool, conf *Config, rnd *Rand) {
	p := *pool
	if len(p) == 0 {
		return
	}
	for i := 0; i < conf.SelectIndividuals; i++ {
		winner := p[rnd.Intn(len(p))]
		for j := 1; j < conf.TournamentSize; j++ {
			c := p[rnd.Intn(len(p))]
			if betterThan(c, winner) {
				winner = c
			}
		}
		*out = append(*out, winner.Clone())
	}
}

// RouletteSelection samples with replacement, each genome weighted by
// max(0, fitness − min_fitness + ε)
type RouletteSelection struct{}

func (o RouletteSelection) Name() string { return SelRoulette }

func (o RouletteSelection) Select(pool *Pool, out *Pool, conf *Config, rnd *Rand) {
	p := *pool
	if len(p) == 0 {
		return
	}
	minfit := p[0].Fitness
	for _, g := range p {
		if g.Fitness < minfit {
			minfit = g.Fitness
		}
	}
	weights := make([]float64, len(p))
	for i, g := range p {
		w := g.Fitness - minfit + rwsEps
		if w < 0 {
			w = 0
		}
		weights[i] = w
	}
	for i := 0; i < conf.SelectIndividuals; i++ {
		*out = append(*out, p[spinWheel(weights, rnd)].Clone())
	}
}

// RankedRouletteSelection sorts ascending by fitness and runs the
// wheel over linear rank weights 1..N, which stays stable when the
// fitness scale drifts
type RankedRouletteSelection struct{}

func (o RankedRouletteSelection) Name() string { return SelRankedRoulette }

func (o RankedRouletteSelection) Select(pool *Pool, out *Pool, conf *Config, rnd *Rand) {
	p := *pool
	if len(p) == 0 {
		return
	}
	ranked := make(Pool, len(p))
	copy(ranked, p)
	ranked.Sort()
	weights := make([]float64, len(ranked))
	for i := range ranked {
		weights[i] = float64(i + 1)
	}
	for i := 0; i < conf.SelectIndividuals; i++ {
		*out = append(*out, ranked[spinWheel(weights, rnd)].Clone())
	}
}

// spinWheel walks the cumulative weights once, the classic
// roulette-wheel turn
func spinWheel(weights []float64, rnd *Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rnd.Intn(len(weights))
	}
	r := rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}
