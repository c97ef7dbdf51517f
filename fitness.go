// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "gonum.org/v1/gonum/stat"

// fitness constants
const (
	deadFitness       = -1.0 // assigned to genomes whose simulation failed
	timeEps           = 1e-6 // guards the time-error division
	crossingPenalty   = 0.01 // per re-entry into a cleaned cell
	zeroActPenalty    = 0.01 // per zero-action in the sequence
	rotationBiasGain  = 0.2  // weight of the rotation-share penalty
	semiContThreshold = 0.8  // coverage ratio where time takes over
)

// FitnessStrategy scalarizes simulator measurements into a comparable
// fitness. EstimateGen writes the measurement attributes onto the
// genome and returns the scalar.
type FitnessStrategy interface {
	Name() string
	EstimateGen(g *Genome, rob Robot, conf *Config) float64
	ApplyPool(pool Pool, rob Robot, conf *Config)
	ApplyPoolBias(pool Pool, conf *Config)
}

// NewFitnessStrategy resolves the configured strategy once, at the
// driver's configuration-binding site
func NewFitnessStrategy(conf *Config) FitnessStrategy {
	switch conf.FitnessStrategy {
	case FitRotationBias:
		return FitnessRotationBias{}
	case FitSemiContinuous:
		return FitnessSemiContinuous{}
	case FitPoly:
		return FitnessPoly{}
	}
	return FitnessBase{}
}

// measureGen runs the simulator and copies the measurement onto the
// genome. A simulator failure yields the worst admissible fitness and
// marks the genome dead; it reports false.
func measureGen(g *Genome, rob Robot, conf *Config) bool {
	m, err := rob.EvaluateActions(g.Actions)
	if err != nil {
		g.Fitness = deadFitness
		g.Dead = true
		g.evaluated = true
		return false
	}
	free := rob.FreeArea(false)
	g.FinalTime = m.FinalTime
	g.RotationTime = m.RotationTime
	g.Traveled = m.Traveled
	g.PathLength = m.PathLength
	g.Crossings = m.Crossings
	g.Collisions = m.Collisions
	g.FreeSpace = free
	g.Waypoints = m.Waypoints
	g.Coverage = 0
	if free > 0 {
		g.Coverage = float64(m.CoverageCells) / float64(free)
	}
	g.Dead = g.Len() < conf.MinGenLen
	g.evaluated = true
	return true
}

// timeError relates the time an exhaustive cleaning run would need to
// the time this genome actually takes. Capped at 1: a path cannot beat
// the optimum.
func timeError(g *Genome, conf *Config) float64 {
	optimal := float64(g.FreeSpace) * conf.CellArea() / conf.CleanRate()
	t := g.FinalTime
	if t < timeEps {
		t = timeEps
	}
	err := optimal / t
	if err > 1 {
		err = 1
	}
	return err
}

// structuralPenalty charges crossings and zero-actions
func structuralPenalty(g *Genome, conf *Config) float64 {
	zeros := 0
	for _, a := range g.Actions {
		if a.IsZero(conf.MapResolution) {
			zeros++
		}
	}
	return crossingPenalty*float64(g.Crossings) + zeroActPenalty*float64(zeros)
}

// applyPool estimates every genome in the pool with the given scalarizer
func applyPool(pool Pool, rob Robot, conf *Config, estimate func(*Genome, Robot, *Config) float64) {
	for _, g := range pool {
		estimate(g, rob, conf)
	}
}

// applyPoolBias rescales fitness by subtracting the pool mean, which
// amplifies selection pressure without changing the order. Disabled
// unless pool_bias is configured.
func applyPoolBias(pool Pool, conf *Config) {
	if !conf.PoolBias || len(pool) == 0 {
		return
	}
	fits := make([]float64, len(pool))
	for i, g := range pool {
		fits[i] = g.Fitness
	}
	mean := stat.Mean(fits, nil)
	for _, g := range pool {
		g.Fitness -= mean
	}
}

// FitnessBase blends coverage and time error linearly:
// w·coverage + (1−w)·time_err, minus the structural penalties
type FitnessBase struct{}

func (o FitnessBase) Name() string { return FitBase }

func (o FitnessBase) EstimateGen(g *Genome, rob Robot, conf *Config) float64 {
	if !measureGen(g, rob, conf) {
		return g.Fitness
	}
	w := conf.FitnessWeight
	g.Fitness = w*g.Coverage + (1-w)*timeError(g, conf) - structuralPenalty(g, conf)
	return g.Fitness
}

func (o FitnessBase) ApplyPool(pool Pool, rob Robot, conf *Config) {
	applyPool(pool, rob, conf, o.EstimateGen)
}

func (o FitnessBase) ApplyPoolBias(pool Pool, conf *Config) {
	applyPoolBias(pool, conf)
}

// FitnessRotationBias additionally punishes the share of time spent
// rotating in place, steering away from rotate-heavy degenerates
type FitnessRotationBias struct{}

func (o FitnessRotationBias) Name() string { return FitRotationBias }

func (o FitnessRotationBias) EstimateGen(g *Genome, rob Robot, conf *Config) float64 {
	if !measureGen(g, rob, conf) {
		return g.Fitness
	}
	w := conf.FitnessWeight
	t := g.FinalTime
	if t < timeEps {
		t = timeEps
	}
	rotShare := g.RotationTime / t
	g.Fitness = w*g.Coverage + (1-w)*timeError(g, conf) -
		rotationBiasGain*rotShare - structuralPenalty(g, conf)
	return g.Fitness
}

func (o FitnessRotationBias) ApplyPool(pool Pool, rob Robot, conf *Config) {
	applyPool(pool, rob, conf, o.EstimateGen)
}

func (o FitnessRotationBias) ApplyPoolBias(pool Pool, conf *Config) {
	applyPoolBias(pool, conf)
}

// FitnessSemiContinuous works in two regimes: below the coverage
// threshold only coverage counts; above it the time error becomes the
// discriminator, fading in from zero so the junction stays smooth
type FitnessSemiContinuous struct{}

func (o FitnessSemiContinuous) Name() string { return FitSemiContinuous }

func (o FitnessSemiContinuous) EstimateGen(g *Genome, rob Robot, conf *Config) float64 {
	if !measureGen(g, rob, conf) {
		return g.Fitness
	}
	w := conf.FitnessWeight
	fit := w * g.Coverage
	if g.Coverage >= semiContThreshold {
		ramp := (g.Coverage - semiContThreshold) / (1 - semiContThreshold)
		fit += (1 - w) * timeError(g, conf) * ramp
	}
	g.Fitness = fit - structuralPenalty(g, conf)
	return g.Fitness
}

func (o FitnessSemiContinuous) ApplyPool(pool Pool, rob Robot, conf *Config) {
	applyPool(pool, rob, conf, o.EstimateGen)
}

func (o FitnessSemiContinuous) ApplyPoolBias(pool Pool, conf *Config) {
	applyPoolBias(pool, conf)
}

// FitnessPoly replaces the linear blend with cov²·time_err, which
// rewards near-complete coverage disproportionately
type FitnessPoly struct{}

func (o FitnessPoly) Name() string { return FitPoly }

func (o FitnessPoly) EstimateGen(g *Genome, rob Robot, conf *Config) float64 {
	if !measureGen(g, rob, conf) {
		return g.Fitness
	}
	g.Fitness = g.Coverage*g.Coverage*timeError(g, conf) - structuralPenalty(g, conf)
	return g.Fitness
}

func (o FitnessPoly) ApplyPool(pool Pool, rob Robot, conf *Config) {
	applyPool(pool, rob, conf, o.EstimateGen)
}

func (o FitnessPoly) ApplyPoolBias(pool Pool, conf *Config) {
	applyPoolBias(pool, conf)
}
