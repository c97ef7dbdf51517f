// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "math"

// randomAction draws one action. Kinds are uniform over
// {Straight, Rotate, Curve}; magnitudes come from the configured
// Gaussians, distances scaled by the map resolution.
func randomAction(conf *Config, rnd *Rand) Action {
	switch rnd.Intn(3) {
	case 0:
		return Action{
			Kind:     Straight,
			Distance: math.Abs(rnd.NormalDistance()) * conf.MapResolution,
		}
	case 1:
		return Action{
			Kind:  Rotate,
			Angle: NormAngle(rnd.NormalAngle()),
		}
	default:
		return Action{
			Kind:   Curve,
			Angle:  NormAngle(rnd.NormalAngle()),
			Radius: math.Abs(rnd.NormalDistance()) * conf.MapResolution,
		}
	}
}

// randomActions draws a sequence of L ~ max(1, round(N(n, n/4))) actions
func randomActions(conf *Config, rnd *Rand) []Action {
	mean := float64(conf.InitActions)
	n := int(math.Round(rnd.Normal(mean, mean/4)))
	if n < 1 {
		n = 1
	}
	actions := make([]Action, n)
	for i := range actions {
		actions[i] = randomAction(conf, rnd)
	}
	return actions
}

// Populate fills the pool with init_individuals random genomes. The
// caller evaluates them once before entering the loop.
func Populate(pool *Pool, conf *Config, rnd *Rand, ids *idSeq) {
	for i := 0; i < conf.InitIndividuals; i++ {
		*pool = append(*pool, NewGenome(ids.Next(), randomActions(conf, rnd)))
	}
}
