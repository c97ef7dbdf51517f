// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "math"

// Mutator bundles the mutation operators. Each operator takes one
// genome and reports whether it changed anything; the driver invokes
// them independently with the configured probabilities.
type Mutator struct {
	conf *Config
	rnd  *Rand
	ids  *idSeq
}

// NewMutator wires the operators to the engine random source
func NewMutator(conf *Config, rnd *Rand, ids *idSeq) *Mutator {
	return &Mutator{conf: conf, rnd: rnd, ids: ids}
}

// touched stamps a fresh id and stales the measurements after an edit
func (o *Mutator) touched(g *Genome) {
	g.ID = o.ids.Next()
	g.Mutated = true
	g.markStale()
}

// RandomReplaceGen replaces the whole action sequence with a freshly
// generated one, drawn from the initialization distribution
func (o *Mutator) RandomReplaceGen(g *Genome) bool {
	if !o.rnd.FlipCoin(o.conf.MutaReplaceGen) {
		return false
	}
	g.Actions = randomActions(o.conf, o.rnd)
	o.touched(g)
	return true
}

// AddRandomAngleOffset perturbs each angle-bearing action with
// probability muta_angle_proba by N(0, angleDev). Kinds and distances
// stay untouched.
func (o *Mutator) AddRandomAngleOffset(g *Genome) bool {
	mutated := false
	for i := range g.Actions {
		if !g.Actions[i].HasAngle() {
			continue
		}
		if !o.rnd.FlipCoin(o.conf.MutaAngleProba) {
			continue
		}
		g.Actions[i].Angle = NormAngle(g.Actions[i].Angle + o.rnd.Normal(0, o.conf.AngleDev))
		mutated = true
	}
	if mutated {
		o.touched(g)
	}
	return mutated
}

// AddOrthogonalAngleOffset snaps one random angle-bearing action to
// the nearest multiple of 90° with a small jitter, encouraging
// axis-aligned coverage runs
func (o *Mutator) AddOrthogonalAngleOffset(g *Genome) bool {
	if !o.rnd.FlipCoin(o.conf.MutaOrthoProba) {
		return false
	}
	idx := make([]int, 0, len(g.Actions))
	for i, a := range g.Actions {
		if a.HasAngle() {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return false
	}
	i := idx[o.rnd.Intn(len(idx))]
	snapped := math.Round(g.Actions[i].Angle/90.0) * 90.0
	g.Actions[i].Angle = NormAngle(snapped + o.rnd.Normal(0, o.conf.AngleDev/4))
	o.touched(g)
	return true
}

// RandomScaleDistance multiplies one random distance-bearing action by
// max(0, N(1, 0.2))
func (o *Mutator) RandomScaleDistance(g *Genome) bool {
	if !o.rnd.FlipCoin(o.conf.MutaDistProba) {
		return false
	}
	idx := make([]int, 0, len(g.Actions))
	for i, a := range g.Actions {
		if a.HasDistance() {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return false
	}
	i := idx[o.rnd.Intn(len(idx))]
	scale := o.rnd.Normal(1, 0.2)
	if scale < 0 {
		scale = 0
	}
	g.Actions[i].Distance *= scale
	o.touched(g)
	return true
}

// AddAction inserts a random action at a uniform index
func (o *Mutator) AddAction(g *Genome) bool {
	if !o.rnd.FlipCoin(o.conf.MutaAddProba) {
		return false
	}
	i := o.rnd.Intn(len(g.Actions) + 1)
	g.Splice(i, i, []Action{randomAction(o.conf, o.rnd)})
	o.touched(g)
	return true
}

// RemoveAction deletes a uniform index; an empty genome passes through
func (o *Mutator) RemoveAction(g *Genome) bool {
	if len(g.Actions) == 0 || !o.rnd.FlipCoin(o.conf.MutaRemoveProba) {
		return false
	}
	g.Delete(o.rnd.Intn(len(g.Actions)))
	o.touched(g)
	return true
}

// SwapRandomAction exchanges two uniform indices
func (o *Mutator) SwapRandomAction(g *Genome) bool {
	if len(g.Actions) < 2 || !o.rnd.FlipCoin(o.conf.MutaSwapProba) {
		return false
	}
	i := o.rnd.Intn(len(g.Actions))
	j := o.rnd.Intn(len(g.Actions))
	g.Actions[i], g.Actions[j] = g.Actions[j], g.Actions[i]
	o.touched(g)
	return true
}

// MutateGen runs the offset operators and the structural add/remove/swap
// operators on one genome and reports whether any of them fired
func (o *Mutator) MutateGen(g *Genome) bool {
	mutated := o.AddRandomAngleOffset(g)
	mutated = o.AddOrthogonalAngleOffset(g) || mutated
	mutated = o.RandomScaleDistance(g) || mutated
	mutated = o.AddAction(g) || mutated
	mutated = o.RemoveAction(g) || mutated
	mutated = o.SwapRandomAction(g) || mutated
	return mutated
}

// MutatePool batch-mutates every genome of a pool, counting into the
// run state
func (o *Mutator) MutatePool(pool Pool, st *RunState) {
	for _, g := range pool {
		if o.MutateGen(g) {
			st.MutaCount++
		}
	}
}

// ClearZeroActions deletes every zero-action from every genome. Applied
// twice in a row it removes nothing further.
func ClearZeroActions(pool Pool, resolution float64) {
	for _, g := range pool {
		kept := g.Actions[:0]
		removed := false
		for _, a := range g.Actions {
			if a.IsZero(resolution) {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if removed {
			g.Actions = kept
			g.markStale()
		}
	}
}

// maybeClearZeros prunes on the configured generation interval
func maybeClearZeros(pool Pool, conf *Config, st *RunState) {
	if conf.ClearZeros > 0 && st.CurrentIter%conf.ClearZeros == 0 {
		ClearZeroActions(pool, conf.MapResolution)
	}
}
