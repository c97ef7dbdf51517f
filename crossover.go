// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "math"

// CrossoverStrategy combines a breeding pool into offspring. Parents
// are consumed in random-pair order; with probability crossover_proba
// the pair is crossed, otherwise both pass through unchanged. Failures
// (empty parent, degenerate slice) bump CrossFailed and pass the pair
// through.
type CrossoverStrategy interface {
	Name() string
	Cross(parents Pool, out *Pool, conf *Config, st *RunState, rnd *Rand, ids *idSeq)
}

// NewCrossoverStrategy resolves the configured strategy once
func NewCrossoverStrategy(conf *Config) CrossoverStrategy {
	if conf.CrossoverStrategy == CrossSameStartDualPoint {
		return SameStartDualPointCrossover{}
	}
	return DualPointCrossover{}
}

// sliceLen derives the transfer length for a parent of the given size
func sliceLen(size int, st *RunState) int {
	return int(math.Round(st.CrossLength * float64(size)))
}

// mate swaps A[i..i+la) against B[j..j+lb) and emits the two children.
// The exchange is symmetric, so the multiset union of actions over the
// offspring equals the one over the parents.
func mate(a, b *Genome, i, la, j, lb int, out *Pool, ids *idSeq) {
	sliceA := make([]Action, la)
	copy(sliceA, a.Actions[i:i+la])
	sliceB := make([]Action, lb)
	copy(sliceB, b.Actions[j:j+lb])

	child1 := a.Clone()
	child1.Splice(i, i+la, sliceB)
	child1.ID = ids.Next()
	child1.Mutated = false

	child2 := b.Clone()
	child2.Splice(j, j+lb, sliceA)
	child2.ID = ids.Next()
	child2.Mutated = false

	*out = append(*out, child1, child2)
}

// passThrough copies the pair unchanged into the offspring pool
func passThrough(a, b *Genome, out *Pool) {
	*out = append(*out, a.Clone(), b.Clone())
}

// crossPairs drives the shared pair loop; pick decides the cut indices
// for one pair and reports whether they are usable
func crossPairs(parents Pool, out *Pool, conf *Config, st *RunState, rnd *Rand, ids *idSeq,
	pick func(a, b *Genome) (i, la, j, lb int, ok bool)) {

	p := make(Pool, len(parents))
	copy(p, parents)
	rnd.Shuffle(len(p), p.Swap)

	for k := 0; k+1 < len(p); k += 2 {
		a, b := p[k], p[k+1]
		if !rnd.FlipCoin(st.CrossoverProba) {
			passThrough(a, b, out)
			continue
		}
		i, la, j, lb, ok := pick(a, b)
		if !ok {
			st.CrossFailed++
			passThrough(a, b, out)
			continue
		}
		mate(a, b, i, la, j, lb, out, ids)
	}
	if len(p)%2 == 1 {
		last := p[len(p)-1]
		*out = append(*out, last.Clone())
	}
}

// DualPointCrossover cuts an interval of expected length
// cross_length·|parent| out of each parent, start chosen uniformly,
// and exchanges the two slices
type DualPointCrossover struct{}

func (o DualPointCrossover) Name() string { return CrossDualPoint }

func (o DualPointCrossover) Cross(parents Pool, out *Pool, conf *Config, st *RunState, rnd *Rand, ids *idSeq) {
	crossPairs(parents, out, conf, st, rnd, ids, func(a, b *Genome) (int, int, int, int, bool) {
		la := sliceLen(a.Len(), st)
		lb := sliceLen(b.Len(), st)
		if a.Len() == 0 || b.Len() == 0 || la < 1 || lb < 1 {
			return 0, 0, 0, 0, false
		}
		i := rnd.Intn(a.Len() - la + 1)
		j := rnd.Intn(b.Len() - lb + 1)
		return i, la, j, lb, true
	})
}

// SameStartDualPointCrossover shares the cut index between both
// parents, preserving prefix alignment; helpful when the start pose
// dominates convergence
type SameStartDualPointCrossover struct{}

func (o SameStartDualPointCrossover) Name() string { return CrossSameStartDualPoint }

func (o SameStartDualPointCrossover) Cross(parents Pool, out *Pool, conf *Config, st *RunState, rnd *Rand, ids *idSeq) {
	crossPairs(parents, out, conf, st, rnd, ids, func(a, b *Genome) (int, int, int, int, bool) {
		la := sliceLen(a.Len(), st)
		lb := sliceLen(b.Len(), st)
		if a.Len() == 0 || b.Len() == 0 || la < 1 || lb < 1 {
			return 0, 0, 0, 0, false
		}
		span := a.Len() - la
		if b.Len()-lb < span {
			span = b.Len() - lb
		}
		if span < 0 {
			return 0, 0, 0, 0, false
		}
		i := rnd.Intn(span + 1)
		return i, la, i, lb, true
	})
}
