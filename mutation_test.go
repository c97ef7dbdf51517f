// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"math"
	"testing"
)

func newMutator(conf *Config) *Mutator {
	return NewMutator(conf, NewRand(conf), &idSeq{})
}

// property: the angle offset touches only angle fields
func TestAddRandomAngleOffsetLocality(t *testing.T) {
	conf := testConfig()
	conf.MutaAngleProba = 1
	mut := newMutator(conf)

	g := NewGenome(99, someActions())
	before := g.Clone()

	if !mut.AddRandomAngleOffset(g) {
		t.Fatal("with probability 1 the operator must fire")
	}
	if len(g.Actions) != len(before.Actions) {
		t.Fatal("angle offset must not change the action count")
	}
	for i, a := range g.Actions {
		b := before.Actions[i]
		if a.Kind != b.Kind {
			t.Errorf("action %d: kind changed", i)
		}
		if a.Distance != b.Distance || a.Radius != b.Radius {
			t.Errorf("action %d: distance/radius changed", i)
		}
		if !a.HasAngle() && a.Angle != b.Angle {
			t.Errorf("action %d: angle of a non-angle action changed", i)
		}
	}
	if g.ID == before.ID {
		t.Error("a mutated genome must carry a fresh identifier")
	}
}

func TestOrthogonalAngleOffsetSnaps(t *testing.T) {
	conf := testConfig()
	conf.MutaOrthoProba = 1
	conf.AngleDev = 0 // no jitter: the snap is exact
	mut := newMutator(conf)

	g := NewGenome(1, []Action{{Kind: Rotate, Angle: 77}})
	if !mut.AddOrthogonalAngleOffset(g) {
		t.Fatal("operator must fire")
	}
	if got := g.Actions[0].Angle; got != 90 {
		t.Errorf("snapped angle = %v, want 90", got)
	}
}

func TestOrthogonalAngleOffsetNoTarget(t *testing.T) {
	conf := testConfig()
	conf.MutaOrthoProba = 1
	mut := newMutator(conf)
	g := NewGenome(1, []Action{{Kind: Straight, Distance: 100}})
	if mut.AddOrthogonalAngleOffset(g) {
		t.Error("a genome without angle-bearing actions must pass through")
	}
}

func TestRandomScaleDistanceLocality(t *testing.T) {
	conf := testConfig()
	conf.MutaDistProba = 1
	mut := newMutator(conf)

	g := NewGenome(1, someActions())
	before := g.Clone()
	if !mut.RandomScaleDistance(g) {
		t.Fatal("operator must fire")
	}
	changed := 0
	for i, a := range g.Actions {
		b := before.Actions[i]
		if a.Angle != b.Angle || a.Kind != b.Kind || a.Radius != b.Radius {
			t.Errorf("action %d: non-distance field changed", i)
		}
		if a.Distance != b.Distance {
			changed++
			if a.Distance < 0 {
				t.Errorf("action %d: negative distance %v", i, a.Distance)
			}
		}
	}
	if changed > 1 {
		t.Errorf("exactly one action may change, got %d", changed)
	}
}

func TestRandomReplaceGen(t *testing.T) {
	conf := testConfig()
	conf.MutaReplaceGen = 1
	mut := newMutator(conf)

	g := NewGenome(1, someActions())
	if !mut.RandomReplaceGen(g) {
		t.Fatal("with probability 1 the genome must be replaced")
	}
	if g.Evaluated() {
		t.Error("replacement must stale the measurements")
	}
	if len(g.Actions) < 1 {
		t.Error("replacement must generate at least one action")
	}

	conf.MutaReplaceGen = 0
	if mut.RandomReplaceGen(g) {
		t.Error("with probability 0 the genome must pass through")
	}
}

func TestStructuralOperators(t *testing.T) {
	conf := testConfig()
	conf.MutaAddProba = 1
	conf.MutaRemoveProba = 1
	conf.MutaSwapProba = 1
	mut := newMutator(conf)

	g := NewGenome(1, someActions())
	n := g.Len()
	if !mut.AddAction(g) {
		t.Fatal("add must fire")
	}
	if g.Len() != n+1 {
		t.Errorf("add: len = %d, want %d", g.Len(), n+1)
	}
	if !mut.RemoveAction(g) {
		t.Fatal("remove must fire")
	}
	if g.Len() != n {
		t.Errorf("remove: len = %d, want %d", g.Len(), n)
	}
	if !mut.SwapRandomAction(g) {
		t.Fatal("swap must fire")
	}
	if g.Len() != n {
		t.Errorf("swap: len = %d, want %d", g.Len(), n)
	}

	empty := NewGenome(2, nil)
	if mut.RemoveAction(empty) {
		t.Error("remove on an empty genome must pass through")
	}
	if mut.SwapRandomAction(empty) {
		t.Error("swap on an empty genome must pass through")
	}
}

// property: pruning twice removes nothing further
func TestClearZeroActionsIdempotent(t *testing.T) {
	conf := testConfig()
	pool := Pool{NewGenome(1, []Action{
		{Kind: Straight, Distance: 5},   // zero at res 30
		{Kind: Straight, Distance: 100}, // kept
		{Kind: Rotate, Angle: 0.3},      // zero
		{Kind: Rotate, Angle: 45},       // kept
		{Kind: Curve, Angle: 2, Radius: 10}, // zero
	})}
	ClearZeroActions(pool, conf.MapResolution)
	if got := pool[0].Len(); got != 2 {
		t.Fatalf("after pruning: len = %d, want 2", got)
	}
	ClearZeroActions(pool, conf.MapResolution)
	if got := pool[0].Len(); got != 2 {
		t.Errorf("second prune removed actions: len = %d, want 2", got)
	}
}

func TestMutateGenRespectsZeroProbabilities(t *testing.T) {
	conf := testConfig()
	conf.MutaAngleProba = 0
	conf.MutaOrthoProba = 0
	conf.MutaDistProba = 0
	mut := newMutator(conf)
	g := NewGenome(1, someActions())
	if mut.MutateGen(g) {
		t.Error("with all probabilities zero nothing may mutate")
	}
}

// orthogonal snap keeps the result in the normalized angle range
func TestOrthogonalSnapNormalizes(t *testing.T) {
	conf := testConfig()
	conf.MutaOrthoProba = 1
	conf.AngleDev = 0
	mut := newMutator(conf)
	g := NewGenome(1, []Action{{Kind: Rotate, Angle: -170}})
	if !mut.AddOrthogonalAngleOffset(g) {
		t.Fatal("operator must fire")
	}
	got := g.Actions[0].Angle
	if got <= -180 || got > 180 || math.Mod(got, 90) != 0 {
		t.Errorf("snapped angle = %v, want a normalized multiple of 90", got)
	}
}
