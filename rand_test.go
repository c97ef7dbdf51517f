// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "testing"

func TestRandDeterministic(t *testing.T) {
	conf := testConfig()
	a := NewRand(conf)
	b := NewRand(conf)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed must yield the same stream")
		}
		if a.NormalAngle() != b.NormalAngle() {
			t.Fatal("same seed must yield the same Gaussian stream")
		}
	}
}

func TestRandSeedsDiffer(t *testing.T) {
	conf := testConfig()
	a := NewRand(conf)
	conf2 := testConfig()
	conf2.Seed = conf.Seed + 1
	b := NewRand(conf2)
	same := true
	for i := 0; i < 16; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	if same {
		t.Error("different seeds should diverge")
	}
}

func TestFlipCoinBounds(t *testing.T) {
	conf := testConfig()
	rnd := NewRand(conf)
	for i := 0; i < 10; i++ {
		if !rnd.FlipCoin(1) {
			t.Fatal("probability 1 must always hit")
		}
		if rnd.FlipCoin(0) {
			t.Fatal("probability 0 must never hit")
		}
	}
}

func TestChildStreamsIndependentAndStable(t *testing.T) {
	conf := testConfig()
	r := NewRand(conf)
	c0a := r.Child(0)
	c1 := r.Child(1)
	if c0a.Float64() == c1.Float64() {
		// one equal draw can happen, two consecutive are suspicious
		if c0a.Float64() == c1.Float64() {
			t.Error("child streams 0 and 1 look identical")
		}
	}
	// the split rule is fixed: re-deriving child 0 replays its stream
	c0b := NewRand(conf).Child(0)
	seq := []float64{c0b.Float64(), c0b.Float64(), c0b.Float64()}
	c0c := NewRand(conf).Child(0)
	for i, want := range seq {
		if got := c0c.Float64(); got != want {
			t.Fatalf("draw %d: child stream not reproducible (%v != %v)", i, got, want)
		}
	}
}
