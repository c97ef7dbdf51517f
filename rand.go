// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rand is the single random source of one search run. Every stochastic
// operator draws from it in a deterministic order, so a given
// (config, seed, map) triple reproduces bit-for-bit.
type Rand struct {
	seed  uint64
	src   *rand.Rand
	dist  distuv.Normal // distance magnitudes
	angle distuv.Normal // angle offsets
}

// NewRand creates the engine random source with the configured
// Gaussian parameters
func NewRand(conf *Config) *Rand {
	src := rand.New(rand.NewSource(conf.Seed))
	return &Rand{
		seed:  conf.Seed,
		src:   src,
		dist:  distuv.Normal{Mu: conf.DistMu, Sigma: conf.DistDev, Src: src},
		angle: distuv.Normal{Mu: conf.AngleMu, Sigma: conf.AngleDev, Src: src},
	}
}

// Float64 draws from [0, 1)
func (o *Rand) Float64() float64 {
	return o.src.Float64()
}

// Intn draws from [0, n)
func (o *Rand) Intn(n int) int {
	return o.src.Intn(n)
}

// Shuffle permutes n elements through the given swap function
func (o *Rand) Shuffle(n int, swap func(i, j int)) {
	o.src.Shuffle(n, swap)
}

// FlipCoin decides an event with the given probability
func (o *Rand) FlipCoin(p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return o.src.Float64() < p
}

// NormalDistance draws one distance magnitude from N(distMu, distDev)
func (o *Rand) NormalDistance() float64 {
	return o.dist.Rand()
}

// NormalAngle draws one angle from N(angleMu, angleDev)
func (o *Rand) NormalAngle() float64 {
	return o.angle.Rand()
}

// Normal draws from an arbitrary Gaussian using the same source
func (o *Rand) Normal(mu, sigma float64) float64 {
	n := distuv.Normal{Mu: mu, Sigma: sigma, Src: o.src}
	return n.Rand()
}

// Child derives an independent stream for worker i. The split rule is
// fixed: child i is seeded with splitmix64(seed, i+1), so a partitioned
// run stays reproducible.
func (o *Rand) Child(i uint64) *Rand {
	child := *o
	src := rand.New(rand.NewSource(splitmix64(o.seed, i+1)))
	child.src = src
	child.dist.Src = src
	child.angle.Src = src
	return &child
}

// splitmix64 mixes a seed with a stream index
func splitmix64(seed, i uint64) uint64 {
	z := seed + i*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
