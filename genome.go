// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Genome is one candidate coverage path encoded as a sequence of actions
type Genome struct {

	// essential
	ID      uint64   // identifier; fresh on creation and on every mutation
	Actions []Action // the encoded path
	Fitness float64  // scalar fitness; valid only when evaluated

	// derived by the simulator
	Waypoints []Pose // pose after each action; Waypoints[0] is the start pose

	// measurement attributes
	FinalTime    float64 // total execution time [s]
	RotationTime float64 // time spent rotating in place [s]
	Coverage     float64 // covered fraction of the free area, within [0,1]
	Traveled     float64 // total travelled distance [cm]
	PathLength   float64 // clean-speed path length [cm]
	Crossings    int     // re-entries into already cleaned cells
	Collisions   int     // obstacle/boundary contacts
	FreeSpace    int     // free-area denominator used during evaluation
	Diversity    float64 // distance to the pool mean feature vector
	Mutated      bool    // touched by a mutation operator this generation
	Dead         bool    // below minimum length or simulation failed

	evaluated bool
}

// idSeq hands out monotone genome identifiers; owned by the engine,
// never global
type idSeq struct {
	next uint64
}

func (o *idSeq) Next() uint64 {
	o.next++
	return o.next
}

// NewGenome builds a genome around the given action sequence
func NewGenome(id uint64, actions []Action) *Genome {
	return &Genome{ID: id, Actions: actions}
}

// Append adds one action to the end of the sequence
func (o *Genome) Append(a Action) {
	o.Actions = append(o.Actions, a)
	o.markStale()
}

// Delete removes the action at index i
func (o *Genome) Delete(i int) {
	if i < 0 || i >= len(o.Actions) {
		chk.Panic("index %d is outside the action sequence of length %d", i, len(o.Actions))
	}
	o.Actions = append(o.Actions[:i], o.Actions[i+1:]...)
	o.markStale()
}

// Splice replaces the half-open range [lo, hi) with the given sequence
func (o *Genome) Splice(lo, hi int, repl []Action) {
	if lo < 0 || hi < lo || hi > len(o.Actions) {
		chk.Panic("splice range [%d, %d) is invalid for %d actions", lo, hi, len(o.Actions))
	}
	out := make([]Action, 0, lo+len(repl)+len(o.Actions)-hi)
	out = append(out, o.Actions[:lo]...)
	out = append(out, repl...)
	out = append(out, o.Actions[hi:]...)
	o.Actions = out
	o.markStale()
}

// Len returns the number of actions
func (o *Genome) Len() int {
	return len(o.Actions)
}

// Evaluated tells whether the measurement attributes are current
func (o *Genome) Evaluated() bool {
	return o.evaluated
}

// markStale invalidates the measurement attributes after any edit of
// the action sequence
func (o *Genome) markStale() {
	o.evaluated = false
}

// Clone returns a deep copy sharing no slices with the original
func (o *Genome) Clone() *Genome {
	c := *o
	c.Actions = make([]Action, len(o.Actions))
	copy(c.Actions, o.Actions)
	if o.Waypoints != nil {
		c.Waypoints = make([]Pose, len(o.Waypoints))
		copy(c.Waypoints, o.Waypoints)
	}
	return &c
}

// Equal compares two genomes by action content only; identifiers and
// measurements do not participate
func (o *Genome) Equal(b *Genome) bool {
	if len(o.Actions) != len(b.Actions) {
		return false
	}
	for i, a := range o.Actions {
		if a != b.Actions[i] {
			return false
		}
	}
	return true
}

// Hash digests the action sequence; consistent with Equal
func (o *Genome) Hash() uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, a := range o.Actions {
		binary.LittleEndian.PutUint64(b[:], uint64(a.Kind))
		h.Write(b[:])
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(a.Distance))
		h.Write(b[:])
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(a.Angle))
		h.Write(b[:])
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(a.Radius))
		h.Write(b[:])
	}
	return h.Sum64()
}

// Pool holds the current population. Order carries no meaning; the
// driver sorts only where an operator requires it.
type Pool []*Genome

// Len returns the number of genomes
func (o Pool) Len() int { return len(o) }

// Swap swaps two genomes
func (o Pool) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

// Less orders ascending by fitness; ties go to the longer genome first
// so that the better (shorter) one ranks higher, then to the higher id
func (o Pool) Less(i, j int) bool {
	if o[i].Fitness != o[j].Fitness {
		return o[i].Fitness < o[j].Fitness
	}
	if o[i].Len() != o[j].Len() {
		return o[i].Len() > o[j].Len()
	}
	return o[i].ID > o[j].ID
}

// Sort sorts ascending by fitness (worst first, best last)
func (o Pool) Sort() {
	sort.Stable(o)
}

// Best returns the fittest genome; ties broken by shorter action count,
// then lower id. Returns nil for an empty pool.
func (o Pool) Best() *Genome {
	var best *Genome
	for _, g := range o {
		if best == nil || betterThan(g, best) {
			best = g
		}
	}
	return best
}

// betterThan applies the fitness order with the tie-break rules
func betterThan(a, b *Genome) bool {
	if a.Fitness != b.Fitness {
		return a.Fitness > b.Fitness
	}
	if a.Len() != b.Len() {
		return a.Len() < b.Len()
	}
	return a.ID < b.ID
}

// Clone deep-copies the whole pool
func (o Pool) Clone() Pool {
	out := make(Pool, len(o))
	for i, g := range o {
		out[i] = g.Clone()
	}
	return out
}
