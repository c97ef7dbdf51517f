// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

// RunState carries everything the loop mutates while iterating: the
// counters, the adaptive parameters and the per-generation statistics.
// Config stays read-only next to it.
type RunState struct {

	// iteration
	CurrentIter int

	// best tracking
	Best         Genome  // best genome of the current generation (copy)
	CrossBestFit float64 // best fitness seen across all generations
	CrossAdapter int     // generations since the last improvement

	// adaptive parameters, seeded from Config before the first generation
	CrossLength    float64
	CrossoverProba float64

	// per-generation counters
	CrossFailed       int
	MutaCount         int
	PopFilled         int
	DeadGens          int
	ZeroActionPercent float64
	PopSize           int

	// fitness statistics
	FitAvg, FitMax, FitMin          float64
	TimeAvg, TimeMax, TimeMin       float64
	CovAvg, CovMax, CovMin          float64
	AngleAvg, AngleMax, AngleMin    float64
	ObjAvg, ObjMax, ObjMin          float64
	PathAvg, PathMax, PathMin       float64
	AcLenAvg, AcLenMax, AcLenMin    float64
	DivMean, DivStd, DivMax, DivMin float64
}

// NewRunState seeds the mutable state from the configuration
func NewRunState(conf *Config) *RunState {
	return &RunState{
		CrossLength:    conf.CrossLength,
		CrossoverProba: conf.CrossoverProba,
	}
}
