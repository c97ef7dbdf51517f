// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// genomeFeatures condenses an action sequence into a small vector used
// by the diversity measure: action count, summed travelled length and
// summed absolute angle
func genomeFeatures(g *Genome) [3]float64 {
	var f [3]float64
	f[0] = float64(len(g.Actions))
	for _, a := range g.Actions {
		f[1] += a.ArcLength()
		f[2] += math.Abs(a.Angle)
	}
	return f
}

// updateDiversity writes the per-genome diversity factor (normalized
// euclidean distance to the pool mean feature vector) and the pool
// level mean/std/min/max
func updateDiversity(pool Pool, st *RunState) {
	if len(pool) == 0 {
		st.DivMean, st.DivStd, st.DivMax, st.DivMin = 0, 0, 0, 0
		return
	}
	feats := make([][3]float64, len(pool))
	var mean [3]float64
	for i, g := range pool {
		feats[i] = genomeFeatures(g)
		for k := 0; k < 3; k++ {
			mean[k] += feats[i][k]
		}
	}
	for k := 0; k < 3; k++ {
		mean[k] /= float64(len(pool))
	}
	divs := make([]float64, len(pool))
	for i, g := range pool {
		var d float64
		for k := 0; k < 3; k++ {
			norm := math.Abs(mean[k]) + 1e-15
			e := (feats[i][k] - mean[k]) / norm
			d += e * e
		}
		g.Diversity = math.Sqrt(d)
		divs[i] = g.Diversity
	}
	st.DivMean = stat.Mean(divs, nil)
	st.DivStd = 0
	if len(divs) > 1 {
		st.DivStd = stat.StdDev(divs, nil)
	}
	st.DivMax = floats.Max(divs)
	st.DivMin = floats.Min(divs)
}

// trackPoolFitness fills the avg/max/min triples the logger emits
func trackPoolFitness(pool Pool, st *RunState) {
	st.PopSize = len(pool)
	if len(pool) == 0 {
		return
	}
	n := len(pool)
	fit := make([]float64, n)
	time := make([]float64, n)
	cov := make([]float64, n)
	angle := make([]float64, n)
	obj := make([]float64, n)
	path := make([]float64, n)
	aclen := make([]float64, n)
	for i, g := range pool {
		fit[i] = g.Fitness
		time[i] = g.FinalTime
		cov[i] = g.Coverage
		angle[i] = g.RotationTime
		obj[i] = float64(g.Collisions)
		path[i] = g.PathLength
		aclen[i] = float64(len(g.Actions))
	}
	st.FitAvg, st.FitMax, st.FitMin = avgMaxMin(fit)
	st.TimeAvg, st.TimeMax, st.TimeMin = avgMaxMin(time)
	st.CovAvg, st.CovMax, st.CovMin = avgMaxMin(cov)
	st.AngleAvg, st.AngleMax, st.AngleMin = avgMaxMin(angle)
	st.ObjAvg, st.ObjMax, st.ObjMin = avgMaxMin(obj)
	st.PathAvg, st.PathMax, st.PathMin = avgMaxMin(path)
	st.AcLenAvg, st.AcLenMax, st.AcLenMin = avgMaxMin(aclen)
}

func avgMaxMin(xs []float64) (avg, max, min float64) {
	return stat.Mean(xs, nil), floats.Max(xs), floats.Min(xs)
}

// countDeadGens counts genomes below the minimum length or whose
// simulation failed
func countDeadGens(pool Pool, conf *Config) int {
	n := 0
	for _, g := range pool {
		if g.Dead || len(g.Actions) < conf.MinGenLen {
			n++
		}
	}
	return n
}

// calZeroActionPercent reports the percentage of zero-actions over all
// actions in the pool
func calZeroActionPercent(pool Pool, conf *Config) float64 {
	total, zeros := 0, 0
	for _, g := range pool {
		for _, a := range g.Actions {
			total++
			if a.IsZero(conf.MapResolution) {
				zeros++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(zeros) / float64(total)
}

// getBestGen snapshots the generation best and maintains the
// cross-generation adapter counter
func getBestGen(pool Pool, st *RunState) {
	best := pool.Best()
	if best == nil {
		return
	}
	st.Best = *best.Clone()
	if best.Fitness > st.CrossBestFit || st.CurrentIter == 0 {
		st.CrossBestFit = best.Fitness
		st.CrossAdapter = 0
		return
	}
	st.CrossAdapter++
}
