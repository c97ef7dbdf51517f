// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "golang.org/x/sync/errgroup"

// evaluatePoolParallel fans the fitness step out over the worker
// adapters. Worker w owns the genomes w, w+W, w+2W, ... so the writes
// stay disjoint and the result matches the serial sweep exactly: the
// fitness step draws no randomness.
func evaluatePoolParallel(pool Pool, robs []Robot, fit FitnessStrategy, conf *Config, staleOnly bool) {
	var eg errgroup.Group
	w := len(robs)
	for i := 0; i < w; i++ {
		i := i
		rob := robs[i]
		eg.Go(func() error {
			for j := i; j < len(pool); j += w {
				g := pool[j]
				if staleOnly && g.Evaluated() {
					continue
				}
				fit.EstimateGen(g, rob, conf)
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors; failures mark genomes dead
}
