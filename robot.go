// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

// Measurement is what one simulated execution of an action sequence
// reports back to the engine
type Measurement struct {
	FinalTime     float64 // total execution time [s]
	RotationTime  float64 // in-place rotation time [s]
	Traveled      float64 // total travelled distance [cm]
	PathLength    float64 // clean-speed path length [cm]
	CoverageCells int     // distinct free cells visited at clean-speed
	Crossings     int     // re-entries into already cleaned cells
	Collisions    int     // obstacle or boundary contacts
	Waypoints     []Pose  // pose after each action, starting at the start pose
}

// Robot abstracts the low-level geometric simulator. The engine owns
// exactly one instance per worker and calls it single-threaded;
// implementations keep the visited grid as internal state and must not
// be shared between workers.
type Robot interface {

	// EvaluateActions simulates the sequence from the configured start
	// pose and side-effects the internal visited grid
	EvaluateActions(actions []Action) (Measurement, error)

	// FreeArea returns the number of reachable free cells, the
	// denominator of the coverage ratio. reset forces a recount.
	FreeArea(reset bool) int

	// GridSnapshot exposes a named internal grid for logging and
	// visualization; opaque to the engine
	GridSnapshot(name string) [][]float64
}
