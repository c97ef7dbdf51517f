// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "github.com/pkg/errors"

// testConfig returns a small, valid configuration for unit tests
func testConfig() *Config {
	conf := new(Config)
	conf.Default()
	conf.Seed = 1
	conf.MaxIterations = 5
	conf.InitIndividuals = 8
	conf.InitActions = 4
	conf.PopMin = 4
	conf.MinGenLen = 1
	conf.SelectIndividuals = 4
	conf.SelectKeepBest = 2
	conf.TournamentSize = 2
	conf.MapResolution = 30
	conf.Ends = []Pose{{X: 5, Y: 9}}
	return conf
}

// stubRobot feeds canned measurements into the fitness strategies
type stubRobot struct {
	m    Measurement
	free int
	err  error
}

func (o *stubRobot) EvaluateActions(actions []Action) (Measurement, error) {
	return o.m, o.err
}

func (o *stubRobot) FreeArea(reset bool) int { return o.free }

func (o *stubRobot) GridSnapshot(name string) [][]float64 { return nil }

var errStubSim = errors.New("simulated failure")
