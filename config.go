// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// error kinds surfaced by the engine
var (
	// ErrConfigInvalid marks configuration errors; fatal at startup
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrCollapse marks runaway genome growth; fatal, the loop exits cleanly
	ErrCollapse = errors.New("max action sequence length reached")
)

// strategy names recognized by Validate
const (
	ScenarioElitist    = "elitist"
	ScenarioTournament = "tournament"

	SelElitistUniform = "elitist-uniform"
	SelTournament     = "tournament"
	SelRoulette       = "roulette"
	SelRankedRoulette = "ranked-roulette"

	CrossDualPoint          = "dual-point"
	CrossSameStartDualPoint = "same-start-dual-point"

	FitBase           = "base"
	FitRotationBias   = "rotation-bias"
	FitSemiContinuous = "semi-continuous"
	FitPoly           = "poly"
)

// Config holds all run parameters. It is pure input: the engine never
// writes to it; mutable counters live on RunState.
type Config struct {

	// run
	Seed          uint64 `yaml:"seed"`
	MaxIterations int    `yaml:"max_iterations"`
	Scenario      string `yaml:"scenario"`

	// logging and snapshots
	LogDir            string `yaml:"log_dir"`
	LogName           string `yaml:"log_name"`
	TakeSnapshotEvery int    `yaml:"take_snapshot_every"`
	Retrain           bool   `yaml:"retrain"`
	Restore           bool   `yaml:"restore"`
	Snapshot          string `yaml:"snapshot"`

	// population
	InitIndividuals int `yaml:"init_individuals"`
	InitActions     int `yaml:"init_actions"`
	PopMin          int `yaml:"pop_min"`
	MinGenLen       int `yaml:"min_gen_len"`

	// selection
	SelectIndividuals int    `yaml:"select_individuals"`
	SelectKeepBest    int    `yaml:"select_keep_best"`
	TournamentSize    int    `yaml:"tournament_size"`
	SelectionStrategy string `yaml:"selection_strategy"`

	// crossover
	CrossLength         float64 `yaml:"cross_length"`
	CrossoverProba      float64 `yaml:"crossover_proba"`
	CrossoverStrategy   string  `yaml:"crossover_strategy"`
	AdaptCrossoverProba bool    `yaml:"adapt_crossover_proba"`

	// mutation
	MutaReplaceGen  float64 `yaml:"muta_replace_gen"`
	MutaAngleProba  float64 `yaml:"muta_angle_proba"`
	MutaOrthoProba  float64 `yaml:"muta_ortho_proba"`
	MutaDistProba   float64 `yaml:"muta_dist_proba"`
	MutaAddProba    float64 `yaml:"muta_add_proba"`
	MutaRemoveProba float64 `yaml:"muta_remove_proba"`
	MutaSwapProba   float64 `yaml:"muta_swap_proba"`
	DistMu          float64 `yaml:"dist_mu"`
	DistDev         float64 `yaml:"dist_dev"`
	AngleMu         float64 `yaml:"angle_mu"`
	AngleDev        float64 `yaml:"angle_dev"`
	ClearZeros      int     `yaml:"clear_zeros"`

	// fitness
	FitnessStrategy string  `yaml:"fitness_strategy"`
	FitnessWeight   float64 `yaml:"fitness_weight"`
	PoolBias        bool    `yaml:"pool_bias"`

	// map and robot
	MapResolution float64 `yaml:"map_resolution"`
	Start         Pose    `yaml:"start"`
	Ends          []Pose  `yaml:"ends"`
	RobWidth      float64 `yaml:"rob_width_cm"`
	RobHeight     float64 `yaml:"rob_height_cm"`
	DriveSpeed    float64 `yaml:"drive_speed_cm_s"`
	CleanSpeed    float64 `yaml:"clean_speed_cm_s"`

	// evaluation workers; 1 keeps the single-threaded deterministic core
	Workers int `yaml:"workers"`
}

// Default sets default parameters
func (o *Config) Default() {

	// run
	o.Seed = 42
	o.MaxIterations = 1000
	o.Scenario = ScenarioElitist

	// logging
	o.LogDir = "logs"
	o.LogName = "run.log"
	o.TakeSnapshotEvery = 0

	// population
	o.InitIndividuals = 1000
	o.InitActions = 50
	o.PopMin = 25
	o.MinGenLen = 3

	// selection
	o.SelectIndividuals = 25
	o.SelectKeepBest = 10
	o.TournamentSize = 4
	o.SelectionStrategy = SelElitistUniform

	// crossover
	o.CrossLength = 0.4
	o.CrossoverProba = 0.8
	o.CrossoverStrategy = CrossDualPoint

	// mutation
	o.MutaReplaceGen = 0.01
	o.MutaAngleProba = 0.7
	o.MutaOrthoProba = 0.1
	o.MutaDistProba = 0.7
	o.DistMu = 4
	o.DistDev = 0.9
	o.AngleMu = 0
	o.AngleDev = 40
	o.ClearZeros = 0

	// fitness
	o.FitnessStrategy = FitBase
	o.FitnessWeight = 0.5

	// map and robot
	o.MapResolution = 30
	o.RobWidth = 1
	o.RobHeight = 1
	o.DriveSpeed = 50
	o.CleanSpeed = 20

	o.Workers = 1
}

// Read loads configuration from a YAML file on top of the defaults
func (o *Config) Read(path string) error {
	o.Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read configuration file %q", path)
	}
	if err := yaml.Unmarshal(b, o); err != nil {
		return errors.Wrapf(err, "cannot unmarshal configuration file %q", path)
	}
	return nil
}

// Validate checks consistency; any failure is fatal at startup
func (o *Config) Validate() error {
	if o.MaxIterations < 0 {
		return errors.Wrap(ErrConfigInvalid, "max_iterations must not be negative")
	}
	if o.InitIndividuals < 2 {
		return errors.Wrap(ErrConfigInvalid, "init_individuals must be at least 2")
	}
	if o.InitActions < 1 {
		return errors.Wrap(ErrConfigInvalid, "init_actions must be at least 1")
	}
	if o.SelectIndividuals < 2 || o.SelectIndividuals > o.InitIndividuals {
		return errors.Wrap(ErrConfigInvalid, "select_individuals must be within [2, init_individuals]")
	}
	if o.SelectKeepBest < 0 || o.SelectKeepBest > o.SelectIndividuals {
		return errors.Wrap(ErrConfigInvalid, "select_keep_best must be within [0, select_individuals]")
	}
	if o.PopMin < 1 || o.PopMin > o.InitIndividuals {
		return errors.Wrap(ErrConfigInvalid, "pop_min must be within [1, init_individuals]")
	}
	for _, p := range []struct {
		name string
		val  float64
	}{
		{"cross_length", o.CrossLength},
		{"crossover_proba", o.CrossoverProba},
		{"muta_replace_gen", o.MutaReplaceGen},
		{"muta_angle_proba", o.MutaAngleProba},
		{"muta_ortho_proba", o.MutaOrthoProba},
		{"muta_dist_proba", o.MutaDistProba},
		{"muta_add_proba", o.MutaAddProba},
		{"muta_remove_proba", o.MutaRemoveProba},
		{"muta_swap_proba", o.MutaSwapProba},
		{"fitness_weight", o.FitnessWeight},
	} {
		if p.val < 0 || p.val > 1 {
			return errors.Wrapf(ErrConfigInvalid, "%s=%v is outside [0, 1]", p.name, p.val)
		}
	}
	if len(o.Ends) == 0 {
		return errors.Wrap(ErrConfigInvalid, "at least one end pose must be given")
	}
	if o.MapResolution <= 0 {
		return errors.Wrap(ErrConfigInvalid, "map_resolution must be positive")
	}
	if o.DriveSpeed <= 0 || o.CleanSpeed <= 0 {
		return errors.Wrap(ErrConfigInvalid, "robot speeds must be positive")
	}
	switch o.Scenario {
	case ScenarioElitist:
	case ScenarioTournament:
		if o.usesTournament() && o.TournamentSize > o.InitIndividuals {
			return errors.Wrap(ErrConfigInvalid, "Tournament bigger than pool")
		}
	default:
		return errors.Wrapf(ErrConfigInvalid, "unknown scenario %q", o.Scenario)
	}
	switch o.SelectionStrategy {
	case SelElitistUniform, SelTournament, SelRoulette, SelRankedRoulette:
	default:
		return errors.Wrapf(ErrConfigInvalid, "unknown selection_strategy %q", o.SelectionStrategy)
	}
	switch o.CrossoverStrategy {
	case CrossDualPoint, CrossSameStartDualPoint:
	default:
		return errors.Wrapf(ErrConfigInvalid, "unknown crossover_strategy %q", o.CrossoverStrategy)
	}
	switch o.FitnessStrategy {
	case FitBase, FitRotationBias, FitSemiContinuous, FitPoly:
	default:
		return errors.Wrapf(ErrConfigInvalid, "unknown fitness_strategy %q", o.FitnessStrategy)
	}
	if o.Restore && o.Snapshot == "" {
		return errors.Wrap(ErrConfigInvalid, "restore requested without a snapshot file")
	}
	if o.Workers < 0 {
		return errors.Wrap(ErrConfigInvalid, "workers must not be negative")
	}
	return nil
}

// usesTournament tells whether the active selection needs a tournament
func (o *Config) usesTournament() bool {
	return o.Scenario == ScenarioTournament && o.SelectionStrategy == SelTournament
}

// CellArea returns the area of one grid cell [cm²]
func (o *Config) CellArea() float64 {
	return o.MapResolution * o.MapResolution
}

// CleanRate returns the area cleaned per second [cm²/s]
func (o *Config) CleanRate() float64 {
	return o.RobWidth * o.CleanSpeed
}
