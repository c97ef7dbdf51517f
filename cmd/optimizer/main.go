// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command optimizer searches a coverage path on an occupancy grid.
//
//	optimizer -config run.yaml -map map.txt [-v]
//
// Exit codes: 0 normal termination, 1 configuration error, 2 collapse
// guard trip.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	ga "github.com/galberding/ros-optimizer"
	"github.com/galberding/ros-optimizer/sim"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML configuration file")
	mapPath := flag.String("map", "", "ASCII occupancy map ('#' obstacle, '.' free)")
	verbose := flag.Bool("v", false, "enable debug logging")
	progress := flag.Bool("progress", false, "show a progress bar")
	flag.Parse()

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		zlog = zlog.Level(zerolog.DebugLevel)
	} else {
		zlog = zlog.Level(zerolog.InfoLevel)
	}

	conf := new(ga.Config)
	if *configPath == "" {
		zlog.Error().Msg("missing -config")
		return 1
	}
	if err := conf.Read(*configPath); err != nil {
		zlog.Error().Err(err).Msg("cannot load configuration")
		return 1
	}
	if *mapPath == "" {
		zlog.Error().Msg("missing -map")
		return 1
	}

	grid, err := sim.LoadGrid(*mapPath, conf.MapResolution)
	if err != nil {
		zlog.Error().Err(err).Msg("cannot load map")
		return 1
	}
	params := sim.Params{
		WidthCM:       conf.RobWidth,
		HeightCM:      conf.RobHeight,
		DriveSpeedCMS: conf.DriveSpeed,
		CleanSpeedCMS: conf.CleanSpeed,
		RotateSpeed:   90,
	}
	rob, err := sim.NewRobot(grid, params, conf.Start)
	if err != nil {
		zlog.Error().Err(err).Msg("cannot place robot")
		return 1
	}

	opt, err := ga.New(conf, rob, zlog)
	if err != nil {
		zlog.Error().Err(err).Msg("cannot build optimizer")
		if errors.Is(err, ga.ErrConfigInvalid) {
			return 1
		}
		return 1
	}

	if conf.Workers > 1 {
		robs := make([]ga.Robot, conf.Workers)
		for i := range robs {
			r, err := sim.NewRobot(grid, params, conf.Start)
			if err != nil {
				zlog.Error().Err(err).Msg("cannot place worker robot")
				return 1
			}
			robs[i] = r
		}
		opt.SetWorkerRobots(robs)
	}

	if *progress {
		bar := progressbar.Default(int64(conf.MaxIterations), "optimizing")
		opt.OnGeneration = func(st *ga.RunState) {
			_ = bar.Add(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := opt.Run(ctx); err != nil {
		switch {
		case errors.Is(err, ga.ErrCollapse):
			zlog.Error().Err(err).Msg("collapse guard tripped")
			return 2
		case errors.Is(err, ga.ErrConfigInvalid):
			zlog.Error().Err(err).Msg("configuration error")
			return 1
		default:
			zlog.Error().Err(err).Msg("run failed")
			return 1
		}
	}

	best := opt.Best()
	zlog.Info().
		Float64("fitness", best.Fitness).
		Float64("coverage", best.Coverage).
		Float64("time", best.FinalTime).
		Int("actions", len(best.Actions)).
		Msg("done")
	return 0
}
