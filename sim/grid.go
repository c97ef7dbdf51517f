// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim provides the occupancy-grid simulator the engine drives
// through its Robot interface: action rasterization, coverage
// accounting and free-area measurement.
package sim

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Grid is a 2D occupancy map; cell (x, y) addresses column x of row y
type Grid struct {
	cells  [][]uint8 // 0 free, 1 occupied
	width  int
	height int
	res    float64 // cm per cell
}

// NewGrid allocates an all-free grid
func NewGrid(width, height int, resolution float64) *Grid {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &Grid{cells: cells, width: width, height: height, res: resolution}
}

// ParseGrid reads an ASCII map: '#' marks an obstacle, '.' and ' '
// free space. Lines may differ in length; short lines pad with free
// cells.
func ParseGrid(text string, resolution float64) (*Grid, error) {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, errors.New("empty map")
	}
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	g := NewGrid(width, len(lines), resolution)
	for y, l := range lines {
		for x, c := range l {
			if c == '#' {
				g.cells[y][x] = 1
			}
		}
	}
	return g, nil
}

// LoadGrid reads an ASCII map file
func LoadGrid(path string, resolution float64) (*Grid, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read map %q", path)
	}
	return ParseGrid(string(b), resolution)
}

// SetOccupied marks one cell as obstacle
func (o *Grid) SetOccupied(x, y int) {
	if x >= 0 && x < o.width && y >= 0 && y < o.height {
		o.cells[y][x] = 1
	}
}

// Occupied reports obstacles; everything outside the map counts as
// occupied
func (o *Grid) Occupied(x, y int) bool {
	if x < 0 || x >= o.width || y < 0 || y >= o.height {
		return true
	}
	return o.cells[y][x] == 1
}

// Width returns the number of columns
func (o *Grid) Width() int { return o.width }

// Height returns the number of rows
func (o *Grid) Height() int { return o.height }

// Resolution returns the cell size [cm]
func (o *Grid) Resolution() float64 { return o.res }
