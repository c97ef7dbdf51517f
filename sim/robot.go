// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"

	"github.com/pkg/errors"

	ga "github.com/galberding/ros-optimizer"
)

// Params holds the robot properties the simulation needs
type Params struct {
	WidthCM       float64
	HeightCM      float64
	DriveSpeedCMS float64
	CleanSpeedCMS float64
	RotateSpeed   float64 // [deg/s]
}

// DefaultParams mirrors the stock robot configuration
func DefaultParams() Params {
	return Params{
		WidthCM:       1,
		HeightCM:      1,
		DriveSpeedCMS: 50,
		CleanSpeedCMS: 20,
		RotateSpeed:   90,
	}
}

// sampleStep is the rasterization step in cells; half a cell keeps
// 8-connected traces gap-free
const sampleStep = 0.5

// Robot executes action sequences on an occupancy grid. It owns its
// visited mask exclusively; one instance must not be shared between
// workers.
type Robot struct {
	grid    *Grid
	params  Params
	start   ga.Pose
	visited [][]uint16
	free    int
	hasFree bool
}

// NewRobot places a robot on the grid. The start cell must be free.
func NewRobot(grid *Grid, params Params, start ga.Pose) (*Robot, error) {
	if grid.Occupied(int(math.Round(start.X)), int(math.Round(start.Y))) {
		return nil, errors.Errorf("start pose (%g, %g) is not on free space", start.X, start.Y)
	}
	o := &Robot{grid: grid, params: params, start: start}
	o.visited = make([][]uint16, grid.height)
	for y := range o.visited {
		o.visited[y] = make([]uint16, grid.width)
	}
	return o, nil
}

// resetVisited clears the coverage mask
func (o *Robot) resetVisited() {
	for y := range o.visited {
		for x := range o.visited[y] {
			o.visited[y][x] = 0
		}
	}
}

// tracer walks the grid in sub-cell samples and accounts coverage
type tracer struct {
	rob   *Robot
	x, y  float64 // position [cells]
	theta float64 // heading [deg]
	lastX int
	lastY int
	m     ga.Measurement
}

// enter accounts one sample position; clean marks coverage
func (t *tracer) enter(clean bool) {
	cx, cy := int(math.Round(t.x)), int(math.Round(t.y))
	if cx == t.lastX && cy == t.lastY {
		return
	}
	t.lastX, t.lastY = cx, cy
	if !clean {
		return
	}
	t.rob.visited[cy][cx]++
	if t.rob.visited[cy][cx] > 1 {
		t.m.Crossings++
	}
}

// blocked tells whether a sample position runs into an obstacle
func (t *tracer) blocked(x, y float64) bool {
	return t.rob.grid.Occupied(int(math.Round(x)), int(math.Round(y)))
}

// straight advances dist cm along the current heading; clean coverage
// at clean speed, plain travel otherwise. Travel stops at the first
// blocked cell and the rest of the action is dropped.
func (t *tracer) straight(dist float64, clean bool) {
	p := t.rob.params
	cells := dist / t.rob.grid.res
	steps := int(math.Ceil(cells / sampleStep))
	if steps < 1 {
		steps = 1
	}
	rad := t.theta * math.Pi / 180
	dx := math.Cos(rad) * cells / float64(steps)
	dy := math.Sin(rad) * cells / float64(steps)
	moved := 0.0
	for i := 0; i < steps; i++ {
		nx, ny := t.x+dx, t.y+dy
		if t.blocked(nx, ny) {
			t.m.Collisions++
			break
		}
		t.x, t.y = nx, ny
		t.enter(clean)
		moved += dist / float64(steps)
	}
	speed := p.DriveSpeedCMS
	if clean {
		speed = p.CleanSpeedCMS
		t.m.PathLength += moved
	}
	t.m.Traveled += moved
	t.m.FinalTime += moved / speed
}

// rotate turns in place; pure rotation-time cost
func (t *tracer) rotate(angle float64) {
	t.theta = ga.NormAngle(t.theta + angle)
	dt := math.Abs(angle) / t.rob.params.RotateSpeed
	t.m.RotationTime += dt
	t.m.FinalTime += dt
}

// curve travels an arc of the given angle and radius; the heading
// follows the arc tangent
func (t *tracer) curve(angle, radius float64, clean bool) {
	p := t.rob.params
	arc := math.Abs(angle) * math.Pi / 180 * radius // [cm]
	cells := arc / t.rob.grid.res
	steps := int(math.Ceil(cells / sampleStep))
	if steps < 1 {
		steps = 1
	}
	dTheta := angle / float64(steps)
	moved := 0.0
	for i := 0; i < steps; i++ {
		t.theta = ga.NormAngle(t.theta + dTheta)
		rad := t.theta * math.Pi / 180
		nx := t.x + math.Cos(rad)*cells/float64(steps)
		ny := t.y + math.Sin(rad)*cells/float64(steps)
		if t.blocked(nx, ny) {
			t.m.Collisions++
			break
		}
		t.x, t.y = nx, ny
		t.enter(clean)
		moved += arc / float64(steps)
	}
	speed := p.DriveSpeedCMS
	if clean {
		speed = p.CleanSpeedCMS
		t.m.PathLength += moved
	}
	t.m.Traveled += moved
	t.m.FinalTime += moved / speed
}

// EvaluateActions simulates the sequence from the start pose and
// rebuilds the visited grid
func (o *Robot) EvaluateActions(actions []ga.Action) (ga.Measurement, error) {
	o.resetVisited()
	t := &tracer{
		rob:   o,
		x:     o.start.X,
		y:     o.start.Y,
		theta: o.start.Theta,
		lastX: -1,
		lastY: -1,
	}
	if t.blocked(t.x, t.y) {
		return ga.Measurement{}, errors.New("start pose is blocked")
	}
	t.enter(true)
	t.m.Waypoints = append(t.m.Waypoints, ga.Pose{X: t.x, Y: t.y, Theta: t.theta})
	for _, a := range actions {
		switch a.Kind {
		case ga.Straight:
			t.straight(a.Distance, true)
		case ga.CStraight:
			t.straight(a.Distance, false)
		case ga.Rotate:
			t.rotate(a.Angle)
		case ga.Curve:
			t.curve(a.Angle, a.Radius, true)
		case ga.CCurve:
			t.curve(a.Angle, a.Radius, false)
		default:
			return ga.Measurement{}, errors.Errorf("unknown action kind %d", a.Kind)
		}
		t.m.Waypoints = append(t.m.Waypoints, ga.Pose{X: t.x, Y: t.y, Theta: t.theta})
	}
	for y := range o.visited {
		for x := range o.visited[y] {
			if o.visited[y][x] > 0 {
				t.m.CoverageCells++
			}
		}
	}
	return t.m, nil
}

// FreeArea counts the free cells reachable from the start pose via
// 4-connected flood fill; the result is cached until reset
func (o *Robot) FreeArea(reset bool) int {
	if o.hasFree && !reset {
		return o.free
	}
	seen := make([][]bool, o.grid.height)
	for y := range seen {
		seen[y] = make([]bool, o.grid.width)
	}
	sx, sy := int(math.Round(o.start.X)), int(math.Round(o.start.Y))
	type cell struct{ x, y int }
	stack := []cell{{sx, sy}}
	count := 0
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.x < 0 || c.x >= o.grid.width || c.y < 0 || c.y >= o.grid.height {
			continue
		}
		if seen[c.y][c.x] || o.grid.Occupied(c.x, c.y) {
			continue
		}
		seen[c.y][c.x] = true
		count++
		stack = append(stack,
			cell{c.x + 1, c.y}, cell{c.x - 1, c.y},
			cell{c.x, c.y + 1}, cell{c.x, c.y - 1})
	}
	o.free = count
	o.hasFree = true
	return o.free
}

// GridSnapshot exposes the visited mask ("map") or the obstacle layer
// ("obstacles") as a float matrix
func (o *Robot) GridSnapshot(name string) [][]float64 {
	out := make([][]float64, o.grid.height)
	for y := range out {
		out[y] = make([]float64, o.grid.width)
		for x := range out[y] {
			if name == "obstacles" {
				out[y][x] = float64(o.grid.cells[y][x])
				continue
			}
			out[y][x] = float64(o.visited[y][x])
		}
	}
	return out
}
