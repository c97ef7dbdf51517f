// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import "math"

// ActionKind identifies one motion primitive
type ActionKind int

// recognized primitives
const (
	Straight  ActionKind = iota // forward travel at clean-speed
	CStraight                   // forward travel at drive-speed (no coverage)
	Rotate                      // in-place rotation
	Curve                       // arc at clean-speed
	CCurve                      // arc at drive-speed
)

// String returns the single-letter tag used by the snapshot serializer
func (k ActionKind) String() string {
	switch k {
	case Straight:
		return "S"
	case CStraight:
		return "D"
	case Rotate:
		return "R"
	case Curve:
		return "C"
	case CCurve:
		return "V"
	}
	return "?"
}

// Action is one discrete motion primitive in a genome
//  Distance -- travel distance [cm]; non-negative; used by Straight and CStraight
//  Angle    -- rotation/arc angle [deg] within (-180, 180]
//  Radius   -- arc radius [cm]; non-negative; used by Curve and CCurve
type Action struct {
	Kind     ActionKind
	Distance float64
	Angle    float64
	Radius   float64
}

// Pose holds a 2D position [cells] and heading [deg]
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// NormAngle wraps an angle into the interval (-180, 180]
func NormAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	}
	if a <= -180 {
		a += 360
	}
	return a
}

// HasAngle tells whether the action carries an angle field
func (a Action) HasAngle() bool {
	return a.Kind == Rotate || a.Kind == Curve || a.Kind == CCurve
}

// HasDistance tells whether the action carries a travel distance
func (a Action) HasDistance() bool {
	return a.Kind == Straight || a.Kind == CStraight
}

// ArcLength returns the travelled length of the action [cm]
func (a Action) ArcLength() float64 {
	switch a.Kind {
	case Straight, CStraight:
		return a.Distance
	case Curve, CCurve:
		return math.Abs(a.Angle) * math.Pi / 180.0 * a.Radius
	}
	return 0
}

// IsZero reports whether the action displaces the robot by less than one
// cell at the given map resolution [cm/cell]. Rotations never displace;
// they count as zero-actions only when the angle itself rounds to zero.
func (a Action) IsZero(resolution float64) bool {
	if a.Kind == Rotate {
		return math.Round(a.Angle) == 0
	}
	return math.Round(a.ArcLength()/resolution) == 0
}
