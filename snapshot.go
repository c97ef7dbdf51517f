// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/io"
	"github.com/pkg/errors"
)

// kindFromTag reverses ActionKind.String
func kindFromTag(tag string) (ActionKind, bool) {
	switch tag {
	case "S":
		return Straight, true
	case "D":
		return CStraight, true
	case "R":
		return Rotate, true
	case "C":
		return Curve, true
	case "V":
		return CCurve, true
	}
	return 0, false
}

// MarshalActions renders one genome line: actions separated by
// semicolons, fields by spaces. The format is stable so snapshot and
// restore round-trip byte-for-byte.
func MarshalActions(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = io.Sf("%s %.6f %.6f %.6f", a.Kind.String(), a.Distance, a.Angle, a.Radius)
	}
	return strings.Join(parts, ";")
}

// UnmarshalActions parses one genome line
func UnmarshalActions(line string) ([]Action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	parts := strings.Split(line, ";")
	actions := make([]Action, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) != 4 {
			return nil, errors.Errorf("malformed action %q", p)
		}
		kind, ok := kindFromTag(fields[0])
		if !ok {
			return nil, errors.Errorf("unknown action tag %q", fields[0])
		}
		var vals [3]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "malformed action %q", p)
			}
			vals[i] = v
		}
		actions = append(actions, Action{Kind: kind, Distance: vals[0], Angle: vals[1], Radius: vals[2]})
	}
	return actions, nil
}

// WriteSnapshot stores each genome's action list, one line per genome
func WriteSnapshot(pool Pool, path string) error {
	var b bytes.Buffer
	for _, g := range pool {
		b.WriteString(MarshalActions(g.Actions))
		b.WriteByte('\n')
	}
	return errors.Wrapf(os.WriteFile(path, b.Bytes(), 0o644), "cannot write snapshot %q", path)
}

// ReadSnapshot loads the action lists stored by WriteSnapshot
func ReadSnapshot(path string) ([][]Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read snapshot %q", path)
	}
	defer f.Close()
	var out [][]Action
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		actions, err := UnmarshalActions(sc.Text())
		if err != nil {
			return nil, err
		}
		if actions == nil {
			continue
		}
		out = append(out, actions)
	}
	return out, errors.Wrapf(sc.Err(), "cannot read snapshot %q", path)
}

// performanceCSV renders the per-genome performance table stored next
// to each population snapshot
func performanceCSV(pool Pool) string {
	var b bytes.Buffer
	b.WriteString(csvRow("fitness", "traveledDist", "cross", "fTime", "fCoverage", "#actions"))
	for _, g := range pool {
		b.WriteString(csvRow(g.Fitness, g.Traveled, g.Crossings, g.FinalTime, g.Coverage, len(g.Actions)))
	}
	return b.String()
}
