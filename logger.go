// Copyright 2020 Gerrit Alberding. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ga

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/io"
	"github.com/rs/zerolog"
)

// csvHeader is the exact legacy column set; BestPathLen appears twice,
// kept verbatim for compatibility with existing tooling
const csvHeader = "Iteration,FitAvg,FitMax,FitMin,TimeAvg,TimeMax,TimeMin," +
	"CovAvg,CovMax,CovMin,AngleAvg,AngleMax,AngleMin," +
	"ObjCountAvg,ObjCountMax,ObjCountMin,PathLenAvg,PathLenMax,PathLenMin," +
	"AcLenAvg,AcLenMax,AcLenMin,ZeroAcPercent,DGens," +
	"BestTime,BestCov,BestAngle,BestLen,BestPathLen,BestDiv,BestObj,BestCross,BestTraveled,BestPathLen," +
	"DivMean,DivStd,DivMax,DivMin,PopFilled,PopSize,CrossFailed,MutaCount,Duration\n"

// csvRow renders values the way the legacy logger did: %v fields
// joined by commas
func csvRow(vals ...interface{}) string {
	var b bytes.Buffer
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		io.Ff(&b, "%v", v)
	}
	b.WriteByte('\n')
	return b.String()
}

// runLogger buffers the per-generation CSV and appends it to disk at
// snapshot boundaries and at run end. A failed write is reported once
// through zerolog and then suppressed; it never terminates the run.
type runLogger struct {
	dir    string
	name   string
	buf    bytes.Buffer
	failed bool
	zlog   zerolog.Logger
}

func newRunLogger(dir, name string, zlog zerolog.Logger) *runLogger {
	return &runLogger{dir: dir, name: name, zlog: zlog}
}

// logGeneration appends one CSV row for the current generation
func (o *runLogger) logGeneration(st *RunState, durationMs int64) {
	if o.name == "" {
		return
	}
	if st.CurrentIter == 0 {
		o.buf.WriteString(csvHeader)
	}
	b := &st.Best
	o.buf.WriteString(csvRow(
		st.CurrentIter,
		st.FitAvg, st.FitMax, st.FitMin,
		st.TimeAvg, st.TimeMax, st.TimeMin,
		st.CovAvg, st.CovMax, st.CovMin,
		st.AngleAvg, st.AngleMax, st.AngleMin,
		st.ObjAvg, st.ObjMax, st.ObjMin,
		st.PathAvg, st.PathMax, st.PathMin,
		st.AcLenAvg, st.AcLenMax, st.AcLenMin,
		st.ZeroActionPercent,
		st.DeadGens,
		b.FinalTime, b.Coverage, b.RotationTime, len(b.Actions), b.PathLength,
		b.Diversity, b.Collisions, b.Crossings, b.Traveled, b.PathLength,
		st.DivMean, st.DivStd, st.DivMax, st.DivMin,
		st.PopFilled, st.PopSize, st.CrossFailed, st.MutaCount,
		durationMs,
	))
}

// flush appends the buffered rows to the log file and clears the
// buffer
func (o *runLogger) flush() {
	if o.buf.Len() == 0 || o.name == "" {
		return
	}
	if err := appendFile(o.dir, o.name, o.buf.Bytes()); err != nil {
		if !o.failed {
			o.zlog.Warn().Err(err).Str("dir", o.dir).Str("file", o.name).
				Msg("log write failed; further IO errors suppressed")
			o.failed = true
		}
	}
	o.buf.Reset()
}

// redirect points the logger at the subdirectory sub of the current log
// directory, beside the previous run's log files (retrain mode)
func (o *runLogger) redirect(sub string) {
	o.dir = filepath.Join(o.dir, sub)
}

// appendFile creates dir/name on first use and appends afterwards
func appendFile(dir, name string, b []byte) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(b)
	return err
}
