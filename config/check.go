package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathgen"
	"github.com/soypat/cam/pathproc"
	"github.com/soypat/cam/spatial"
)

type checkFunc func(job *Job) error

// Validate checks the job in order and returns the first problem found,
// wrapping ErrInvalid.
func (j *Job) Validate() error {
	checkFuncs := []checkFunc{
		checkTool,
		checkStrategy,
		checkGrid,
		checkBounds,
		checkPlacement,
		checkRun,
	}
	for _, checkFunc := range checkFuncs {
		if err := checkFunc(j); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

func checkTool(job *Job) error {
	t := job.Tool
	kind, err := cutter.ParseKind(t.Shape)
	if err != nil {
		return err
	}
	switch {
	case !(t.Radius > 0):
		return errors.New("tool radius must be positive")
	case kind == cutter.KindToroidal && (!(t.MinorRadius > 0) || t.MinorRadius > t.Radius):
		return fmt.Errorf("tool minor radius %g must be in (0, %g]", t.MinorRadius, t.Radius)
	case t.Height < 0:
		return errors.New("tool height must not be negative")
	case t.MaterialAllowance < 0:
		return errors.New("material allowance must not be negative")
	}
	return nil
}

func checkStrategy(job *Job) error {
	st, err := pathgen.ParseStrategy(job.Process.Strategy)
	if err != nil {
		return err
	}
	if job.Process.Processor == "" {
		return nil
	}
	k, err := pathproc.ParseKind(job.Process.Processor)
	if err != nil {
		return err
	}
	return st.CheckProcessor(k)
}

func checkGrid(job *Job) error {
	p := job.Process
	if _, err := motion.ParseDirection(p.Direction); err != nil {
		return err
	}
	if _, err := motion.ParseMillingStyle(p.MillingStyle); err != nil {
		return err
	}
	switch {
	case p.Overlap < 0 || p.Overlap >= 1:
		return fmt.Errorf("overlap %g must be in [0, 1)", p.Overlap)
	case !(p.StepDown > 0):
		return errors.New("step down must be positive")
	case p.Step < 0:
		return errors.New("step must not be negative")
	case p.MaxSkip < 0:
		return errors.New("max skip must not be negative")
	case math.IsNaN(p.EngraveOffset) || math.IsInf(p.EngraveOffset, 0):
		return errors.New("engrave offset must be finite")
	}
	return nil
}

func checkBounds(job *Job) error {
	b := job.Bounds
	kind, err := geom.ParseBoundsKind(b.Kind)
	if err != nil {
		return err
	}
	if kind != geom.BoundsCustom {
		return nil
	}
	for i, axis := range "xyz" {
		if b.Low[i] == b.High[i] && axis != 'z' {
			return fmt.Errorf("custom bounds have no extent along %c", axis)
		}
	}
	return nil
}

func checkPlacement(job *Job) error {
	p := job.Placement
	if !(p.Scale > 0) {
		return fmt.Errorf("placement scale %g must be positive", p.Scale)
	}
	for _, v := range append(p.Shift[:], p.RotateZ) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("placement must be finite")
		}
	}
	return nil
}

func checkRun(job *Job) error {
	r := job.Run
	if r.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if _, err := spatial.ParseKind(r.Index); err != nil {
		return err
	}
	switch strings.ToLower(r.Collider) {
	case "", "triangles", "model":
	default:
		return fmt.Errorf("unknown collider %q", r.Collider)
	}
	if !(r.Precision > 0) {
		return errors.New("collider precision must be positive")
	}
	if _, err := logrus.ParseLevel(r.LogLevel); err != nil {
		return err
	}
	return nil
}
