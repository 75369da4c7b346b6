// Package job turns a validated config.Job into a running path generator.
package job

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam"
	"github.com/soypat/cam/config"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathgen"
	"github.com/soypat/cam/pathproc"
	"github.com/soypat/cam/render"
	"github.com/soypat/cam/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

// Inputs is the geometry a job works on. Engraving needs a Contour, every
// other strategy a Model.
type Inputs struct {
	Model   *geom.Model
	Contour *geom.ContourModel
}

// LoadInputs reads the model and contour files named in the job.
// Normal mismatches in STL files are logged and tolerated.
func LoadInputs(cfg config.Job, log logrus.FieldLogger) (in Inputs, err error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Run.Model != "" {
		in.Model, err = render.LoadSTL(cfg.Run.Model)
		if errors.Is(err, render.ErrNormalMismatch) {
			log.WithError(err).Warn("model normals ignored")
			err = nil
		}
		if err != nil {
			return Inputs{}, fmt.Errorf("loading model: %w", err)
		}
		if !cfg.Placement.Identity() {
			in.Model.Transform(Placement(cfg.Placement))
			log.WithField("bounds", in.Model.Bounds()).Debug("model placed")
		}
	}
	if cfg.Run.Contour != "" {
		in.Contour, err = render.LoadDXF(cfg.Run.Contour)
		if err != nil {
			return Inputs{}, fmt.Errorf("loading contour: %w", err)
		}
	}
	return in, nil
}

// Placement returns the transform described by p.
func Placement(p config.Placement) d3.Transform {
	return d3.Transform{}.
		Scale(r3.Vec{}, r3.Vec{X: p.Scale, Y: p.Scale, Z: p.Scale}).
		RotateZ(r3.Vec{}, cam.DtoR(p.RotateZ)).
		Translate(r3.Vec{X: p.Shift[0], Y: p.Shift[1], Z: p.Shift[2]})
}

// Plan is a job resolved into its components.
type Plan struct {
	Strategy  pathgen.Strategy
	Generator pathgen.Generator
	Processor pathproc.Processor
	Cutter    cutter.Cutter
	// Box is the processing region.
	Box      d3.Box
	Simplify bool
	log      logrus.FieldLogger
}

// Resolve builds the plan for cfg over in. cfg must be valid.
func Resolve(cfg config.Job, in Inputs, log logrus.FieldLogger) (*Plan, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	st, err := pathgen.ParseStrategy(cfg.Process.Strategy)
	if err != nil {
		return nil, err
	}
	proc, err := processor(cfg, st)
	if err != nil {
		return nil, err
	}
	c, err := newCutter(cfg.Tool)
	if err != nil {
		return nil, err
	}
	grid, err := newGrid(cfg)
	if err != nil {
		return nil, err
	}
	bounds, err := newBounds(cfg.Bounds)
	if err != nil {
		return nil, err
	}

	var ref d3.Box
	if st == pathgen.StrategyEngrave {
		if in.Contour == nil || in.Contour.Len() == 0 {
			return nil, errors.New("engrave strategy needs a contour model")
		}
		ref = in.Contour.Bounds()
	} else {
		if in.Model == nil || in.Model.Len() == 0 {
			return nil, fmt.Errorf("%v strategy needs a model", st)
		}
		ref = in.Model.Bounds()
	}
	if in.Model != nil {
		kind, err := spatial.ParseKind(cfg.Run.Index)
		if err != nil {
			return nil, err
		}
		in.Model.SetIndexKind(kind)
	}
	grid.Box = bounds.Resolve(ref)

	plan := &Plan{
		Strategy:  st,
		Processor: proc,
		Cutter:    c,
		Box:       grid.Box,
		Simplify:  cfg.Process.Simplify,
		log:       log,
	}
	switch st {
	case pathgen.StrategyDrop:
		dc := &pathgen.DropCutter{
			Model:        in.Model,
			Cutter:       c,
			Grid:         grid,
			Step:         cfg.Process.Step,
			SafetyHeight: cfg.Process.SafetyHeight,
			Precision:    cfg.Run.Precision,
			Workers:      cfg.Run.Workers,
			Log:          log,
		}
		if strings.EqualFold(cfg.Run.Collider, "model") {
			dc.Physics = pathgen.Serialize(pathgen.ModelCollider{Model: in.Model})
		}
		plan.Generator = dc
	case pathgen.StrategyPush:
		plan.Generator = &pathgen.PushCutter{
			Model:   in.Model,
			Cutter:  c,
			Grid:    grid,
			Workers: cfg.Run.Workers,
			Log:     log,
		}
	case pathgen.StrategyContour:
		plan.Generator = &pathgen.ContourFollow{
			Model:   in.Model,
			Cutter:  c,
			Grid:    grid,
			Workers: cfg.Run.Workers,
			Log:     log,
		}
	case pathgen.StrategyEngrave:
		step := cfg.Process.Step
		if step <= 0 {
			step = grid.LineDistance
		}
		plan.Generator = &pathgen.EngraveCutter{
			Contour:  in.Contour,
			Model:    in.Model,
			Cutter:   c,
			Top:      grid.Box.Max.Z,
			Bottom:   grid.Box.Min.Z,
			StepDown: grid.StepDown,
			Step:     step,
			Offset:   cfg.Process.EngraveOffset,
			Log:      log,
		}
	default:
		return nil, fmt.Errorf("unsupported strategy %v", st)
	}
	return plan, nil
}

// Run generates the toolpaths of the plan.
func (p *Plan) Run(progress cam.ProgressFunc) (cam.Result, error) {
	res, err := p.Generator.Generate(p.Processor, progress)
	if err != nil {
		return res, err
	}
	if p.Simplify {
		before := res.NumPoints()
		for i := range res.Paths {
			cam.SimplifyToolpath(&res.Paths[i])
		}
		p.log.WithFields(logrus.Fields{
			"before": before,
			"after":  res.NumPoints(),
		}).Debug("toolpath simplified")
	}
	return res, nil
}

// Run validates cfg, resolves it over in and generates the toolpaths.
func Run(cfg config.Job, in Inputs, progress cam.ProgressFunc, log logrus.FieldLogger) (cam.Result, error) {
	if err := cfg.Validate(); err != nil {
		return cam.Result{}, err
	}
	plan, err := Resolve(cfg, in, log)
	if err != nil {
		return cam.Result{}, err
	}
	return plan.Run(progress)
}

func processor(cfg config.Job, st pathgen.Strategy) (pathproc.Processor, error) {
	kind := st.Processors()[0]
	if cfg.Process.Processor != "" {
		k, err := pathproc.ParseKind(cfg.Process.Processor)
		if err != nil {
			return nil, err
		}
		if err := st.CheckProcessor(k); err != nil {
			return nil, err
		}
		kind = k
	}
	return pathproc.New(kind, cfg.Process.ZigZag, cfg.LineDistance())
}

func newCutter(t config.Tool) (cutter.Cutter, error) {
	kind, err := cutter.ParseKind(t.Shape)
	if err != nil {
		return nil, err
	}
	c, err := cutter.New(kind, t.Radius, t.MinorRadius, t.Height)
	if err != nil {
		return nil, err
	}
	c.SetRequiredDistance(t.MaterialAllowance)
	return c, nil
}

func newGrid(cfg config.Job) (motion.Grid, error) {
	p := cfg.Process
	dir, err := motion.ParseDirection(p.Direction)
	if err != nil {
		return motion.Grid{}, err
	}
	style, err := motion.ParseMillingStyle(p.MillingStyle)
	if err != nil {
		return motion.Grid{}, err
	}
	var start motion.Corner
	if p.StartMaxX {
		start |= motion.StartMaxX
	}
	if p.StartMaxY {
		start |= motion.StartMaxY
	}
	if p.BottomUp {
		start |= motion.StartBottom
	}
	return motion.Grid{
		LineDistance: cfg.LineDistance(),
		StepDown:     p.StepDown,
		Dir:          dir,
		Style:        style,
		Start:        start,
	}, nil
}

func newBounds(b config.Bounds) (geom.Bounds, error) {
	kind, err := geom.ParseBoundsKind(b.Kind)
	if err != nil {
		return geom.Bounds{}, err
	}
	return geom.Bounds{
		Kind: kind,
		Low:  r3.Vec{X: b.Low[0], Y: b.Low[1], Z: b.Low[2]},
		High: r3.Vec{X: b.High[0], Y: b.High[1], Z: b.High[2]},
	}, nil
}

// WritePoints writes one "x y z" line per point with a blank line
// between paths. Closed paths repeat their first point.
func WritePoints(w io.Writer, paths []cam.Path) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i, p := range paths {
		if i > 0 {
			bw.WriteByte('\n')
		}
		pts := p.Points
		if p.Closed && len(pts) > 2 {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}
		for _, pt := range pts {
			buf = buf[:0]
			buf = strconv.AppendFloat(buf, pt.X, 'f', -1, 64)
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, pt.Y, 'f', -1, 64)
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, pt.Z, 'f', -1, 64)
			buf = append(buf, '\n')
			bw.Write(buf)
		}
	}
	return bw.Flush()
}

// WriteMoves writes the paths as a machine motion sequence, one
// "kind x y z" line per move, retracting to the job's safety height
// between paths further apart than its max skip.
func WriteMoves(w io.Writer, cfg config.Job, paths []cam.Path) error {
	bw := bufio.NewWriter(w)
	for _, m := range cam.PlanMoves(paths, cfg.Process.SafetyHeight, cfg.Process.MaxSkip) {
		fmt.Fprintf(bw, "%s %s %s %s\n", m.Kind,
			strconv.FormatFloat(m.To.X, 'f', -1, 64),
			strconv.FormatFloat(m.To.Y, 'f', -1, 64),
			strconv.FormatFloat(m.To.Z, 'f', -1, 64))
	}
	return bw.Flush()
}
