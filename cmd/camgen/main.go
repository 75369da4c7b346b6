// Command camgen generates 3 axis milling toolpaths from an STL model or
// a DXF contour and writes them as plain point lists.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam"
	"github.com/soypat/cam/config"
	"github.com/soypat/cam/job"
	"github.com/soypat/cam/render"
	flag "github.com/spf13/pflag"
)

type mainOptions struct {
	ConfigPath string
	Moves      bool
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var options mainOptions
	cfg, err := baseConfig(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("camgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n    camgen [options] [model.stl | contour.dxf]\n")
		fs.PrintDefaults()
	}
	fs.StringVarP(&options.ConfigPath, "config", "c", "", "YAML job file; flags override its values")
	fs.BoolVar(&options.Moves, "moves", false, "write rapid and cut moves instead of bare points")

	// Defaults come from the job file, if any.
	fs.StringVar(&cfg.Tool.Shape, "tool", cfg.Tool.Shape, "tool shape: cylindrical, spherical or toroidal")
	fs.Float64VarP(&cfg.Tool.Radius, "radius", "r", cfg.Tool.Radius, "tool radius")
	fs.Float64Var(&cfg.Tool.MinorRadius, "minor-radius", cfg.Tool.MinorRadius, "corner radius of toroidal tools")
	fs.Float64Var(&cfg.Tool.MaterialAllowance, "allowance", cfg.Tool.MaterialAllowance, "material left on the model")
	fs.StringVarP(&cfg.Process.Strategy, "strategy", "s", cfg.Process.Strategy, "drop, push, contour or engrave")
	fs.StringVarP(&cfg.Process.Processor, "processor", "p", cfg.Process.Processor, "path processor, empty for the strategy default")
	fs.StringVar(&cfg.Process.Direction, "direction", cfg.Process.Direction, "grid direction: x, y or xy")
	fs.StringVar(&cfg.Process.MillingStyle, "style", cfg.Process.MillingStyle, "milling style: ignore, conventional or climb")
	fs.Float64Var(&cfg.Process.Overlap, "overlap", cfg.Process.Overlap, "fraction of the tool diameter shared by adjacent lines")
	fs.Float64Var(&cfg.Process.StepDown, "step-down", cfg.Process.StepDown, "maximum distance between layers")
	fs.Float64Var(&cfg.Process.Step, "step", cfg.Process.Step, "sampling distance along lines, 0 for the line distance")
	fs.Float64Var(&cfg.Process.EngraveOffset, "engrave-offset", cfg.Process.EngraveOffset, "grow engraved outlines and shrink their holes by this distance")
	fs.Float64Var(&cfg.Process.SafetyHeight, "safety-height", cfg.Process.SafetyHeight, "retract height")
	fs.Float64Var(&cfg.Placement.Scale, "scale", cfg.Placement.Scale, "model scale factor")
	fs.Float64Var(&cfg.Placement.RotateZ, "rotate-z", cfg.Placement.RotateZ, "model rotation around Z in degrees")
	fs.IntVarP(&cfg.Run.Workers, "workers", "j", cfg.Run.Workers, "concurrent workers, 0 for all CPUs")
	fs.StringVar(&cfg.Run.Index, "index", cfg.Run.Index, "spatial index: kdtree, bih or linear")
	fs.StringVar(&cfg.Run.Collider, "collider", cfg.Run.Collider, "drop cutter backend: triangles or model")
	fs.StringVar(&cfg.Run.LogLevel, "log-level", cfg.Run.LogLevel, "logging level")
	fs.StringVarP(&cfg.Run.Output, "output", "o", cfg.Run.Output, "output file, stdout if empty")
	fs.StringVar(&cfg.Run.Preview, "preview", cfg.Run.Preview, "write a 3D PNG preview of model and paths")
	fs.StringVar(&cfg.Run.Plot, "plot", cfg.Run.Plot, "write a top view plot of the paths")
	fs.SetInterspersed(true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		input := fs.Arg(0)
		if strings.EqualFold(filepath.Ext(input), ".dxf") {
			cfg.Run.Contour = input
		} else {
			cfg.Run.Model = input
		}
	default:
		fs.Usage()
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := cfg.Logger("camgen", stderr)
	in, err := job.LoadInputs(cfg, log)
	if err != nil {
		return err
	}
	res, err := job.Run(cfg, in, progressLogger(log), log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"paths":    len(res.Paths),
		"points":   res.NumPoints(),
		"warnings": len(res.Warnings),
	}).Info("toolpath generated")

	err = writeOutput(cfg.Run.Output, stdout, func(w io.Writer) error {
		if options.Moves {
			return job.WriteMoves(w, cfg, res.Paths)
		}
		return job.WritePoints(w, res.Paths)
	})
	if err != nil {
		return err
	}
	if cfg.Run.Preview != "" {
		if err := render.SavePreview(cfg.Run.Preview, in.Model, res.Paths, render.DefaultView()); err != nil {
			return err
		}
	}
	if cfg.Run.Plot != "" {
		title := cfg.Process.Strategy + " toolpath"
		if err := render.SavePlot(cfg.Run.Plot, title, res.Paths, in.Contour); err != nil {
			return err
		}
	}
	return nil
}

// baseConfig returns the job file named by the config flag in args, or
// the default job.
func baseConfig(args []string) (config.Job, error) {
	pre := flag.NewFlagSet("camgen", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	pre.ParseErrorsWhitelist.UnknownFlags = true
	path := pre.StringP("config", "c", "", "")
	// Errors are reported by the full parse.
	_ = pre.Parse(args)
	if *path == "" {
		return config.Default(), nil
	}
	return config.Load(*path)
}

// progressLogger logs progress every 10 percent.
func progressLogger(log logrus.FieldLogger) cam.ProgressFunc {
	next := 10.0
	return func(p cam.Progress) bool {
		if p.Percent >= next {
			log.WithField("percent", int(p.Percent)).Debug(p.Text)
			for next <= p.Percent {
				next += 10
			}
		}
		return false
	}
}

// writeOutput calls write on the file at path, or on stdout if path is
// empty. The file's Close error is returned when write succeeded.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	return write(fp)
}
