// Package config reads toolpath jobs from YAML files and validates them
// before any geometry is touched.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Job is a complete toolpath job.
type Job struct {
	Tool      Tool      `yaml:"tool"`
	Process   Process   `yaml:"process"`
	Bounds    Bounds    `yaml:"bounds"`
	Placement Placement `yaml:"placement"`
	Run       Run       `yaml:"run"`
}

// Tool describes the cutter.
type Tool struct {
	// Shape is one of cylindrical, spherical or toroidal. Common names
	// such as flat, ball and bull are accepted.
	Shape  string  `yaml:"shape"`
	Radius float64 `yaml:"radius"`
	// MinorRadius is the corner radius of toroidal tools.
	MinorRadius float64 `yaml:"minor_radius"`
	Height      float64 `yaml:"height"`
	// MaterialAllowance is material left standing on the model.
	MaterialAllowance float64 `yaml:"material_allowance"`
}

// Process selects the strategy and its parameters.
type Process struct {
	// Strategy is one of drop, push, contour or engrave.
	Strategy string `yaml:"strategy"`
	// Processor assembles the paths. Empty selects the strategy default.
	Processor string `yaml:"processor"`
	// Direction is x, y or xy.
	Direction    string `yaml:"direction"`
	MillingStyle string `yaml:"milling_style"`
	// Overlap is the fraction of the tool diameter shared by adjacent
	// lines, in [0,1).
	Overlap  float64 `yaml:"overlap"`
	StepDown float64 `yaml:"step_down"`
	// Step is the sampling distance along lines. Zero uses the line distance.
	Step         float64 `yaml:"step"`
	SafetyHeight float64 `yaml:"safety_height"`
	// ZigZag reverses every other line of the accumulator processor.
	ZigZag bool `yaml:"zigzag"`
	// StartMaxX, StartMaxY and BottomUp choose the start corner.
	StartMaxX bool `yaml:"start_max_x"`
	StartMaxY bool `yaml:"start_max_y"`
	BottomUp  bool `yaml:"bottom_up"`
	// Simplify removes collinear points from the result.
	Simplify bool `yaml:"simplify"`
	// MaxSkip is the horizontal gap between paths bridged without retract.
	MaxSkip float64 `yaml:"max_skip"`
	// EngraveOffset shifts engraved outlines outwards and holes inwards.
	EngraveOffset float64 `yaml:"engrave_offset"`
}

// Bounds is the processing region relative to the model.
type Bounds struct {
	// Kind is relative, fixed or custom.
	Kind string     `yaml:"kind"`
	Low  [3]float64 `yaml:"low,flow"`
	High [3]float64 `yaml:"high,flow"`
}

// Placement moves the model before any path is generated. The model is
// scaled about the origin, then rotated around Z and finally shifted.
type Placement struct {
	Scale float64 `yaml:"scale"`
	// RotateZ is a counter-clockwise rotation in degrees.
	RotateZ float64    `yaml:"rotate_z"`
	Shift   [3]float64 `yaml:"shift,flow"`
}

// Identity reports whether the placement leaves the model untouched.
func (p Placement) Identity() bool {
	return p.Scale == 1 && p.RotateZ == 0 && p.Shift == [3]float64{}
}

// Run holds execution parameters and file locations.
type Run struct {
	// Workers is the amount of concurrent workers. Zero uses all CPUs.
	Workers int `yaml:"workers"`
	// Index is the spatial index kind: kdtree, bih or linear.
	Index string `yaml:"index"`
	// Collider selects the drop cutter backend: triangles or model.
	Collider string `yaml:"collider"`
	// Precision is the height resolution of the collider backend.
	Precision float64 `yaml:"precision"`
	LogLevel  string  `yaml:"log_level"`
	// Model is an STL file; Contour a DXF file for engraving.
	Model   string `yaml:"model"`
	Contour string `yaml:"contour"`
	// Output receives the paths as x y z lines. Empty writes to stdout.
	Output string `yaml:"output"`
	// Preview and Plot optionally receive PNG renders of the result.
	Preview string `yaml:"preview"`
	Plot    string `yaml:"plot"`
}

// Default returns a job with usable values for every optional field.
func Default() Job {
	return Job{
		Tool: Tool{
			Shape:  "cylindrical",
			Radius: 1.5,
			Height: 10,
		},
		Process: Process{
			Strategy:     "drop",
			Direction:    "x",
			MillingStyle: "ignore",
			Overlap:      0.5,
			StepDown:     1,
			SafetyHeight: 25,
			Simplify:     true,
		},
		Bounds: Bounds{
			Kind: "fixed",
		},
		Placement: Placement{
			Scale: 1,
		},
		Run: Run{
			Index:     "kdtree",
			Collider:  "triangles",
			Precision: 0.01,
			LogLevel:  "info",
		},
	}
}

// Parse decodes a YAML job over the defaults and validates it.
func Parse(b []byte) (Job, error) {
	job := Default()
	if err := yaml.UnmarshalStrict(b, &job); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Load reads and parses the YAML job at path.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	return Parse(b)
}

// Marshal encodes the job as YAML.
func (j Job) Marshal() ([]byte, error) {
	return yaml.Marshal(j)
}

// LineDistance returns the distance between adjacent scan lines derived
// from the tool diameter and the overlap.
func (j Job) LineDistance() float64 {
	return 2 * j.Tool.Radius * (1 - j.Process.Overlap)
}
