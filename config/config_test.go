package config_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam/config"
	"github.com/soypat/cam/pathgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushJob = `
tool:
  shape: ball
  radius: 2
process:
  strategy: push
  processor: contour
  direction: xy
  overlap: 0.25
  step_down: 0.5
bounds:
  kind: relative
  low: [0.1, 0.1, 0]
  high: [0.1, 0.1, 0.2]
run:
  workers: 4
  index: bih
  log_level: debug
`

func TestDefaultIsValid(t *testing.T) {
	job := config.Default()
	require.NoError(t, job.Validate())
	assert.InDelta(t, 1.5, job.LineDistance(), 1e-12)
}

func TestParse(t *testing.T) {
	job, err := config.Parse([]byte(pushJob))
	require.NoError(t, err)
	assert.Equal(t, "ball", job.Tool.Shape)
	assert.Equal(t, 2.0, job.Tool.Radius)
	assert.Equal(t, 10.0, job.Tool.Height, "default tool height kept")
	assert.Equal(t, "push", job.Process.Strategy)
	assert.Equal(t, "contour", job.Process.Processor)
	assert.Equal(t, [3]float64{0.1, 0.1, 0.2}, job.Bounds.High)
	assert.Equal(t, 4, job.Run.Workers)
	assert.Equal(t, "bih", job.Run.Index)
	assert.InDelta(t, 3.0, job.LineDistance(), 1e-12)

	// Round trip through Marshal.
	b, err := job.Marshal()
	require.NoError(t, err)
	again, err := config.Parse(b)
	require.NoError(t, err)
	assert.Equal(t, job, again)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pushJob), 0o644))
	job, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "push", job.Process.Strategy)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateFailFast(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(j *config.Job)
		want   string
	}{
		{"radius", func(j *config.Job) { j.Tool.Radius = 0 }, "radius"},
		{"shape", func(j *config.Job) { j.Tool.Shape = "drill" }, "cutter kind"},
		{"minor radius", func(j *config.Job) {
			j.Tool.Shape = "toroidal"
			j.Tool.MinorRadius = 2
		}, "minor radius"},
		{"allowance", func(j *config.Job) { j.Tool.MaterialAllowance = -1 }, "allowance"},
		{"strategy", func(j *config.Job) { j.Process.Strategy = "spiral" }, "strategy"},
		{"processor", func(j *config.Job) { j.Process.Processor = "polygon" }, "unsupported"},
		{"overlap", func(j *config.Job) { j.Process.Overlap = 1 }, "overlap"},
		{"step down", func(j *config.Job) { j.Process.StepDown = 0 }, "step down"},
		{"direction", func(j *config.Job) { j.Process.Direction = "z" }, "direction"},
		{"style", func(j *config.Job) { j.Process.MillingStyle = "sideways" }, "milling style"},
		{"bounds", func(j *config.Job) { j.Bounds.Kind = "loose" }, "bounds"},
		{"custom bounds", func(j *config.Job) { j.Bounds.Kind = "custom" }, "extent"},
		{"engrave offset", func(j *config.Job) { j.Process.EngraveOffset = math.NaN() }, "engrave offset"},
		{"scale", func(j *config.Job) { j.Placement.Scale = 0 }, "scale"},
		{"shift", func(j *config.Job) { j.Placement.Shift[1] = math.Inf(1) }, "finite"},
		{"index", func(j *config.Job) { j.Run.Index = "octree" }, "index"},
		{"collider", func(j *config.Job) { j.Run.Collider = "bullet" }, "collider"},
		{"precision", func(j *config.Job) { j.Run.Precision = 0 }, "precision"},
		{"log level", func(j *config.Job) { j.Run.LogLevel = "loud" }, "loud"},
		{"workers", func(j *config.Job) { j.Run.Workers = -1 }, "workers"},
	} {
		t.Run(test.name, func(t *testing.T) {
			job := config.Default()
			test.modify(&job)
			err := job.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

func TestValidateUnsupportedCombination(t *testing.T) {
	job := config.Default()
	job.Process.Strategy = "contour"
	job.Process.Processor = "zigzag"
	err := job.Validate()
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.True(t, strings.Contains(err.Error(), pathgen.ErrUnsupported.Error()))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := config.Parse([]byte("tool:\n  diameter: 3\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNamedLogger(t *testing.T) {
	var b bytes.Buffer
	job := config.Default()
	job.Run.LogLevel = "warn"
	log := job.Logger("camtest", &b)
	assert.Equal(t, logrus.WarnLevel, log.Level)
	log.Info("hidden")
	log.Warn("shown")
	out := b.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "camtest")
	assert.Contains(t, out, "config_test.go")
}
