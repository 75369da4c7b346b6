package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/cam/form3"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func writeBlock(t *testing.T, dir string) string {
	tris, err := form3.Box(r3.Vec{}, r3.Vec{X: 10, Y: 10, Z: 5})
	require.NoError(t, err)
	path := filepath.Join(dir, "block.stl")
	require.NoError(t, render.CreateSTL(path, geom.NewModel(tris...)))
	return path
}

func TestRunDropPoints(t *testing.T) {
	dir := t.TempDir()
	model := writeBlock(t, dir)
	var stdout, stderr bytes.Buffer
	err := run([]string{model, "--radius", "2", "--overlap", "0", "-j", "2"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	paths := strings.Split(strings.TrimSpace(stdout.String()), "\n\n")
	// Line distance 4 over 10mm: 4 lines.
	require.Len(t, paths, 4)
	for _, p := range paths {
		for _, line := range strings.Split(p, "\n") {
			fields := strings.Fields(line)
			require.Len(t, fields, 3, line)
			assert.Equal(t, "5", fields[2], line)
		}
	}
	assert.Contains(t, stderr.String(), "toolpath generated")
}

func TestRunConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	model := writeBlock(t, dir)
	jobPath := filepath.Join(dir, "job.yaml")
	out := filepath.Join(dir, "out.txt")
	job := "tool:\n  radius: 2\nprocess:\n  overlap: 0\n  safety_height: 30\nrun:\n  output: " + out + "\n"
	require.NoError(t, os.WriteFile(jobPath, []byte(job), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"-c", jobPath, "--safety-height", "12", "--moves", model}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Zero(t, stdout.Len(), "output goes to file")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "rapid "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], " 12"), "flag overrides file: %s", lines[0])
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--radius", "-1"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run([]string{"a.stl", "b.stl"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run([]string{"--no-such-flag"}, &stdout, &stderr)
	assert.Error(t, err)

	// Valid job without any model.
	err = run(nil, &stdout, &stderr)
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	err := writeOutput("", &stdout, func(w io.Writer) error {
		_, err := io.WriteString(w, "1 2 3\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "1 2 3\n", stdout.String())

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	err = writeOutput(path, &stdout, func(w io.Writer) error {
		_, err := io.WriteString(w, "4 5 6\n")
		return err
	})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4 5 6\n", string(b))

	// A failing close is reported.
	err = writeOutput(path, &stdout, func(w io.Writer) error {
		return w.(*os.File).Close()
	})
	assert.ErrorIs(t, err, os.ErrClosed)

	err = writeOutput(dir, &stdout, func(io.Writer) error { return nil })
	assert.Error(t, err, "directory is not a writable file")
}
