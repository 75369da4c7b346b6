package render_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/cam/form3"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func boxModel(t testing.TB) *geom.Model {
	tris, err := form3.Box(r3.Vec{X: -1, Y: -2, Z: 0}, r3.Vec{X: 3, Y: 2, Z: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	return geom.NewModel(tris...)
}

func TestSTLWriteReadback(t *testing.T) {
	model := boxModel(t)
	var b bytes.Buffer
	err := render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := b.Len(), 84+50*model.Len(); got != want {
		t.Fatalf("got %d bytes. want %d", got, want)
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != model.Len() {
		t.Fatalf("got %d triangles. want %d", got.Len(), model.Len())
	}
	if !got.Bounds().Equals(model.Bounds(), 1e-6) {
		t.Errorf("got bounds %v. want %v", got.Bounds(), model.Bounds())
	}
	for i := range got.Triangles() {
		g, w := got.Triangle(i), model.Triangle(i)
		if r3.Norm(r3.Sub(g.N, w.N)) > 1e-6 {
			t.Errorf("triangle %d: got normal %v. want %v", i, g.N, w.N)
		}
		if r3.Norm(r3.Sub(g.P2, w.P2)) > 1e-6 {
			t.Errorf("triangle %d: got P2 %v. want %v", i, g.P2, w.P2)
		}
	}
}

func TestSTLCreateLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.stl")
	model := boxModel(t)
	if err := render.CreateSTL(path, model); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(84+50*model.Len()) {
		t.Errorf("got file size %d. want %d", fi.Size(), 84+50*model.Len())
	}
	got, err := render.LoadSTL(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != model.Len() {
		t.Errorf("got %d triangles. want %d", got.Len(), model.Len())
	}
}

func TestSTLErrors(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, geom.NewModel()); err == nil {
		t.Error("expected error writing empty model")
	}
	if _, err := render.ReadSTL(bytes.NewReader(make([]byte, 40))); err == nil {
		t.Error("expected error on short header")
	}
	if _, err := render.ReadSTL(bytes.NewReader(make([]byte, 84))); err == nil {
		t.Error("expected error on zero triangles")
	}

	// One triangle with a flipped normal, one degenerate, one truncated.
	b.Reset()
	writeRaw(&b, 3,
		[12]float32{0, 0, -1, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		[12]float32{0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0},
	)
	_, err := render.ReadSTL(&b)
	if err == nil {
		t.Fatal("expected error on truncated file")
	}

	b.Reset()
	writeRaw(&b, 2,
		[12]float32{0, 0, -1, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		[12]float32{0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0},
	)
	m, err := render.ReadSTL(&b)
	if !errors.Is(err, render.ErrNormalMismatch) {
		t.Fatalf("got error %v. want normal mismatch", err)
	}
	if m == nil || m.Len() != 1 {
		t.Fatal("expected model with the single valid triangle")
	}
	if n := m.Triangle(0).N; math.Abs(n.Z+1) > 1e-6 {
		t.Errorf("got normal %v. want stored normal -Z", n)
	}

	b.Reset()
	writeRaw(&b, 1, [12]float32{0, 0, 1, 0, 0, 0, float32(math.NaN()), 0, 0, 0, 1, 0})
	if _, err := render.ReadSTL(&b); err == nil {
		t.Error("expected error on NaN vertex")
	}
}

func writeRaw(b *bytes.Buffer, count uint32, tris ...[12]float32) {
	b.Write(make([]byte, 80))
	binary.Write(b, binary.LittleEndian, count)
	for _, t := range tris {
		binary.Write(b, binary.LittleEndian, t)
		b.Write([]byte{0, 0})
	}
}
