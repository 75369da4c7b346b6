package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
// Vertices are counter clockwise seen from outside.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

const stlTriangleSize = 50

// CreateSTL writes the model to a binary STL file at path.
func CreateSTL(path string, m *geom.Model) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fp)
	err = WriteSTL(bw, m)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, m *geom.Model) error {
	if m == nil || m.Len() == 0 {
		return errors.New("empty model")
	}
	header := stlHeader{
		Count: uint32(m.Len()),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var (
		b [stlTriangleSize]byte
		d stlTriangle
	)
	for _, t := range m.Triangles() {
		d.Normal = to3F32(t.N)
		// Flip to the counter clockwise order of the file format.
		d.Vertex1 = to3F32(t.P1)
		d.Vertex2 = to3F32(t.P3)
		d.Vertex3 = to3F32(t.P2)
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// LoadSTL reads a binary STL file. See ReadSTL.
func LoadSTL(path string) (*geom.Model, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadSTL(bufio.NewReader(fp))
}

// ReadSTL reads a binary STL model. Triangles with bad coordinates fail the
// read; degenerate triangles are skipped. Normals stored in the file are
// kept unless they are zero.
//
// A returned error wrapping ErrNormalMismatch comes with the full model:
// stored normals disagreeing with the vertex order are common in exported
// files and the model may still be usable.
func ReadSTL(r io.Reader) (*geom.Model, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf        [stlTriangleSize]byte
		d          stlTriangle
		mismatches int
		m          = geom.NewModel()
	)
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, err)
		}
		d.get(buf[:])
		err := d.validate()
		switch {
		case errors.Is(err, ErrNormalMismatch):
			mismatches++
		case errors.Is(err, errDegenerateTriangle):
			continue
		case err != nil:
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		m.Append(d.toTriangle())
	}
	if mismatches > 0 {
		return m, fmt.Errorf("%d/%d triangles: %w", mismatches, header.Count, ErrNormalMismatch)
	}
	return m, nil
}

// ErrNormalMismatch is returned by ReadSTL when stored normals do not
// match the normals calculated from the triangle vertices.
var ErrNormalMismatch = errors.New("STL normals not approximately equal to normals calculated from vertices")

var errDegenerateTriangle = errors.New("triangle is degenerate")

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errDegenerateTriangle
	}
	if t.Normal == ([3]float32{}) {
		return nil
	}
	calc := t.normalFromVertices()
	if !equalWithin3F32(calc, t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// normalFromVertices returns the right hand normal of the vertices.
func (t stlTriangle) normalFromVertices() [3]float32 {
	v1 := r3.Scale(10, r3From3F32(t.Vertex1))
	v2 := r3.Scale(10, r3From3F32(t.Vertex2))
	v3 := r3.Scale(10, r3From3F32(t.Vertex3))
	n := r3.Unit(r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1)))
	return to3F32(n)
}

// degenerate returns true if two vertices are identical.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (t stlTriangle) toTriangle() geom.Triangle {
	p1, p2, p3 := r3From3F32(t.Vertex1), r3From3F32(t.Vertex3), r3From3F32(t.Vertex2)
	if t.Normal == ([3]float32{}) {
		return geom.NewTriangle(p1, p2, p3)
	}
	return geom.NewTriangleNormal(p1, p2, p3, r3From3F32(t.Normal))
}
