package render

import (
	"io"
	"os"

	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
	"github.com/soypat/cam/form2/must2"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CircleSegments is the amount of segments DXF circles are split into.
// It must be at least 3.
var CircleSegments = 64

// LoadDXF reads a DXF file. See ReadDXF.
func LoadDXF(path string) (*geom.ContourModel, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadDXF(fp)
}

// ReadDXF builds a contour model from the POLYLINE, LINE and CIRCLE
// entities of a DXF document. Lines sharing endpoints are chained into
// polygons. Other entities are ignored.
func ReadDXF(r io.Reader) (*geom.ContourModel, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, err
	}
	cm := geom.NewContourModel()
	for _, entity := range doc.Entities.Entities {
		switch e := entity.(type) {
		case *entities.Polyline:
			pts := make([]r3.Vec, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				pts = append(pts, fromPoint(v.Location))
			}
			closed := e.Closed
			if n := len(pts); n > 2 && geom.NewLine(pts[0], pts[n-1]).Degenerate() {
				pts, closed = pts[:n-1], true
			}
			if len(pts) > 1 {
				cm.AppendPolygon(geom.NewPolygon(pts, closed))
			}
		case *entities.Line:
			ln := geom.NewLine(fromPoint(e.Start), fromPoint(e.End))
			if !ln.Degenerate() {
				cm.AppendSegment(ln)
			}
		case *entities.Circle:
			if e.Radius > 0 {
				c := fromPoint(e.Center)
				cm.AppendPolygon(must2.Circle(d3.ToR2(c), e.Radius, CircleSegments, c.Z))
			}
		}
	}
	return cm, nil
}

func fromPoint(p core.Point) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}
