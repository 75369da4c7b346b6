package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/cam"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures a preview camera. Positions are given in the bi-unit
// cube the scene is scaled into.
type View struct {
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersampling factor used for antialiasing.
	Scale int
	// Fovy is the vertical field of view in degrees.
	Fovy float64
	// Eye is the camera position, LookAt the view center and Up the up vector.
	Eye, LookAt, Up r3.Vec
	Near, Far       float64
}

// DefaultView looks at the scene from above the front right corner.
func DefaultView() View {
	return View{
		Width:  1024,
		Height: 768,
		Scale:  2,
		Fovy:   30,
		Eye:    r3.Vec{X: 3, Y: -4, Z: 3},
		Up:     r3.Vec{Z: 1},
		Near:   1,
		Far:    20,
	}
}

// Preview renders the model shaded and the tool paths as lines on top of it.
// Either may be empty but not both.
func Preview(m *geom.Model, paths []cam.Path, view View) (image.Image, error) {
	scene := fauxgl.NewEmptyMesh()
	if m != nil {
		tris := make([]*fauxgl.Triangle, 0, m.Len())
		for _, t := range m.Triangles() {
			// fauxgl expects counter clockwise faces.
			tris = append(tris, fauxgl.NewTriangleForPoints(toFaux(t.P1), toFaux(t.P3), toFaux(t.P2)))
		}
		scene.Add(fauxgl.NewTriangleMesh(tris))
	}
	var lines []*fauxgl.Line
	for _, p := range paths {
		for i := 1; i < len(p.Points); i++ {
			lines = append(lines, fauxgl.NewLineForPoints(toFaux(p.Points[i-1]), toFaux(p.Points[i])))
		}
		if p.Closed && len(p.Points) > 2 {
			lines = append(lines, fauxgl.NewLineForPoints(toFaux(p.Last()), toFaux(p.Points[0])))
		}
	}
	scene.Add(fauxgl.NewLineMesh(lines))
	if len(scene.Triangles) == 0 && len(scene.Lines) == 0 {
		return nil, errors.New("nothing to preview")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview image has no area")
	}
	if view.Scale < 1 {
		view.Scale = 1
	}
	// fit scene in a bi-unit cube centered at the origin
	scene.BiUnitCube()

	var (
		eye    = toFaux(view.Eye)
		center = toFaux(view.LookAt)
		up     = toFaux(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	context := fauxgl.NewContext(view.Width*view.Scale, view.Height*view.Scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)

	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor("#468966")
	context.Shader = shader
	context.DrawTriangles(scene.Triangles)

	context.Shader = fauxgl.NewSolidColorShader(matrix, fauxgl.HexColor("#B64926"))
	context.LineWidth = float64(view.Scale)
	context.DepthBias = -1e-4
	context.DrawLines(scene.Lines)

	// downsample image for antialiasing
	img := context.Image()
	img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	return img, nil
}

// SavePreview renders a preview and writes it as a PNG file.
func SavePreview(path string, m *geom.Model, paths []cam.Path, view View) error {
	img, err := Preview(m, paths, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func toFaux(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
