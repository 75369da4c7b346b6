package render

import (
	"errors"
	"image/color"

	"github.com/soypat/cam"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotXY returns a top view plot of the tool paths. Contour polygons, if
// given, are drawn underneath in gray.
func PlotXY(title string, paths []cam.Path, contour *geom.ContourModel) (*plot.Plot, error) {
	if len(paths) == 0 && (contour == nil || contour.Len() == 0) {
		return nil, errors.New("nothing to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	if contour != nil {
		for _, poly := range contour.Polygons() {
			l, err := plotter.NewLine(xys(poly.Points, poly.Closed))
			if err != nil {
				return nil, err
			}
			l.Color = color.Gray{Y: 160}
			l.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			p.Add(l)
		}
	}
	for i, path := range paths {
		if len(path.Points) == 0 {
			continue
		}
		l, err := plotter.NewLine(xys(path.Points, path.Closed))
		if err != nil {
			return nil, err
		}
		l.Color = plotColor(i)
		p.Add(l)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// SavePlot saves a top view plot of the tool paths to path. The image
// format is chosen by the file extension.
func SavePlot(path, title string, paths []cam.Path, contour *geom.ContourModel) error {
	p, err := PlotXY(title, paths, contour)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func xys(pts []r3.Vec, closed bool) plotter.XYs {
	out := make(plotter.XYs, 0, len(pts)+1)
	for _, pt := range pts {
		out = append(out, plotter.XY{X: pt.X, Y: pt.Y})
	}
	if closed && len(pts) > 2 {
		out = append(out, plotter.XY{X: pts[0].X, Y: pts[0].Y})
	}
	return out
}

var palette = []color.Color{
	color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff},
	color.RGBA{R: 0xb6, G: 0x49, B: 0x26, A: 0xff},
	color.RGBA{R: 0x8e, G: 0x28, B: 0x00, A: 0xff},
	color.RGBA{R: 0x1e, G: 0x5a, B: 0x9c, A: 0xff},
}

func plotColor(i int) color.Color { return palette[i%len(palette)] }
