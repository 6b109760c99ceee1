//Package icplot plots distributions of internal coordinates: histograms of
//bonds, angles or dihedrals across a dataset, and Ramachandran-style maps
//of dihedral pairs. It is a diagnostic aid for checking the statistics a
//transform was fit on, and the samples a flow produces.
package icplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram saves a histogram of the given values (for instance, one
// internal coordinate across a dataset) to an image file. The format is
// taken from the file extension, as in gonum/plot.
func Histogram(vals []float64, nbins int, title, xlabel, filename string) error {
	if len(vals) == 0 {
		return fmt.Errorf("icplot.Histogram: no data given")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Counts"
	h, err := plotter.NewHist(plotter.Values(vals), nbins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

// DihedralMap saves a scatter plot of two dihedral series, in degrees, with
// fixed -180 to 180 axes. With backbone phi/psi dihedrals this is a
// Ramachandran plot; any pair of periodic coordinates works.
func DihedralMap(phi, psi []float64, title, filename string) error {
	if phi == nil || psi == nil || len(phi) != len(psi) {
		return fmt.Errorf("icplot.DihedralMap: dihedral series missing or of unequal length")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Phi"
	p.Y.Label.Text = "Psi"
	p.X.Min = -180
	p.X.Max = 180
	p.Y.Min = -180
	p.Y.Max = 180
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(phi))
	for i := range phi {
		pts[i].X = phi[i] * (180 / math.Pi)
		pts[i].Y = psi[i] * (180 / math.Pi)
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}
