package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ozgoose/foilopt/internal/foil"
)

// Scatter renders the dataset as a (xTE, S) scatter with glyph radius
// scaled by maximum lift, and saves it as a PNG.
func Scatter(ds *Dataset, path string) error {
	if ds.Len() == 0 {
		return fmt.Errorf("nothing to plot: dataset is empty")
	}

	pts := make(plotter.XYs, ds.Len())
	for i := range pts {
		pts[i].X = ds.XTE[i]
		pts[i].Y = ds.S[i]
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}

	minLift, maxLift := ds.Lift[0], ds.Lift[0]
	for _, l := range ds.Lift {
		if l < minLift {
			minLift = l
		}
		if l > maxLift {
			maxLift = l
		}
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		r := vg.Points(3)
		if maxLift > minLift {
			r = vg.Points(2 + 6*(ds.Lift[i]-minLift)/(maxLift-minLift))
		}
		return draw.GlyphStyle{
			Color:  plotutil.Color(0),
			Radius: r,
			Shape:  draw.CircleGlyph{},
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Max lift over shape parameters (Cl %.3f to %.3f)", minLift, maxLift)
	p.X.Label.Text = "x_te"
	p.Y.Label.Text = "S"
	p.Add(plotter.NewGrid())
	p.Add(s)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save scatter plot: %w", err)
	}
	return nil
}

// Profile renders the continuous reference curve of one parameter set as
// upper/lower surface line plots and saves it as a PNG.
func Profile(params foil.Params, path string) error {
	curve, err := params.ReferenceCurve()
	if err != nil {
		return err
	}

	lower := make([]foil.Point, len(curve))
	for i, pt := range curve {
		lower[i] = foil.Point{X: pt.X, Y: -pt.Y}
	}
	return ProfilePoints(params.Name(), curve, lower, path)
}

// ProfilePoints renders already-discretized surface points, as read back
// from a coordinate file, without assuming any parameterisation.
func ProfilePoints(name string, upper, lower []foil.Point, path string) error {
	if len(upper) == 0 {
		return fmt.Errorf("nothing to plot: upper surface is empty")
	}

	up := make(plotter.XYs, len(upper))
	for i, pt := range upper {
		up[i].X = pt.X
		up[i].Y = pt.Y
	}
	lo := make(plotter.XYs, len(lower))
	for i, pt := range lower {
		lo[i].X = pt.X
		lo[i].Y = pt.Y
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "x/c"
	p.Y.Label.Text = "y/c"

	if err := plotutil.AddLinePoints(p, "upper", up, "lower", lo); err != nil {
		return fmt.Errorf("failed to add profile curves: %w", err)
	}

	if err := p.Save(10*vg.Inch, 3*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save profile plot: %w", err)
	}
	return nil
}
