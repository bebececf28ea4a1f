package metrics

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	absColor = color.RGBA{R: 196, G: 78, B: 82, A: 255}
	relColor = color.RGBA{R: 76, G: 114, B: 176, A: 255}
)

const barWidth = vg.Length(18)

// PlotMVCE renders mVCE and RmVCE per model as grouped bars. The image
// format follows the extension of path (png, svg, pdf, ...).
func PlotMVCE(path string, r *MVCEResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("mVCE by model (%s)", r.Band)
	p.Y.Label.Text = "error (%)"

	abs, err := plotter.NewBarChart(plotter.Values(r.MVCE), barWidth)
	if err != nil {
		return fmt.Errorf("mVCE bars: %w", err)
	}
	abs.Color = absColor
	abs.LineStyle.Width = 0
	abs.Offset = -barWidth / 2

	rel, err := plotter.NewBarChart(plotter.Values(r.RMVCE), barWidth)
	if err != nil {
		return fmt.Errorf("RmVCE bars: %w", err)
	}
	rel.Color = relColor
	rel.LineStyle.Width = 0
	rel.Offset = barWidth / 2

	p.Add(abs, rel)
	p.Legend.Add("mVCE", abs)
	p.Legend.Add("RmVCE", rel)
	p.Legend.Top = true
	p.NominalX(r.Models...)

	return save(p, path, len(r.Models))
}

// PlotMCEI renders mCEI per model as bars.
func PlotMCEI(path string, r *MCEIResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("mCEI by model (%s)", r.Band)
	p.Y.Label.Text = "similarity (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	bars, err := plotter.NewBarChart(plotter.Values(r.MCEI), barWidth)
	if err != nil {
		return fmt.Errorf("mCEI bars: %w", err)
	}
	bars.Color = relColor
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(r.Models...)

	return save(p, path, len(r.Models))
}

func save(p *plot.Plot, path string, models int) error {
	width := 4*vg.Inch + vg.Length(models)*barWidth*3
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
