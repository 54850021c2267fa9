package report

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/dpisim/internal/dynamo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	simColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	refColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

type FigureOptions struct {
	WidthIn  float64
	HeightIn float64
	DPI      int
	Title    string
}

func DefaultFigureOptions() FigureOptions {
	return FigureOptions{WidthIn: 8, HeightIn: 6, DPI: 150}
}

// SavePNG writes the figure to path, creating parent directories.
func SavePNG(path string, series *dynamo.Series, opts FigureOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WritePNG(bw, series, opts); err != nil {
		return err
	}
	return bw.Flush()
}

// WritePNG draws response/reference over control signal, sharing the time axis.
func WritePNG(w io.Writer, series *dynamo.Series, opts FigureOptions) error {
	if series.Len() == 0 {
		return fmt.Errorf("plot data invalid")
	}

	top, err := responsePlot(series)
	if err != nil {
		return err
	}
	top.Title.Text = opts.Title
	bottom, err := controlPlot(series)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func responsePlot(series *dynamo.Series) (*plot.Plot, error) {
	p, sc, err := signalPlot(series.Times, series.Y, "Response")
	if err != nil {
		return nil, err
	}

	ref, err := plotter.NewLine(xys(series.Times, series.Ref))
	if err != nil {
		return nil, err
	}
	ref.LineStyle.Color = refColor
	ref.LineStyle.Width = vg.Points(1.5)
	ref.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(ref)
	p.Legend.Add("Simulation", sc)
	p.Legend.Add("Reference", ref)
	p.Legend.Top = false
	return p, nil
}

// controlPlot has no legend.
func controlPlot(series *dynamo.Series) (*plot.Plot, error) {
	p, _, err := signalPlot(series.Times, series.U, "Control signal")
	return p, err
}

func signalPlot(xs, ys []float64, ylabel string) (*plot.Plot, *plotter.Scatter, error) {
	p := plot.New()
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(xys(xs, ys))
	if err != nil {
		return nil, nil, err
	}
	sc.GlyphStyle.Shape = draw.PlusGlyph{}
	sc.GlyphStyle.Radius = vg.Points(2)
	sc.GlyphStyle.Color = simColor
	p.Add(sc)
	return p, sc, nil
}
