package report

import (
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpisim/internal/dynamo"
)

type ASCIIOptions struct {
	Width  int
	Height int
}

func DefaultASCIIOptions() ASCIIOptions {
	return ASCIIOptions{Width: 80, Height: 12}
}

// ASCII renders response against reference and the control signal as two graphs.
func ASCII(series *dynamo.Series, opts ASCIIOptions) string {
	if series.Len() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(asciigraph.PlotMany([][]float64{series.Y, series.Ref},
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption("response (green) vs reference (yellow)"),
	))
	sb.WriteString("\n\n")
	sb.WriteString(asciigraph.Plot(series.U,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption("control signal"),
	))
	sb.WriteString("\n")
	return sb.String()
}
