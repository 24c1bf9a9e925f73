package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pidlab/internal/loop"
)

// Series splits samples into process value, setpoint and output series.
func Series(samples []loop.Sample) (pv, sp, out []float64) {
	pv = make([]float64, len(samples))
	sp = make([]float64, len(samples))
	out = make([]float64, len(samples))
	for i, s := range samples {
		pv[i] = s.ProcessValue
		sp[i] = s.Setpoint
		out[i] = s.Output
	}
	return pv, sp, out
}

// Plot draws the tracking chart (process value against setpoint) above
// the controller output chart.
func Plot(samples []loop.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	pv, sp, out := Series(samples)

	var b strings.Builder
	b.WriteString(asciigraph.PlotMany([][]float64{sp, pv},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("process value vs setpoint"),
	))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.Plot(out,
		asciigraph.Height(height/2+1),
		asciigraph.Width(width),
		asciigraph.Caption("controller output"),
	))
	b.WriteString("\n")
	return b.String()
}
