package web

import "github.com/hpungsan/fittrack/internal/view"

// Chart geometry in SVG user units.
const (
	chartWidth   = 600
	chartHeight  = 180
	chartPadding = 24 // room for day labels below and values above
)

// ChartSVG is a bar chart of the daily series laid out for the template.
type ChartSVG struct {
	Width  int
	Height int
	Bars   []ChartBar
}

// ChartBar is one day's bar.
type ChartBar struct {
	Label  string
	Value  string
	X      float64
	Y      float64
	Width  float64
	Height float64
	TextX  float64
}

// layoutChart scales the series so the largest day fills the plot height.
func layoutChart(c view.Chart) ChartSVG {
	out := ChartSVG{Width: chartWidth, Height: chartHeight}
	n := len(c.Values)
	if n == 0 {
		return out
	}

	peak := 0.0
	for _, v := range c.Values {
		if v > peak {
			peak = v
		}
	}

	plot := float64(chartHeight - 2*chartPadding)
	slot := float64(chartWidth) / float64(n)
	barWidth := slot * 0.7

	out.Bars = make([]ChartBar, 0, n)
	for i, v := range c.Values {
		h := 0.0
		if peak > 0 {
			h = v / peak * plot
		}
		x := float64(i)*slot + (slot-barWidth)/2
		out.Bars = append(out.Bars, ChartBar{
			Label:  c.Labels[i],
			Value:  view.FormatAmount(v),
			X:      x,
			Y:      float64(chartPadding) + plot - h,
			Width:  barWidth,
			Height: h,
			TextX:  x + barWidth/2,
		})
	}
	return out
}
