// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/olegiv/learnpath-go/internal/model"
)

// Divergent heatmap endpoints: strong blue for -1, white for 0, strong red
// for +1.
var (
	heatNegative = drawing.Color{R: 33, G: 102, B: 172, A: 255}
	heatNeutral  = drawing.Color{R: 247, G: 247, B: 247, A: 255}
	heatPositive = drawing.Color{R: 178, G: 24, B: 43, A: 255}
)

// CorrelationHeatmap renders the correlation matrix as a colored cell grid
// with value annotations and feature labels. An empty matrix is skipped with
// a warning, matching the soft-failure contract of the analysis step.
func (c *ChartRenderer) CorrelationHeatmap(matrix model.CorrelationMatrix, path string) error {
	if matrix.IsEmpty() {
		c.logger.Warn("no correlation data to visualize")
		return nil
	}

	n := len(matrix.Features)
	size := c.height()

	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("loading chart font: %w", err)
	}

	graph := chart.Chart{
		Title:      "Correlation Matrix of Learning Activities and Grades",
		TitleStyle: chart.Style{FontSize: 14, Font: font},
		Width:      size + 200,
		Height:     size + 100,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 160, Right: 30, Bottom: 40},
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			// Invisible series so the chart has a canvas to draw on.
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeWidth: 0, FillColor: drawing.ColorTransparent},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
			cellW := float64(canvasBox.Width()) / float64(n)
			cellH := float64(canvasBox.Height()) / float64(n)

			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					v := matrix.Values[i][j]
					x0 := canvasBox.Left + int(float64(j)*cellW)
					y0 := canvasBox.Top + int(float64(i)*cellH)
					x1 := canvasBox.Left + int(float64(j+1)*cellW)
					y1 := canvasBox.Top + int(float64(i+1)*cellH)

					r.SetFillColor(heatColor(v))
					r.SetStrokeColor(drawing.ColorWhite)
					r.SetStrokeWidth(1)
					r.MoveTo(x0, y0)
					r.LineTo(x1, y0)
					r.LineTo(x1, y1)
					r.LineTo(x0, y1)
					r.LineTo(x0, y0)
					r.FillStroke()

					// Annotate cells when they are large enough to read.
					if cellW >= 28 {
						label := fmt.Sprintf("%.2f", v)
						r.SetFont(font)
						r.SetFontSize(8)
						r.SetFillColor(annotationColor(v))
						textBox := r.MeasureText(label)
						r.Text(label,
							(x0+x1)/2-textBox.Width()/2,
							(y0+y1)/2+textBox.Height()/2)
					}
				}
			}

			// Row labels on the left, column labels along the bottom.
			r.SetFont(font)
			r.SetFontSize(9)
			r.SetFillColor(drawing.ColorBlack)
			for i, name := range matrix.Features {
				textBox := r.MeasureText(name)
				y := canvasBox.Top + int((float64(i)+0.5)*cellH) + textBox.Height()/2
				r.Text(name, canvasBox.Left-textBox.Width()-6, y)
			}
			r.SetTextRotation(chart.DegreesToRadians(45))
			for j, name := range matrix.Features {
				x := canvasBox.Left + int((float64(j)+0.5)*cellW)
				r.Text(name, x, canvasBox.Bottom+12)
			}
			r.ClearTextRotation()
		},
	}

	return c.render(&graph, path)
}

// heatColor interpolates the divergent palette for a correlation in [-1, 1].
func heatColor(v float64) drawing.Color {
	switch {
	case v < -1:
		v = -1
	case v > 1:
		v = 1
	}
	if v < 0 {
		return lerpColor(heatNeutral, heatNegative, -v)
	}
	return lerpColor(heatNeutral, heatPositive, v)
}

// annotationColor keeps cell labels readable on dark cells.
func annotationColor(v float64) drawing.Color {
	if v > 0.6 || v < -0.6 {
		return drawing.ColorWhite
	}
	return drawing.ColorBlack
}

func lerpColor(from, to drawing.Color, t float64) drawing.Color {
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return drawing.Color{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		A: 255,
	}
}
