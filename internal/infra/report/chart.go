// Package report provides chart generation utilities for reports.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

// ChartGenerator generates text-based charts for reports.
type ChartGenerator struct{}

// NewChartGenerator creates a new chart generator.
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateLatencySparkline plots one backend's latency per run.
func (g *ChartGenerator) GenerateLatencySparkline(records []benchmark.RunRecord, backend benchmark.BackendID, width, height int) string {
	if len(records) == 0 {
		return ""
	}

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Millis(backend)
	}

	return g.generateSparkline(values, width, height, backend.DisplayName()+" (ms)")
}

// generateSparkline generates a sparkline chart for a series of values.
func (g *ChartGenerator) generateSparkline(values []float64, width, height int, label string) string {
	if len(values) == 0 || width < 1 {
		return ""
	}
	if height < 2 {
		height = 2
	}

	min, max := g.minMax(values)
	rangeVal := max - min
	if rangeVal == 0 {
		rangeVal = 1
	}

	sampled := g.downsample(values, width)

	lines := make([][]rune, height)
	for i := range lines {
		lines[i] = []rune(strings.Repeat(" ", len(sampled)))
	}

	for i, val := range sampled {
		normalized := (val - min) / rangeVal
		y := height - 1 - int(normalized*float64(height-1))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		lines[y][i] = '█'
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", label))
	for i, line := range lines {
		labelVal := max - (float64(i)/float64(height-1))*(max-min)
		sb.WriteString(fmt.Sprintf("%8.2f │", labelVal))
		sb.WriteString(string(line))
		sb.WriteString("\n")
	}

	return sb.String()
}

// downsample reduces the number of data points to fit the width.
func (g *ChartGenerator) downsample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	if width == 1 {
		return values[len(values)-1:]
	}

	step := float64(len(values)-1) / float64(width-1)
	result := make([]float64, width)

	for i := 0; i < width; i++ {
		pos := int(float64(i) * step)
		if pos >= len(values) {
			pos = len(values) - 1
		}
		result[i] = values[pos]
	}

	return result
}

// minMax finds the minimum and maximum values in a slice.
func (g *ChartGenerator) minMax(values []float64) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)

	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// Empty or all NaN
	if math.IsInf(min, 1) || math.IsInf(max, -1) {
		return 0, 1
	}

	return min, max
}

// GenerateBarChart generates a simple horizontal bar chart.
func (g *ChartGenerator) GenerateBarChart(labels []string, values []float64, width int) string {
	if len(labels) != len(values) || len(labels) == 0 {
		return ""
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	var sb strings.Builder
	barWidth := width - maxLabelLen - 10
	if barWidth < 10 {
		barWidth = 10
	}

	for i, label := range labels {
		value := values[i]
		barLength := int(value / max * float64(barWidth))
		bar := strings.Repeat("█", barLength)
		sb.WriteString(fmt.Sprintf("%*s │%s%s %.2f\n", maxLabelLen, label, bar, strings.Repeat(" ", barWidth-barLength), value))
	}

	return sb.String()
}
