package pages

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

const (
	chartPadding     float32 = 8
	chartLegendSpace float32 = 22
	chartMarkerSize  float32 = 6
)

var backendColors = map[benchmark.BackendID]color.Color{
	benchmark.BackendSQLServer:  color.NRGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff},
	benchmark.BackendClickHouse: color.NRGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff},
}

// TrendChart is a line chart of both backends' latency per run.
// Run 1 sits at the left edge; the y axis starts at zero.
type TrendChart struct {
	widget.BaseWidget
	records []benchmark.RunRecord
}

// NewTrendChart creates an empty chart.
func NewTrendChart() *TrendChart {
	c := &TrendChart{}
	c.ExtendBaseWidget(c)
	return c
}

// SetRecords replaces the plotted history and redraws.
func (c *TrendChart) SetRecords(records []benchmark.RunRecord) {
	c.records = append([]benchmark.RunRecord(nil), records...)
	c.Refresh()
}

// Records returns the plotted history.
func (c *TrendChart) Records() []benchmark.RunRecord {
	return c.records
}

// CreateRenderer implements fyne.Widget.
func (c *TrendChart) CreateRenderer() fyne.WidgetRenderer {
	r := &trendChartRenderer{
		chart:      c,
		background: canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		empty:      canvas.NewText("No runs yet", theme.Color(theme.ColorNamePlaceHolder)),
	}
	for _, b := range benchmark.Backends {
		label := canvas.NewText("● "+b.DisplayName()+" (ms)", backendColors[b])
		label.TextStyle = fyne.TextStyle{Bold: true}
		r.legend = append(r.legend, label)
	}
	r.rebuild()
	return r
}

type chartSeries struct {
	lines   []*canvas.Line
	markers []*canvas.Circle
}

type trendChartRenderer struct {
	chart      *TrendChart
	background *canvas.Rectangle
	empty      *canvas.Text
	legend     []*canvas.Text
	series     []chartSeries
	objects    []fyne.CanvasObject
}

// rebuild recreates the line and marker objects for the current record count.
func (r *trendChartRenderer) rebuild() {
	n := len(r.chart.records)
	r.empty.Hidden = n > 0

	r.objects = []fyne.CanvasObject{r.background, r.empty}
	for _, l := range r.legend {
		r.objects = append(r.objects, l)
	}

	r.series = make([]chartSeries, len(benchmark.Backends))
	for i, b := range benchmark.Backends {
		col := backendColors[b]
		s := chartSeries{}
		for j := 1; j < n; j++ {
			line := canvas.NewLine(col)
			line.StrokeWidth = 2
			s.lines = append(s.lines, line)
			r.objects = append(r.objects, line)
		}
		for j := 0; j < n; j++ {
			marker := canvas.NewCircle(col)
			s.markers = append(s.markers, marker)
			r.objects = append(r.objects, marker)
		}
		r.series[i] = s
	}
}

func (r *trendChartRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.background.Move(fyne.NewPos(0, 0))

	emptySize := r.empty.MinSize()
	r.empty.Move(fyne.NewPos((size.Width-emptySize.Width)/2, (size.Height-emptySize.Height)/2))

	x := chartPadding
	for _, l := range r.legend {
		l.Move(fyne.NewPos(x, 2))
		x += l.MinSize().Width + 2*chartPadding
	}

	origin := fyne.NewPos(chartPadding, chartLegendSpace)
	area := fyne.NewSize(size.Width-2*chartPadding, size.Height-chartLegendSpace-chartPadding)
	records := r.chart.records
	top := maxMillis(records)

	for i, b := range benchmark.Backends {
		s := r.series[i]
		points := plotPoints(records, b, area, top)
		for j, p := range points {
			p = p.Add(origin)
			if j < len(s.markers) {
				s.markers[j].Resize(fyne.NewSize(chartMarkerSize, chartMarkerSize))
				s.markers[j].Move(p.SubtractXY(chartMarkerSize/2, chartMarkerSize/2))
			}
			if j > 0 && j-1 < len(s.lines) {
				s.lines[j-1].Position1 = points[j-1].Add(origin)
				s.lines[j-1].Position2 = p
			}
		}
	}
}

func (r *trendChartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 180)
}

func (r *trendChartRenderer) Refresh() {
	r.background.FillColor = theme.Color(theme.ColorNameInputBackground)
	r.empty.Color = theme.Color(theme.ColorNamePlaceHolder)
	r.rebuild()
	r.Layout(r.chart.Size())
	for _, o := range r.objects {
		canvas.Refresh(o)
	}
}

func (r *trendChartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *trendChartRenderer) Destroy() {}

// plotPoints maps each run's timing of backend into area. top is the value
// drawn at the upper edge; zero puts every point on the lower edge.
func plotPoints(records []benchmark.RunRecord, backend benchmark.BackendID, area fyne.Size, top float64) []fyne.Position {
	points := make([]fyne.Position, len(records))
	for i, rec := range records {
		x := area.Width / 2
		if len(records) > 1 {
			x = area.Width * float32(i) / float32(len(records)-1)
		}
		y := area.Height
		if top > 0 {
			y = area.Height * float32(1-rec.Millis(backend)/top)
		}
		points[i] = fyne.NewPos(x, y)
	}
	return points
}

func maxMillis(records []benchmark.RunRecord) float64 {
	var top float64
	for _, r := range records {
		for _, b := range benchmark.Backends {
			if v := r.Millis(b); v > top {
				top = v
			}
		}
	}
	return top
}
