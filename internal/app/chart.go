package app

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/programmap/programmap"
)

const (
	markerSize    float32 = 12
	chartMargin   float32 = 24
	chartLabelPt  float32 = 11
	chartMinWidth float32 = 360
)

// plotBounds is the data range shown on the scatter chart.
type plotBounds struct {
	minX, maxX float64
	minY, maxY float64
}

// dataBounds returns the range of the points, widened by 0.5 on each side
// of a degenerate axis so single values stay centered.
func dataBounds(points []programmap.Point) plotBounds {
	if len(points) == 0 {
		return plotBounds{minX: -0.5, maxX: 0.5, minY: -0.5, maxY: 0.5}
	}
	b := plotBounds{minX: points[0].X, maxX: points[0].X, minY: points[0].Y, maxY: points[0].Y}
	for _, p := range points[1:] {
		b.minX = min(b.minX, p.X)
		b.maxX = max(b.maxX, p.X)
		b.minY = min(b.minY, p.Y)
		b.maxY = max(b.maxY, p.Y)
	}
	if b.maxX == b.minX {
		b.minX -= 0.5
		b.maxX += 0.5
	}
	if b.maxY == b.minY {
		b.minY -= 0.5
		b.maxY += 0.5
	}
	return b
}

// position maps a data point into a canvas of the given size. Y grows upward.
func (b plotBounds) position(p programmap.Point, size fyne.Size) fyne.Position {
	w := max(size.Width-2*chartMargin, 0)
	h := max(size.Height-2*chartMargin, 0)
	x := chartMargin + float32((p.X-b.minX)/(b.maxX-b.minX))*w
	y := chartMargin + float32((b.maxY-p.Y)/(b.maxY-b.minY))*h
	return fyne.NewPos(x, y)
}

// overlapOffsets shifts points sharing the same coordinates sideways so each
// marker stays visible.
func overlapOffsets(points []programmap.Point) []float32 {
	seen := make(map[[2]float64]int, len(points))
	out := make([]float32, len(points))
	for i, p := range points {
		key := [2]float64{p.X, p.Y}
		out[i] = float32(seen[key]) * markerSize
		seen[key]++
	}
	return out
}

// scatterLayout places a marker and a name label per point. Objects come in
// pairs: marker then label.
type scatterLayout struct {
	points  []programmap.Point
	bounds  plotBounds
	offsets []float32
}

func newScatterLayout(points []programmap.Point) *scatterLayout {
	return &scatterLayout{points: points, bounds: dataBounds(points), offsets: overlapOffsets(points)}
}

func (l *scatterLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	half := markerSize / 2
	for i, p := range l.points {
		if 2*i+1 >= len(objects) {
			return
		}
		pos := l.bounds.position(p, size).AddXY(l.offsets[i], 0)
		marker := objects[2*i]
		marker.Resize(fyne.NewSize(markerSize, markerSize))
		marker.Move(pos.SubtractXY(half, half))

		label := objects[2*i+1]
		ls := label.MinSize()
		label.Resize(ls)
		label.Move(pos.AddXY(markerSize, -ls.Height/2))
	}
}

func (l *scatterLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(chartMinWidth, chartMinWidth*0.66)
}

// chartHandle owns the canvas objects of one rendered chart.
type chartHandle struct {
	root     *fyne.Container
	released bool
}

// Release detaches every object of the chart. It is safe to call on a nil or
// already released handle.
func (h *chartHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.root.RemoveAll()
	h.released = true
}

// chartView shows at most one chart at a time.
type chartView struct {
	host    *fyne.Container
	current *chartHandle
}

func newChartView() *chartView {
	v := &chartView{host: container.NewStack()}
	v.Show(nil)
	return v
}

// Show releases the current chart before rendering res.
func (v *chartView) Show(res *programmap.Result) {
	v.current.Release()
	v.current = buildChart(res)
	v.host.Objects = []fyne.CanvasObject{v.current.root}
	v.host.Refresh()
}

func buildChart(res *programmap.Result) *chartHandle {
	if res == nil || len(res.Records) == 0 {
		return &chartHandle{root: container.NewCenter(widget.NewLabel("No programs to plot"))}
	}
	points := res.Points()
	objects := make([]fyne.CanvasObject, 0, 2*len(points))
	for _, p := range points {
		marker := canvas.NewCircle(clusterColor(p.Cluster))
		marker.StrokeColor = theme.Color(theme.ColorNameForeground)
		marker.StrokeWidth = 1
		name := canvas.NewText(p.Name, theme.Color(theme.ColorNameForeground))
		name.TextSize = chartLabelPt
		objects = append(objects, marker, name)
	}
	plot := container.New(newScatterLayout(points), objects...)

	frame := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	frame.StrokeColor = theme.Color(theme.ColorNameSeparator)
	frame.StrokeWidth = 1

	xAxis := widget.NewLabelWithStyle(axisCaption("x", res.Projection.XLabel), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	yAxis := widget.NewLabelWithStyle(axisCaption("y", res.Projection.YLabel), fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	root := container.NewBorder(yAxis, xAxis, nil, nil, container.NewStack(frame, plot))
	return &chartHandle{root: root}
}

func axisCaption(axis, label string) string {
	if label == "" {
		return fmt.Sprintf("%s: (none)", axis)
	}
	return fmt.Sprintf("%s: %s", axis, label)
}
