package charts

// Renderer stage: draws the wide table as a multi-series line chart and
// writes it as a PNG. The write goes through a temp file so a failed render
// never leaves a truncated image behind.

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"

	"energy-trends/internal/features/generation"
	"energy-trends/internal/infra/fs"
	"energy-trends/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	marginLeft   = 140.0
	marginRight  = 60.0
	marginTop    = 110.0
	marginBottom = 100.0

	titleFontSize  = 34.0
	labelFontSize  = 24.0
	tickFontSize   = 20.0
	legendFontSize = 20.0

	lineWidth   = 2.5
	pointRadius = 3.0

	legendPadding    = 14.0
	legendLineHeight = 28.0
	legendSwatchLen  = 30.0

	maxXTickLabels = 14
	yGridTarget    = 6
)

// palette mirrors the default matplotlib cycle so the chart reads like the
// reference output.
var palette = []color.RGBA{
	{31, 119, 180, 255},  // blue
	{255, 127, 14, 255},  // orange
	{44, 160, 44, 255},   // green
	{214, 39, 40, 255},   // red
	{148, 103, 189, 255}, // purple
	{140, 86, 75, 255},   // brown
	{227, 119, 194, 255}, // pink
	{127, 127, 127, 255}, // gray
}

// Options configures one render.
type Options struct {
	OutputPath  string
	Title       string
	XAxisLabel  string
	YAxisLabel  string
	LegendTitle string
	Width       int
	Height      int
}

// RenderError covers every failure of the render stage, from an unplottable
// table to a filesystem write error.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("render error: %s", e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

// RenderLineChart draws one line per series with data, x = period, y = value.
// Series whose cells are all missing are omitted from the plot and the
// legend; a table with nothing to plot is a *RenderError.
func RenderLineChart(table *generation.WideTable, opts Options) error {
	if table == nil || table.IsEmpty() {
		return &RenderError{Reason: "empty table, nothing to plot"}
	}

	var drawable []string
	for _, series := range table.Series {
		if table.SeriesHasData(series) {
			drawable = append(drawable, series)
		}
	}
	if len(drawable) == 0 {
		return &RenderError{Reason: "all series are empty, nothing to plot"}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1600
	}
	if height <= 0 {
		height = 1000
	}

	maxVal := 0.0
	for _, series := range drawable {
		for _, v := range table.Column(series) {
			if v.Valid && v.Float64 > maxVal {
				maxVal = v.Float64
			}
		}
	}
	if maxVal <= 0 {
		maxVal = 1.0
	}
	yStep := niceStep(maxVal, yGridTarget)
	yMax := math.Ceil(maxVal/yStep) * yStep

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	fontPath := loadFont(dc, tickFontSize)

	plotLeft := marginLeft
	plotRight := float64(width) - marginRight
	plotTop := marginTop
	plotBottom := float64(height) - marginBottom
	plotWidth := plotRight - plotLeft
	plotHeight := plotBottom - plotTop

	// Title and axis labels.
	setFont(dc, fontPath, titleFontSize)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(opts.Title, plotLeft+plotWidth/2, marginTop/2, 0.5, 0.5)

	setFont(dc, fontPath, labelFontSize)
	dc.DrawStringAnchored(opts.XAxisLabel, plotLeft+plotWidth/2, float64(height)-30, 0.5, 0.5)

	dc.Push()
	dc.RotateAbout(-math.Pi/2, 40, plotTop+plotHeight/2)
	dc.DrawStringAnchored(opts.YAxisLabel, 40, plotTop+plotHeight/2, 0.5, 0.5)
	dc.Pop()

	// Axes.
	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.SetDash()
	dc.DrawLine(plotLeft, plotBottom, plotRight, plotBottom)
	dc.Stroke()
	dc.DrawLine(plotLeft, plotTop, plotLeft, plotBottom)
	dc.Stroke()

	// Horizontal grid with y tick labels.
	setFont(dc, fontPath, tickFontSize)
	for yv := 0.0; yv <= yMax+yStep/2; yv += yStep {
		y := plotBottom - (yv/yMax)*plotHeight

		dc.SetColor(color.RGBA{180, 180, 180, 255})
		dc.SetLineWidth(0.5)
		dc.SetDash(6, 4)
		dc.DrawLine(plotLeft, y, plotRight, y)
		dc.Stroke()
		dc.SetDash()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(formatThousands(int64(yv)), plotLeft-12, y, 1.0, 0.5)
	}

	// X positions: one slot per period, evenly spaced by year.
	firstYear := table.Periods[0]
	lastYear := table.Periods[len(table.Periods)-1]
	yearSpan := float64(lastYear - firstYear)
	xFor := func(year int) float64 {
		if yearSpan == 0 {
			return plotLeft + plotWidth/2
		}
		return plotLeft + (float64(year-firstYear)/yearSpan)*plotWidth
	}

	// Vertical grid and year labels, thinned when there are many periods.
	labelEvery := 1
	if len(table.Periods) > maxXTickLabels {
		labelEvery = (len(table.Periods) + maxXTickLabels - 1) / maxXTickLabels
	}
	for i, year := range table.Periods {
		x := xFor(year)

		dc.SetColor(color.RGBA{180, 180, 180, 255})
		dc.SetLineWidth(0.5)
		dc.SetDash(6, 4)
		dc.DrawLine(x, plotTop, x, plotBottom)
		dc.Stroke()
		dc.SetDash()

		if i%labelEvery == 0 || i == len(table.Periods)-1 {
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(strconv.Itoa(year), x, plotBottom+22, 0.5, 0.5)
		}
	}

	// Series lines. A missing cell breaks the polyline, so leading and
	// trailing gaps are simply not drawn.
	for si, series := range drawable {
		col := palette[si%len(palette)]
		dc.SetColor(col)
		dc.SetLineWidth(lineWidth)

		var prevX, prevY float64
		havePrev := false
		for _, year := range table.Periods {
			v := table.Value(year, series)
			if !v.Valid {
				havePrev = false
				continue
			}
			x := xFor(year)
			y := plotBottom - (v.Float64/yMax)*plotHeight
			if havePrev {
				dc.DrawLine(prevX, prevY, x, y)
				dc.Stroke()
			}
			dc.DrawCircle(x, y, pointRadius)
			dc.Fill()
			prevX, prevY = x, y
			havePrev = true
		}
	}

	drawLegend(dc, fontPath, drawable, opts.LegendTitle, plotRight, plotTop)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return &RenderError{Reason: "failed to encode PNG", Err: err}
	}
	if err := fs.WriteFileAtomic(opts.OutputPath, buf.Bytes(), 0644); err != nil {
		return &RenderError{Reason: "failed to write chart file", Err: err}
	}

	fileInfo, err := os.Stat(opts.OutputPath)
	if err != nil {
		return &RenderError{Reason: "failed to stat chart file", Err: err}
	}
	if fileInfo.Size() == 0 {
		os.Remove(opts.OutputPath)
		return &RenderError{Reason: "chart file is empty after rendering"}
	}

	log.LogSuccess("Chart rendered",
		zap.String("filename", opts.OutputPath),
		zap.Int64("fileSize", fileInfo.Size()),
		zap.Int("series", len(drawable)),
		zap.Int("periods", len(table.Periods)))

	return nil
}

func drawLegend(dc *gg.Context, fontPath string, series []string, title string, plotRight, plotTop float64) {
	setFont(dc, fontPath, legendFontSize)

	maxTextWidth, _ := dc.MeasureString(title)
	for _, name := range series {
		if w, _ := dc.MeasureString(name); w > maxTextWidth {
			maxTextWidth = w
		}
	}

	boxWidth := legendSwatchLen + 10 + maxTextWidth + 2*legendPadding
	boxHeight := float64(len(series)+1)*legendLineHeight + 2*legendPadding
	boxX := plotRight - boxWidth - 16
	boxY := plotTop + 16

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(boxX, boxY, boxWidth, boxHeight)
	dc.Fill()
	dc.SetColor(color.RGBA{120, 120, 120, 255})
	dc.SetLineWidth(1)
	dc.DrawRectangle(boxX, boxY, boxWidth, boxHeight)
	dc.Stroke()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, boxX+boxWidth/2, boxY+legendPadding+legendLineHeight/2, 0.5, 0.5)

	for i, name := range series {
		y := boxY + legendPadding + float64(i+1)*legendLineHeight + legendLineHeight/2

		dc.SetColor(palette[i%len(palette)])
		dc.SetLineWidth(lineWidth)
		dc.DrawLine(boxX+legendPadding, y, boxX+legendPadding+legendSwatchLen, y)
		dc.Stroke()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(name, boxX+legendPadding+legendSwatchLen+10, y, 0, 0.5)
	}
}

// fontPaths are probed in order; when none loads, gg's built-in face still
// renders readable (if small) text.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/Library/Fonts/Arial.ttf",
}

func loadFont(dc *gg.Context, size float64) string {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, size); err == nil {
			log.LogDebug("Loaded chart font", zap.String("path", path))
			return path
		}
	}
	log.LogWarn("No chart font found, falling back to built-in face",
		zap.Int("paths_checked", len(fontPaths)))
	return ""
}

func setFont(dc *gg.Context, fontPath string, size float64) {
	if fontPath == "" {
		return
	}
	if err := dc.LoadFontFace(fontPath, size); err != nil {
		log.LogWarn("Failed to reload chart font", zap.String("path", fontPath), zap.Error(err))
	}
}

// niceStep picks a 1/2/5*10^n step so the axis gets about target gridlines.
func niceStep(maxVal float64, target int) float64 {
	if maxVal <= 0 || target <= 0 {
		return 1
	}
	rough := maxVal / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if rough <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

// formatThousands renders 1234567 as "1,234,567".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
