package tournamentservice

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxChartBars = 20

// ChartPalette holds the colors used by the standings chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	Text       drawing.Color
}

// DefaultPalette is the standings chart palette used by the HTTP route and the admin CLI.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("0f1720"),
	Bar:        drawing.ColorFromHex("3b82f6"),
	Leader:     drawing.ColorFromHex("f5b301"),
	Text:       drawing.ColorFromHex("e5e7eb"),
}

// RenderStandingsChart draws the top of a ranking as a PNG bar chart. maxScore fixes the
// y axis so charts of the same tournament are comparable.
func RenderStandingsChart(standings *Standings, maxScore uint32, palette ChartPalette) ([]byte, error) {
	entries := standings.Entries
	if len(entries) > maxChartBars {
		entries = entries[:maxChartBars]
	}
	if len(entries) == 0 || entries[0].Score == 0 {
		return renderNoScores(palette)
	}
	if maxScore == 0 {
		maxScore = entries[0].Score
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		fill := palette.Bar
		if e.Rank == 1 {
			fill = palette.Leader
		}
		bars[i] = chart.Value{
			Label: fmt.Sprintf("#%d %s", e.Rank, shortAddress(e.Participant)),
			Value: float64(e.Score),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
	}

	title := fmt.Sprintf("Tournament %d standings", standings.TournamentID)
	if !standings.Final {
		title += " (provisional)"
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      max(400, 90*len(bars)),
		Height:     400,
		BarWidth:   50,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{FillColor: palette.Background},
		XAxis:  chart.Style{FontColor: palette.Text, FontSize: 8},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxScore)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoScores(palette ChartPalette) ([]byte, error) {
	const msg = "No scores yet"

	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.XAxis{Style: chart.Hidden()},
		YAxis:      chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		// go-chart refuses to render without a visible series.
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func shortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:6] + ".."
}
