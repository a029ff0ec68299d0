package playerservice

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/fairway-collective/links-backend/app/shared/results"
)

var (
	chartLineColor   = drawing.ColorFromHex("2d6a4f")
	chartDotColor    = drawing.ColorFromHex("d4a017")
	chartTextColor   = drawing.ColorFromHex("333333")
	chartCanvasColor = drawing.ColorFromHex("ffffff")
)

// RenderScoreTrendChart produces a PNG line chart of the player's
// completed-round scores relative to par over time.
func (s *PlayerService) RenderScoreTrendChart(ctx context.Context, playerID int64) ([]byte, error) {
	result, err := withTelemetry(s, ctx, "RenderScoreTrendChart", fmt.Sprintf("%d", playerID), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		aggregates, repoErr := s.repo.GetCompletedRoundAggregates(ctx, nil, playerID)
		if repoErr != nil {
			return results.OperationResult[[]byte, error]{}, repoErr
		}
		xValues, yValues := scoreTrendPoints(aggregates)
		png, renderErr := generateScoreTrendChart(xValues, yValues)
		if renderErr != nil {
			return results.OperationResult[[]byte, error]{}, renderErr
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// generateScoreTrendChart renders a score-to-par time series as a PNG.
func generateScoreTrendChart(xValues []time.Time, yValues []float64) ([]byte, error) {
	if len(xValues) == 0 {
		return renderNoDataPlaceholder()
	}

	mainSeries := chart.TimeSeries{
		Name:    "Score to Par",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: chartLineColor,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    chartDotColor,
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: chartCanvasColor,
		},
		Canvas: chart.Style{
			FillColor: chartCanvasColor,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: chartTextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "Score to Par",
			Style: chart.Style{
				FontColor: chartTextColor,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	err := graph.Render(chart.PNG, buffer)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No completed rounds yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: chartCanvasColor,
		},
		Canvas: chart.Style{
			FillColor: chartCanvasColor,
		},
		// Render refuses a chart without series; keep an invisible one.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Hidden(),
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(chartTextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	err := graph.Render(chart.PNG, buffer)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
