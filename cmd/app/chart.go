package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/quantbrief/go-insight-agent/pkg/tools"
)

// terminalChartSink renders price charts as sparklines on the terminal.
// Rendering happens on a dedicated goroutine; SubmitChart is a one-shot
// blocking handoff, so the chart is always on screen before the tool's
// text result travels back to the model.
type terminalChartSink struct {
	out io.Writer

	once sync.Once
	ch   chan chartJob
}

type chartJob struct {
	chart tools.Chart
	done  chan struct{}
}

func (s *terminalChartSink) SubmitChart(ctx context.Context, chart tools.Chart) error {
	s.once.Do(func() {
		s.ch = make(chan chartJob)
		go s.render()
	})

	job := chartJob{chart: chart, done: make(chan struct{})}
	select {
	case s.ch <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *terminalChartSink) render() {
	for job := range s.ch {
		fmt.Fprintf(s.out, "\n%s (%s), %d closes: %s\n",
			job.chart.Symbol, job.chart.Currency, len(job.chart.Points), sparkline(job.chart.Points))
		close(job.done)
	}
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

func sparkline(points []tools.PricePoint) string {
	if len(points) == 0 {
		return ""
	}
	low, high := points[0].Close, points[0].Close
	for _, p := range points {
		if p.Close < low {
			low = p.Close
		}
		if p.Close > high {
			high = p.Close
		}
	}

	var sb strings.Builder
	for _, p := range points {
		idx := 0
		if high > low {
			idx = int((p.Close - low) / (high - low) * float64(len(sparkLevels)-1))
		}
		sb.WriteRune(sparkLevels[idx])
	}
	return sb.String()
}
