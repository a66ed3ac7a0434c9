package analysis

import (
	"math"
	"time"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
)

const rangeBarWidth = 6

// ChartFacade turns a nightly report into render-ready chart geometry.
type ChartFacade struct {
	Charts    models.MChartsConfig
	Resampler *TimeSeriesResampler
	Grid      *GridBuilder
	Logger    *logger.Logger
	Now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewChartFacade(cfg *models.MConfig, log *logger.Logger) *ChartFacade {
	charts := cfg.Charts
	band := DefaultBand
	if charts.BandBelow != nil {
		band.Below = *charts.BandBelow
	}
	if charts.BandAbove != nil {
		band.Above = *charts.BandAbove
	}

	return &ChartFacade{
		Charts:    charts,
		Resampler: &TimeSeriesResampler{},
		Grid:      NewGridBuilder(time.Duration(charts.StepMinutes)*time.Minute, band),
		Logger:    log,
		Now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// HeartRateChart resamples the bpm series onto one bucket per step of the
// night and lays out the average line, the min-max ranges and toss markers.
func (a *ChartFacade) HeartRateChart(report *models.MSleepReport) models.MHeartRateChart {
	frame := a.Charts.HeartRate
	start := ParseTimePtr(report.SleepStartTime)
	end := ParseTimePtr(report.SleepEndTime)

	// 1. Bucket count from the sleep window, else from the series length
	avgSrc := []float64(report.BPMAverage)
	if len(avgSrc) == 0 {
		avgSrc = report.BPMPer10Min
	}
	fallback := len(avgSrc)
	if fallback == 0 {
		fallback = max(len(report.BPMMin), len(report.BPMMax))
	}
	n := BucketCount(start, end, a.Grid.Step, fallback)

	// 2. Normalize every series to the bucket count
	avgs := a.Resampler.Resample(avgSrc, n)
	var mins, maxs []float64
	if len(report.BPMMin) > 0 {
		mins = a.Resampler.Resample(report.BPMMin, n)
	}
	if len(report.BPMMax) > 0 {
		maxs = a.Resampler.Resample(report.BPMMax, n)
	}

	// 3. Vertical domain over everything drawn
	all := make([]float64, 0, len(avgs)+len(mins)+len(maxs))
	all = append(all, avgs...)
	all = append(all, mins...)
	all = append(all, maxs...)
	scale := NewLinearScale(all, frame.Margin, models.MDomain{Min: frame.FallbackMin, Max: frame.FallbackMax})

	plotW, plotH := frame.PlotWidth(), frame.PlotHeight()
	xAt := func(i int) float64 { return IndexToX(i, n, frame.PadLeft, plotW) }

	chart := models.MHeartRateChart{
		Buckets:     n,
		Average:     avgs,
		Min:         orEmpty(mins),
		Max:         orEmpty(maxs),
		Domain:      scale.Domain(),
		AveragePath: make([]models.MPoint, len(avgs)),
		Ranges:      []models.MRangeBar{},
		TossMarkers: []float64{},
	}
	for i, v := range avgs {
		chart.AveragePath[i] = models.MPoint{X: xAt(i), Y: scale.ToPixel(v, frame.PadTop, plotH)}
	}

	// 4. Ranges only where at least one bound was reported
	if mins != nil || maxs != nil {
		for i := range n {
			lo, hi := avgs[i], avgs[i]
			if mins != nil {
				lo = mins[i]
			}
			if maxs != nil {
				hi = maxs[i]
			}
			y1 := scale.ToPixel(hi, frame.PadTop, plotH)
			y2 := scale.ToPixel(lo, frame.PadTop, plotH)
			chart.Ranges = append(chart.Ranges, models.MRangeBar{
				X:      xAt(i) - rangeBarWidth/2,
				Y:      math.Min(y1, y2),
				Width:  rangeBarWidth,
				Height: math.Abs(y2 - y1),
			})
		}
	}

	// 5. Toss markers need a real time window
	if start != nil && end != nil {
		events := ParseEvents(report.TossAndTurnTimes)
		chart.TossMarkers = ProjectEvents(events, *start, *end, n, xAt)
	}

	a.debug("heart-rate chart: %d buckets, %d toss markers", n, len(chart.TossMarkers))
	return chart
}

// -----------------------------------------------------------------------------

// RespirationChart densifies breathing records onto the grid cadence and
// derives the smoothed line, min-max bars and apnea markers.
func (a *ChartFacade) RespirationChart(breathing *models.MBreathing) models.MRespirationChart {
	frame := a.Charts.Respiration
	chart := models.MRespirationChart{
		Grid:         []models.MBucket{},
		Smoothed:     []models.MPoint{},
		Bars:         []models.MRangeBar{},
		ApneaMarkers: []float64{},
	}
	if breathing == nil {
		breathing = &models.MBreathing{}
	}

	// 1. Summary labels
	if breathing.AverageBPM != nil && core.IsFinite(*breathing.AverageBPM) {
		chart.AverageBPM = models.Float(*breathing.AverageBPM)
	}
	score := breathing.Score
	if score == nil || !core.IsFinite(*score) {
		score = breathing.AverageScore
	}
	if score != nil && core.IsFinite(*score) {
		chart.Score = models.Float(*score)
	}
	chart.ScoreTone = ScoreTone(chart.Score)
	chart.ApneaCount = len(breathing.UnbreathEvents)

	// 2. Samples and domain
	samples := ParseSamples(breathing.Records)
	extent := make([]float64, 0, 2*len(samples))
	for _, s := range samples {
		extent = append(extent, finiteOr(s.Min, s.Average), finiteOr(s.Max, s.Average))
	}
	scale := NewLinearScale(extent, frame.Margin, models.MDomain{Min: frame.FallbackMin, Max: frame.FallbackMax}).Rounded(true)
	chart.Domain = scale.Domain()
	if len(samples) == 0 {
		return chart
	}

	t0, t1 := samples[0].Timestamp, samples[len(samples)-1].Timestamp
	chart.Start, chart.End = &t0, &t1
	plotW, plotH := frame.PlotWidth(), frame.PlotHeight()
	xAt := func(t time.Time) float64 { return TimeToX(t, t0, t1, frame.PadLeft, plotW) }

	// 3. Dense grid, smoothed line and bars
	chart.Grid = a.Grid.Build(samples)
	for _, p := range Smooth(chart.Grid, a.smoothingWindow()) {
		chart.Smoothed = append(chart.Smoothed, models.MPoint{X: xAt(p.Timestamp), Y: scale.ToPixel(p.Value, frame.PadTop, plotH)})
	}

	barW := math.Max(4, plotW/math.Max(36, float64(len(chart.Grid))*1.6))
	for _, b := range chart.Grid {
		y1 := scale.ToPixel(math.Min(scale.Max, finiteOr(b.Max, b.Average)), frame.PadTop, plotH)
		y2 := scale.ToPixel(math.Max(scale.Min, finiteOr(b.Min, b.Average)), frame.PadTop, plotH)
		chart.Bars = append(chart.Bars, models.MRangeBar{
			X:      xAt(b.StartTime) - barW/2,
			Y:      math.Min(y1, y2),
			Width:  barW,
			Height: math.Max(2, math.Abs(y2-y1)),
		})
	}

	// 4. Apnea markers
	for _, e := range ParseEvents(breathing.UnbreathEvents) {
		chart.ApneaMarkers = append(chart.ApneaMarkers, xAt(e.Timestamp))
	}

	a.debug("respiration chart: %d samples, %d buckets, %d apnea events", len(samples), len(chart.Grid), chart.ApneaCount)
	return chart
}

// -----------------------------------------------------------------------------

// TossTrack places toss-and-turn events along the sleep window.
func (a *ChartFacade) TossTrack(report *models.MSleepReport) models.MTossTrack {
	start := firstTime(report.SleepTime, report.SleepStartTime)
	end := firstTime(report.WakeTime, report.SleepEndTime)

	rustle := report.Rustle
	if rustle == nil {
		rustle = &models.MRustle{}
	}
	raw := report.TossAndTurnTimes
	if len(raw) == 0 {
		raw = rustle.Records
	}
	events := ParseEvents(raw)

	s, e := ResolveTrackSpan(start, end, events, a.now())

	count := len(raw)
	if rustle.TotalCount != nil && core.IsFinite(*rustle.TotalCount) && *rustle.TotalCount != 0 {
		count = int(*rustle.TotalCount)
	}

	return models.MTossTrack{
		Start:     s,
		End:       e,
		Positions: TrackPositions(events, s, e),
		Count:     count,
		Tone:      ScoreTone(rustle.Score),
	}
}

// -----------------------------------------------------------------------------

// StageTimeline builds the hypnogram blocks and axis ticks.
func (a *ChartFacade) StageTimeline(report *models.MSleepReport) models.MStageTimeline {
	chart := models.MStageTimeline{
		Blocks: []models.MStageBlock{},
		Ticks:  []time.Time{},
	}
	segments := ParseStageSegments(report.SleepStages)
	if len(segments) == 0 {
		return chart
	}

	start := segments[0].Start
	end := ResolveStageEnd(segments, firstTime(report.SleepEndTime, report.WakeTime), a.now())
	chart.Start, chart.End = &start, &end
	chart.Blocks = BuildStageBlocks(segments, end, a.Charts.Stages)
	chart.Ticks = StageTicks(start, end)
	return chart
}

// -----------------------------------------------------------------------------

// AllCharts derives every panel of one report.
func (a *ChartFacade) AllCharts(report *models.MSleepReport) models.MReportCharts {
	return models.MReportCharts{
		Date:        report.Date,
		HeartRate:   a.HeartRateChart(report),
		Respiration: a.RespirationChart(report.Breathing),
		Toss:        a.TossTrack(report),
		Stages:      a.StageTimeline(report),
	}
}

// -----------------------------------------------------------------------------

func (a *ChartFacade) smoothingWindow() int {
	if a.Charts.SmoothingWindow > 0 {
		return a.Charts.SmoothingWindow
	}
	return DefaultSmoothingWindow
}

func (a *ChartFacade) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *ChartFacade) debug(format string, args ...interface{}) {
	if a.Logger != nil {
		a.Logger.Debug(format, args...)
	}
}

func firstTime(candidates ...string) *time.Time {
	for _, c := range candidates {
		if t := ParseTimePtr(c); t != nil {
			return t
		}
	}
	return nil
}

func finiteOr(v, fallback float64) float64 {
	if core.IsFinite(v) {
		return v
	}
	return fallback
}

func orEmpty(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
