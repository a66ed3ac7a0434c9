package analysis

import (
	"sort"
	"strings"
	"time"

	"sleep-observer/src/models"
)

// StageRows lists hypnogram rows top to bottom.
var StageRows = []string{"awake", "rem", "light", "deep"}

var (
	stageStartAliases = []string{"start", "startIso", "start_time", "startTime"}
	stageNameAliases  = []string{"state", "stage", "value"}
)

const (
	lightRow          = 2
	multiSegmentTail  = 10 * time.Minute
	singleSegmentTail = time.Hour
	minBlockHeight    = 8
	blockHeightRatio  = 0.55
)

// StageSegment is a stage change point: the sleeper entered Stage at Start.
type StageSegment struct {
	Start time.Time
	Stage string
}

// -----------------------------------------------------------------------------

// ParseStageSegments reads stage change points, dropping entries without a
// valid start, and sorts them by time.
func ParseStageSegments(raw []map[string]any) []StageSegment {
	out := make([]StageSegment, 0, len(raw))
	for _, rec := range raw {
		t, ok := FirstTime(rec, stageStartAliases)
		if !ok {
			continue
		}
		var stage string
		for _, key := range stageNameAliases {
			if s, ok := rec[key].(string); ok && s != "" {
				stage = s
				break
			}
		}
		out = append(out, StageSegment{Start: t, Stage: strings.ToLower(stage)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// StageRow resolves a stage name to its row; unknown stages render as light sleep.
func StageRow(stage string) int {
	for i, key := range StageRows {
		if stage == key {
			return i
		}
	}
	if strings.Contains(stage, "awake") {
		return 0
	}
	return lightRow
}

// -----------------------------------------------------------------------------

// ResolveStageEnd picks the timeline end: explicit end first, else ten minutes
// past the last change point, or an hour past a lone one.
func ResolveStageEnd(segments []StageSegment, end *time.Time, now time.Time) time.Time {
	if end != nil {
		return *end
	}
	switch n := len(segments); {
	case n >= 2:
		return segments[n-1].Start.Add(multiSegmentTail)
	case n == 1:
		return segments[0].Start.Add(singleSegmentTail)
	default:
		return now
	}
}

// BuildStageBlocks lays each segment out from its start to the next change
// point (or end) in its stage row.
func BuildStageBlocks(segments []StageSegment, end time.Time, frame models.MChartFrame) []models.MStageBlock {
	if len(segments) == 0 {
		return []models.MStageBlock{}
	}
	t0 := segments[0].Start
	plotW := frame.PlotWidth()
	rowH := frame.PlotHeight() / float64(len(StageRows))
	h := max(minBlockHeight, rowH*blockHeightRatio)

	out := make([]models.MStageBlock, len(segments))
	for i, seg := range segments {
		until := end
		if i+1 < len(segments) {
			until = segments[i+1].Start
		}
		x1 := ClampedTimeToX(seg.Start, t0, end, frame.PadLeft, plotW)
		x2 := ClampedTimeToX(until, t0, end, frame.PadLeft, plotW)
		row := StageRow(seg.Stage)
		yCenter := frame.PadTop + float64(row)*rowH + rowH/2

		out[i] = models.MStageBlock{
			Stage:  StageRows[row],
			Row:    row,
			Start:  seg.Start,
			X:      x1,
			Y:      yCenter - h/2,
			Width:  max(1, x2-x1),
			Height: h,
		}
	}
	return out
}

// StageTicks returns start, midpoint and end labels.
func StageTicks(start, end time.Time) []time.Time {
	mid := start.Add(end.Sub(start) / 2).Round(time.Millisecond)
	return []time.Time{start, mid, end}
}
