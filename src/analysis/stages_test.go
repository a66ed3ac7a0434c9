package analysis

import (
	"testing"
	"time"

	"sleep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stagesFrame = models.MChartFrame{Width: 1100, Height: 420, PadLeft: 40, PadRight: 140, PadTop: 28, PadBottom: 56}

func TestStageRow(t *testing.T) {
	assert.Equal(t, 0, StageRow("awake"))
	assert.Equal(t, 0, StageRow("briefly_awake"))
	assert.Equal(t, 1, StageRow("rem"))
	assert.Equal(t, 2, StageRow("light"))
	assert.Equal(t, 3, StageRow("deep"))
	assert.Equal(t, 2, StageRow("n2"))
	assert.Equal(t, 2, StageRow(""))
}

func TestParseStageSegments(t *testing.T) {
	segs := ParseStageSegments([]map[string]any{
		{"startIso": "2025-10-09T00:00:00Z", "stage": "DEEP"},
		{"start": "2025-10-08T23:00:00Z", "state": "light"},
		{"start_time": "garbage", "value": "rem"},
		{"startTime": "2025-10-09T01:00:00Z", "value": "rem"},
	})
	require.Len(t, segs, 3)
	assert.Equal(t, "light", segs[0].Stage)
	assert.Equal(t, "deep", segs[1].Stage)
	assert.Equal(t, "rem", segs[2].Stage)
}

func TestResolveStageEnd(t *testing.T) {
	now := night.Add(12 * time.Hour)
	explicit := night.Add(8 * time.Hour)
	two := []StageSegment{{Start: night}, {Start: night.Add(time.Hour)}}
	one := []StageSegment{{Start: night}}

	assert.Equal(t, explicit, ResolveStageEnd(two, &explicit, now))
	assert.Equal(t, night.Add(70*time.Minute), ResolveStageEnd(two, nil, now))
	assert.Equal(t, night.Add(time.Hour), ResolveStageEnd(one, nil, now))
	assert.Equal(t, now, ResolveStageEnd(nil, nil, now))
}

func TestBuildStageBlocks(t *testing.T) {
	segs := []StageSegment{
		{Start: night, Stage: "light"},
		{Start: night.Add(time.Hour), Stage: "deep"},
		{Start: night.Add(3 * time.Hour), Stage: "mystery"},
	}
	blocks := BuildStageBlocks(segs, night.Add(4*time.Hour), stagesFrame)
	require.Len(t, blocks, 3)

	// plot 920 x 336, row height 84, block height 46.2
	assert.Equal(t, 40.0, blocks[0].X)
	assert.InDelta(t, 230, blocks[0].Width, 1e-9)
	assert.InDelta(t, 46.2, blocks[0].Height, 1e-9)
	assert.InDelta(t, 28+2*84+42-23.1, blocks[0].Y, 1e-9)

	assert.Equal(t, "deep", blocks[1].Stage)
	assert.InDelta(t, 270, blocks[1].X, 1e-9)
	assert.InDelta(t, 460, blocks[1].Width, 1e-9)

	assert.Equal(t, "light", blocks[2].Stage)
	assert.InDelta(t, 960-730, blocks[2].Width, 1e-9)
	assert.Empty(t, BuildStageBlocks(nil, night, stagesFrame))
}

func TestBuildStageBlocksMinimumWidth(t *testing.T) {
	segs := []StageSegment{{Start: night, Stage: "rem"}, {Start: night, Stage: "awake"}}
	blocks := BuildStageBlocks(segs, night.Add(time.Hour), stagesFrame)
	assert.Equal(t, 1.0, blocks[0].Width)
}

func TestStageTicks(t *testing.T) {
	ticks := StageTicks(night, night.Add(8*time.Hour))
	assert.Equal(t, []time.Time{night, night.Add(4 * time.Hour), night.Add(8 * time.Hour)}, ticks)
}
