package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_DefaultsInterval(t *testing.T) {
	p := NewProfiler("tick", 0)
	assert.Equal(t, time.Second, p.updateInterval)
}

func TestProfiler_TickReportsAfterInterval(t *testing.T) {
	p := NewProfiler("render", time.Hour)
	assert.False(t, p.Tick())
	assert.Equal(t, Stats{}, p.Last())

	p.lastTime = time.Now().Add(-2 * time.Hour)
	assert.True(t, p.Tick())

	stats := p.Last()
	assert.Equal(t, "render", stats.Loop)
	assert.Greater(t, stats.Rate, 0.0)
	assert.Greater(t, stats.SysMB, 0.0)
	assert.Equal(t, 0, p.frameCount)
}
