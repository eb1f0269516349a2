package reprocess

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 100, 10)
	p.Start()

	p.Update(5)
	assert.Empty(t, buf.String())

	p.Update(10)
	assert.Contains(t, buf.String(), "10/100")
	assert.Contains(t, buf.String(), "10.0%")
}

func TestProgressTrackerIncrement(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 20, 10)
	p.Start()

	p.Increment(4)
	p.Increment(4)
	assert.Empty(t, buf.String())

	p.Increment(4)
	assert.Contains(t, buf.String(), "12/20")
}

func TestProgressTrackerCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 1)
	p.Start()

	p.Update(25)
	assert.Contains(t, buf.String(), "10/10 (100.0%)")
}

func TestProgressTrackerFinish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 7, 100)
	p.Start()
	p.Update(3)
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "7/7 (100.0%)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTrackerIgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 1)

	p.Update(5)
	p.Increment(5)
	p.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, p.Elapsed())
}
