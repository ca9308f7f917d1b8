package xlsplit

import (
	"fmt"
	"math"
)

const (
	percentStart     = 0
	percentDataStart = 15
	percentDataSpan  = 80
	percentCap       = 95
	percentStep      = 5
)

// progressTracker turns processed record counts into a non-decreasing
// percentage and throttles how often it is reported.
type progressTracker struct {
	total int
	last  int
}

func newProgressTracker(total int) *progressTracker {
	return &progressTracker{total: total, last: percentStart}
}

// percent maps processed records onto [15, 95].
func (p *progressTracker) percent(processed int) int {
	pct := percentCap
	if p.total > 0 {
		pct = percentDataStart + int(math.Round(float64(processed)/float64(p.total)*percentDataSpan))
	}
	if pct > percentCap {
		pct = percentCap
	}
	if pct < p.last {
		pct = p.last
	}
	return pct
}

// due reports whether a batch-boundary event should be emitted.
func (p *progressTracker) due(pct int, lastBatch bool) bool {
	return lastBatch || pct-p.last >= percentStep
}

func (p *progressTracker) event(pct, processed, chunks int, msg string) ProgressEvent {
	if pct < p.last {
		pct = p.last
	}
	p.last = pct
	return ProgressEvent{
		Percent:         pct,
		ProcessedCount:  processed,
		TotalCount:      p.total,
		ChunksGenerated: chunks,
		Message:         msg,
	}
}

func extractingMessage(processed, total, chunks int) string {
	msg := fmt.Sprintf("processing rows: %d / %d", processed, total)
	if chunks > 0 {
		msg += fmt.Sprintf(" (%d file(s) created)", chunks)
	}
	return msg
}

func chunkingMessage(processed, total, chunks int) string {
	return fmt.Sprintf("splitting: %d CSV file(s) created (%d / %d rows)", chunks, processed, total)
}
