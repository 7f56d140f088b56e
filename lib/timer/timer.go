package timer

import (
	"fmt"
	"strings"
	"time"
)

// MarkPoint a named stage and how long it took since the previous mark
type MarkPoint struct {
	Tag   string
	Delta time.Duration
}

// XTimer records stage latencies of one operation
type XTimer struct {
	born   time.Time
	latest time.Time
	points []MarkPoint
}

// NewXTimer create new XTimer instance
func NewXTimer() *XTimer {
	now := time.Now()
	return &XTimer{
		born:   now,
		latest: now,
	}
}

// Mark close the current stage under tag
func (timer *XTimer) Mark(tag string) {
	now := time.Now()
	timer.points = append(timer.points, MarkPoint{
		Tag:   tag,
		Delta: now.Sub(timer.latest),
	})
	timer.latest = now
}

// Total time elapsed since the timer was created
func (timer *XTimer) Total() time.Duration {
	return time.Since(timer.born)
}

// Points return a copy of marked stages
func (timer *XTimer) Points() []MarkPoint {
	points := make([]MarkPoint, len(timer.points))
	copy(points, timer.points)
	return points
}

// Print all marked points, e.g. "prepare:0.12ms,exec:1.30ms,total:1.50ms"
func (timer *XTimer) Print() string {
	msg := make([]string, 0, len(timer.points)+1)
	for _, point := range timer.points {
		msg = append(msg, fmt.Sprintf("%s:%.2fms", point.Tag, toMs(point.Delta)))
	}
	msg = append(msg, fmt.Sprintf("total:%.2fms", toMs(timer.Total())))
	return strings.Join(msg, ",")
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
