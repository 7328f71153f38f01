package ui

import "github.com/dshills/gluepanel/internal/dashboard"

// Trail buffers recent trajectory points as segments. A break ends the
// current segment; the next point starts a new one. The total point count
// is capped, dropping the oldest points first.
type Trail struct {
	segments [][]dashboard.Point
	total    int
	maxTotal int
}

// NewTrail creates a trail keeping at most maxTotal points.
func NewTrail(maxTotal int) *Trail {
	if maxTotal < 1 {
		maxTotal = 1
	}
	return &Trail{maxTotal: maxTotal}
}

// Add appends a point to the current segment.
func (tr *Trail) Add(p dashboard.Point) {
	if len(tr.segments) == 0 {
		tr.segments = append(tr.segments, nil)
	}
	last := len(tr.segments) - 1
	tr.segments[last] = append(tr.segments[last], p)
	tr.total++

	for tr.total > tr.maxTotal {
		tr.dropOldest()
	}
}

// Break ends the current segment.
func (tr *Trail) Break() {
	if len(tr.segments) == 0 || len(tr.segments[len(tr.segments)-1]) == 0 {
		return
	}
	tr.segments = append(tr.segments, nil)
}

// Clear discards all points.
func (tr *Trail) Clear() {
	tr.segments = nil
	tr.total = 0
}

// Len returns the total number of buffered points.
func (tr *Trail) Len() int {
	return tr.total
}

// Segments returns the buffered segments. The caller must not mutate them.
func (tr *Trail) Segments() [][]dashboard.Point {
	return tr.segments
}

// Bounds returns the min and max X/Y over all points, and ok=false when
// the trail is empty.
func (tr *Trail) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	first := true
	for _, seg := range tr.segments {
		for _, p := range seg {
			if first {
				minX, maxX = p.X, p.X
				minY, maxY = p.Y, p.Y
				first = false
				continue
			}
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	return minX, minY, maxX, maxY, !first
}

func (tr *Trail) dropOldest() {
	if len(tr.segments) == 0 {
		return
	}
	if len(tr.segments[0]) == 0 {
		tr.segments = tr.segments[1:]
		return
	}
	tr.segments[0] = tr.segments[0][1:]
	tr.total--
	if len(tr.segments[0]) == 0 && len(tr.segments) > 1 {
		tr.segments = tr.segments[1:]
	}
}
