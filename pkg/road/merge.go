package road

import (
	"github.com/paulmach/orb"
)

// Merger joins consecutive segments that share an endpoint and carry the
// same road attributes. OSM splits long roads into many short ways; the
// merged form keeps split points out of the graph where no junction
// exists.
type Merger struct {
	segments        []*Segment
	mergeCount      int
	unmergableCount int
}

func NewMerger(segments []*Segment) *Merger {
	return &Merger{
		segments: segments,
	}
}

func (m *Merger) Merge() {
	startIndex := make(map[orb.Point][]*Segment)
	for _, seg := range m.segments {
		if len(seg.Points) < 2 {
			m.unmergableCount++
			continue
		}
		startIndex[seg.Points[0]] = append(startIndex[seg.Points[0]], seg)
	}

	merged := make(map[int64]bool)
	var out []*Segment

	for _, seg := range m.segments {
		if merged[seg.ID] || len(seg.Points) < 2 {
			continue
		}

		current := seg
		for {
			end := current.Points[len(current.Points)-1]

			foundNext := false
			for _, next := range startIndex[end] {
				if merged[next.ID] || next.ID == current.ID {
					continue
				}
				if canMerge(current, next) {
					current = mergeTwoSegments(current, next)
					merged[next.ID] = true
					m.mergeCount++
					foundNext = true
					break
				}
			}

			if !foundNext {
				break
			}
		}

		out = append(out, current)
	}

	m.segments = out
}

func canMerge(s1, s2 *Segment) bool {
	return s1.Class == s2.Class &&
		s1.OneWay == s2.OneWay &&
		s1.MaxSpeedKmh == s2.MaxSpeedKmh &&
		s1.Name == s2.Name &&
		s1.Surface == s2.Surface
}

func mergeTwoSegments(s1, s2 *Segment) *Segment {
	merged := &Segment{
		ID:          s1.ID,
		Class:       s1.Class,
		Name:        s1.Name,
		Surface:     s1.Surface,
		OneWay:      s1.OneWay,
		MaxSpeedKmh: s1.MaxSpeedKmh,
		Tags:        s1.Tags,
	}

	merged.Points = append(merged.Points, s1.Points...)
	// the first point of s2 duplicates the last point of s1
	merged.Points = append(merged.Points, s2.Points[1:]...)

	return merged
}

func (m *Merger) Segments() []*Segment {
	return m.segments
}

func (m *Merger) MergeCount() int {
	return m.mergeCount
}

func (m *Merger) UnmergableCount() int {
	return m.unmergableCount
}
