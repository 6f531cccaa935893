package road

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestClassFromHighway(t *testing.T) {
	assert.Equal(t, Motorway, ClassFromHighway("motorway"))
	assert.Equal(t, Motorway, ClassFromHighway("motorway_link"))
	assert.Equal(t, Primary, ClassFromHighway("primary"))
	assert.Equal(t, Residential, ClassFromHighway("living_street"))
	assert.Equal(t, Unknown, ClassFromHighway("footway"))
	assert.Equal(t, Unknown, ClassFromHighway(""))
}

func TestSpeedFallback(t *testing.T) {
	tagged := Segment{Class: Residential, MaxSpeedKmh: 40}
	assert.Equal(t, 40.0, tagged.SpeedKmh())

	untagged := Segment{Class: Motorway}
	assert.Equal(t, 110.0, untagged.SpeedKmh())
}

func TestMergeConsecutiveSegments(t *testing.T) {
	a := &Segment{ID: 1, Class: Primary, Points: []orb.Point{{0, 0}, {1, 0}}}
	b := &Segment{ID: 2, Class: Primary, Points: []orb.Point{{1, 0}, {2, 0}}}
	c := &Segment{ID: 3, Class: Primary, Points: []orb.Point{{2, 0}, {3, 0}}}

	m := NewMerger([]*Segment{a, b, c})
	m.Merge()

	segments := m.Segments()
	assert.Len(t, segments, 1)
	assert.Equal(t, 2, m.MergeCount())
	assert.Equal(t, []orb.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, segments[0].Points)
}

func TestMergeRespectsAttributes(t *testing.T) {
	a := &Segment{ID: 1, Class: Primary, Points: []orb.Point{{0, 0}, {1, 0}}}
	b := &Segment{ID: 2, Class: Secondary, Points: []orb.Point{{1, 0}, {2, 0}}}

	m := NewMerger([]*Segment{a, b})
	m.Merge()

	assert.Len(t, m.Segments(), 2)
	assert.Zero(t, m.MergeCount())
}

func TestMergeSkipsDegenerate(t *testing.T) {
	a := &Segment{ID: 1, Class: Primary, Points: []orb.Point{{0, 0}}}
	b := &Segment{ID: 2, Class: Primary, Points: []orb.Point{{1, 0}, {2, 0}}}

	m := NewMerger([]*Segment{a, b})
	m.Merge()

	assert.Len(t, m.Segments(), 1)
	assert.Equal(t, 1, m.UnmergableCount())
}
