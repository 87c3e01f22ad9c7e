package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCameras() []CameraNode {
	return []CameraNode{
		{ID: 1, Name: "gate", Pos: Point{X: 0, Y: 0}},
		{ID: 2, Name: "library", Pos: Point{X: 100, Y: 0}},
		{ID: 3, Name: "canteen", Pos: Point{X: 100, Y: 100}},
	}
}

func TestBuildCampusGraphFullyConnected(t *testing.T) {
	cg := BuildCampusGraph(Projected, testCameras(), nil)
	require.Equal(t, 3, cg.Size())

	// Without path data every pair is connected by its direct distance.
	d, ok := cg.ShortestPathLength(1, 3)
	require.True(t, ok)
	assert.InDelta(t, 141.42, d, 0.01)
}

func TestBuildCampusGraphWithPaths(t *testing.T) {
	paths := []PathEdge{
		{From: 1, To: 2, Distance: 120},
		{From: 2, To: 3, Distance: 110},
		{From: 1, To: 1, Distance: 5},    // self loop, ignored
		{From: 1, To: 99, Distance: 10},  // unknown camera, ignored
		{From: 2, To: 3, Distance: -1},   // negative, ignored
	}
	cg := BuildCampusGraph(Projected, testCameras(), paths)

	// Recorded paths replace direct distances: 1→3 goes through 2.
	d, ok := cg.ShortestPathLength(1, 3)
	require.True(t, ok)
	assert.InDelta(t, 230, d, 1e-9)
}

func TestShortestPathLengthSameNode(t *testing.T) {
	cg := BuildCampusGraph(Projected, testCameras(), nil)
	d, ok := cg.ShortestPathLength(2, 2)
	require.True(t, ok)
	assert.Equal(t, 0.0, d)
}

func TestShortestPathLengthDisconnected(t *testing.T) {
	// Only one recorded path; camera 3 is isolated.
	paths := []PathEdge{{From: 1, To: 2, Distance: 120}}
	cg := BuildCampusGraph(Projected, testCameras(), paths)

	_, ok := cg.ShortestPathLength(1, 3)
	assert.False(t, ok)
}

func TestShortestPathLengthUnknownNode(t *testing.T) {
	cg := BuildCampusGraph(Projected, testCameras(), nil)
	_, ok := cg.ShortestPathLength(1, 42)
	assert.False(t, ok)
	_, ok = cg.ShortestPathLength(42, 1)
	assert.False(t, ok)
}

func TestNearestNode(t *testing.T) {
	cg := BuildCampusGraph(Projected, testCameras(), nil)

	id, ok := cg.NearestNode(Point{X: 90, Y: 10})
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	id, ok = cg.NearestNode(Point{X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestNearestNodeEmptyGraph(t *testing.T) {
	cg := BuildCampusGraph(Projected, nil, nil)
	_, ok := cg.NearestNode(Point{X: 0, Y: 0})
	assert.False(t, ok)
}
