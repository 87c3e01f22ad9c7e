package spatial

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// CameraNode is a campus graph node: a camera with its position.
type CameraNode struct {
	ID   int64
	Name string
	Pos  Point
}

// PathEdge is a traversable path between two cameras with a measured
// distance in meters. Distance must be non-negative.
type PathEdge struct {
	From     int64
	To       int64
	Distance float64
}

// CampusGraph is the static map of camera locations and walkable paths.
// Built once per analysis session and immutable afterwards; safe for
// concurrent reads.
type CampusGraph struct {
	g     *simple.WeightedUndirectedGraph
	nodes map[int64]CameraNode
	cs    CoordinateSystem
}

// BuildCampusGraph constructs the campus graph from the camera table and an
// optional path list. Without paths every pair of cameras is connected by
// its direct distance, matching the behavior of an open campus with no
// recorded walkways.
func BuildCampusGraph(cs CoordinateSystem, cameras []CameraNode, paths []PathEdge) *CampusGraph {
	cg := &CampusGraph{
		g:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		nodes: make(map[int64]CameraNode, len(cameras)),
		cs:    cs,
	}

	for _, cam := range cameras {
		if _, ok := cg.nodes[cam.ID]; ok {
			continue
		}
		cg.nodes[cam.ID] = cam
		cg.g.AddNode(simple.Node(cam.ID))
	}

	if len(paths) > 0 {
		for _, p := range paths {
			if p.From == p.To || p.Distance < 0 {
				continue
			}
			// Paths referencing unknown cameras are ignored.
			if _, ok := cg.nodes[p.From]; !ok {
				continue
			}
			if _, ok := cg.nodes[p.To]; !ok {
				continue
			}
			cg.g.SetWeightedEdge(cg.g.NewWeightedEdge(simple.Node(p.From), simple.Node(p.To), p.Distance))
		}
		return cg
	}

	// No path data: connect all cameras with direct distances.
	for i, a := range cameras {
		for _, b := range cameras[i+1:] {
			if a.ID == b.ID {
				continue
			}
			d := Distance(cs, a.Pos, b.Pos)
			cg.g.SetWeightedEdge(cg.g.NewWeightedEdge(simple.Node(a.ID), simple.Node(b.ID), d))
		}
	}
	return cg
}

// Size returns the number of camera nodes.
func (cg *CampusGraph) Size() int {
	return len(cg.nodes)
}

// NearestNode finds the camera node closest to the given location by direct
// distance. Linear scan; fine at campus scale. Returns false when the graph
// is empty.
func (cg *CampusGraph) NearestNode(p Point) (int64, bool) {
	best := int64(0)
	bestDist := math.Inf(1)
	found := false
	for id, node := range cg.nodes {
		d := Distance(cg.cs, p, node.Pos)
		if d < bestDist || (d == bestDist && id < best) {
			best = id
			bestDist = d
			found = true
		}
	}
	return best, found
}

// ShortestPathLength returns the shortest walking distance in meters
// between two cameras along recorded paths. The second return is false when
// either node is missing or no path connects them.
func (cg *CampusGraph) ShortestPathLength(from, to int64) (float64, bool) {
	if _, ok := cg.nodes[from]; !ok {
		return 0, false
	}
	if _, ok := cg.nodes[to]; !ok {
		return 0, false
	}
	if from == to {
		return 0, true
	}
	sp := path.DijkstraFrom(simple.Node(from), cg.g)
	w := sp.WeightTo(to)
	if math.IsInf(w, 1) {
		return 0, false
	}
	return w, true
}
