package spatiotemporal

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// TrajectoryGraph is the per-query directed graph over observations used to
// search for the most probable path. Nodes are individual observations
// (indexed into the snapshot), edges are feasible transitions between
// different cameras. Built and discarded within a single reconstruction
// call.
type TrajectoryGraph struct {
	g       *simple.WeightedDirectedGraph
	records []models.Observation
	probs   map[[2]int64]float64
}

// NodeCount returns the number of observation nodes.
func (tg *TrajectoryGraph) NodeCount() int {
	return len(tg.records)
}

// EdgeCount returns the number of feasible transition edges.
func (tg *TrajectoryGraph) EdgeCount() int {
	return len(tg.probs)
}

// Probability returns the edge probability between two node indices, or 0
// when no edge exists.
func (tg *TrajectoryGraph) Probability(from, to int64) float64 {
	return tg.probs[[2]int64{from, to}]
}

// BuildTrajectoryGraph constructs the trajectory graph for a snapshot of
// observations. A directed edge A→B is added when the cameras differ, B is
// strictly later, and the elapsed time allows transit at up to twice the
// nominal walking speed. The edge probability is
// min(1, estimated_travel_time / elapsed).
//
// All observation pairs are considered, so construction is quadratic in the
// snapshot size. Acceptable for single-identity daily trajectories (tens to
// low hundreds of records); do not feed it global multi-identity sets.
func (a *Analyzer) BuildTrajectoryGraph(records []models.Observation) *TrajectoryGraph {
	tg := &TrajectoryGraph{
		g:       simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		records: sortedByTime(records),
		probs:   make(map[[2]int64]float64),
	}
	for i := range tg.records {
		tg.g.AddNode(simple.Node(int64(i)))
	}

	for i := range tg.records {
		for j := i + 1; j < len(tg.records); j++ {
			from := &tg.records[i]
			to := &tg.records[j]
			if from.CameraID == to.CameraID {
				continue
			}

			elapsed := to.Timestamp.Sub(from.Timestamp).Seconds()
			if elapsed <= 0 {
				continue
			}
			estimated := a.est.TravelTime(obsPoint(from), obsPoint(to))
			if elapsed < estimated/graphEdgeSlack {
				continue
			}

			prob := 1.0
			if elapsed > 0 && estimated/elapsed < 1.0 {
				prob = estimated / elapsed
			}
			// Dijkstra needs non-negative weights; 1-prob is in [0, 1].
			tg.g.SetWeightedEdge(tg.g.NewWeightedEdge(
				simple.Node(int64(i)), simple.Node(int64(j)), 1.0-prob))
			tg.probs[[2]int64{int64(i), int64(j)}] = prob
		}
	}
	return tg
}

// FindMostLikelyTrajectory reconstructs the most probable path through the
// observations, optionally restricted to a time window first. The three
// earliest and three latest observations are tried as start/end candidates
// to guard against an outlier first or last detection; for each pair the
// path minimizing cumulative (1 - probability) is computed, and the path
// with the highest summed probability across all pairs wins.
//
// Returns the ordered record IDs of the best path, or an empty slice when
// no path connects any candidate pair. Not finding a path is not an error.
func (a *Analyzer) FindMostLikelyTrajectory(records []models.Observation, startTime, endTime *time.Time) []int64 {
	if len(records) == 0 {
		return []int64{}
	}

	windowed := make([]models.Observation, 0, len(records))
	for _, r := range records {
		if startTime != nil && r.Timestamp.Before(*startTime) {
			continue
		}
		if endTime != nil && r.Timestamp.After(*endTime) {
			continue
		}
		windowed = append(windowed, r)
	}
	if len(windowed) == 0 {
		return []int64{}
	}

	tg := a.BuildTrajectoryGraph(windowed)
	n := tg.NodeCount()
	if n == 0 {
		return []int64{}
	}

	// tg.records is time-sorted, so candidate starts are the first indices
	// and candidate ends the last ones.
	limit := candidateEndpoints
	if limit > n {
		limit = n
	}
	starts := make([]int64, 0, limit)
	ends := make([]int64, 0, limit)
	for i := 0; i < limit; i++ {
		starts = append(starts, int64(i))
		ends = append(ends, int64(n-limit+i))
	}

	var bestPath []int64
	bestScore := math.Inf(-1)

	for _, s := range starts {
		sp := path.DijkstraFrom(simple.Node(s), tg.g)
		for _, e := range ends {
			nodes, weight := sp.To(e)
			if len(nodes) == 0 || math.IsInf(weight, 1) {
				continue
			}
			score := 0.0
			for k := 0; k < len(nodes)-1; k++ {
				score += tg.Probability(nodes[k].ID(), nodes[k+1].ID())
			}
			if score > bestScore {
				bestScore = score
				ids := make([]int64, len(nodes))
				for k, node := range nodes {
					ids[k] = node.ID()
				}
				bestPath = ids
			}
		}
	}

	if bestPath == nil {
		log.Printf("[Analyzer] no valid trajectory found among %d candidate pairs", len(starts)*len(ends))
		return []int64{}
	}

	recordIDs := make([]int64, len(bestPath))
	for k, idx := range bestPath {
		recordIDs[k] = tg.records[idx].ID
	}
	return recordIDs
}
