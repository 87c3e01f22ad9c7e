package spatiotemporal

import (
	"fmt"
	"log"

	"github.com/campustrack/trajectory-backend-go/internal/spatial"
)

// DefaultWalkingSpeed is the assumed average walking speed in m/s.
const DefaultWalkingSpeed = 1.4

// Estimator computes estimated travel times between campus locations.
// With a campus graph it uses shortest-path distance along recorded
// walkways; otherwise, or when no path connects the endpoints, it falls
// back to the direct distance for the configured coordinate system.
type Estimator struct {
	graph        *spatial.CampusGraph
	cs           spatial.CoordinateSystem
	walkingSpeed float64
}

// NewEstimator creates an estimator. The campus graph is optional; a
// non-positive walking speed is a configuration error.
func NewEstimator(cs spatial.CoordinateSystem, walkingSpeed float64, graph *spatial.CampusGraph) (*Estimator, error) {
	if walkingSpeed <= 0 {
		return nil, fmt.Errorf("walking speed must be positive, got %v", walkingSpeed)
	}
	return &Estimator{
		graph:        graph,
		cs:           cs,
		walkingSpeed: walkingSpeed,
	}, nil
}

// TravelTime estimates the walking time in seconds from a to b.
func (e *Estimator) TravelTime(a, b spatial.Point) float64 {
	if e.graph != nil && e.graph.Size() > 0 {
		fromID, okFrom := e.graph.NearestNode(a)
		toID, okTo := e.graph.NearestNode(b)
		if okFrom && okTo {
			if dist, ok := e.graph.ShortestPathLength(fromID, toID); ok {
				return dist / e.walkingSpeed
			}
			log.Printf("[Estimator] no path between (%v,%v) and (%v,%v), using direct distance",
				a.X, a.Y, b.X, b.Y)
		}
	}
	return spatial.Distance(e.cs, a, b) / e.walkingSpeed
}
