package spatiotemporal

import (
	"log"
	"math"
	"sort"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/spatial"
)

// Threshold constants for the analyzer. Fixed policy values, applied
// uniformly rather than reconsidered per record pair.
const (
	// DefaultThresholdMultiplier relaxes the plausibility filter to allow
	// waiting and detours between cameras.
	DefaultThresholdMultiplier = 1.5

	// graphEdgeSlack bounds how much faster than nominal a transit may be
	// for a trajectory-graph edge. Looser than the plausibility filter to
	// keep path options open for the search.
	graphEdgeSlack = 2.0

	// highSpeedRatio and lowSpeedRatio bound the plausible elapsed time
	// relative to the estimate for anomaly classification.
	highSpeedRatio = 0.5
	lowSpeedRatio  = 3.0

	// candidateEndpoints guards path search against an outlier first or
	// last detection by trying several start and end nodes.
	candidateEndpoints = 3
)

// Analyzer runs the spatiotemporal operations over observation snapshots.
// Each call works on its own copy of the input; the analyzer itself is
// immutable and safe for concurrent use.
type Analyzer struct {
	est *Estimator
}

// NewAnalyzer creates an analyzer around a travel-time estimator.
func NewAnalyzer(est *Estimator) *Analyzer {
	return &Analyzer{est: est}
}

// Estimator exposes the underlying travel-time estimator.
func (a *Analyzer) Estimator() *Estimator {
	return a.est
}

// sortedByTime returns a time-ascending copy, leaving the input untouched.
func sortedByTime(records []models.Observation) []models.Observation {
	out := make([]models.Observation, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func obsPoint(o *models.Observation) spatial.Point {
	return spatial.Point{X: o.LocationX, Y: o.LocationY}
}

// safeRatio divides num by den, mapping a zero denominator to +Inf so the
// ratio still reads as "beyond threshold" for instantaneous transitions.
func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return math.Inf(1)
	}
	return num / den
}

// FilterByConstraints drops observations whose timing is inconsistent with
// feasible travel from the previously kept observation.
//
// Single-pass greedy scan: the first observation is always kept; each
// subsequent one is kept iff the elapsed time since the last kept record is
// at least the estimated travel time divided by the multiplier. Rejected
// records are dropped outright, not re-evaluated against later points.
// The result is a subsequence of the time-sorted input with all enrichment
// fields preserved.
func (a *Analyzer) FilterByConstraints(records []models.Observation, multiplier float64) []models.Observation {
	if len(records) <= 1 {
		return sortedByTime(records)
	}
	if multiplier <= 0 {
		multiplier = DefaultThresholdMultiplier
	}

	sorted := sortedByTime(records)
	kept := make([]models.Observation, 0, len(sorted))
	kept = append(kept, sorted[0])

	for i := 1; i < len(sorted); i++ {
		prev := &kept[len(kept)-1]
		curr := &sorted[i]

		elapsed := curr.Timestamp.Sub(prev.Timestamp).Seconds()
		estimated := a.est.TravelTime(obsPoint(prev), obsPoint(curr))

		if elapsed >= estimated/multiplier {
			kept = append(kept, *curr)
		} else {
			log.Printf("[Analyzer] record %d filtered: elapsed %.1fs < estimated %.1fs / %.1f",
				curr.ID, elapsed, estimated, multiplier)
		}
	}

	return kept
}

// AnalyzeAnomalies classifies consecutive pairs of the time-sorted input as
// high_speed (implausibly fast) or low_speed (implausibly slow or a
// stationary gap). The classes are mutually exclusive per pair. Derived,
// read-only data, recomputed on each call.
func (a *Analyzer) AnalyzeAnomalies(records []models.Observation) []models.Anomaly {
	anomalies := []models.Anomaly{}
	if len(records) <= 1 {
		return anomalies
	}

	sorted := sortedByTime(records)
	for i := 1; i < len(sorted); i++ {
		prev := &sorted[i-1]
		curr := &sorted[i]

		elapsed := curr.Timestamp.Sub(prev.Timestamp).Seconds()
		estimated := a.est.TravelTime(obsPoint(prev), obsPoint(curr))

		switch {
		case elapsed < estimated*highSpeedRatio:
			anomalies = append(anomalies, models.Anomaly{
				Type:                models.AnomalyHighSpeed,
				PrevRecordID:        prev.ID,
				CurrRecordID:        curr.ID,
				TimeDiff:            elapsed,
				EstimatedTravelTime: estimated,
				SpeedRatio:          safeRatio(estimated, elapsed),
			})
		case elapsed > estimated*lowSpeedRatio:
			anomalies = append(anomalies, models.Anomaly{
				Type:                models.AnomalyLowSpeed,
				PrevRecordID:        prev.ID,
				CurrRecordID:        curr.ID,
				TimeDiff:            elapsed,
				EstimatedTravelTime: estimated,
				SpeedRatio:          safeRatio(elapsed, estimated),
			})
		}
	}
	return anomalies
}

// Segments extracts camera-to-camera transitions from the time-sorted
// input. Consecutive records at the same camera do not form a segment.
func (a *Analyzer) Segments(records []models.Observation) []models.TrajectorySegment {
	segments := []models.TrajectorySegment{}
	if len(records) <= 1 {
		return segments
	}

	sorted := sortedByTime(records)
	for i := 0; i < len(sorted)-1; i++ {
		start := &sorted[i]
		end := &sorted[i+1]
		if start.CameraID == end.CameraID {
			continue
		}
		segments = append(segments, models.TrajectorySegment{
			StartRecordID: start.ID,
			EndRecordID:   end.ID,
			StartCamera:   start.CameraID,
			EndCamera:     end.CameraID,
			StartTime:     start.Timestamp,
			EndTime:       end.Timestamp,
			TimeDiff:      end.Timestamp.Sub(start.Timestamp).Seconds(),
			StartX:        start.LocationX,
			StartY:        start.LocationY,
			EndX:          end.LocationX,
			EndY:          end.LocationY,
		})
	}
	return segments
}
