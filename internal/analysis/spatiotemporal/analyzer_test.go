package spatiotemporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrack/trajectory-backend-go/internal/models"
	"github.com/campustrack/trajectory-backend-go/internal/spatial"
)

var baseTime = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	est, err := NewEstimator(spatial.Projected, DefaultWalkingSpeed, nil)
	require.NoError(t, err)
	return NewAnalyzer(est)
}

// obs builds an observation at (x, y) seen by camera cam, offset seconds
// after baseTime.
func obs(id, cam int64, x, y float64, offset float64) models.Observation {
	return models.Observation{
		ID:        id,
		CameraID:  cam,
		Timestamp: baseTime.Add(time.Duration(offset * float64(time.Second))),
		LocationX: x,
		LocationY: y,
	}
}

func TestFilterByConstraintsPlausiblePair(t *testing.T) {
	a := newTestAnalyzer(t)

	// 50 m apart, 40 s elapsed. Estimated travel at 1.4 m/s is about
	// 35.7 s, and 40 >= 35.7/1.5, so both records survive.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 40),
	}
	kept := a.FilterByConstraints(records, DefaultThresholdMultiplier)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(1), kept[0].ID)
	assert.Equal(t, int64(2), kept[1].ID)
}

func TestFilterByConstraintsDropsImplausible(t *testing.T) {
	a := newTestAnalyzer(t)

	// Same 50 m but only 10 s elapsed: 10 < 35.7/1.5, so the second
	// record is dropped.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 10),
	}
	kept := a.FilterByConstraints(records, DefaultThresholdMultiplier)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(1), kept[0].ID)
}

func TestFilterByConstraintsFirstAlwaysKept(t *testing.T) {
	a := newTestAnalyzer(t)

	records := []models.Observation{
		obs(3, 1, 0, 0, 5), // out of order on purpose
		obs(1, 2, 500, 0, 0),
	}
	kept := a.FilterByConstraints(records, DefaultThresholdMultiplier)
	require.NotEmpty(t, kept)
	assert.Equal(t, int64(1), kept[0].ID)
}

func TestFilterByConstraintsComparesAgainstLastKept(t *testing.T) {
	a := newTestAnalyzer(t)

	// Record 2 is implausible from record 1 and is dropped. Record 3 is
	// then judged against record 1, not record 2: 60 s for 50 m passes.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 200, 0, 10),
		obs(3, 3, 50, 0, 60),
	}
	kept := a.FilterByConstraints(records, DefaultThresholdMultiplier)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(1), kept[0].ID)
	assert.Equal(t, int64(3), kept[1].ID)
}

func TestFilterByConstraintsResultIsSubsequence(t *testing.T) {
	a := newTestAnalyzer(t)

	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 100, 0, 80),
		obs(3, 3, 100, 100, 90), // 100 m in 10 s, dropped
		obs(4, 4, 150, 0, 200),
	}
	kept := a.FilterByConstraints(records, DefaultThresholdMultiplier)

	sorted := sortedByTime(records)
	pos := 0
	for _, k := range kept {
		found := false
		for ; pos < len(sorted); pos++ {
			if sorted[pos].ID == k.ID {
				found = true
				pos++
				break
			}
		}
		assert.True(t, found, "record %d out of order or missing", k.ID)
	}
}

func TestFilterByConstraintsSmallInputs(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.Empty(t, a.FilterByConstraints(nil, 1.5))
	assert.Empty(t, a.FilterByConstraints([]models.Observation{}, 1.5))

	single := []models.Observation{obs(1, 1, 0, 0, 0)}
	assert.Len(t, a.FilterByConstraints(single, 1.5), 1)
}

func TestFilterByConstraintsDefaultMultiplier(t *testing.T) {
	a := newTestAnalyzer(t)

	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 40),
	}
	// Non-positive multiplier falls back to the default.
	kept := a.FilterByConstraints(records, 0)
	assert.Len(t, kept, 2)
	kept = a.FilterByConstraints(records, -2)
	assert.Len(t, kept, 2)
}

func TestAnalyzeAnomaliesHighSpeed(t *testing.T) {
	a := newTestAnalyzer(t)

	// 50 m in 10 s: estimated 35.7 s, elapsed below half of it.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 10),
	}
	anomalies := a.AnalyzeAnomalies(records)
	require.Len(t, anomalies, 1)

	an := anomalies[0]
	assert.Equal(t, models.AnomalyHighSpeed, an.Type)
	assert.Equal(t, int64(1), an.PrevRecordID)
	assert.Equal(t, int64(2), an.CurrRecordID)
	assert.InDelta(t, 10.0, an.TimeDiff, 1e-9)
	assert.InDelta(t, 35.71, an.EstimatedTravelTime, 0.01)
	assert.InDelta(t, 3.57, an.SpeedRatio, 0.01)
}

func TestAnalyzeAnomaliesLowSpeed(t *testing.T) {
	a := newTestAnalyzer(t)

	// 50 m in 150 s: elapsed beyond three times the estimate.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 150),
	}
	anomalies := a.AnalyzeAnomalies(records)
	require.Len(t, anomalies, 1)

	an := anomalies[0]
	assert.Equal(t, models.AnomalyLowSpeed, an.Type)
	assert.InDelta(t, 4.2, an.SpeedRatio, 0.01)
}

func TestAnalyzeAnomaliesPlausiblePairIsClean(t *testing.T) {
	a := newTestAnalyzer(t)

	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 50, 0, 40),
	}
	assert.Empty(t, a.AnalyzeAnomalies(records))
}

func TestAnalyzeAnomaliesMutuallyExclusive(t *testing.T) {
	a := newTestAnalyzer(t)

	// One implausibly fast hop followed by one implausibly slow one; each
	// pair yields exactly one anomaly.
	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 2, 100, 0, 10),
		obs(3, 3, 150, 0, 400),
	}
	anomalies := a.AnalyzeAnomalies(records)
	require.Len(t, anomalies, 2)
	assert.Equal(t, models.AnomalyHighSpeed, anomalies[0].Type)
	assert.Equal(t, models.AnomalyLowSpeed, anomalies[1].Type)
}

func TestAnalyzeAnomaliesStationaryGap(t *testing.T) {
	a := newTestAnalyzer(t)

	// Two detections at the same spot with a long gap between them read
	// as a low_speed anomaly with an unbounded ratio.
	records := []models.Observation{
		obs(1, 1, 10, 10, 0),
		obs(2, 1, 10, 10, 600),
	}
	anomalies := a.AnalyzeAnomalies(records)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyLowSpeed, anomalies[0].Type)
}

func TestAnalyzeAnomaliesSmallInputs(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Empty(t, a.AnalyzeAnomalies(nil))
	assert.Empty(t, a.AnalyzeAnomalies([]models.Observation{obs(1, 1, 0, 0, 0)}))
}

func TestSegments(t *testing.T) {
	a := newTestAnalyzer(t)

	records := []models.Observation{
		obs(1, 1, 0, 0, 0),
		obs(2, 1, 0, 0, 10), // same camera, no segment
		obs(3, 2, 100, 0, 90),
	}
	segments := a.Segments(records)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, int64(2), seg.StartRecordID)
	assert.Equal(t, int64(3), seg.EndRecordID)
	assert.Equal(t, int64(1), seg.StartCamera)
	assert.Equal(t, int64(2), seg.EndCamera)
	assert.InDelta(t, 80.0, seg.TimeDiff, 1e-9)
}

func TestSegmentsSmallInputs(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Empty(t, a.Segments(nil))
	assert.Empty(t, a.Segments([]models.Observation{obs(1, 1, 0, 0, 0)}))
}
