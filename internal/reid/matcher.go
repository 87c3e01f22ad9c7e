package reid

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/campustrack/trajectory-backend-go/internal/models"
)

// ErrNoQueryFeature reports a matching call without a usable query vector.
var ErrNoQueryFeature = errors.New("no query feature vector")

// Sample is one candidate in a matching batch: an observation with either a
// stored feature vector or a raw image for the extractor.
type Sample struct {
	ID        int64
	StudentID *string
	CameraID  int64
	Timestamp time.Time
	LocationX float64
	LocationY float64
	Image     []byte
	Vector    []float64
}

// ProgressFunc receives batch progress. Invoked at bounded intervals, not
// per item, to keep overhead negligible on large batches.
type ProgressFunc func(processed, total int)

// BatchOptions controls a batch extraction run.
type BatchOptions struct {
	Algorithm Algorithm

	// AllowPlaceholder substitutes a random vector when extraction fails.
	// Demo and test flows only; production matching must leave this off so
	// failed records are excluded from comparison.
	AllowPlaceholder bool

	OnProgress ProgressFunc
}

// BatchResult holds the samples that gained a feature vector and the ones
// skipped, with reasons.
type BatchResult struct {
	Samples []Sample
	Skipped []models.SkippedCandidate
}

// Processor runs feature extraction over candidate batches. Matching itself
// is stateless; the only shared state is the model cache, which is warmed
// here before the batch starts.
type Processor struct {
	extractor FeatureExtractor
	cache     *ModelCache
}

// NewProcessor creates a processor around an extractor and model cache.
func NewProcessor(extractor FeatureExtractor, cache *ModelCache) *Processor {
	return &Processor{extractor: extractor, cache: cache}
}

// ExtractBatch fills feature vectors for each sample, reconciled to the
// algorithm's declared dimension. Samples with a stored vector skip the
// extractor. Extraction failures skip the sample with a recorded reason;
// the batch continues.
func (p *Processor) ExtractBatch(samples []Sample, opts BatchOptions) (*BatchResult, error) {
	alg, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if _, err := p.cache.GetOrLoad(alg); err != nil {
			return nil, err
		}
	}

	dim := alg.FeatureDim()
	result := &BatchResult{Samples: make([]Sample, 0, len(samples))}

	total := len(samples)
	step := total / 20
	if step < 1 {
		step = 1
	}

	for i, s := range samples {
		switch {
		case s.Vector != nil:
			s.Vector = ReconcileDimension(s.Vector, dim)
			result.Samples = append(result.Samples, s)

		case s.Image != nil:
			vec, err := p.extractor.Extract(s.Image, alg)
			if err != nil || vec == nil {
				if opts.AllowPlaceholder {
					s.Vector = randomVector(dim)
					result.Samples = append(result.Samples, s)
					log.Printf("[Processor] record %d: extraction failed, using placeholder vector", s.ID)
					break
				}
				reason := "extractor returned no feature"
				if err != nil {
					reason = fmt.Errorf("%w: %v", ErrExtraction, err).Error()
				}
				result.Skipped = append(result.Skipped, models.SkippedCandidate{
					CandidateID: s.ID,
					Reason:      reason,
				})
				log.Printf("[Processor] record %d skipped: %s", s.ID, reason)

			} else {
				s.Vector = ReconcileDimension(vec, dim)
				result.Samples = append(result.Samples, s)
			}

		default:
			result.Skipped = append(result.Skipped, models.SkippedCandidate{
				CandidateID: s.ID,
				Reason:      "no stored feature and no image",
			})
		}

		if opts.OnProgress != nil && ((i+1)%step == 0 || i+1 == total) {
			opts.OnProgress(i+1, total)
		}
	}

	return result, nil
}

// MatchFeatures compares a query vector against candidate samples under one
// algorithm family and returns the candidates whose similarity strictly
// exceeds the threshold, ranked by descending similarity. Ties are broken
// by ascending timestamp (earlier observation first), then by record ID,
// for deterministic output. Pure function: no shared state.
func MatchFeatures(query []float64, candidates []Sample, threshold float64, algorithm Algorithm) ([]models.Match, error) {
	if len(query) == 0 {
		return nil, ErrNoQueryFeature
	}
	alg, err := ParseAlgorithm(string(algorithm))
	if err != nil {
		return nil, err
	}

	dim := alg.FeatureDim()
	q := ReconcileDimension(query, dim)

	matches := make([]models.Match, 0)
	for _, c := range candidates {
		if c.Vector == nil {
			continue
		}
		sim := CosineSimilarity(q, ReconcileDimension(c.Vector, dim))
		if sim > threshold {
			matches = append(matches, models.Match{
				CandidateID: c.ID,
				StudentID:   c.StudentID,
				CameraID:    c.CameraID,
				Timestamp:   c.Timestamp,
				LocationX:   c.LocationX,
				LocationY:   c.LocationY,
				Similarity:  sim,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if !matches[i].Timestamp.Equal(matches[j].Timestamp) {
			return matches[i].Timestamp.Before(matches[j].Timestamp)
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})

	return matches, nil
}

func randomVector(dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = rand.Float64()
	}
	return v
}
