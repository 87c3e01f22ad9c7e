package models

import "time"

// Match is one re-identification hit: a candidate observation whose
// appearance feature cleared the similarity threshold against the query.
// Matches are ranked by descending similarity, ties broken by ascending
// timestamp. Not persisted by the core.
type Match struct {
	CandidateID int64     `json:"candidateId"`
	StudentID   *string   `json:"studentId,omitempty"`
	CameraID    int64     `json:"cameraId"`
	Timestamp   time.Time `json:"timestamp"`
	LocationX   float64   `json:"locationX"`
	LocationY   float64   `json:"locationY"`
	Similarity  float64   `json:"similarity"`
}

// SkippedCandidate records a candidate excluded from a matching batch,
// with the reason (typically a feature extraction failure).
type SkippedCandidate struct {
	CandidateID int64  `json:"candidateId"`
	Reason      string `json:"reason"`
}

// MatchResult is the full outcome of a batch matching call.
type MatchResult struct {
	Matches []Match            `json:"matches"`
	Skipped []SkippedCandidate `json:"skipped,omitempty"`
}
