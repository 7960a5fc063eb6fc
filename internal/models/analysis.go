package models

import "strings"

// NeutralMarker identifies the catch-all sentiment bucket. Bucket names are
// free-form strings from the model; the one containing this marker is the
// neutral/other bucket rather than a viewpoint.
const NeutralMarker = "中立"

// SentimentBucket is one classification bucket and the number of comments
// assigned to it. Names arrive rewritten into their display form
// ("意見 A", "中立/その他").
type SentimentBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IsNeutral reports whether the bucket is the neutral/other catch-all.
func (b SentimentBucket) IsNeutral() bool {
	return strings.Contains(b.Name, NeutralMarker)
}

// AnalysisResult is the terminal output of a successful run.
type AnalysisResult struct {
	Summary    string            `json:"summary"`
	Viewpoints []string          `json:"viewpoints"`
	Sentiment  []SentimentBucket `json:"sentiment"`
}
