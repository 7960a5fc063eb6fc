package orchestrator

import (
	"time"

	"comment-lens/internal/models"
	"comment-lens/shared/apperrors"
)

// State names one step of an analysis run's lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateFetchingMetadata State = "fetching_metadata"
	StateFetchingComments State = "fetching_comments"
	StateAnalyzing        State = "analyzing"
	StateDone             State = "done"
	StateError            State = "error"
)

// Terminal reports whether the run has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// StageLabel is the user-facing progress text for the state.
func (s State) StageLabel() string {
	switch s {
	case StateFetchingMetadata:
		return "fetching video metadata…"
	case StateFetchingComments:
		return "fetching comments…"
	case StateAnalyzing:
		return "analyzing comments with AI…"
	case StateDone:
		return "analysis complete"
	case StateError:
		return "analysis failed"
	default:
		return ""
	}
}

// RunError is the user-facing error of a failed run.
type RunError struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// Run tracks one analysis request as it moves through the pipeline.
// Callers only ever see clones; the live struct belongs to the registry.
type Run struct {
	ID           string                 `json:"id"`
	URL          string                 `json:"url,omitempty"`
	State        State                  `json:"state"`
	StageLabel   string                 `json:"stageLabel,omitempty"`
	Video        *models.VideoDetails   `json:"video,omitempty"`
	CommentCount int                    `json:"commentCount,omitempty"`
	Result       *models.AnalysisResult `json:"result,omitempty"`
	Error        *RunError              `json:"error,omitempty"`
	Superseded   bool                   `json:"superseded,omitempty"`
	StartedAt    time.Time              `json:"startedAt"`
	FinishedAt   *time.Time             `json:"finishedAt,omitempty"`

	seq uint64
}

// setState advances the run and keeps the user-facing stage label in sync.
func (r *Run) setState(s State) {
	r.State = s
	r.StageLabel = s.StageLabel()
}

// clone returns a copy safe to hand out. Video, Result and Error are
// treated as immutable once set.
func (r *Run) clone() *Run {
	copied := *r
	return &copied
}
