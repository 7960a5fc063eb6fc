// Package orchestrator drives an analysis run through its stages: resolve
// the video ID from the input, fetch video metadata, fetch the comment
// batch, analyze it. Runs are tracked in an in-memory registry; starting a
// new run supersedes the previous one, and a superseded run's worker keeps
// running but can no longer publish anything.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"comment-lens/internal/models"
	"comment-lens/shared/apperrors"
	"comment-lens/shared/monitoring"
	"comment-lens/shared/youtube"
)

// MetadataSource fetches a video's title and thumbnail.
type MetadataSource interface {
	VideoDetails(ctx context.Context, videoID string) (*models.VideoDetails, error)
}

// CommentSource fetches the top-level comment batch for a video.
type CommentSource interface {
	Comments(ctx context.Context, videoID string) ([]string, error)
}

// Analyzer produces a viewpoint analysis for a comment batch.
type Analyzer interface {
	Analyze(ctx context.Context, comments []string) (*models.AnalysisResult, error)
}

type Orchestrator struct {
	metadata MetadataSource
	comments CommentSource
	analyzer Analyzer
	monitor  *monitoring.Monitor
	registry *registry
}

func New(metadata MetadataSource, comments CommentSource, analyzer Analyzer, monitor *monitoring.Monitor) *Orchestrator {
	return &Orchestrator{
		metadata: metadata,
		comments: comments,
		analyzer: analyzer,
		monitor:  monitor,
		registry: newRegistry(),
	}
}

// Start begins a new analysis run for the given input and returns an
// immediate snapshot: fetching_metadata when the input yielded a video ID,
// error when it did not. Either way the new run replaces the previous one
// as the latest, so stale results disappear the moment a run starts.
func (o *Orchestrator) Start(input string) *Run {
	now := time.Now()
	run := &Run{
		ID:        uuid.NewString(),
		URL:       strings.TrimSpace(input),
		StartedAt: now,
	}

	videoID, err := parseInput(input)
	if err != nil {
		run.setState(StateError)
		run.Error = toRunError(err)
		run.FinishedAt = &now
		initial := run.clone()
		o.registerStart(run)
		monitoring.AnalysisRunsTotal.WithLabelValues("error").Inc()
		o.monitor.RecordFailure(string(initial.Error.Kind), initial.Error.Message)
		log.Printf("Run %s rejected: %s", initial.ID, initial.Error.Message)
		return initial
	}

	run.setState(StateFetchingMetadata)
	initial := run.clone()
	seq := o.registerStart(run)
	// run is now owned by the registry

	log.Printf("Run %s started for video %s", initial.ID, videoID)
	go o.execute(context.Background(), seq, initial.ID, videoID, now)

	return initial
}

func (o *Orchestrator) registerStart(run *Run) uint64 {
	seq, superseded := o.registry.begin(run)
	if superseded {
		monitoring.AnalysisRunsTotal.WithLabelValues("superseded").Inc()
		log.Printf("Run %s superseded a run still in flight", run.ID)
	}
	return seq
}

// Snapshot returns the newest run, or an idle placeholder before the
// first run.
func (o *Orchestrator) Snapshot() *Run {
	if run := o.registry.latest(); run != nil {
		return run
	}
	return &Run{State: StateIdle}
}

// Get returns the run with the given ID.
func (o *Orchestrator) Get(id string) (*Run, bool) {
	return o.registry.get(id)
}

// Prune drops finished runs older than maxAge, keeping the newest.
func (o *Orchestrator) Prune(maxAge time.Duration) {
	if removed := o.registry.prune(maxAge); removed > 0 {
		log.Printf("Pruned %d finished runs", removed)
	}
}

func (o *Orchestrator) execute(ctx context.Context, seq uint64, runID, videoID string, startedAt time.Time) {
	video, err := o.metadata.VideoDetails(ctx, videoID)
	if err != nil {
		o.fail(seq, runID, err)
		return
	}
	if !o.registry.commit(seq, func(run *Run) {
		run.setState(StateFetchingComments)
		run.Video = video
	}) {
		log.Printf("Run %s superseded, abandoning", runID)
		return
	}

	comments, err := o.comments.Comments(ctx, videoID)
	if err != nil {
		o.fail(seq, runID, err)
		return
	}
	if len(comments) == 0 {
		o.fail(seq, runID, apperrors.New(apperrors.KindNoComments, "no comments found, analysis aborted"))
		return
	}
	monitoring.CommentsFetched.Observe(float64(len(comments)))
	if !o.registry.commit(seq, func(run *Run) {
		run.setState(StateAnalyzing)
		run.CommentCount = len(comments)
	}) {
		log.Printf("Run %s superseded, abandoning", runID)
		return
	}

	result, err := o.analyzer.Analyze(ctx, comments)
	if err != nil {
		o.fail(seq, runID, err)
		return
	}

	finished := time.Now()
	committed := o.registry.commit(seq, func(run *Run) {
		run.setState(StateDone)
		run.Result = result
		run.FinishedAt = &finished
	})
	if !committed {
		log.Printf("Run %s finished after being superseded, result dropped", runID)
		return
	}

	duration := finished.Sub(startedAt)
	summary := runSummary(videoID, len(comments), result)
	monitoring.AnalysisRunsTotal.WithLabelValues("done").Inc()
	monitoring.AnalysisRunDuration.Observe(duration.Seconds())
	o.monitor.RecordSuccess(summary, duration)
	log.Printf("Run %s finished: %s", runID, summary)
}

// fail moves the run to the error state, wiping partial progress so a
// failed run never shows leftover video or comment data.
func (o *Orchestrator) fail(seq uint64, runID string, cause error) {
	runErr := toRunError(cause)
	finished := time.Now()
	committed := o.registry.commit(seq, func(run *Run) {
		run.setState(StateError)
		run.Video = nil
		run.CommentCount = 0
		run.Result = nil
		run.Error = runErr
		run.FinishedAt = &finished
	})
	if !committed {
		log.Printf("Run %s failed after being superseded: %s", runID, runErr.Message)
		return
	}
	monitoring.AnalysisRunsTotal.WithLabelValues("error").Inc()
	o.monitor.RecordFailure(string(runErr.Kind), runErr.Message)
	log.Printf("Run %s failed (%s): %s", runID, runErr.Kind, runErr.Message)
}

// parseInput maps the raw input to a video ID, distinguishing empty input
// from input with no recognizable video ID in it.
func parseInput(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", apperrors.New(apperrors.KindInvalidInput, "enter a video URL")
	}
	videoID, ok := youtube.ExtractVideoID(trimmed)
	if !ok {
		return "", apperrors.New(apperrors.KindInvalidInput, "could not find a video ID in the input")
	}
	return videoID, nil
}

func toRunError(err error) *RunError {
	return &RunError{
		Kind:    apperrors.KindOf(err),
		Message: apperrors.MessageOf(err),
	}
}

// runSummary condenses a finished run for the health monitor.
func runSummary(videoID string, commentCount int, result *models.AnalysisResult) string {
	neutral := 0
	for _, bucket := range result.Sentiment {
		if bucket.IsNeutral() {
			neutral += bucket.Count
		}
	}
	return fmt.Sprintf("video %s: %d comments, %d viewpoints, %d neutral",
		videoID, commentCount, len(result.Viewpoints), neutral)
}
