// Package youtube wraps the two YouTube Data API v3 calls the pipeline
// needs: a one-shot video metadata lookup and a paged top-level comment
// fetch. All access is API-key authenticated; there are no user-scoped
// resources here.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"comment-lens/internal/models"
	"comment-lens/shared/apperrors"
	"comment-lens/shared/monitoring"
)

// VideoSource lists videos by ID. Satisfied by the real videos collection
// and by test doubles.
type VideoSource interface {
	List(ctx context.Context, videoID string) (*youtube.VideoListResponse, error)
}

// ThreadSource lists one page of comment threads for a video.
type ThreadSource interface {
	List(ctx context.Context, videoID, pageToken string, pageSize int64) (*youtube.CommentThreadListResponse, error)
}

// Client fetches video metadata and comment batches.
type Client struct {
	videos      VideoSource
	threads     ThreadSource
	pageSize    int64
	maxComments int
}

// New builds a Client backed by the real API.
func New(ctx context.Context, apiKey string, pageSize int64, maxComments int) (*Client, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return NewWithSources(&videosCollection{service.Videos}, &threadsCollection{service.CommentThreads}, pageSize, maxComments), nil
}

// NewWithSources builds a Client over explicit sources so tests can
// substitute doubles.
func NewWithSources(videos VideoSource, threads ThreadSource, pageSize int64, maxComments int) *Client {
	return &Client{
		videos:      videos,
		threads:     threads,
		pageSize:    pageSize,
		maxComments: maxComments,
	}
}

type videosCollection struct {
	service *youtube.VideosService
}

func (v *videosCollection) List(ctx context.Context, videoID string) (*youtube.VideoListResponse, error) {
	return v.service.List([]string{"snippet"}).
		Id(videoID).
		Context(ctx).
		Do()
}

type threadsCollection struct {
	service *youtube.CommentThreadsService
}

func (t *threadsCollection) List(ctx context.Context, videoID, pageToken string, pageSize int64) (*youtube.CommentThreadListResponse, error) {
	call := t.service.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(pageSize).
		TextFormat("plainText").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// VideoDetails fetches title and thumbnail for a video in a single request.
// No retries, no caching.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*models.VideoDetails, error) {
	resp, err := c.videos.List(ctx, videoID)
	if err != nil {
		monitoring.YouTubeRequestsTotal.WithLabelValues("videos", "error").Inc()
		return nil, classifyAPIError(err, "metadata fetch failed")
	}
	monitoring.YouTubeRequestsTotal.WithLabelValues("videos", "ok").Inc()

	if len(resp.Items) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "video not found")
	}

	details := &models.VideoDetails{ID: videoID}
	if snippet := resp.Items[0].Snippet; snippet != nil {
		details.Title = snippet.Title
		details.ThumbnailURL = bestThumbnail(snippet.Thumbnails)
	}
	return details, nil
}

// Comments fetches top-level comments in display-text form, following the
// continuation cursor until the upstream runs out of pages or the
// accumulated count reaches the cap. Pages are kept whole: the batch is
// never trimmed down to the cap, and no page is requested purely to trim.
func (c *Client) Comments(ctx context.Context, videoID string) ([]string, error) {
	var comments []string
	pageToken := ""

	for {
		resp, err := c.threads.List(ctx, videoID, pageToken, c.pageSize)
		if err != nil {
			monitoring.YouTubeRequestsTotal.WithLabelValues("commentThreads", "error").Inc()
			// a failed page poisons the whole batch
			return nil, classifyAPIError(err, "comment fetch failed")
		}
		monitoring.YouTubeRequestsTotal.WithLabelValues("commentThreads", "ok").Inc()

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
		if len(comments) >= c.maxComments {
			break
		}
	}

	log.Printf("Fetched %d comments for video %s", len(comments), videoID)
	return comments, nil
}

// bestThumbnail prefers the high-resolution thumbnail and falls back to the
// default one.
func bestThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	if thumbnails.High != nil && thumbnails.High.Url != "" {
		return thumbnails.High.Url
	}
	if thumbnails.Default != nil && thumbnails.Default.Url != "" {
		return thumbnails.Default.Url
	}
	return ""
}

// classifyAPIError maps googleapi error reasons onto the error taxonomy.
// commentsDisabled and keyInvalid get their own kinds; everything else is an
// upstream failure carrying the upstream message when one exists.
func classifyAPIError(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		for _, item := range apiErr.Errors {
			switch item.Reason {
			case "commentsDisabled":
				return apperrors.Wrap(apperrors.KindCommentsDisabled, err, "comments are disabled for this video")
			case "keyInvalid":
				return apperrors.Wrap(apperrors.KindInvalidCredential, err, "the configured YouTube API key was rejected")
			}
		}
		if apiErr.Message != "" {
			return apperrors.Wrap(apperrors.KindUpstreamFailure, err, message+": "+apiErr.Message)
		}
	}
	return apperrors.Wrap(apperrors.KindUpstreamFailure, err, message)
}
