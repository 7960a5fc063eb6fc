package youtube

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"comment-lens/shared/apperrors"
)

type fakeVideos struct {
	resp  *youtube.VideoListResponse
	err   error
	calls int
}

func (f *fakeVideos) List(ctx context.Context, videoID string) (*youtube.VideoListResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeThreads struct {
	pages  []*youtube.CommentThreadListResponse
	err    error
	errAt  int // 1-based call index that fails, 0 for never
	calls  int
	tokens []string
}

func (f *fakeThreads) List(ctx context.Context, videoID, pageToken string, pageSize int64) (*youtube.CommentThreadListResponse, error) {
	f.calls++
	f.tokens = append(f.tokens, pageToken)
	if f.errAt != 0 && f.calls == f.errAt {
		return nil, f.err
	}
	return f.pages[f.calls-1], nil
}

func videoResponse(title string, thumbnails *youtube.ThumbnailDetails) *youtube.VideoListResponse {
	return &youtube.VideoListResponse{
		Items: []*youtube.Video{
			{Snippet: &youtube.VideoSnippet{Title: title, Thumbnails: thumbnails}},
		},
	}
}

func commentPage(nextToken string, texts ...string) *youtube.CommentThreadListResponse {
	resp := &youtube.CommentThreadListResponse{NextPageToken: nextToken}
	for _, text := range texts {
		resp.Items = append(resp.Items, &youtube.CommentThread{
			Snippet: &youtube.CommentThreadSnippet{
				TopLevelComment: &youtube.Comment{
					Snippet: &youtube.CommentSnippet{TextDisplay: text},
				},
			},
		})
	}
	return resp
}

func numberedPage(nextToken string, start, count int) *youtube.CommentThreadListResponse {
	texts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		texts = append(texts, fmt.Sprintf("comment %d", start+i))
	}
	return commentPage(nextToken, texts...)
}

func apiError(code int, message string, reasons ...string) error {
	apiErr := &googleapi.Error{Code: code, Message: message}
	for _, reason := range reasons {
		apiErr.Errors = append(apiErr.Errors, googleapi.ErrorItem{Reason: reason})
	}
	return apiErr
}

func TestVideoDetails(t *testing.T) {
	highAndDefault := &youtube.ThumbnailDetails{
		High:    &youtube.Thumbnail{Url: "https://i.ytimg.com/hq.jpg"},
		Default: &youtube.Thumbnail{Url: "https://i.ytimg.com/default.jpg"},
	}
	defaultOnly := &youtube.ThumbnailDetails{
		Default: &youtube.Thumbnail{Url: "https://i.ytimg.com/default.jpg"},
	}

	tests := []struct {
		name          string
		videos        *fakeVideos
		wantTitle     string
		wantThumbnail string
		wantKind      apperrors.Kind
		wantMsg       string
	}{
		{
			name:          "prefers high thumbnail",
			videos:        &fakeVideos{resp: videoResponse("Test Video", highAndDefault)},
			wantTitle:     "Test Video",
			wantThumbnail: "https://i.ytimg.com/hq.jpg",
		},
		{
			name:          "falls back to default thumbnail",
			videos:        &fakeVideos{resp: videoResponse("Test Video", defaultOnly)},
			wantTitle:     "Test Video",
			wantThumbnail: "https://i.ytimg.com/default.jpg",
		},
		{
			name:      "tolerates missing thumbnails",
			videos:    &fakeVideos{resp: videoResponse("Test Video", nil)},
			wantTitle: "Test Video",
		},
		{
			name:     "video not found",
			videos:   &fakeVideos{resp: &youtube.VideoListResponse{}},
			wantKind: apperrors.KindNotFound,
			wantMsg:  "video not found",
		},
		{
			name:     "rejected api key",
			videos:   &fakeVideos{err: apiError(400, "Bad Request", "keyInvalid")},
			wantKind: apperrors.KindInvalidCredential,
			wantMsg:  "the configured YouTube API key was rejected",
		},
		{
			name:     "upstream error carries api message",
			videos:   &fakeVideos{err: apiError(503, "Backend Error")},
			wantKind: apperrors.KindUpstreamFailure,
			wantMsg:  "metadata fetch failed: Backend Error",
		},
		{
			name:     "plain transport error",
			videos:   &fakeVideos{err: errors.New("connection reset")},
			wantKind: apperrors.KindUpstreamFailure,
			wantMsg:  "metadata fetch failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewWithSources(tt.videos, &fakeThreads{}, 100, 200)
			got, err := client.VideoDetails(context.Background(), "dQw4w9WgXcQ")

			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("VideoDetails() error = nil, want kind %s", tt.wantKind)
				}
				if kind := apperrors.KindOf(err); kind != tt.wantKind {
					t.Errorf("VideoDetails() error kind = %s, want %s", kind, tt.wantKind)
				}
				if msg := apperrors.MessageOf(err); msg != tt.wantMsg {
					t.Errorf("VideoDetails() error message = %q, want %q", msg, tt.wantMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("VideoDetails() error = %v", err)
			}
			if got.ID != "dQw4w9WgXcQ" {
				t.Errorf("VideoDetails() ID = %q, want %q", got.ID, "dQw4w9WgXcQ")
			}
			if got.Title != tt.wantTitle {
				t.Errorf("VideoDetails() Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.ThumbnailURL != tt.wantThumbnail {
				t.Errorf("VideoDetails() ThumbnailURL = %q, want %q", got.ThumbnailURL, tt.wantThumbnail)
			}
			if tt.videos.calls != 1 {
				t.Errorf("VideoDetails() made %d requests, want 1", tt.videos.calls)
			}
		})
	}
}

func TestCommentsPagination(t *testing.T) {
	tests := []struct {
		name       string
		pages      []*youtube.CommentThreadListResponse
		max        int
		wantCount  int
		wantTokens []string
	}{
		{
			name:       "single short page",
			pages:      []*youtube.CommentThreadListResponse{numberedPage("", 1, 40)},
			max:        200,
			wantCount:  40,
			wantTokens: []string{""},
		},
		{
			name: "stops at cap",
			pages: []*youtube.CommentThreadListResponse{
				numberedPage("t1", 1, 100),
				numberedPage("t2", 101, 100),
				numberedPage("", 201, 50),
			},
			max:        200,
			wantCount:  200,
			wantTokens: []string{"", "t1"},
		},
		{
			name: "exhausts pages below cap",
			pages: []*youtube.CommentThreadListResponse{
				numberedPage("t1", 1, 100),
				numberedPage("", 101, 50),
			},
			max:        200,
			wantCount:  150,
			wantTokens: []string{"", "t1"},
		},
		{
			name: "keeps whole page past cap",
			pages: []*youtube.CommentThreadListResponse{
				numberedPage("t1", 1, 100),
				numberedPage("t2", 101, 100),
				numberedPage("", 201, 100),
			},
			max:        150,
			wantCount:  200,
			wantTokens: []string{"", "t1"},
		},
		{
			name:       "empty batch is valid",
			pages:      []*youtube.CommentThreadListResponse{commentPage("")},
			max:        200,
			wantCount:  0,
			wantTokens: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := &fakeThreads{pages: tt.pages}
			client := NewWithSources(&fakeVideos{}, threads, 100, tt.max)

			got, err := client.Comments(context.Background(), "dQw4w9WgXcQ")
			if err != nil {
				t.Fatalf("Comments() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("Comments() returned %d comments, want %d", len(got), tt.wantCount)
			}
			if len(threads.tokens) != len(tt.wantTokens) {
				t.Fatalf("Comments() made %d requests, want %d", len(threads.tokens), len(tt.wantTokens))
			}
			for i, token := range tt.wantTokens {
				if threads.tokens[i] != token {
					t.Errorf("request %d used page token %q, want %q", i+1, threads.tokens[i], token)
				}
			}
		})
	}
}

func TestCommentsExtractsDisplayText(t *testing.T) {
	page := &youtube.CommentThreadListResponse{
		Items: []*youtube.CommentThread{
			{},
			{Snippet: &youtube.CommentThreadSnippet{}},
			{Snippet: &youtube.CommentThreadSnippet{TopLevelComment: &youtube.Comment{}}},
			{Snippet: &youtube.CommentThreadSnippet{
				TopLevelComment: &youtube.Comment{
					Snippet: &youtube.CommentSnippet{TextDisplay: "great video"},
				},
			}},
		},
	}
	client := NewWithSources(&fakeVideos{}, &fakeThreads{pages: []*youtube.CommentThreadListResponse{page}}, 100, 200)

	got, err := client.Comments(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Comments() error = %v", err)
	}
	if len(got) != 1 || got[0] != "great video" {
		t.Errorf("Comments() = %v, want [great video]", got)
	}
}

func TestCommentsErrors(t *testing.T) {
	tests := []struct {
		name     string
		threads  *fakeThreads
		wantKind apperrors.Kind
		wantMsg  string
	}{
		{
			name:     "comments disabled",
			threads:  &fakeThreads{errAt: 1, err: apiError(403, "The video has disabled comments.", "commentsDisabled")},
			wantKind: apperrors.KindCommentsDisabled,
			wantMsg:  "comments are disabled for this video",
		},
		{
			name:     "rejected api key",
			threads:  &fakeThreads{errAt: 1, err: apiError(400, "Bad Request", "keyInvalid")},
			wantKind: apperrors.KindInvalidCredential,
			wantMsg:  "the configured YouTube API key was rejected",
		},
		{
			name: "later page failure discards earlier pages",
			threads: &fakeThreads{
				pages: []*youtube.CommentThreadListResponse{numberedPage("t1", 1, 100)},
				errAt: 2,
				err:   apiError(503, "Backend Error"),
			},
			wantKind: apperrors.KindUpstreamFailure,
			wantMsg:  "comment fetch failed: Backend Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewWithSources(&fakeVideos{}, tt.threads, 100, 200)

			got, err := client.Comments(context.Background(), "dQw4w9WgXcQ")
			if err == nil {
				t.Fatalf("Comments() error = nil, want kind %s", tt.wantKind)
			}
			if got != nil {
				t.Errorf("Comments() returned %d comments alongside error, want none", len(got))
			}
			if kind := apperrors.KindOf(err); kind != tt.wantKind {
				t.Errorf("Comments() error kind = %s, want %s", kind, tt.wantKind)
			}
			if msg := apperrors.MessageOf(err); msg != tt.wantMsg {
				t.Errorf("Comments() error message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
