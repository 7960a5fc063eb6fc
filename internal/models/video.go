package models

// VideoDetails is the slice of video metadata the dashboard renders in the
// result header.
type VideoDetails struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
}
