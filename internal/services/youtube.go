// YouTube Data API v3 client
//
// Only the search endpoint is used, to list a channel's newest uploads.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/shared"
)

const (
	YouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

	// LatestVideoCount is how many uploads are requested.
	LatestVideoCount = 3
)

// YouTubeThumbnail represents one thumbnail size.
type YouTubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeThumbnails struct {
	Default *YouTubeThumbnail `json:"default"`
	Medium  *YouTubeThumbnail `json:"medium"`
	High    *YouTubeThumbnail `json:"high"`
}

// YouTubeSearchItem is one search result.
type YouTubeSearchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  time.Time         `json:"publishedAt"`
		ChannelID    string            `json:"channelId"`
		Title        string            `json:"title"`
		Description  string            `json:"description"`
		Thumbnails   youtubeThumbnails `json:"thumbnails"`
		ChannelTitle string            `json:"channelTitle"`
	} `json:"snippet"`
}

// YouTubeService searches one channel's uploads with an API key.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	channelID  string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Data API client. baseURL defaults to [YouTubeBaseURL].
func NewYouTubeService(baseURL string, creds shared.YouTubeConfig) *YouTubeService {
	if baseURL == "" {
		baseURL = YouTubeBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		apiKey:     creds.APIKey,
		channelID:  creds.ChannelID,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Configured reports whether both the key and channel are set.
func (y *YouTubeService) Configured() bool {
	return y.apiKey != "" && y.channelID != ""
}

// LatestVideos returns the channel's newest uploads, newest first.
func (y *YouTubeService) LatestVideos(ctx context.Context) ([]models.Video, error) {
	if !y.Configured() {
		return nil, fmt.Errorf("%w: youtube api_key and channel_id", shared.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("key", y.apiKey)
	params.Set("channelId", y.channelID)
	params.Set("part", "snippet")
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(LatestVideoCount))
	params.Set("type", "video")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: youtube search: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: youtube search: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result struct {
		Items []YouTubeSearchItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	videos := make([]models.Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, item.toModel())
	}
	return videos, nil
}

func (item YouTubeSearchItem) toModel() models.Video {
	v := models.Video{
		VideoID:     item.ID.VideoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		PublishedAt: item.Snippet.PublishedAt,
	}
	switch thumbs := item.Snippet.Thumbnails; {
	case thumbs.Medium != nil:
		v.ThumbnailURL = thumbs.Medium.URL
	case thumbs.Default != nil:
		v.ThumbnailURL = thumbs.Default.URL
	case thumbs.High != nil:
		v.ThumbnailURL = thumbs.High.URL
	}
	return v
}
