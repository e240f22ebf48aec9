package player

import (
	"context"
	"encoding/json"
	"time"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/repositories"
)

// videoCache is the persisted feed: timestamp is unix milliseconds of the fetch.
type videoCache struct {
	Videos    []models.Video `json:"videos"`
	Timestamp int64          `json:"timestamp"`
}

// LatestVideos returns the channel's newest uploads.
//
// A fetch younger than the video cache TTL is served from the KV store unless forceRefresh.
// When the fetch fails the last stored feed is returned regardless of age. No Spotify token
// is needed.
func (p *Player) LatestVideos(ctx context.Context, forceRefresh bool) []models.Video {
	cached, fetchedAt, hasCache := p.readVideoCache()
	if hasCache && !forceRefresh && p.clock.Now().Sub(fetchedAt) < p.videoTTL {
		return cached
	}

	if p.videos == nil {
		return orEmpty(cached)
	}

	videos, err := p.videos.LatestVideos(ctx)
	if err != nil {
		p.logger.Error("failed to fetch latest videos", "error", err)
		return orEmpty(cached)
	}

	p.writeVideoCache(videos)
	return videos
}

func (p *Player) readVideoCache() ([]models.Video, time.Time, bool) {
	if p.kv == nil {
		return nil, time.Time{}, false
	}

	blob, ok, err := p.kv.Get(repositories.KeyLatestVideos)
	if err != nil {
		p.logger.Warn("failed to read video cache", "error", err)
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}

	var vc videoCache
	if err := json.Unmarshal([]byte(blob), &vc); err != nil {
		p.logger.Warn("discarding malformed video cache", "error", err)
		return nil, time.Time{}, false
	}
	return vc.Videos, time.UnixMilli(vc.Timestamp), true
}

func (p *Player) writeVideoCache(videos []models.Video) {
	if p.kv == nil {
		return
	}

	blob, err := json.Marshal(videoCache{Videos: videos, Timestamp: p.clock.Now().UnixMilli()})
	if err != nil {
		p.logger.Error("failed to encode video cache", "error", err)
		return
	}
	if err := p.kv.SetMany(map[string]string{repositories.KeyLatestVideos: string(blob)}); err != nil {
		p.logger.Error("failed to write video cache", "error", err)
	}
}

func orEmpty(videos []models.Video) []models.Video {
	if videos == nil {
		return []models.Video{}
	}
	return videos
}
