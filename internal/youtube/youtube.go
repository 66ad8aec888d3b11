/*
Package youtube lists recent uploads of a channel through the YouTube Data API
v3 search endpoint.
*/
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/sources"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	searchEndpoint = "https://www.googleapis.com/youtube/v3/search"
	watchURL       = "https://www.youtube.com/watch?v=%s"
)

type Client struct {
	apiKey   string
	client   *sources.HTTPClient
	endpoint string
	logger   *slog.Logger
}

func NewClient(apiKey string, httpClient *sources.HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = sources.NewHTTPClient()
	}
	return &Client{
		apiKey:   apiKey,
		client:   httpClient,
		endpoint: searchEndpoint,
		logger:   logging.OrDiscard(logger).With("component", "youtube"),
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListToday returns up to maxVideos videos of channelID published after since,
// newest first.
func (c *Client) ListToday(ctx context.Context, channelID, channelName string, maxVideos int, since time.Time) ([]types.Video, error) {
	if c.apiKey == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "youtube", channelName, "YOUTUBE_API_KEY not set", nil)
	}
	if channelID == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "youtube", channelName, "channel_id not set", nil)
	}
	if maxVideos <= 0 {
		maxVideos = 3
	}

	publishedAfter := since.UTC().Format("2006-01-02T15:04:05Z")

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid youtube endpoint: %w", err)
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("channelId", channelID)
	q.Set("order", "date")
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(maxVideos))
	q.Set("publishedAfter", publishedAfter)
	q.Set("key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	resp, err := c.client.Get(ctx, endpoint.String())
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "youtube", channelName, "search request", err)
	}
	defer resp.Body.Close()

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, faults.Wrap(faults.ErrSource, "youtube", channelName, "decode response: "+resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Error != nil {
		msg := resp.Status
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return nil, faults.Wrap(faults.ErrSource, "youtube", channelName, msg, nil)
	}

	videos := make([]types.Video, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}

		var published *time.Time
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			published = &ts
		}

		videos = append(videos, types.Video{
			Title:     strings.TrimSpace(html.UnescapeString(item.Snippet.Title)),
			ID:        id,
			Channel:   channelName,
			URL:       fmt.Sprintf(watchURL, id),
			Published: published,
		})
		if len(videos) == maxVideos {
			break
		}
	}

	c.logger.Info("videos listed", "channel", channelName, "count", len(videos), "published_after", publishedAfter)
	return videos, nil
}
