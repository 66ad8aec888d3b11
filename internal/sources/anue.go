package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	anueSourceLabel = "鉅亨網"
	anueNewsURL     = "https://news.cnyes.com/news/id/%s"
	anueLimit       = "30"
)

// AnueSource reads the Anue (cnyes) news list JSON API.
type AnueSource struct {
	name   string
	apiURL string
	client *HTTPClient
}

type anueResponse struct {
	Items struct {
		Data []anueItem `json:"data"`
	} `json:"items"`
}

type anueItem struct {
	Title     string      `json:"title"`
	NewsID    json.Number `json:"newsId"`
	Summary   string      `json:"summary"`
	PublishAt int64       `json:"publishAt"`
}

func NewAnueSource(name, apiURL string, client *HTTPClient) *AnueSource {
	if client == nil {
		client = NewHTTPClient()
	}
	return &AnueSource{name: name, apiURL: apiURL, client: client}
}

func (s *AnueSource) Name() string { return "anue:" + s.name }

func (s *AnueSource) Fetch(ctx context.Context) ([]types.RawItem, error) {
	endpoint, err := url.Parse(s.apiURL)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "anue", s.name, "invalid api_url", err)
	}
	query := endpoint.Query()
	query.Set("limit", anueLimit)
	endpoint.RawQuery = query.Encode()

	resp, err := s.client.Get(ctx, endpoint.String())
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "anue", s.name, "fetch news list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.Wrap(faults.ErrSource, "anue", s.name, fmt.Sprintf("api returned %s", resp.Status), nil)
	}

	var payload anueResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, faults.Wrap(faults.ErrSource, "anue", s.name, "decode response", err)
	}

	items := make([]types.RawItem, 0, len(payload.Items.Data))
	for _, entry := range payload.Items.Data {
		id := entry.NewsID.String()
		if id == "" {
			continue
		}

		var published *time.Time
		if entry.PublishAt > 0 {
			ts := time.Unix(entry.PublishAt, 0).UTC()
			published = &ts
		}

		item, ok := newItem(entry.Title, fmt.Sprintf(anueNewsURL, id), anueSourceLabel, StripHTML(entry.Summary), published)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
