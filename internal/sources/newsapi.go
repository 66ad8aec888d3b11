package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/everything"
	newsAPIPageSize = 50
	removedTitle    = "[Removed]"
)

// NewsAPISource queries the NewsAPI.org everything endpoint for the last day.
type NewsAPISource struct {
	cfg      config.NewsAPIConfig
	client   *HTTPClient
	endpoint string
	now      func() time.Time
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

func NewNewsAPISource(cfg config.NewsAPIConfig, client *HTTPClient) *NewsAPISource {
	if client == nil {
		client = NewHTTPClient()
	}
	return &NewsAPISource{cfg: cfg, client: client, endpoint: newsAPIEndpoint, now: time.Now}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

func (s *NewsAPISource) Fetch(ctx context.Context) ([]types.RawItem, error) {
	if s.cfg.APIKey == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "newsapi", "", "NEWSAPI_KEY not set", nil)
	}

	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "newsapi", "", "invalid endpoint", err)
	}
	params := url.Values{}
	params.Set("q", s.cfg.Query)
	params.Set("language", s.cfg.Language)
	params.Set("sortBy", s.cfg.SortBy)
	params.Set("from", s.now().UTC().AddDate(0, 0, -1).Format("2006-01-02"))
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	params.Set("apiKey", s.cfg.APIKey)
	endpoint.RawQuery = params.Encode()

	resp, err := s.client.Get(ctx, endpoint.String())
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "newsapi", "", "request articles", err)
	}
	defer resp.Body.Close()

	// Error responses carry a JSON body with status "error", so decode first.
	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, faults.Wrap(faults.ErrSource, "newsapi", "", "decode response: "+resp.Status, err)
	}
	if payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, faults.Wrap(faults.ErrSource, "newsapi", payload.Code, msg, nil)
	}

	items := make([]types.RawItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if strings.TrimSpace(a.Title) == removedTitle {
			continue
		}

		source := a.Source.Name
		if source == "" {
			source = "NewsAPI"
		}

		var published *time.Time
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = &ts
		}

		item, ok := newItem(a.Title, a.URL, source, a.Description, published)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
