package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

// RSSSource reads one RSS/Atom feed.
type RSSSource struct {
	name   string
	url    string
	client *HTTPClient
}

func NewRSSSource(name, feedURL string, client *HTTPClient) *RSSSource {
	if client == nil {
		client = NewHTTPClient()
	}
	return &RSSSource{name: name, url: feedURL, client: client}
}

func (s *RSSSource) Name() string { return "rss:" + s.name }

func (s *RSSSource) Fetch(ctx context.Context) ([]types.RawItem, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "rss", s.name, "fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.Wrap(faults.ErrSource, "rss", s.name, fmt.Sprintf("feed returned %s", resp.Status), nil)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "rss", s.name, "parse feed", err)
	}

	items := make([]types.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		item, ok := newItem(entry.Title, entry.Link, s.name, StripHTML(summary), entryTime(entry))
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func entryTime(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		return entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		return entry.UpdatedParsed
	}
	return nil
}
