/*
Package sources implements the news source adapters: RSS feeds, CSS-selector
scraping, the Anue JSON API and NewsAPI.org. Every adapter turns one external
endpoint into a list of RawItem values and drops entries missing a title or
link.
*/
package sources

import (
	"context"
	"log/slog"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/types"
)

// Source is one independently fetchable origin of news items.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.RawItem, error)
}

// FromConfig builds one Source per configured feed, scrape target and API.
// Sources that are disabled or lack credentials are logged and left out.
func FromConfig(cfg config.Config, client *HTTPClient, logger *slog.Logger) []Source {
	logger = logging.OrDiscard(logger).With("component", "sources")
	if client == nil {
		client = NewHTTPClient(
			WithAttempts(cfg.Fetch.Retries),
			WithRequestTimeout(cfg.Fetch.RequestTimeout()),
		)
	}

	var out []Source
	for _, feed := range cfg.RSSFeeds {
		out = append(out, NewRSSSource(feed.Name, feed.URL, client))
	}

	for _, target := range cfg.Scrape {
		if target.UseAPI {
			out = append(out, NewAnueSource(target.Name, target.APIURL, client))
			continue
		}
		out = append(out, NewScrapeSource(target.Name, target.URL, target.TitleSelector, target.LinkSelector, client))
	}

	switch {
	case !cfg.NewsAPI.Enabled:
		logger.Info("newsapi disabled in config")
	case cfg.NewsAPI.APIKey == "":
		logger.Warn("NEWSAPI_KEY not set, skipping newsapi")
	default:
		out = append(out, NewNewsAPISource(cfg.NewsAPI, client))
	}

	logger.Info("sources configured", "count", len(out))
	return out
}
