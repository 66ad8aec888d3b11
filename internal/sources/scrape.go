package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

const maxScrapedElements = 30

// ScrapeSource extracts headlines from a listing page using CSS selectors.
type ScrapeSource struct {
	name          string
	pageURL       string
	titleSelector string
	linkSelector  string
	client        *HTTPClient
}

func NewScrapeSource(name, pageURL, titleSelector, linkSelector string, client *HTTPClient) *ScrapeSource {
	if client == nil {
		client = NewHTTPClient()
	}
	return &ScrapeSource{
		name:          name,
		pageURL:       pageURL,
		titleSelector: titleSelector,
		linkSelector:  linkSelector,
		client:        client,
	}
}

func (s *ScrapeSource) Name() string { return "scrape:" + s.name }

func (s *ScrapeSource) Fetch(ctx context.Context) ([]types.RawItem, error) {
	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "scrape", s.name, "invalid url", err)
	}

	resp, err := s.client.Get(ctx, s.pageURL)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "scrape", s.name, "fetch page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.Wrap(faults.ErrSource, "scrape", s.name, fmt.Sprintf("page returned %s", resp.Status), nil)
	}

	// Several Taiwanese sites still serve Big5.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "scrape", s.name, "detect charset", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSource, "scrape", s.name, "parse document", err)
	}

	return s.extract(doc, base), nil
}

func (s *ScrapeSource) extract(doc *goquery.Document, base *url.URL) []types.RawItem {
	var items []types.RawItem

	doc.Find(s.titleSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxScrapedElements {
			return false
		}

		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if href == "" && s.linkSelector != "" && s.linkSelector != s.titleSelector {
			href, _ = sel.Parent().Find(s.linkSelector).First().Attr("href")
		}
		if href == "" {
			return true
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}

		if item, ok := newItem(title, base.ResolveReference(ref).String(), s.name, "", nil); ok {
			items = append(items, item)
		}
		return true
	})

	return items
}
