/*
Package rank turns the raw aggregated items into the ranked digest list:
freshness filtering, URL-based deduplication and keyword scoring.

Every function here is pure and order-sensitive so it runs only after the
aggregator has finished.
*/
package rank

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/types"
)

// CanonicalURL reduces link to scheme, host and path with the query, the
// fragment and any trailing slash removed. Links that do not parse are
// returned trimmed.
func CanonicalURL(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	canon := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   strings.TrimRight(u.Path, "/"),
	}
	if u.RawPath != "" {
		canon.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	return canon.String()
}

// Dedup keeps the first item for each canonical link, preserving input order.
func Dedup(items []types.RawItem) ([]types.RawItem, int) {
	seen := make(map[string]struct{}, len(items))
	unique := make([]types.RawItem, 0, len(items))
	for _, item := range items {
		key := CanonicalURL(item.Link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique, len(items) - len(unique)
}

// FilterFresh drops items published strictly before now-window. Items
// without a published time are kept. A non-positive window keeps everything.
func FilterFresh(items []types.RawItem, window time.Duration, now time.Time) ([]types.RawItem, int) {
	if window <= 0 {
		return slices.Clone(items), 0
	}
	cutoff := now.Add(-window)
	fresh := make([]types.RawItem, 0, len(items))
	for _, item := range items {
		if item.Published != nil && item.Published.Before(cutoff) {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh, len(items) - len(fresh)
}

// Score sums the weight of every keyword found (case-insensitively) in the
// title and summary, drops items below threshold, sorts by score descending
// with ties kept in input order, and truncates to maxItems. maxItems <= 0
// means no limit.
func Score(items []types.RawItem, keywords []types.Keyword, threshold float64, maxItems int) []types.RankedItem {
	needles := make([]string, len(keywords))
	for i, kw := range keywords {
		needles[i] = strings.ToLower(kw.Keyword)
	}

	ranked := make([]types.RankedItem, 0, len(items))
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Summary)

		var score float64
		var matched []string
		for i, kw := range keywords {
			if needles[i] == "" || !strings.Contains(text, needles[i]) {
				continue
			}
			score += kw.Weight
			matched = append(matched, kw.Keyword)
		}

		if score < threshold {
			continue
		}
		ranked = append(ranked, types.RankedItem{
			RawItem:         item,
			Score:           score,
			MatchedKeywords: matched,
		})
	}

	slices.SortStableFunc(ranked, func(a, b types.RankedItem) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if maxItems > 0 && len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}
	return ranked
}

// Stats counts what each stage of a Pipeline removed.
type Stats struct {
	Input      int
	Stale      int
	Duplicates int
	Passed     int
}

// Pipeline runs freshness, dedup and scoring in that order.
type Pipeline struct {
	Keywords  []types.Keyword
	Threshold float64
	MaxItems  int
	Retention time.Duration
	Logger    *slog.Logger
}

// Apply ranks items as of now.
func (p Pipeline) Apply(items []types.RawItem, now time.Time) ([]types.RankedItem, Stats) {
	logger := logging.OrDiscard(p.Logger)
	stats := Stats{Input: len(items)}

	fresh, stale := FilterFresh(items, p.Retention, now)
	stats.Stale = stale
	if stale > 0 {
		logger.Info("dropped stale items", "count", stale, "retention", p.Retention)
	}

	unique, dups := Dedup(fresh)
	stats.Duplicates = dups
	logger.Info("dedup complete", "before", len(fresh), "after", len(unique))

	ranked := Score(unique, p.Keywords, p.Threshold, p.MaxItems)
	stats.Passed = len(ranked)
	logger.Info("filter complete", "passed", len(ranked), "threshold", p.Threshold)

	return ranked, stats
}
