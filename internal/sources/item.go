package sources

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/shanehull/finbrief/internal/types"
)

const maxSummaryRunes = 500

// newItem trims the fields and reports false when title or link is missing.
// Such items are dropped silently at the adapter boundary.
func newItem(title, link, source, summary string, published *time.Time) (types.RawItem, bool) {
	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	if title == "" || link == "" {
		return types.RawItem{}, false
	}
	return types.RawItem{
		Title:     title,
		Link:      link,
		Source:    source,
		Summary:   truncateRunes(strings.TrimSpace(summary), maxSummaryRunes),
		Published: published,
	}, true
}

// StripHTML returns the text content of an HTML fragment with the text
// runs joined by single spaces.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isInvisible(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isInvisible(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if text := strings.Join(strings.Fields(string(z.Text())), " "); text != "" {
				parts = append(parts, text)
			}
		}
	}
}

func isInvisible(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
