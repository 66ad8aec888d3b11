package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate reports every problem in the configuration at once.
func (c Config) Validate() error {
	var errs []error

	seen := make(map[string]struct{}, len(c.Keywords))
	for i, kw := range c.Keywords {
		key := strings.ToLower(strings.TrimSpace(kw.Keyword))
		if key == "" {
			errs = append(errs, fmt.Errorf("keywords[%d]: empty keyword", i))
			continue
		}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("keywords[%d]: duplicate keyword %q", i, kw.Keyword))
		}
		seen[key] = struct{}{}
		if kw.Weight <= 0 {
			errs = append(errs, fmt.Errorf("keywords[%d]: weight for %q must be positive", i, kw.Keyword))
		}
	}

	if c.MinScore < 0 {
		errs = append(errs, errors.New("min_score must not be negative"))
	}
	if c.RetentionHours < 0 {
		errs = append(errs, errors.New("retention_hours must not be negative"))
	}

	for i, feed := range c.RSSFeeds {
		if strings.TrimSpace(feed.URL) == "" {
			errs = append(errs, fmt.Errorf("rss_feeds[%d] %q: url is required", i, feed.Name))
		}
	}
	for i, target := range c.Scrape {
		if target.UseAPI {
			if strings.TrimSpace(target.APIURL) == "" {
				errs = append(errs, fmt.Errorf("scrape_targets[%d] %q: api_url is required when use_api is set", i, target.Name))
			}
			continue
		}
		if strings.TrimSpace(target.URL) == "" || strings.TrimSpace(target.TitleSelector) == "" {
			errs = append(errs, fmt.Errorf("scrape_targets[%d] %q: url and title_selector are required", i, target.Name))
		}
	}

	errs = append(errs, validateTimes("schedule_times", c.ScheduleTimes)...)

	names := make(map[string]struct{}, len(c.YouTube.Shows))
	for i, show := range c.YouTube.Shows {
		label := fmt.Sprintf("youtube.shows[%d]", i)
		if strings.TrimSpace(show.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", label))
		} else if _, dup := names[show.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate show name %q", label, show.Name))
		}
		names[show.Name] = struct{}{}
		if show.MaxVideos != nil && *show.MaxVideos <= 0 {
			errs = append(errs, fmt.Errorf("%s: max_videos must be positive", label))
		}
		errs = append(errs, validateTimes(label+".schedule_times", show.ScheduleTimes)...)
	}

	return errors.Join(errs...)
}

func validateTimes(field string, values []string) []error {
	var errs []error
	for i, v := range values {
		if _, err := time.Parse("15:04", v); err != nil || len(v) != len("15:04") {
			errs = append(errs, fmt.Errorf("%s[%d]: %q is not HH:MM", field, i, v))
		}
	}
	return errs
}
