package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/sources"
)

func testHTTP() *sources.HTTPClient {
	return sources.NewHTTPClient(sources.WithBackoff(time.Millisecond))
}

func TestListToday(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, 6, 10, 0, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("channelId") != "UC123" || q.Get("maxResults") != "2" || q.Get("order") != "date" || q.Get("key") != "k" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if q.Get("publishedAfter") != "2025-06-09T16:00:00Z" {
			t.Errorf("unexpected publishedAfter %q", q.Get("publishedAfter"))
		}
		fmt.Fprint(w, `{"items":[
			{"id":{"videoId":"v1"},"snippet":{"title":"盤後 &amp; 美股","publishedAt":"2025-06-10T10:00:00Z"}},
			{"id":{"channelId":"UC123"},"snippet":{"title":"channel result"}},
			{"id":{"videoId":"v2"},"snippet":{"title":"早盤","publishedAt":"bad"}},
			{"id":{"videoId":"v3"},"snippet":{"title":"extra"}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient("k", testHTTP(), nil)
	c.endpoint = srv.URL

	videos, err := c.ListToday(context.Background(), "UC123", "財經台", 2, since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %+v", videos)
	}
	if videos[0].Title != "盤後 & 美股" || videos[0].URL != "https://www.youtube.com/watch?v=v1" || videos[0].Channel != "財經台" {
		t.Fatalf("unexpected first video %+v", videos[0])
	}
	if videos[0].Published == nil || videos[1].Published != nil {
		t.Fatalf("unexpected published times %v %v", videos[0].Published, videos[1].Published)
	}
}

func TestListTodayConfigErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", testHTTP(), nil).ListToday(context.Background(), "UC", "x", 3, time.Now()); !faults.Disabled(err) {
		t.Fatalf("expected missing key to disable, got %v", err)
	}
	if _, err := NewClient("k", testHTTP(), nil).ListToday(context.Background(), "", "x", 3, time.Now()); !faults.Disabled(err) {
		t.Fatalf("expected missing channel to disable, got %v", err)
	}
}

func TestListTodayAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"quotaExceeded"}}`)
	}))
	defer srv.Close()

	c := NewClient("k", testHTTP(), nil)
	c.endpoint = srv.URL

	_, err := c.ListToday(context.Background(), "UC", "x", 3, time.Now())
	if !errors.Is(err, faults.ErrSource) || !strings.Contains(err.Error(), "quotaExceeded") {
		t.Fatalf("expected api error, got %v", err)
	}
}
