package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shanehull/finbrief/internal/aggregate"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/notify"
	"github.com/shanehull/finbrief/internal/rank"
	"github.com/shanehull/finbrief/internal/types"
)

type staticCollector []types.RawItem

func (s staticCollector) Run(context.Context) ([]types.RawItem, []aggregate.Report) {
	return s, []aggregate.Report{{Source: "fake", Items: len(s)}}
}

type fakeSummarizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeSummarizer) SummarizeArticles(context.Context, []types.RankedItem) (string, error) {
	f.calls++
	return f.text, f.err
}

type recordingSender struct {
	msgs []*notify.RenderedMessage
	to   [][]string
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg *notify.RenderedMessage, to []string) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	r.to = append(r.to, to)
	return nil
}

var now = time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)

func newTestPipeline(items []types.RawItem, sum Summarizer, sender notify.Sender) *Pipeline {
	return &Pipeline{
		Collector: staticCollector(items),
		Ranker: rank.Pipeline{
			Keywords:  []types.Keyword{{Keyword: "TSMC", Weight: 5}, {Keyword: "chip", Weight: 3}},
			Threshold: 5,
			MaxItems:  10,
			Retention: 48 * time.Hour,
		},
		Summarizer:    sum,
		Renderer:      notify.NewHTMLEmailRenderer(),
		Sender:        sender,
		Recipients:    []string{"a@example.com"},
		SubjectPrefix: "[金融情報]",
		Model:         "gemini-2.5-flash",
	}
}

func TestRunDelivers(t *testing.T) {
	t.Parallel()

	items := []types.RawItem{
		{Title: "TSMC chip news", Link: "https://a.example/1", Source: "Reuters"},
		{Title: "random", Link: "https://a.example/2", Source: "Reuters"},
	}
	sum := &fakeSummarizer{text: "## 半導體 🔴\n- TSMC"}
	sender := &recordingSender{}

	res, err := newTestPipeline(items, sum, sender).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Delivered || len(res.Items) != 1 || res.Items[0].Score != 8 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.msgs))
	}
	if got := sender.msgs[0].Subject; got != "[金融情報] 2025-06-10 每日摘要" {
		t.Fatalf("unexpected subject %q", got)
	}
	if !strings.Contains(sender.msgs[0].Text, "2025-06-10 08:30") {
		t.Fatalf("expected local time in body:\n%s", sender.msgs[0].Text)
	}
	if sender.to[0][0] != "a@example.com" {
		t.Fatalf("unexpected recipients %v", sender.to[0])
	}
}

func TestRunNoItemsSkipsSummarizer(t *testing.T) {
	t.Parallel()

	sum := &fakeSummarizer{text: "unused"}
	sender := &recordingSender{}

	res, err := newTestPipeline([]types.RawItem{{Title: "random", Link: "https://a.example/x"}}, sum, sender).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.calls != 0 {
		t.Fatal("summarizer should not be called without items")
	}
	if res.Summary != NoNewsSummary || !strings.Contains(sender.msgs[0].Text, NoNewsSummary) {
		t.Fatalf("expected no-news placeholder, got %q", res.Summary)
	}
}

func TestRunSummarizerFailure(t *testing.T) {
	t.Parallel()

	items := []types.RawItem{{Title: "TSMC results", Link: "https://a.example/1", Source: "Reuters"}}

	for name, sum := range map[string]Summarizer{
		"error":   &fakeSummarizer{err: errors.New("quota")},
		"missing": nil,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			res, err := newTestPipeline(items, sum, sender).Run(context.Background(), now)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if res.Summary != SummaryFailedSummary || !res.Delivered {
				t.Fatalf("expected failure placeholder and delivery, got %+v", res)
			}
			if !strings.Contains(sender.msgs[0].Text, "https://a.example/1") {
				t.Fatal("raw links should still be delivered")
			}
		})
	}
}

func TestRunDeliveryErrors(t *testing.T) {
	t.Parallel()

	items := []types.RawItem{{Title: "TSMC", Link: "https://a.example/1"}}

	disabled := &recordingSender{err: faults.Wrap(faults.ErrConfiguration, "email", "send", "no recipients", nil)}
	res, err := newTestPipeline(items, &fakeSummarizer{text: "ok"}, disabled).Run(context.Background(), now)
	if err != nil || res.Delivered {
		t.Fatalf("disabled delivery should no-op, got %v %+v", err, res)
	}

	boom := errors.New("smtp down")
	_, err = newTestPipeline(items, &fakeSummarizer{text: "ok"}, &recordingSender{err: boom}).Run(context.Background(), now)
	if !errors.Is(err, boom) {
		t.Fatalf("expected delivery error, got %v", err)
	}
}
