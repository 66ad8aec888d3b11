/*
Package digest runs the daily news cycle: aggregate every source, rank the
result, summarize it and deliver the rendered digest.
*/
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shanehull/finbrief/internal/aggregate"
	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/notify"
	"github.com/shanehull/finbrief/internal/rank"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	NoNewsSummary        = "今日無符合過濾條件的重大新聞。系統持續監控中。"
	SummaryFailedSummary = "⚠️ AI 摘要生成失敗，請查看下方原始新聞連結。"
)

// Collector gathers raw items from every source.
type Collector interface {
	Run(ctx context.Context) ([]types.RawItem, []aggregate.Report)
}

// Summarizer turns the ranked batch into the digest body.
type Summarizer interface {
	SummarizeArticles(ctx context.Context, items []types.RankedItem) (string, error)
}

// Result describes one completed cycle.
type Result struct {
	Items     []types.RankedItem
	Reports   []aggregate.Report
	Stats     rank.Stats
	Summary   string
	Delivered bool
}

type Pipeline struct {
	Collector  Collector
	Ranker     rank.Pipeline
	Summarizer Summarizer // nil when no API key is configured
	Renderer   notify.Renderer
	Sender     notify.Sender

	Recipients    []string
	SubjectPrefix string
	Model         string
	Location      *time.Location
	Logger        *slog.Logger
}

// NewPipeline wires a Pipeline from the loaded configuration. The summarizer
// may be nil.
func NewPipeline(cfg config.Config, collector Collector, summarizer Summarizer, renderer notify.Renderer, sender notify.Sender, logger *slog.Logger) *Pipeline {
	logger = logging.OrDiscard(logger).With("component", "digest")
	return &Pipeline{
		Collector: collector,
		Ranker: rank.Pipeline{
			Keywords:  cfg.Keywords,
			Threshold: cfg.MinScore,
			MaxItems:  cfg.MaxArticles,
			Retention: cfg.Retention(),
			Logger:    logger,
		},
		Summarizer:    summarizer,
		Renderer:      renderer,
		Sender:        sender,
		Recipients:    cfg.Email.Recipients,
		SubjectPrefix: cfg.Email.SubjectPrefix,
		Model:         cfg.GeminiModel,
		Location:      config.LocalZone,
		Logger:        logger,
	}
}

// Run executes one cycle as of now. Source and summarizer failures degrade
// the digest; only a delivery failure is returned.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*Result, error) {
	logger := logging.OrDiscard(p.Logger)

	raw, reports := p.Collector.Run(ctx)
	logger.Info("aggregation complete", "items", len(raw), "sources", len(reports))

	ranked, stats := p.Ranker.Apply(raw, now)
	res := &Result{Items: ranked, Reports: reports, Stats: stats}
	res.Summary = p.summarize(ctx, ranked)

	loc := p.Location
	if loc == nil {
		loc = config.LocalZone
	}
	local := now.In(loc)

	data := notify.DigestData{
		Subject: fmt.Sprintf("%s %s 每日摘要", p.SubjectPrefix, local.Format("2006-01-02")),
		Date:    local.Format("2006-01-02 15:04"),
		Summary: res.Summary,
		Items:   ranked,
		Model:   p.Model,
	}
	msg, err := p.Renderer.RenderDigest(data)
	if err != nil {
		return res, fmt.Errorf("render digest: %w", err)
	}

	if err := p.Sender.Send(ctx, msg, p.Recipients); err != nil {
		if faults.Disabled(err) {
			logger.Warn("digest delivery disabled", "error", err)
			return res, nil
		}
		return res, fmt.Errorf("deliver digest: %w", err)
	}
	res.Delivered = true
	logger.Info("digest delivered", "subject", data.Subject, "items", len(ranked))
	return res, nil
}

func (p *Pipeline) summarize(ctx context.Context, items []types.RankedItem) string {
	logger := logging.OrDiscard(p.Logger)
	if len(items) == 0 {
		return NoNewsSummary
	}
	if p.Summarizer == nil {
		logger.Warn("summarizer not configured", "items", len(items))
		return SummaryFailedSummary
	}
	text, err := p.Summarizer.SummarizeArticles(ctx, items)
	if err != nil {
		logger.Error("summarization failed", "error", err)
		return SummaryFailedSummary
	}
	return text
}
