/*
Package dispatch runs the per-show video pipeline. Every configured show is
resolved, checked against its schedule and processed on its own; a failure in
one show never stops the next.
*/
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/notify"
	"github.com/shanehull/finbrief/internal/types"
)

const SummaryFailedPlaceholder = "⚠️ 摘要生成失敗"

// VideoLister returns the videos a channel published since a cutoff.
type VideoLister interface {
	ListToday(ctx context.Context, channelID, channelName string, maxVideos int, since time.Time) ([]types.Video, error)
}

// Transcriber fills transcripts in place of the given videos, returning only
// those that got one.
type Transcriber interface {
	Fill(ctx context.Context, videos []types.Video) []types.Video
}

type VideoSummarizer interface {
	SummarizeVideo(ctx context.Context, video types.Video, model, prompt string) (string, error)
}

// Status is the terminal state of one show in a cycle.
type Status string

const (
	StatusDisabled  Status = "disabled"
	StatusSkipped   Status = "skipped"
	StatusNoVideos  Status = "no_videos"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

type Outcome struct {
	Show      string
	Status    Status
	Videos    int
	Summaries []types.VideoSummary
	Err       error
}

// Gate reports whether a show should run at now. Manual runs and empty
// schedules always pass; otherwise the UTC+8 wall clock must equal one of the
// HH:MM entries exactly.
func Gate(now time.Time, schedule []string, manual bool) bool {
	if manual || len(schedule) == 0 {
		return true
	}
	return slices.Contains(schedule, now.In(config.LocalZone).Format("15:04"))
}

// LocalMidnight returns the start of now's day in UTC+8.
func LocalMidnight(now time.Time) time.Time {
	local := now.In(config.LocalZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, config.LocalZone)
}

type Dispatcher struct {
	Shows      []config.ShowConfig
	Lister     VideoLister
	Cascade    func(config.ShowConfig) Transcriber
	Summarizer VideoSummarizer
	Renderer   notify.Renderer
	Sender     notify.Sender
	Logger     *slog.Logger
}

// Run processes every show in configuration order.
func (d *Dispatcher) Run(ctx context.Context, now time.Time, manual bool) []Outcome {
	logger := logging.OrDiscard(d.Logger).With("component", "dispatch")
	outcomes := make([]Outcome, 0, len(d.Shows))

	for _, show := range d.Shows {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{Show: show.Name, Status: StatusFailed, Err: err})
			continue
		}
		out := d.runShow(ctx, logger.With("show", show.Name), show, now, manual)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (d *Dispatcher) runShow(ctx context.Context, logger *slog.Logger, show config.ShowConfig, now time.Time, manual bool) (out Outcome) {
	out = Outcome{Show: show.Name}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("show panicked", "panic", r, "stack", string(debug.Stack()))
			out.Status = StatusFailed
			out.Err = fmt.Errorf("show %s panicked: %v", show.Name, r)
		}
	}()

	if !show.Enabled {
		logger.Info("show disabled")
		out.Status = StatusDisabled
		return out
	}
	if !Gate(now, show.ScheduleTimes, manual) {
		logger.Debug("outside schedule", "schedule", show.ScheduleTimes, "now", now.In(config.LocalZone).Format("15:04"))
		out.Status = StatusSkipped
		return out
	}

	summaries, err := d.process(ctx, logger, show, now)
	out.Summaries = summaries
	out.Videos = len(summaries)
	switch {
	case err != nil && faults.Disabled(err):
		logger.Warn("show disabled by configuration", "error", err)
		out.Status = StatusDisabled
		out.Err = err
	case err != nil:
		logger.Error("show failed", "error", err)
		out.Status = StatusFailed
		out.Err = err
	case out.Videos == 0:
		logger.Info("no transcribed videos today")
		out.Status = StatusNoVideos
	default:
		out.Status = StatusDelivered
	}
	return out
}

func (d *Dispatcher) process(ctx context.Context, logger *slog.Logger, show config.ShowConfig, now time.Time) ([]types.VideoSummary, error) {
	videos, err := d.Lister.ListToday(ctx, show.ChannelID, show.Name, show.MaxVideos, LocalMidnight(now))
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if len(videos) == 0 {
		return nil, nil
	}

	transcribed := d.Cascade(show).Fill(ctx, videos)
	logger.Info("transcription complete", "listed", len(videos), "transcribed", len(transcribed))
	if len(transcribed) == 0 {
		return nil, nil
	}

	summaries := make([]types.VideoSummary, 0, len(transcribed))
	for _, v := range transcribed {
		summaries = append(summaries, types.VideoSummary{Video: v, Summary: d.summarize(ctx, logger, show, v)})
	}

	local := now.In(config.LocalZone)
	data := notify.ShowData{
		Subject:   fmt.Sprintf("%s %s %s 影片摘要", show.SubjectPrefix, show.Name, local.Format("2006-01-02")),
		Show:      show.Name,
		Date:      local.Format("2006-01-02 15:04"),
		Summaries: summaries,
		Model:     show.SummaryModel,
	}
	msg, err := d.Renderer.RenderShow(data)
	if err != nil {
		return summaries, fmt.Errorf("render show: %w", err)
	}
	if err := d.Sender.Send(ctx, msg, show.EmailRecipients); err != nil {
		return summaries, fmt.Errorf("deliver show: %w", err)
	}
	logger.Info("show delivered", "subject", data.Subject, "videos", len(summaries))
	return summaries, nil
}

func (d *Dispatcher) summarize(ctx context.Context, logger *slog.Logger, show config.ShowConfig, v types.Video) string {
	if d.Summarizer == nil {
		logger.Warn("video summarizer not configured", "video_id", v.ID)
		return SummaryFailedPlaceholder
	}
	text, err := d.Summarizer.SummarizeVideo(ctx, v, show.SummaryModel, show.SummaryPrompt)
	if err != nil {
		logger.Error("video summarization failed", "video_id", v.ID, "error", err)
		return SummaryFailedPlaceholder
	}
	return text
}
