package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shanehull/finbrief/internal/ai"
	"github.com/shanehull/finbrief/internal/aggregate"
	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/digest"
	"github.com/shanehull/finbrief/internal/dispatch"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/notify"
	"github.com/shanehull/finbrief/internal/sources"
	"github.com/shanehull/finbrief/internal/transcribe"
	"github.com/shanehull/finbrief/internal/youtube"
)

type rootFlags struct {
	config   string
	logLevel string
	dryRun   bool
	lockPath string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(strings.TrimSpace(c.flags.config))
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	level := c.flags.logLevel
	if level == "" {
		level = c.config.Logging.Level
	}
	return logging.New(level, os.Stderr).With("run_id", uuid.NewString())
}

// app holds the collaborators shared by the news and show pipelines for one
// invocation.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	dryRun bool

	http     *sources.HTTPClient
	ai       *ai.Client
	renderer *notify.HTMLEmailRenderer
	sender   notify.Sender
}

func (c *commandContext) newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger()

	httpClient := sources.NewHTTPClient(
		sources.WithAttempts(cfg.Fetch.Retries),
		sources.WithRequestTimeout(cfg.Fetch.RequestTimeout()),
	)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		dryRun:   c.flags.dryRun,
		http:     httpClient,
		renderer: notify.NewHTMLEmailRenderer(),
	}

	client, err := ai.NewClient(ctx, cfg.GeminiAPIKey,
		ai.WithModel(cfg.GeminiModel),
		ai.WithCategories(cfg.Categories),
		ai.WithLogger(logger),
	)
	switch {
	case err == nil:
		a.ai = client
	case faults.Disabled(err):
		logger.Warn("AI features disabled", "error", err)
	default:
		return nil, err
	}

	if a.dryRun {
		a.sender = notify.NewConsoleSender(out)
	} else {
		a.sender = notify.NewEmailSender(notify.SMTPFromConfig(cfg.Email), notify.WithSenderLogger(logger))
	}
	return a, nil
}

func (a *app) newsPipeline() *digest.Pipeline {
	srcs := sources.FromConfig(a.cfg, a.http, a.logger)
	agg := aggregate.New(srcs,
		aggregate.WithMaxWorkers(a.cfg.Fetch.MaxWorkers),
		aggregate.WithFetchTimeout(a.cfg.Fetch.Timeout()),
		aggregate.WithLogger(a.logger),
	)

	var summarizer digest.Summarizer
	if a.ai != nil {
		summarizer = a.ai
	}
	return digest.NewPipeline(a.cfg, agg, summarizer, a.renderer, a.sender, a.logger)
}

func (a *app) dispatcher() *dispatch.Dispatcher {
	ytdlp := transcribe.NewYTDLP(a.cfg.YouTube.YTDLPPath, a.logger)

	d := &dispatch.Dispatcher{
		Shows:    a.cfg.Shows(),
		Lister:   youtube.NewClient(a.cfg.YouTube.APIKey, a.http, a.logger),
		Renderer: a.renderer,
		Sender:   a.sender,
		Logger:   a.logger,
		Cascade: func(show config.ShowConfig) dispatch.Transcriber {
			strategies := []transcribe.Strategy{
				transcribe.NewSubtitleStrategy(ytdlp, a.cfg.YouTube.SubtitleLanguages),
			}
			if a.ai != nil {
				strategies = append(strategies,
					transcribe.NewAudioStrategy(ytdlp, a.ai, show.STTModel, a.cfg.YouTube.AudioTimeout()))
			}
			return transcribe.New(a.logger, strategies...)
		},
	}
	if a.ai != nil {
		d.Summarizer = a.ai
	}
	return d
}
