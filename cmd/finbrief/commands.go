package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/dispatch"
	"github.com/shanehull/finbrief/internal/notify"
	"github.com/shanehull/finbrief/internal/runlock"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the news digest and then every due show",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.locked(cmd, func(a *app) error {
				now := time.Now()
				newsErr := a.runNews(cmd.Context(), now)
				showErr := a.runShows(cmd.Context(), now, manual)
				return errors.Join(newsErr, showErr)
			})
		},
	}
	cmd.Flags().BoolVar(&manual, "manual", false, "Ignore show schedules")
	return cmd
}

func newNewsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Run only the news digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.locked(cmd, func(a *app) error {
				return a.runNews(cmd.Context(), time.Now())
			})
		},
	}
}

func newShowsCommand(ctx *commandContext) *cobra.Command {
	var manual bool
	var at string

	cmd := &cobra.Command{
		Use:   "shows",
		Short: "Run the video summary pipeline for every due show",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := clockAt(time.Now(), at)
			if err != nil {
				return err
			}
			return ctx.locked(cmd, func(a *app) error {
				return a.runShows(cmd.Context(), now, manual)
			})
		},
	}
	cmd.Flags().BoolVar(&manual, "manual", false, "Ignore show schedules")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate schedules as if the UTC+8 time were HH:MM")
	return cmd
}

func newCheckConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and print what would run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			writeConfigSummary(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func (c *commandContext) locked(cmd *cobra.Command, fn func(*app) error) error {
	lock, err := runlock.Acquire(c.flags.lockPath)
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return err
	}
	defer lock.Release()

	a, err := c.newApp(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return fn(a)
}

func (a *app) runNews(ctx context.Context, now time.Time) error {
	if !a.cfg.News.Enabled {
		a.logger.Info("news pipeline disabled")
		return nil
	}
	res, err := a.newsPipeline().Run(ctx, now)
	if a.dryRun && res != nil && len(res.Items) > 0 {
		fmt.Fprintln(a.out, notify.RankedTable(res.Items))
	}
	return err
}

func (a *app) runShows(ctx context.Context, now time.Time, manual bool) error {
	if !a.cfg.YouTube.Enabled {
		a.logger.Info("show pipeline disabled")
		return nil
	}
	var failed []string
	for _, o := range a.dispatcher().Run(ctx, now, manual) {
		if o.Status == dispatch.StatusFailed {
			failed = append(failed, o.Show)
		}
		if a.dryRun && len(o.Summaries) > 0 {
			fmt.Fprintf(a.out, "%s\n%s\n", o.Show, notify.VideoTable(o.Summaries))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("shows failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// clockAt replaces the UTC+8 wall clock of now with hhmm. An empty hhmm
// returns now unchanged.
func clockAt(now time.Time, hhmm string) (time.Time, error) {
	if hhmm == "" {
		return now, nil
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want HH:MM", hhmm)
	}
	local := now.In(config.LocalZone)
	return time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, config.LocalZone), nil
}

func writeConfigSummary(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "keywords: %d, min_score: %g, max_articles: %d, retention: %s\n",
		len(cfg.Keywords), cfg.MinScore, cfg.MaxArticles, cfg.Retention())
	fmt.Fprintf(w, "rss feeds: %d, scrape targets: %d, newsapi: %t\n",
		len(cfg.RSSFeeds), len(cfg.Scrape), cfg.NewsAPI.Enabled && cfg.NewsAPI.APIKey != "")
	fmt.Fprintf(w, "gemini: %t, smtp: %t, recipients: %d\n",
		cfg.GeminiAPIKey != "", cfg.Email.SMTPReady(), len(cfg.Email.Recipients))

	shows := cfg.Shows()
	if len(shows) == 0 {
		fmt.Fprintln(w, "shows: none")
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Show", "Enabled", "Channel", "Max", "Schedule", "Recipients"})
	for _, s := range shows {
		schedule := strings.Join(s.ScheduleTimes, ",")
		if schedule == "" {
			schedule = "always"
		}
		tw.AppendRow(table.Row{s.Name, strconv.FormatBool(s.Enabled), s.ChannelID, s.MaxVideos, schedule, len(s.EmailRecipients)})
	}
	fmt.Fprintln(w, tw.Render())
}
