package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
)

const (
	DefaultYTDLPBinary = "yt-dlp"
	watchURL           = "https://www.youtube.com/watch?v=%s"
	captionTimeout     = 60 * time.Second
)

// YTDLP drives the yt-dlp binary for caption and audio retrieval.
type YTDLP struct {
	binary        string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

func NewYTDLP(binary string, logger *slog.Logger) *YTDLP {
	if binary == "" {
		binary = DefaultYTDLPBinary
	}
	return &YTDLP{binary: binary, logger: logging.OrDiscard(logger).With("component", "yt-dlp")}
}

// WithCommandRunner sets a custom command runner (for testing).
func (y *YTDLP) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	y.commandRunner = runner
}

// Captions downloads caption tracks in json3 format and returns the text of
// the first language in langs that produced a file.
func (y *YTDLP) Captions(ctx context.Context, videoID string, langs []string) (string, error) {
	dir, err := os.MkdirTemp("", "finbrief-subs-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(ctx, captionTimeout)
	defer cancel()

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(langs, ","),
		"--sub-format", "json3",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--quiet",
		fmt.Sprintf(watchURL, videoID),
	}
	if err := y.run(ctx, args...); err != nil {
		return "", faults.Wrap(faults.ErrExternalTool, "subtitle", videoID, "yt-dlp", err)
	}

	for _, lang := range langs {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s.json3", videoID, lang))
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read captions %s: %w", path, err)
		}

		text, err := parseJSON3(raw)
		if err != nil {
			return "", fmt.Errorf("parse captions %s: %w", lang, err)
		}
		if text == "" {
			continue
		}
		y.logger.Info("subtitle found", "video_id", videoID, "lang", lang, "chars", len([]rune(text)))
		return text, nil
	}

	return "", faults.Wrap(faults.ErrNotFound, "subtitle", videoID, "no captions in "+strings.Join(langs, ","), nil)
}

// DownloadAudio extracts the audio track as mp3 into dir.
func (y *YTDLP) DownloadAudio(ctx context.Context, videoID, dir string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := filepath.Join(dir, videoID+".mp3")
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "5",
		"--output", filepath.Join(dir, videoID+".%(ext)s"),
		"--no-playlist",
		"--quiet",
		fmt.Sprintf(watchURL, videoID),
	}
	if err := y.run(ctx, args...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", faults.Wrap(faults.ErrTimeout, "audio", videoID, fmt.Sprintf("download exceeded %s", timeout), err)
		}
		return "", faults.Wrap(faults.ErrExternalTool, "audio", videoID, "yt-dlp", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return "", faults.Wrap(faults.ErrNotFound, "audio", videoID, "audio file missing", err)
	}
	y.logger.Info("audio downloaded", "video_id", videoID, "size", humanize.Bytes(uint64(info.Size())))
	return out, nil
}

func (y *YTDLP) run(ctx context.Context, args ...string) error {
	if y.commandRunner != nil {
		return y.commandRunner(ctx, y.binary, args...)
	}
	cmd := exec.CommandContext(ctx, y.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", y.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type json3Doc struct {
	Events []struct {
		StartMs int64 `json:"tStartMs"`
		Segs    []struct {
			Text string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// parseJSON3 joins caption segments in chronological order.
func parseJSON3(raw []byte) (string, error) {
	var doc json3Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}

	events := doc.Events
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartMs < events[j].StartMs })

	var parts []string
	for _, ev := range events {
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.Text)
		}
		if line := strings.Join(strings.Fields(b.String()), " "); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}
