package transcribe

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

// DefaultSubtitleLanguages is the caption preference order.
var DefaultSubtitleLanguages = []string{"zh-TW", "zh", "zh-Hant", "en"}

const DefaultAudioTimeout = 300 * time.Second

// CaptionFetcher returns caption text for the first available language in
// langs, or an error when none exists.
type CaptionFetcher interface {
	Captions(ctx context.Context, videoID string, langs []string) (string, error)
}

// AudioDownloader stores the audio track of a video inside dir and returns
// the file path.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoID, dir string, timeout time.Duration) (string, error)
}

// SpeechToText transcribes a local audio file with the named model.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath, model string) (string, error)
}

// SubtitleStrategy uses published or auto-generated captions.
type SubtitleStrategy struct {
	fetcher CaptionFetcher
	langs   []string
}

func NewSubtitleStrategy(fetcher CaptionFetcher, langs []string) *SubtitleStrategy {
	if len(langs) == 0 {
		langs = DefaultSubtitleLanguages
	}
	return &SubtitleStrategy{fetcher: fetcher, langs: slices.Clone(langs)}
}

func (s *SubtitleStrategy) Name() string { return "subtitle" }

func (s *SubtitleStrategy) Transcribe(ctx context.Context, video types.Video) (string, error) {
	return s.fetcher.Captions(ctx, video.ID, s.langs)
}

// AudioStrategy downloads the audio into a scratch directory and runs
// speech-to-text on it. The scratch directory is removed before Transcribe
// returns.
type AudioStrategy struct {
	downloader AudioDownloader
	stt        SpeechToText
	model      string
	timeout    time.Duration

	// TempRoot is the parent of the scratch directory; empty uses os.TempDir.
	TempRoot string
}

func NewAudioStrategy(downloader AudioDownloader, stt SpeechToText, model string, timeout time.Duration) *AudioStrategy {
	if timeout <= 0 {
		timeout = DefaultAudioTimeout
	}
	return &AudioStrategy{downloader: downloader, stt: stt, model: model, timeout: timeout}
}

func (s *AudioStrategy) Name() string { return "audio" }

func (s *AudioStrategy) Transcribe(ctx context.Context, video types.Video) (string, error) {
	dir, err := os.MkdirTemp(s.TempRoot, "finbrief-audio-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path, err := s.downloader.DownloadAudio(ctx, video.ID, dir, s.timeout)
	if err != nil {
		return "", err
	}

	text, err := s.stt.Transcribe(ctx, path, s.model)
	if err != nil {
		return "", faults.Wrap(faults.ErrCapability, "transcribe", "stt", video.ID, err)
	}
	return text, nil
}
