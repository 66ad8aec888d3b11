/*
Package transcribe obtains video transcripts by trying an ordered list of
strategies: published captions first, then audio download plus speech-to-text.
The first strategy that yields non-empty text wins.
*/
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/types"
)

// Strategy is one way of producing a transcript. An empty string with a nil
// error means the strategy had nothing to offer.
type Strategy interface {
	Name() string
	Transcribe(ctx context.Context, video types.Video) (string, error)
}

type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

func New(logger *slog.Logger, strategies ...Strategy) *Cascade {
	return &Cascade{
		strategies: strategies,
		logger:     logging.OrDiscard(logger).With("component", "transcribe"),
	}
}

// Transcribe returns the first non-empty transcript and true, or false when
// every strategy failed or came back empty.
func (c *Cascade) Transcribe(ctx context.Context, video types.Video) (string, bool) {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", false
		}

		text, err := attempt(ctx, s, video)
		if err != nil {
			if faults.Timeout(err) {
				c.logger.Warn("strategy timed out", "strategy", s.Name(), "video_id", video.ID, "error", err)
			} else {
				c.logger.Info("strategy failed", "strategy", s.Name(), "video_id", video.ID, "error", err)
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.logger.Info("strategy returned nothing", "strategy", s.Name(), "video_id", video.ID)
			continue
		}

		c.logger.Info("transcript obtained", "strategy", s.Name(), "video_id", video.ID, "chars", len([]rune(text)))
		return text, true
	}
	return "", false
}

// Fill sets the transcript of each video and returns only the videos that
// ended up with one, in input order. Videos that already carry a transcript
// are kept as is.
func (c *Cascade) Fill(ctx context.Context, videos []types.Video) []types.Video {
	kept := make([]types.Video, 0, len(videos))
	for _, v := range videos {
		if strings.TrimSpace(v.Transcript) != "" {
			kept = append(kept, v)
			continue
		}

		text, ok := c.Transcribe(ctx, v)
		if !ok {
			c.logger.Warn("no transcript, skipping video", "video_id", v.ID, "title", v.Title)
			continue
		}
		v.Transcript = text
		kept = append(kept, v)
	}
	return kept
}

func attempt(ctx context.Context, s Strategy, video types.Video) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = faults.Wrap(faults.ErrCapability, "transcribe", s.Name(), fmt.Sprintf("panic: %v", r), nil)
		}
	}()
	return s.Transcribe(ctx, video)
}
