/*
Package ai wraps the Gemini API for the three model calls finbrief makes:
speech-to-text of downloaded audio, the daily news digest, and per-video
summaries.
*/
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	DefaultModel = "gemini-2.5-flash"

	audioMIMEType = "audio/mpeg"

	sttMaxTokens     = 16384
	digestMaxTokens  = 8192
	summaryMaxTokens = 4096
)

var errEmptyResponse = errors.New("empty response from model")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type fileStore interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

type Client struct {
	models     contentGenerator
	files      fileStore
	model      string
	categories []string
	logger     *slog.Logger
}

type Option func(*Client)

// WithModel sets the model used for the news digest.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithCategories sets the digest categories listed in the prompt.
func WithCategories(categories []string) Option {
	return func(c *Client) {
		c.categories = categories
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient connects to the Gemini API. A missing key is reported as a
// configuration error so callers can disable AI features.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "ai", "", "GEMINI_API_KEY not set", nil)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newClient(gc.Models, gc.Files, opts...), nil
}

func newClient(models contentGenerator, files fileStore, opts ...Option) *Client {
	c := &Client{models: models, files: files, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger).With("component", "ai")
	return c
}

// Transcribe uploads a local audio file and asks model for a plain transcript.
// The uploaded file is deleted afterwards.
func (c *Client) Transcribe(ctx context.Context, audioPath, model string) (string, error) {
	if model == "" {
		model = c.model
	}

	file, err := c.files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{MIMEType: audioMIMEType})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	c.logger.Info("audio uploaded", "file", file.Name)
	defer func() {
		if _, err := c.files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			c.logger.Warn("failed to delete uploaded audio", "file", file.Name, "error", err)
		}
	}()

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = audioMIMEType
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, mimeType),
			genai.NewPartFromText(sttInstruction),
		}, genai.RoleUser),
	}

	text, err := c.generate(ctx, model, contents, 0, sttMaxTokens)
	if err != nil {
		return "", fmt.Errorf("speech-to-text failed: %w", err)
	}
	c.logger.Info("speech-to-text complete", "chars", len([]rune(text)))
	return text, nil
}

// SummarizeArticles produces the markdown digest for the ranked items.
func (c *Client) SummarizeArticles(ctx context.Context, items []types.RankedItem) (string, error) {
	prompt := buildDigestPrompt(items, c.categories)
	c.logger.Info("summarizing articles", "articles", len(items), "prompt_chars", len([]rune(prompt)))

	text, err := c.generate(ctx, c.model, genai.Text(prompt), 0.3, digestMaxTokens)
	if err != nil {
		return "", fmt.Errorf("digest summary failed: %w", err)
	}
	return text, nil
}

// SummarizeVideo summarizes one transcript. An empty prompt falls back to
// DefaultVideoPrompt and an empty model to the client's model.
func (c *Client) SummarizeVideo(ctx context.Context, video types.Video, model, prompt string) (string, error) {
	if strings.TrimSpace(video.Transcript) == "" {
		return "", faults.Wrap(faults.ErrNotFound, "ai", video.ID, "no transcript", nil)
	}
	if model == "" {
		model = c.model
	}

	c.logger.Info("summarizing video", "video_id", video.ID, "title", video.Title, "transcript_chars", len([]rune(video.Transcript)))
	text, err := c.generate(ctx, model, genai.Text(buildVideoPrompt(video, prompt)), 0.3, summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("video summary failed for %s: %w", video.ID, err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, temperature float32, maxTokens int32) (string, error) {
	resp, err := c.models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
