/*
Package config loads the finbrief run configuration from a YAML or TOML file,
applies environment overrides for secrets, and resolves per-show settings.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shanehull/finbrief/internal/types"
)

const (
	configPathEnv   = "FINBRIEF_CONFIG"
	geminiKeyEnv    = "GEMINI_API_KEY"
	googleKeyEnv    = "GOOGLE_API_KEY"
	newsAPIKeyEnv   = "NEWSAPI_KEY"
	youtubeKeyEnv   = "YOUTUBE_API_KEY"
	smtpHostEnv     = "SMTP_HOST"
	smtpPortEnv     = "SMTP_PORT"
	smtpUserEnv     = "SMTP_USER"
	smtpPasswordEnv = "SMTP_PASSWORD"
	emailFromEnv    = "EMAIL_FROM"

	DefaultPath = "config.yaml"
)

// LocalZone is the fixed UTC+8 offset used for schedules, subjects and the
// today-only video cutoff.
var LocalZone = time.FixedZone("UTC+8", 8*60*60)

// Config holds every setting consumed by a single run. It is read once and
// passed by value into each component.
type Config struct {
	Logging     LoggingConfig   `yaml:"logging" toml:"logging"`
	News        NewsConfig      `yaml:"news" toml:"news"`
	Keywords    KeywordTable    `yaml:"keywords" toml:"keywords"`
	MinScore    float64         `yaml:"min_score" toml:"min_score"`
	MaxArticles int             `yaml:"max_articles" toml:"max_articles"`
	Categories  []string        `yaml:"categories" toml:"categories"`
	RSSFeeds    FeedTable       `yaml:"rss_feeds" toml:"rss_feeds"`
	Scrape      []ScrapeTarget  `yaml:"scrape_targets" toml:"scrape_targets"`
	NewsAPI     NewsAPIConfig   `yaml:"newsapi" toml:"newsapi"`
	Email       EmailConfig     `yaml:"email" toml:"email"`
	YouTube     YouTubeConfig   `yaml:"youtube" toml:"youtube"`
	Fetch       FetchConfig     `yaml:"fetch" toml:"fetch"`

	// RetentionHours bounds article age; zero disables freshness filtering.
	RetentionHours int `yaml:"retention_hours" toml:"retention_hours"`

	GeminiModel  string `yaml:"gemini_model" toml:"gemini_model"`
	GeminiAPIKey string `yaml:"-" toml:"-"`

	// ScheduleTimes is the global HH:MM allow-list inherited by shows that
	// declare none of their own.
	ScheduleTimes []string `yaml:"schedule_times" toml:"schedule_times"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

type NewsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// Retention returns the article retention window, zero meaning no freshness
// filtering.
func (c Config) Retention() time.Duration {
	if c.RetentionHours <= 0 {
		return 0
	}
	return time.Duration(c.RetentionHours) * time.Hour
}

// FetchConfig covers the aggregator pool and per-source HTTP behaviour.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" toml:"timeout_seconds"`
	MaxWorkers     int `yaml:"max_workers" toml:"max_workers"`
	Retries        int `yaml:"retries" toml:"retries"`
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single HTTP attempt so that every retry, plus the
// backoff between them, fits inside Timeout. Zero means no per-request bound.
func (f FetchConfig) RequestTimeout() time.Duration {
	total := f.Timeout()
	if total <= 0 {
		return 0
	}
	d := total / time.Duration(max(f.Retries, 1)+1)
	return max(d, time.Second)
}

// ScrapeTarget describes a site without a usable feed. UseAPI targets are
// fetched from APIURL as JSON instead of scraped.
type ScrapeTarget struct {
	Name          string `yaml:"name" toml:"name"`
	URL           string `yaml:"url" toml:"url"`
	TitleSelector string `yaml:"title_selector" toml:"title_selector"`
	LinkSelector  string `yaml:"link_selector" toml:"link_selector"`
	UseAPI        bool   `yaml:"use_api" toml:"use_api"`
	APIURL        string `yaml:"api_url" toml:"api_url"`
}

type NewsAPIConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Query    string `yaml:"query" toml:"query"`
	Language string `yaml:"language" toml:"language"`
	SortBy   string `yaml:"sort_by" toml:"sort_by"`
	APIKey   string `yaml:"-" toml:"-"`
}

// EmailConfig holds delivery settings. SMTP credentials only come from the
// environment.
type EmailConfig struct {
	Recipients    []string `yaml:"recipients" toml:"recipients"`
	SubjectPrefix string   `yaml:"subject_prefix" toml:"subject_prefix"`

	SMTPServer string `yaml:"-" toml:"-"`
	SMTPPort   int    `yaml:"-" toml:"-"`
	SMTPUser   string `yaml:"-" toml:"-"`
	SMTPPass   string `yaml:"-" toml:"-"`
	FromEmail  string `yaml:"-" toml:"-"`
}

// YouTubeConfig carries the global show defaults and the show list.
type YouTubeConfig struct {
	Enabled             bool           `yaml:"enabled" toml:"enabled"`
	ChannelID           string         `yaml:"channel_id" toml:"channel_id"`
	MaxVideos           int            `yaml:"max_videos" toml:"max_videos"`
	STTModel            string         `yaml:"stt_model" toml:"stt_model"`
	SummaryModel        string         `yaml:"summary_model" toml:"summary_model"`
	SummaryPrompt       string         `yaml:"summary_prompt" toml:"summary_prompt"`
	SubtitleLanguages   []string       `yaml:"subtitle_languages" toml:"subtitle_languages"`
	AudioTimeoutSeconds int            `yaml:"audio_timeout_seconds" toml:"audio_timeout_seconds"`
	YTDLPPath           string         `yaml:"ytdlp_path" toml:"ytdlp_path"`
	Shows               []ShowOverride `yaml:"shows" toml:"shows"`
	APIKey              string         `yaml:"-" toml:"-"`
}

func (y YouTubeConfig) AudioTimeout() time.Duration {
	return time.Duration(y.AudioTimeoutSeconds) * time.Second
}

// KeywordTable is the ordered keyword-to-weight table. Order is the order the
// keywords appear in the config file.
type KeywordTable []types.Keyword

// FeedConfig is one named RSS feed.
type FeedConfig struct {
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`
}

// FeedTable is the ordered name-to-URL feed table.
type FeedTable []FeedConfig

// Load reads the configuration file at path (or $FINBRIEF_CONFIG, or
// config.yaml), layers it over the defaults, applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes raw over the defaults. ext selects TOML for ".toml"; anything
// else is treated as YAML.
func Parse(raw []byte, ext string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.GeminiAPIKey = v
	} else if v := os.Getenv(googleKeyEnv); v != "" {
		c.GeminiAPIKey = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}

	if v := os.Getenv(youtubeKeyEnv); v != "" {
		c.YouTube.APIKey = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Email.SMTPServer = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.SMTPPort = port
		}
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Email.SMTPUser = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.SMTPPass = v
	}
	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.FromEmail = v
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.SMTPUser
	}
}

// normalize replaces zero values left by an explicit but empty config entry
// with their defaults.
func (c *Config) normalize() {
	d := Default()

	if c.MaxArticles <= 0 {
		c.MaxArticles = d.MaxArticles
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = d.Fetch.TimeoutSeconds
	}
	if c.Fetch.MaxWorkers <= 0 {
		c.Fetch.MaxWorkers = d.Fetch.MaxWorkers
	}
	if c.Fetch.Retries <= 0 {
		c.Fetch.Retries = d.Fetch.Retries
	}
	if c.GeminiModel == "" {
		c.GeminiModel = d.GeminiModel
	}
	if len(c.Categories) == 0 {
		c.Categories = d.Categories
	}
	if c.Email.SubjectPrefix == "" {
		c.Email.SubjectPrefix = d.Email.SubjectPrefix
	}
	if c.Email.SMTPServer == "" {
		c.Email.SMTPServer = d.Email.SMTPServer
	}
	if c.Email.SMTPPort <= 0 {
		c.Email.SMTPPort = d.Email.SMTPPort
	}
	if c.YouTube.MaxVideos <= 0 {
		c.YouTube.MaxVideos = d.YouTube.MaxVideos
	}
	if c.YouTube.STTModel == "" {
		c.YouTube.STTModel = c.GeminiModel
	}
	if c.YouTube.SummaryModel == "" {
		c.YouTube.SummaryModel = c.GeminiModel
	}
	if len(c.YouTube.SubtitleLanguages) == 0 {
		c.YouTube.SubtitleLanguages = d.YouTube.SubtitleLanguages
	}
	if c.YouTube.AudioTimeoutSeconds <= 0 {
		c.YouTube.AudioTimeoutSeconds = d.YouTube.AudioTimeoutSeconds
	}
	if c.YouTube.YTDLPPath == "" {
		c.YouTube.YTDLPPath = d.YouTube.YTDLPPath
	}
}

// SMTPReady reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) SMTPReady() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != ""
}
