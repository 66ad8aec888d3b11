package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
min_score: 4
max_articles: 10
keywords:
  台積電: 5
  晶片: 3
  AI: 2
rss_feeds:
  經濟日報: https://money.udn.com/rssfeed/news/1001/5591
  Yahoo: https://tw.stock.yahoo.com/rss
scrape_targets:
  - name: 鉅亨網
    use_api: true
    api_url: https://api.cnyes.com/media/api/v1/newslist/category/tw_stock
schedule_times: ["08:00", "18:00"]
email:
  recipients: [a@example.com]
youtube:
  channel_id: UCglobal
  summary_prompt: global prompt
  shows:
    - name: 財經早餐
      channel_id: UCshow
      schedule_times: ["07:30"]
    - name: 晚間盤後
      enabled: false
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, geminiKeyEnv, googleKeyEnv, newsAPIKeyEnv, youtubeKeyEnv,
		smtpHostEnv, smtpPortEnv, smtpUserEnv, smtpPasswordEnv, emailFromEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadYAMLKeepsOrderAndDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var got []string
	for _, kw := range cfg.Keywords {
		got = append(got, kw.Keyword)
	}
	if strings.Join(got, ",") != "台積電,晶片,AI" {
		t.Fatalf("keyword order not preserved: %v", got)
	}
	if cfg.RSSFeeds[0].Name != "經濟日報" || cfg.RSSFeeds[1].Name != "Yahoo" {
		t.Fatalf("feed order not preserved: %+v", cfg.RSSFeeds)
	}
	if cfg.MinScore != 4 || cfg.MaxArticles != 10 {
		t.Fatalf("unexpected thresholds: %v %v", cfg.MinScore, cfg.MaxArticles)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" || cfg.RetentionHours != 48 {
		t.Fatalf("defaults not applied: %q %d", cfg.GeminiModel, cfg.RetentionHours)
	}
	if cfg.YouTube.STTModel != cfg.GeminiModel {
		t.Fatalf("stt model should inherit gemini_model, got %q", cfg.YouTube.STTModel)
	}
	if cfg.Email.SubjectPrefix != "[金融情報]" || cfg.Email.SMTPPort != 587 {
		t.Fatalf("email defaults not applied: %+v", cfg.Email)
	}
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	body := `
min_score = 6.0
schedule_times = ["09:00"]

[[keywords]]
keyword = "Fed"
weight = 4.0

[[keywords]]
keyword = "通膨"
weight = 2.0

[[rss_feeds]]
name = "CNA"
url = "https://feeds.feedburner.com/rsscna/finance"
`
	cfg, err := Load(writeFile(t, "config.toml", body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Keywords) != 2 || cfg.Keywords[0].Keyword != "Fed" || cfg.Keywords[1].Weight != 2 {
		t.Fatalf("unexpected keywords: %+v", cfg.Keywords)
	}
	if cfg.MinScore != 6 || len(cfg.RSSFeeds) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(googleKeyEnv, "google-key")
	t.Setenv(smtpUserEnv, "bot@example.com")
	t.Setenv(smtpPasswordEnv, "secret")
	t.Setenv(smtpPortEnv, "465")

	path := writeFile(t, "config.yaml", sampleYAML)
	t.Setenv(configPathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "google-key" {
		t.Fatalf("expected fallback key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.Email.FromEmail != "bot@example.com" || cfg.Email.SMTPPort != 465 {
		t.Fatalf("unexpected email config: %+v", cfg.Email)
	}
	if !cfg.Email.SMTPReady() {
		t.Fatal("expected smtp to be ready")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	t.Parallel()

	body := `
keywords:
  - {keyword: 台積電, weight: 5}
  - {keyword: 台積電, weight: 1}
  - {keyword: 晶片, weight: 0}
schedule_times: ["8:00", "25:00", "18:00"]
youtube:
  shows:
    - name: ""
`
	cfg, err := Parse([]byte(body), ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"duplicate keyword", "must be positive", `"8:00" is not HH:MM`, `"25:00" is not HH:MM`, "name is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
	if strings.Contains(err.Error(), `"18:00"`) {
		t.Fatalf("valid time reported: %v", err)
	}
}

func TestFetchRequestTimeout(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		fetch FetchConfig
		want  time.Duration
	}{
		{"default budget", FetchConfig{TimeoutSeconds: 15, Retries: 3}, 3750 * time.Millisecond},
		{"single attempt", FetchConfig{TimeoutSeconds: 10, Retries: 1}, 5 * time.Second},
		{"floored", FetchConfig{TimeoutSeconds: 2, Retries: 5}, time.Second},
		{"no timeout", FetchConfig{Retries: 3}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.fetch.RequestTimeout(); got != tc.want {
				t.Fatalf("RequestTimeout() = %s, want %s", got, tc.want)
			}
		})
	}
}
