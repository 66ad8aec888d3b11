package config

// Default returns the configuration used for any field the config file leaves
// unset.
func Default() Config {
	return Config{
		Logging:        LoggingConfig{Level: "info"},
		News:           NewsConfig{Enabled: true},
		MinScore:       5,
		MaxArticles:    50,
		RetentionHours: 48,
		GeminiModel:    "gemini-2.5-flash",
		Categories: []string{
			"半導體與伺服器供應鏈",
			"台股大盤與上市櫃公司動態",
			"國際宏觀經濟（FED、通膨、關稅政策）",
		},
		NewsAPI: NewsAPIConfig{
			Query:    "TSMC OR semiconductor",
			Language: "en",
			SortBy:   "publishedAt",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 15,
			MaxWorkers:     3,
			Retries:        3,
		},
		Email: EmailConfig{
			SubjectPrefix: "[金融情報]",
			SMTPServer:    "smtp.gmail.com",
			SMTPPort:      587,
		},
		YouTube: YouTubeConfig{
			Enabled:             true,
			MaxVideos:           3,
			SubtitleLanguages:   []string{"zh-TW", "zh", "zh-Hant", "en"},
			AudioTimeoutSeconds: 300,
			YTDLPPath:           "yt-dlp",
		},
	}
}
