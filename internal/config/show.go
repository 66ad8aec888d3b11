package config

import "slices"

// ShowOverride is one entry under youtube.shows. Pointer fields and nil slices
// mean "not set for this show" and fall back to the global value.
type ShowOverride struct {
	Name          string   `yaml:"name" toml:"name"`
	Enabled       *bool    `yaml:"enabled" toml:"enabled"`
	ChannelID     *string  `yaml:"channel_id" toml:"channel_id"`
	MaxVideos     *int     `yaml:"max_videos" toml:"max_videos"`
	STTModel      *string  `yaml:"stt_model" toml:"stt_model"`
	SummaryModel  *string  `yaml:"summary_model" toml:"summary_model"`
	SummaryPrompt *string  `yaml:"summary_prompt" toml:"summary_prompt"`
	ScheduleTimes []string `yaml:"schedule_times" toml:"schedule_times"`
	Recipients    []string `yaml:"recipients" toml:"recipients"`
	SubjectPrefix *string  `yaml:"subject_prefix" toml:"subject_prefix"`
}

// ShowDefaults are the global values a show inherits.
type ShowDefaults struct {
	ChannelID     string
	MaxVideos     int
	STTModel      string
	SummaryModel  string
	SummaryPrompt string
	ScheduleTimes []string
	Recipients    []string
	SubjectPrefix string
}

// ShowConfig is the resolved, per-cycle configuration of one show. It is not
// modified after ResolveShow returns it.
type ShowConfig struct {
	Name            string
	Enabled         bool
	ChannelID       string
	MaxVideos       int
	STTModel        string
	SummaryModel    string
	SummaryPrompt   string
	ScheduleTimes   []string
	EmailRecipients []string
	SubjectPrefix   string
}

// ShowDefaults collects the global values shows fall back to.
func (c Config) ShowDefaults() ShowDefaults {
	return ShowDefaults{
		ChannelID:     c.YouTube.ChannelID,
		MaxVideos:     c.YouTube.MaxVideos,
		STTModel:      c.YouTube.STTModel,
		SummaryModel:  c.YouTube.SummaryModel,
		SummaryPrompt: c.YouTube.SummaryPrompt,
		ScheduleTimes: c.ScheduleTimes,
		Recipients:    c.Email.Recipients,
		SubjectPrefix: c.Email.SubjectPrefix,
	}
}

// ResolveShow applies show-level values over the defaults. Slices are copied
// so the result shares no backing arrays with the loaded config.
func ResolveShow(o ShowOverride, d ShowDefaults) ShowConfig {
	return ShowConfig{
		Name:            o.Name,
		Enabled:         orElse(o.Enabled, true),
		ChannelID:       orElse(o.ChannelID, d.ChannelID),
		MaxVideos:       orElse(o.MaxVideos, d.MaxVideos),
		STTModel:        orElse(o.STTModel, d.STTModel),
		SummaryModel:    orElse(o.SummaryModel, d.SummaryModel),
		SummaryPrompt:   orElse(o.SummaryPrompt, d.SummaryPrompt),
		ScheduleTimes:   sliceOrElse(o.ScheduleTimes, d.ScheduleTimes),
		EmailRecipients: sliceOrElse(o.Recipients, d.Recipients),
		SubjectPrefix:   orElse(o.SubjectPrefix, d.SubjectPrefix),
	}
}

// Shows resolves every configured show, in config order.
func (c Config) Shows() []ShowConfig {
	defaults := c.ShowDefaults()
	out := make([]ShowConfig, 0, len(c.YouTube.Shows))
	for _, o := range c.YouTube.Shows {
		out = append(out, ResolveShow(o, defaults))
	}
	return out
}

func orElse[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func sliceOrElse(v, fallback []string) []string {
	if v == nil {
		return slices.Clone(fallback)
	}
	return slices.Clone(v)
}
