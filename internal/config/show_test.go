package config

import (
	"slices"
	"testing"
)

func TestResolveShowFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	defaults := ShowDefaults{
		ChannelID:     "UCglobal",
		MaxVideos:     3,
		STTModel:      "gemini-2.5-flash",
		SummaryModel:  "gemini-2.5-flash",
		SummaryPrompt: "global",
		ScheduleTimes: []string{"08:00"},
		Recipients:    []string{"a@example.com"},
		SubjectPrefix: "[金融情報]",
	}

	channel := "UCshow"
	maxVideos := 1
	show := ResolveShow(ShowOverride{
		Name:          "財經早餐",
		ChannelID:     &channel,
		MaxVideos:     &maxVideos,
		ScheduleTimes: []string{},
	}, defaults)

	if show.ChannelID != "UCshow" || show.MaxVideos != 1 {
		t.Fatalf("show values not applied: %+v", show)
	}
	if show.SummaryPrompt != "global" || show.SubjectPrefix != "[金融情報]" || !show.Enabled {
		t.Fatalf("defaults not applied: %+v", show)
	}
	if show.ScheduleTimes == nil || len(show.ScheduleTimes) != 0 {
		t.Fatalf("explicit empty schedule should override global: %v", show.ScheduleTimes)
	}
	if !slices.Equal(show.EmailRecipients, []string{"a@example.com"}) {
		t.Fatalf("recipients not inherited: %v", show.EmailRecipients)
	}

	show.EmailRecipients[0] = "changed"
	if defaults.Recipients[0] != "a@example.com" {
		t.Fatal("resolved show aliases default recipients")
	}
}

func TestShowsResolvesInOrder(t *testing.T) {
	t.Parallel()

	off := false
	cfg := Default()
	cfg.ScheduleTimes = []string{"08:00", "18:00"}
	cfg.YouTube.Shows = []ShowOverride{
		{Name: "a", ScheduleTimes: []string{"07:30"}},
		{Name: "b", Enabled: &off},
	}

	shows := cfg.Shows()
	if len(shows) != 2 || shows[0].Name != "a" || shows[1].Name != "b" {
		t.Fatalf("unexpected shows: %+v", shows)
	}
	if !slices.Equal(shows[0].ScheduleTimes, []string{"07:30"}) {
		t.Fatalf("unexpected schedule: %v", shows[0].ScheduleTimes)
	}
	if !slices.Equal(shows[1].ScheduleTimes, []string{"08:00", "18:00"}) || shows[1].Enabled {
		t.Fatalf("unexpected show b: %+v", shows[1])
	}
}
