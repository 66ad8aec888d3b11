package types

import (
	"time"
)

// RawItem is one fetched content unit before any filtering.
type RawItem struct {
	Title     string
	Link      string
	Source    string
	Summary   string
	Published *time.Time
}

// RankedItem is a RawItem that passed the relevance threshold.
type RankedItem struct {
	RawItem
	Score           float64
	MatchedKeywords []string
}

// Keyword is one entry of the weighted keyword table.
type Keyword struct {
	Keyword string  `yaml:"keyword" toml:"keyword"`
	Weight  float64 `yaml:"weight" toml:"weight"`
}

type Video struct {
	Title      string
	ID         string
	Channel    string
	URL        string
	Published  *time.Time
	Transcript string
}

type VideoSummary struct {
	Video
	Summary string
}
