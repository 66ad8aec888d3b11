package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shanehull/finbrief/internal/types"
)

// UnmarshalYAML accepts either a mapping (`台積電: 5`) or a sequence of
// {keyword, weight} entries and keeps document order in both cases.
func (t *KeywordTable) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(KeywordTable, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var kw types.Keyword
			if err := value.Content[i].Decode(&kw.Keyword); err != nil {
				return fmt.Errorf("keyword at line %d: %w", value.Content[i].Line, err)
			}
			if err := value.Content[i+1].Decode(&kw.Weight); err != nil {
				return fmt.Errorf("weight for %q at line %d: %w", kw.Keyword, value.Content[i+1].Line, err)
			}
			out = append(out, kw)
		}
		*t = out
		return nil
	case yaml.SequenceNode:
		var entries []types.Keyword
		if err := value.Decode(&entries); err != nil {
			return err
		}
		*t = entries
		return nil
	default:
		return fmt.Errorf("keywords at line %d: expected mapping or sequence", value.Line)
	}
}

// UnmarshalYAML accepts either a `name: url` mapping or a sequence of
// {name, url} entries.
func (t *FeedTable) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(FeedTable, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var feed FeedConfig
			if err := value.Content[i].Decode(&feed.Name); err != nil {
				return fmt.Errorf("feed name at line %d: %w", value.Content[i].Line, err)
			}
			if err := value.Content[i+1].Decode(&feed.URL); err != nil {
				return fmt.Errorf("feed url for %q at line %d: %w", feed.Name, value.Content[i+1].Line, err)
			}
			out = append(out, feed)
		}
		*t = out
		return nil
	case yaml.SequenceNode:
		var entries []FeedConfig
		if err := value.Decode(&entries); err != nil {
			return err
		}
		*t = entries
		return nil
	default:
		return fmt.Errorf("rss_feeds at line %d: expected mapping or sequence", value.Line)
	}
}

// Weights returns the table as a list for the scorer.
func (t KeywordTable) Weights() []types.Keyword {
	out := make([]types.Keyword, len(t))
	copy(out, t)
	return out
}
