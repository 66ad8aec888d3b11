package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shanehull/finbrief/internal/types"
)

// ConsoleSender writes the plain text rendition of a message instead of
// sending it. Used for dry runs.
type ConsoleSender struct {
	w io.Writer
}

func NewConsoleSender(w io.Writer) *ConsoleSender {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSender{w: w}
}

func (c *ConsoleSender) Send(_ context.Context, msg *RenderedMessage, to []string) error {
	recipients := strings.Join(to, ", ")
	if recipients == "" {
		recipients = "(none)"
	}
	_, err := fmt.Fprintf(c.w, "To: %s\nSubject: %s\n\n%s\n", recipients, msg.Subject, msg.Text)
	return err
}

const titleWidth = 60

// RankedTable renders ranked items as a rounded console table with the score
// right-aligned and long titles trimmed.
func RankedTable(items []types.RankedItem) string {
	tw := newConsoleTable(table.Row{"#", "Score", "Source", "Title", "Keywords"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 4, WidthMax: titleWidth, WidthMaxEnforcer: text.Trim},
	})
	for i, it := range items {
		tw.AppendRow(table.Row{
			i + 1,
			strconv.FormatFloat(it.Score, 'f', 1, 64),
			it.Source,
			it.Title,
			strings.Join(it.MatchedKeywords, ","),
		})
	}
	if len(items) > 0 {
		tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d items", len(items)), ""})
	}
	return tw.Render()
}

// VideoTable renders video summaries with their transcript length.
func VideoTable(summaries []types.VideoSummary) string {
	tw := newConsoleTable(table.Row{"ID", "Title", "Transcript"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: titleWidth, WidthMaxEnforcer: text.Trim},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	for _, s := range summaries {
		transcript := "-"
		if s.Transcript != "" {
			transcript = strconv.Itoa(len([]rune(s.Transcript))) + " chars"
		}
		tw.AppendRow(table.Row{s.ID, s.Title, transcript})
	}
	return tw.Render()
}

func newConsoleTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(header)
	return tw
}
