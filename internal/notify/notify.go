/*
Package notify renders the news digest and per-show video summaries as
HTML emails with a plain text fallback, and delivers them over SMTP or to the
console.
*/
package notify

import (
	"context"
	"slices"

	"github.com/shanehull/finbrief/internal/types"
)

// RenderedMessage is a fully rendered notification ready for delivery.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// DigestData feeds the daily news digest template.
type DigestData struct {
	Subject string
	// Date is the local timestamp shown in the header, e.g. "2025-06-10 08:00".
	Date    string
	Summary string
	Items   []types.RankedItem
	Model   string
}

// ShowData feeds the per-show video summary template.
type ShowData struct {
	Subject   string
	Show      string
	Date      string
	Summaries []types.VideoSummary
	Model     string
}

type Renderer interface {
	RenderDigest(data DigestData) (*RenderedMessage, error)
	RenderShow(data ShowData) (*RenderedMessage, error)
}

// Sender delivers a rendered message to the given recipients.
type Sender interface {
	Send(ctx context.Context, msg *RenderedMessage, to []string) error
}

// Sources returns the distinct item sources in sorted order.
func (d DigestData) Sources() []string {
	seen := make(map[string]struct{}, len(d.Items))
	var out []string
	for _, it := range d.Items {
		if _, ok := seen[it.Source]; ok || it.Source == "" {
			continue
		}
		seen[it.Source] = struct{}{}
		out = append(out, it.Source)
	}
	slices.Sort(out)
	return out
}
