package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	digest *template.Template
	show   *template.Template
}

var templateFuncs = template.FuncMap{
	"markdown": MarkdownToHTML,
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
}

// NewHTMLEmailRenderer creates a renderer with the default email templates.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	return &HTMLEmailRenderer{
		digest: template.Must(template.New("digest").Funcs(templateFuncs).Parse(digestHTMLTemplate)),
		show:   template.Must(template.New("show").Funcs(templateFuncs).Parse(showHTMLTemplate)),
	}
}

// RenderDigest produces the daily news digest email.
func (r *HTMLEmailRenderer) RenderDigest(data DigestData) (*RenderedMessage, error) {
	var htmlBuf bytes.Buffer
	if err := r.digest.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render digest template: %w", err)
	}

	return &RenderedMessage{
		Subject: data.Subject,
		Text:    renderDigestText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// RenderShow produces the video summary email for one show.
func (r *HTMLEmailRenderer) RenderShow(data ShowData) (*RenderedMessage, error) {
	var htmlBuf bytes.Buffer
	if err := r.show.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render show template: %w", err)
	}

	return &RenderedMessage{
		Subject: data.Subject,
		Text:    renderShowText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderDigestText(data DigestData) string {
	var sb strings.Builder

	sb.WriteString(data.Subject + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(data.Date + "\n\n")

	sb.WriteString(data.Summary + "\n\n")

	if len(data.Items) > 0 {
		sb.WriteString("原始新聞\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for i, it := range data.Items {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, it.Title)
			fmt.Fprintf(&sb, "   %s | %.1f | %s\n", it.Source, it.Score, it.Link)
		}
		sb.WriteString("\n")
	}

	if src := data.Sources(); len(src) > 0 {
		fmt.Fprintf(&sb, "來源：%s\n", strings.Join(src, "、"))
	}
	if data.Model != "" {
		fmt.Fprintf(&sb, "模型：%s\n", data.Model)
	}

	return sb.String()
}

func renderShowText(data ShowData) string {
	var sb strings.Builder

	sb.WriteString(data.Subject + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(data.Date + "\n\n")

	for _, s := range data.Summaries {
		sb.WriteString(s.Title + "\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(s.URL + "\n\n")
		sb.WriteString(s.Summary + "\n\n")
	}

	if data.Model != "" {
		fmt.Fprintf(&sb, "模型：%s\n", data.Model)
	}

	return sb.String()
}
