package notify

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var boldExpr = regexp.MustCompile(`\*\*(.+?)\*\*`)

var summaryPolicy = newSummaryPolicy()

func newSummaryPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("h2", "h3", "div", "p")
	return p
}

// MarkdownToHTML converts the small markdown subset the model emits
// (## and ### headings, "- " bullets, **bold**) to HTML. Headings carrying an
// importance emoji get a matching class. Text is escaped and the result is
// sanitized.
func MarkdownToHTML(md string) template.HTML {
	var parts []string
	for _, line := range strings.Split(md, "\n") {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			parts = append(parts, "<br>")
		case strings.HasPrefix(stripped, "## "):
			content := stripped[3:]
			parts = append(parts, `<h2 class="`+importanceClass(content)+`">`+inline(content)+`</h2>`)
		case strings.HasPrefix(stripped, "### "):
			parts = append(parts, `<h3 class="subheading">`+inline(stripped[4:])+`</h3>`)
		case strings.HasPrefix(stripped, "- "), strings.HasPrefix(stripped, "* "):
			parts = append(parts, `<div class="bullet">• `+inline(stripped[2:])+`</div>`)
		default:
			parts = append(parts, `<p class="para">`+inline(stripped)+`</p>`)
		}
	}
	return template.HTML(summaryPolicy.Sanitize(strings.Join(parts, "\n")))
}

func inline(s string) string {
	return boldExpr.ReplaceAllString(html.EscapeString(s), "<strong>$1</strong>")
}

func importanceClass(heading string) string {
	switch {
	case strings.Contains(heading, "🔴"):
		return "importance-high"
	case strings.Contains(heading, "🟡"):
		return "importance-medium"
	case strings.Contains(heading, "🟢"):
		return "importance-low"
	}
	return "importance-none"
}
