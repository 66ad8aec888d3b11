package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/types"
)

func TestMarkdownToHTML(t *testing.T) {
	t.Parallel()

	out := string(MarkdownToHTML("## 半導體 🔴\n### 台積電\n- **營收** 創新高\n<script>alert(1)</script>\n## 總經 🟢"))

	for _, want := range []string{
		`<h2 class="importance-high">`,
		`<h3 class="subheading">台積電</h3>`,
		`<strong>營收</strong> 創新高`,
		`<h2 class="importance-low">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script") {
		t.Fatalf("script tag survived:\n%s", out)
	}
}

func sampleDigest() DigestData {
	return DigestData{
		Subject: "[金融情報] 2025-06-10 每日摘要",
		Date:    "2025-06-10 08:00",
		Summary: "## 半導體 🔴\n- 台積電營收創新高",
		Model:   "gemini-2.5-flash",
		Items: []types.RankedItem{
			{
				RawItem:         types.RawItem{Title: "台積電 & 聯發科", Link: "https://news.example/1", Source: "經濟日報"},
				Score:           7.5,
				MatchedKeywords: []string{"台積電"},
			},
			{
				RawItem: types.RawItem{Title: "Fed holds", Link: "https://news.example/2", Source: "Reuters"},
				Score:   5,
			},
			{
				RawItem: types.RawItem{Title: "供應鏈", Link: "https://news.example/3", Source: "經濟日報"},
				Score:   5,
			},
		},
	}
}

func TestRenderDigest(t *testing.T) {
	t.Parallel()

	data := sampleDigest()
	msg, err := NewHTMLEmailRenderer().RenderDigest(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if msg.Subject != data.Subject {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}

	for _, want := range []string{
		"2025-06-10 08:00",
		`class="importance-high"`,
		"台積電 &amp; 聯發科",
		`href="https://news.example/1"`,
		"分數 7.5",
		`<span class="keyword-tag">台積電</span>`,
		"Reuters、經濟日報",
		"gemini-2.5-flash",
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}

	for _, want := range []string{"1. 台積電 & 聯發科", "https://news.example/2", "台積電營收創新高", "來源：Reuters、經濟日報"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestDigestSources(t *testing.T) {
	t.Parallel()

	got := sampleDigest().Sources()
	if len(got) != 2 || got[0] != "Reuters" || got[1] != "經濟日報" {
		t.Fatalf("unexpected sources %v", got)
	}
}

func TestRenderShow(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, 6, 10, 7, 30, 0, 0, time.UTC)
	data := ShowData{
		Subject: "[財經台] 2025-06-10 影片摘要",
		Show:    "財經台",
		Date:    "2025-06-10 08:00",
		Summaries: []types.VideoSummary{
			{Video: types.Video{ID: "v1", Title: "盤後解析", URL: "https://www.youtube.com/watch?v=v1", Published: &published}, Summary: "- 重點一"},
			{Video: types.Video{ID: "v2", Title: "早盤", URL: "https://www.youtube.com/watch?v=v2"}, Summary: "⚠️ 摘要生成失敗"},
		},
	}

	msg, err := NewHTMLEmailRenderer().RenderShow(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"財經台", "盤後解析", `href="https://www.youtube.com/watch?v=v1"`, "重點一", "2025-06-10 07:30", "⚠️ 摘要生成失敗"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	if strings.Index(msg.Text, "盤後解析") > strings.Index(msg.Text, "早盤") {
		t.Fatal("videos out of order in text body")
	}
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func testSMTP() SMTPConfig {
	return SMTPConfig{Server: "smtp.example.com", Port: 587, User: "bot@example.com", Pass: "secret", From: "bot@example.com"}
}

func TestEmailSenderSend(t *testing.T) {
	t.Parallel()

	fd := &fakeDialer{}
	s := NewEmailSender(testSMTP(), withDialer(func(SMTPConfig) dialer { return fd }))

	msg := &RenderedMessage{Subject: "digest", Text: "plain", HTML: "<p>html</p>"}
	if err := s.Send(context.Background(), msg, []string{"a@example.com", "b@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fd.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(fd.sent))
	}
	to := fd.sent[0].GetHeader("To")
	if len(to) != 2 || to[0] != "a@example.com" || to[1] != "b@example.com" {
		t.Fatalf("unexpected recipients %v", to)
	}
	if subj := fd.sent[0].GetHeader("Subject"); len(subj) != 1 || subj[0] != "digest" {
		t.Fatalf("unexpected subject %v", subj)
	}
}

func TestEmailSenderConfigErrors(t *testing.T) {
	t.Parallel()

	fd := &fakeDialer{}
	withFake := withDialer(func(SMTPConfig) dialer { return fd })
	msg := &RenderedMessage{Subject: "s", Text: "t"}

	if err := NewEmailSender(SMTPConfig{Server: "smtp.example.com"}, withFake).Send(context.Background(), msg, []string{"a@example.com"}); !faults.Disabled(err) {
		t.Fatalf("expected missing credentials to disable, got %v", err)
	}
	if err := NewEmailSender(testSMTP(), withFake).Send(context.Background(), msg, nil); !faults.Disabled(err) {
		t.Fatalf("expected missing recipients to disable, got %v", err)
	}
	if len(fd.sent) != 0 {
		t.Fatal("nothing should have been sent")
	}
}

func TestEmailSenderDialError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	s := NewEmailSender(testSMTP(), withDialer(func(SMTPConfig) dialer { return &fakeDialer{err: boom} }))

	err := s.Send(context.Background(), &RenderedMessage{Subject: "s", Text: "t"}, []string{"a@example.com"})
	if !errors.Is(err, boom) || faults.Disabled(err) {
		t.Fatalf("expected dial error, got %v", err)
	}
}

func TestSMTPFromConfig(t *testing.T) {
	t.Parallel()

	got := SMTPFromConfig(config.EmailConfig{SMTPServer: "smtp.example.com", SMTPPort: 465, SMTPUser: "u@example.com", SMTPPass: "p"})
	if got.From != "u@example.com" || got.Port != 465 || !got.ready() {
		t.Fatalf("unexpected smtp config %+v", got)
	}
}

func TestConsoleSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewConsoleSender(&buf).Send(context.Background(), &RenderedMessage{Subject: "digest", Text: "body"}, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "To: (none)") || !strings.Contains(out, "Subject: digest") || !strings.Contains(out, "body") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRankedTable(t *testing.T) {
	t.Parallel()

	items := sampleDigest().Items
	long := strings.Repeat("x", 100)
	items = append(items, types.RankedItem{RawItem: types.RawItem{Title: long, Source: "Wire"}, Score: 1})

	out := RankedTable(items)
	for _, want := range []string{"Score", "Keywords", "7.5", "Fed holds", "台積電", "4 items", strings.Repeat("x", titleWidth)} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SCORE") {
		t.Fatalf("header should keep its case:\n%s", out)
	}
	if strings.Contains(out, long) {
		t.Fatalf("long title should be trimmed to %d columns:\n%s", titleWidth, out)
	}
}

func TestVideoTable(t *testing.T) {
	t.Parallel()

	out := VideoTable([]types.VideoSummary{
		{Video: types.Video{ID: "v1", Title: "盤後解析", Transcript: "逐字稿內容"}},
		{Video: types.Video{ID: "v2", Title: "No captions"}},
	})
	for _, want := range []string{"Transcript", "v1", "盤後解析", "5 chars", "v2", " - "} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
