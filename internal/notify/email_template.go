package notify

// emailStyle covers every class emitted by the templates below and by
// MarkdownToHTML.
const emailStyle = `
  <style>
    body { margin: 0; padding: 16px; background: #eef1f5; color: #1f2933; line-height: 1.65;
      font-family: "Noto Sans TC", "PingFang TC", "Microsoft JhengHei", Helvetica, Arial, sans-serif; }
    a { color: #1d4f91; text-decoration: none; }
    .container { max-width: 640px; margin: 0 auto; background: #fff; border: 1px solid #d9dee5; }
    .header { padding: 18px 22px; background: #14324f; color: #fff; }
    .header-title { font-size: 20px; font-weight: bold; }
    .header-date { font-size: 13px; color: #b8c7d9; }
    .section { padding: 14px 22px; border-top: 1px solid #eef1f5; }
    .section-title { font-size: 12px; font-weight: bold; color: #5c6b7a; text-transform: uppercase; margin-bottom: 10px; }
    h2 { font-size: 16px; margin: 16px 0 6px; padding-left: 8px; border-left: 3px solid #a0aab5; }
    h2.importance-high { border-left-color: #c62828; }
    h2.importance-medium { border-left-color: #ef8f00; }
    h2.importance-low { border-left-color: #2e7d32; }
    h3.subheading { font-size: 14px; margin: 10px 0 4px; color: #3d4b59; }
    .bullet, .para, .article { font-size: 14px; }
    .bullet { margin: 3px 0 3px 10px; }
    .para { margin: 6px 0; }
    .article { padding: 8px 0; border-bottom: 1px dashed #e1e5ea; }
    .article-meta { font-size: 12px; color: #5c6b7a; }
    .keyword-tag { display: inline-block; margin-left: 4px; padding: 0 6px; font-size: 11px;
      background: #e3edf8; color: #1d4f91; border-radius: 3px; }
    .video-title { font-size: 16px; font-weight: bold; }
    .cta-button { display: inline-block; margin-top: 6px; padding: 6px 14px; font-size: 13px;
      background: #14324f; color: #fff !important; border-radius: 3px; }
    .footer { padding: 14px 22px; font-size: 12px; color: #8795a3; text-align: center; background: #f6f8fa; }
  </style>`

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Subject}}</title>` + emailStyle + `
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="header-title">每日財經情報</div>
      <div class="header-date">{{.Date}}</div>
    </div>

    <div class="section">
      <div class="section-title">AI 分析摘要</div>
      {{markdown .Summary}}
    </div>

    {{if .Items}}
    <div class="section">
      <div class="section-title">原始新聞（{{len .Items}} 則）</div>
      {{range $i, $it := .Items}}
      <div class="article">
        <a href="{{$it.Link}}" target="_blank" rel="noopener">{{inc $i}}. {{$it.Title}}</a>
        <div class="article-meta">
          {{$it.Source}} · 分數 {{printf "%.1f" $it.Score}}
          {{range $it.MatchedKeywords}}<span class="keyword-tag">{{.}}</span>{{end}}
        </div>
      </div>
      {{end}}
    </div>
    {{end}}

    <div class="footer">
      {{with .Sources}}來源：{{join . "、"}}<br />{{end}}
      {{if .Model}}模型：{{.Model}}<br />{{end}}
      Generated by finbrief
    </div>
  </div>
</body>
</html>`

const showHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Subject}}</title>` + emailStyle + `
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="header-title">{{.Show}}</div>
      <div class="header-date">{{.Date}}</div>
    </div>

    {{range .Summaries}}
    <div class="section">
      <div class="video-title">{{.Title}}</div>
      {{if .Published}}<div class="article-meta">{{.Published.Format "2006-01-02 15:04"}}</div>{{end}}
      {{markdown .Summary}}
      <a href="{{.URL}}" class="cta-button" target="_blank" rel="noopener">觀看影片 →</a>
    </div>
    {{end}}

    <div class="footer">
      {{if .Model}}模型：{{.Model}}<br />{{end}}
      Generated by finbrief
    </div>
  </div>
</body>
</html>`
