package goldmark

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/fwojciec/playground"
)

var page = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"stamp":   func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Kind}} {{.ID}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
pre { background: #f4f4f4; padding: .75rem; overflow-x: auto; }
.meta, .sources { color: #666; font-size: .9rem; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Kind}}</h1>
<p class="meta">{{stamp .CreatedAt}}{{with .Params.Model}} &middot; {{.}}{{end}} &middot; {{.State}}</p>
<blockquote>{{.Input}}</blockquote>
<article>{{.Body}}</article>
{{- with .Sources}}
<ol class="sources">
{{- range .}}
<li>{{if .URI}}<a href="{{.URI}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}{{with .Snippet}} &mdash; {{.}}{{end}}</li>
{{- end}}
</ol>
{{- end}}
{{- with .Confidence}}
<p class="meta">Confidence {{percent .}}</p>
{{- end}}
{{- range .Artifacts}}
<p><a href="{{.}}">{{.}}</a></p>
{{- end}}
{{- with .Usage}}
<p class="meta">{{.PromptTokens}} prompt &middot; {{.CompletionTokens}} completion</p>
{{- end}}
{{- with .Err}}
<p class="error">{{.}}</p>
{{- end}}
</body>
</html>
`))

type exportPage struct {
	playground.Transcript
	Body template.HTML
}

// ExportHTML writes t as a standalone HTML page with its content rendered
// from markdown.
func ExportHTML(w io.Writer, t playground.Transcript) error {
	body, err := RenderHTML(t.Content)
	if err != nil {
		return err
	}
	// RenderHTML omits raw HTML, so its output is safe to embed.
	if err := page.Execute(w, exportPage{Transcript: t, Body: template.HTML(body)}); err != nil { //nolint:gosec
		return fmt.Errorf("goldmark: export: %w", err)
	}
	return nil
}
