package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ultramdmemo/internal/apperr"
)

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func ChiJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ChiErr(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	ChiJSON(w, status, errResponse{Error: msg})
}

// ChiAppErr picks the status from the error's apperr code.
func ChiAppErr(w http.ResponseWriter, err error) {
	resp := errResponse{Error: "unknown error"}
	if err != nil {
		resp.Error = err.Error()
	}
	if code, ok := apperr.CodeOf(err); ok {
		resp.Code = string(code)
	}
	if stage := apperr.StageOf(err); stage != "" {
		resp.Stage = stage
	}
	ChiJSON(w, apperr.HTTPStatus(err), resp)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownToHTML converts md with GitHub-flavoured extensions. Raw HTML in
// md is not passed through.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<article>
{{.Body}}
</article>
</body>
</html>
`))

// ChiMarkdownHTML renders md as a standalone HTML page. On conversion
// failure the escaped source is shown instead.
func ChiMarkdownHTML(w http.ResponseWriter, status int, title string, md string) {
	body, err := MarkdownToHTML(md)
	var content template.HTML
	if err != nil {
		content = template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	} else {
		content = template.HTML(body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTmpl.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: content})
}
