// Package richtext turns stored post bodies and comments into HTML that is
// safe to embed in a page. Input may be Markdown, editor-produced HTML, or a
// mix of both.
package richtext

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	md       goldmark.Markdown
	posts    *bluemonday.Policy
	comments *bluemonday.Policy
}

func New() *Renderer {
	comments := bluemonday.NewPolicy()
	comments.AllowStandardURLs()
	comments.AllowElements(
		"p", "br",
		"strong", "b", "em", "i", "u", "s",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
	)
	comments.AllowAttrs("href").OnElements("a")
	comments.RequireNoFollowOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe(), gmhtml.WithHardWraps()),
		),
		posts:    bluemonday.UGCPolicy(),
		comments: comments,
	}
}

// Post renders a post body. Images, tables and headings survive; scripts,
// event handlers and javascript: URLs do not.
func (r *Renderer) Post(src string) template.HTML {
	return template.HTML(r.posts.SanitizeBytes(r.markdown(src)))
}

// Comment renders a comment with basic inline formatting only.
func (r *Renderer) Comment(src string) template.HTML {
	return template.HTML(r.comments.SanitizeBytes(r.markdown(src)))
}

// Plain strips all markup, e.g. for page descriptions.
func (r *Renderer) Plain(src string) string {
	return bluemonday.StrictPolicy().Sanitize(src)
}

func (r *Renderer) markdown(src string) []byte {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return []byte(template.HTMLEscapeString(src))
	}
	return buf.Bytes()
}
