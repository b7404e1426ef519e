package httpapp

import (
	"bytes"
	"embed"
	"html"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alphabot-ai/blog/internal/gravatar"
	"github.com/alphabot-ai/blog/internal/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

type Templates struct {
	Index    *template.Template
	Post     *template.Template
	MakePost *template.Template
	Register *template.Template
	Login    *template.Template
	About    *template.Template
	Contact  *template.Template
	Error    *template.Template
}

func loadTemplates(avatars *gravatar.Builder, rt *richtext.Renderer) (*Templates, error) {
	funcs := template.FuncMap{
		"gravatar":    avatars.URL,
		"postBody":    rt.Post,
		"commentText": rt.Comment,
		"excerpt": func(s string, n int) string {
			s = strings.TrimSpace(html.UnescapeString(rt.Plain(s)))
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "..."
		},
	}

	layoutContent, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return nil, err
	}

	// Each page is the layout plus one file defining "content".
	makePage := func(pageName string) (*template.Template, error) {
		pageContent, err := templateFS.ReadFile("templates/" + pageName + ".html")
		if err != nil {
			return nil, err
		}
		t, err := template.New("layout").Funcs(funcs).Parse(string(layoutContent))
		if err != nil {
			return nil, err
		}
		return t.Parse(string(pageContent))
	}

	pages := map[string]**template.Template{}
	tmpl := &Templates{}
	pages["index"] = &tmpl.Index
	pages["post"] = &tmpl.Post
	pages["make-post"] = &tmpl.MakePost
	pages["register"] = &tmpl.Register
	pages["login"] = &tmpl.Login
	pages["about"] = &tmpl.About
	pages["contact"] = &tmpl.Contact
	pages["error"] = &tmpl.Error
	for name, dst := range pages {
		t, err := makePage(name)
		if err != nil {
			return nil, err
		}
		*dst = t
	}
	return tmpl, nil
}

// baseData is the map every page starts from: title, the signed-in user and
// any pending flash notice.
func (s *Server) baseData(w http.ResponseWriter, r *http.Request, title string) map[string]any {
	data := map[string]any{"Title": title}
	if u := currentUser(r); u != nil {
		data["CurrentUser"] = u
		data["IsAdmin"] = u.IsAdmin()
	}
	var notice string
	if err := s.cookies.Flash(w, r, flashKey, &notice); err == nil && notice != "" {
		data["Flash"] = notice
	}
	return data
}

// render executes t into a buffer first so a template error still yields a
// clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, t *template.Template, data map[string]any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.ErrorContext(r.Context(), "render template", slog.String("template", t.Name()), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if message == "" {
		message = errorMessages[status]
	}
	data := s.baseData(w, r, http.StatusText(status))
	data["Status"] = status
	data["Message"] = message
	s.render(w, r, status, s.templates.Error, data)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, slog.String("error", err.Error()))
	s.renderError(w, r, http.StatusInternalServerError, "")
}

var errorMessages = map[int]string{
	http.StatusBadRequest:            "The request could not be understood.",
	http.StatusForbidden:             "You do not have permission to do that.",
	http.StatusNotFound:              "That page does not exist.",
	http.StatusMethodNotAllowed:      "That method is not allowed here.",
	http.StatusRequestEntityTooLarge: "The submitted form is too large.",
	http.StatusTooManyRequests:       "Too many requests.",
	http.StatusInternalServerError:   "Something went wrong on our side.",
}
