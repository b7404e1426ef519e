package httpapp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

const msgDuplicateTitle = "A post with this title already exists."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.serverError(w, r, "list posts", err)
		return
	}
	data := s.baseData(w, r, "Home")
	data["Posts"] = posts
	s.render(w, r, http.StatusOK, s.templates.Index, data)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.templates.About, s.baseData(w, r, "About"))
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.templates.Contact, s.baseData(w, r, "Contact"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusMethodNotAllowed, "")
}

// loadPost resolves the {id} URL parameter. Missing and malformed ids both
// answer 404; ok is false once the response has been written.
func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) (model.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.handleNotFound(w, r)
		return model.Post{}, false
	}
	post, err := s.store.GetPost(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.handleNotFound(w, r)
		return model.Post{}, false
	}
	if err != nil {
		s.serverError(w, r, "get post", err)
		return model.Post{}, false
	}
	return post, true
}

func (s *Server) handleShowPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	s.renderPost(w, r, http.StatusOK, post, commentForm{}, nil)
}

func (s *Server) renderPost(w http.ResponseWriter, r *http.Request, status int, post model.Post, f commentForm, errs fieldErrors) {
	comments, err := s.store.ListCommentsByPost(r.Context(), post.ID)
	if err != nil {
		s.serverError(w, r, "list comments", err)
		return
	}
	data := s.baseData(w, r, post.Title)
	data["Post"] = post
	data["Comments"] = comments
	data["Form"] = f
	data["Errors"] = errs
	s.render(w, r, status, s.templates.Post, data)
}

// handleComment adds a comment as the signed-in user. Anonymous visitors
// are sent to the login page.
func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	user := currentUser(r)
	if user == nil {
		s.flashRedirect(w, r, msgLoginToComment, "/login")
		return
	}

	var f commentForm
	if !s.decode(w, r, &f) {
		return
	}
	if errs := validateForm(f); errs != nil {
		s.renderPost(w, r, http.StatusUnprocessableEntity, post, f, errs)
		return
	}

	comment := model.Comment{PostID: post.ID, AuthorID: user.ID, Text: f.Text}
	if _, err := s.store.CreateComment(r.Context(), &comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "")
			return
		}
		s.serverError(w, r, "create comment", err)
		return
	}
	s.metrics.CommentCreated()
	s.renderPost(w, r, http.StatusOK, post, commentForm{}, nil)
}

func (s *Server) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	s.renderMakePost(w, r, http.StatusOK, nil, postForm{}, nil)
}

// renderMakePost draws the create page when post is nil and the edit page
// otherwise.
func (s *Server) renderMakePost(w http.ResponseWriter, r *http.Request, status int, post *model.Post, f postForm, errs fieldErrors) {
	title := "New Post"
	if post != nil {
		title = "Edit Post"
	}
	data := s.baseData(w, r, title)
	data["Form"] = f
	data["Errors"] = errs
	if post != nil {
		users, err := s.store.ListUsers(r.Context())
		if err != nil {
			s.serverError(w, r, "list users", err)
			return
		}
		data["Post"] = post
		data["IsEdit"] = true
		data["Users"] = users
	}
	s.render(w, r, status, s.templates.MakePost, data)
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request) {
	var f postForm
	if !s.decode(w, r, &f) {
		return
	}
	// Authorship is not editable on create.
	f.AuthorID = ""
	if errs := validateForm(f); errs != nil {
		s.renderMakePost(w, r, http.StatusUnprocessableEntity, nil, f, errs)
		return
	}

	post := model.Post{
		AuthorID: currentUser(r).ID,
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Date:     s.now().Format(model.PostDateLayout),
		Body:     f.Body,
		ImgURL:   f.ImgURL,
	}
	_, err := s.store.CreatePost(r.Context(), &post)
	if errors.Is(err, store.ErrDuplicateTitle) {
		s.renderMakePost(w, r, http.StatusUnprocessableEntity, nil, f, fieldErrors{"title": msgDuplicateTitle})
		return
	}
	if err != nil {
		s.serverError(w, r, "create post", err)
		return
	}
	s.metrics.PostCreated()
	s.logger.InfoContext(r.Context(), "post created", slog.Int64("post_id", post.ID))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	f := postForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
		AuthorID: strconv.FormatInt(post.AuthorID, 10),
	}
	s.renderMakePost(w, r, http.StatusOK, &post, f, nil)
}

// handleEditPost overwrites the editable fields. The creation date is kept.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	var f postForm
	if !s.decode(w, r, &f) {
		return
	}
	if errs := validateForm(f); errs != nil {
		s.renderMakePost(w, r, http.StatusUnprocessableEntity, &post, f, errs)
		return
	}

	if f.AuthorID != "" {
		authorID, _ := strconv.ParseInt(f.AuthorID, 10, 64)
		author, err := s.store.GetUser(r.Context(), authorID)
		if errors.Is(err, store.ErrNotFound) {
			s.renderMakePost(w, r, http.StatusUnprocessableEntity, &post, f, fieldErrors{"author_id": "Choose an author from the list."})
			return
		}
		if err != nil {
			s.serverError(w, r, "get author", err)
			return
		}
		post.AuthorID = author.ID
	}

	post.Title = f.Title
	post.Subtitle = f.Subtitle
	post.ImgURL = f.ImgURL
	post.Body = f.Body
	err := s.store.UpdatePost(r.Context(), &post)
	switch {
	case errors.Is(err, store.ErrDuplicateTitle):
		s.renderMakePost(w, r, http.StatusUnprocessableEntity, &post, f, fieldErrors{"title": msgDuplicateTitle})
		return
	case errors.Is(err, store.ErrNotFound):
		s.handleNotFound(w, r)
		return
	case err != nil:
		s.serverError(w, r, "update post", err)
		return
	}
	http.Redirect(w, r, "/post/"+strconv.FormatInt(post.ID, 10), http.StatusFound)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.handleNotFound(w, r)
		return
	}
	err = s.store.DeletePost(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "delete post", err)
		return
	}
	s.metrics.PostDeleted()
	s.logger.InfoContext(r.Context(), "post deleted", slog.Int64("post_id", id))
	http.Redirect(w, r, "/", http.StatusFound)
}
