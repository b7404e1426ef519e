package httpapp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alphabot-ai/blog/internal/auth"
	"github.com/alphabot-ai/blog/internal/model"
)

const flashKey = "notice"

const (
	msgEmailTaken        = "You've already signed up with that email, log in instead."
	msgEmailNotFound     = "That email does not exist, please try again."
	msgIncorrectPassword = "Password incorrect, please try again."
	msgLoginToComment    = "You need to login or register to comment."
)

func (s *Server) flashRedirect(w http.ResponseWriter, r *http.Request, msg, to string) {
	if err := s.cookies.SetFlash(w, flashKey, msg); err != nil {
		s.logger.WarnContext(r.Context(), "set flash", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, to, http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.renderRegister(w, r, http.StatusOK, registerForm{}, nil)
}

func (s *Server) renderRegister(w http.ResponseWriter, r *http.Request, status int, f registerForm, errs fieldErrors) {
	data := s.baseData(w, r, "Register")
	data["Form"] = f
	data["Errors"] = errs
	s.render(w, r, status, s.templates.Register, data)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var f registerForm
	if !s.decode(w, r, &f) {
		return
	}
	if errs := validateForm(f); errs != nil {
		f.Password = ""
		s.renderRegister(w, r, http.StatusUnprocessableEntity, f, errs)
		return
	}

	user, err := s.auth.Register(r.Context(), f.Email, f.Name, f.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		s.flashRedirect(w, r, msgEmailTaken, "/login")
		return
	}
	if err != nil {
		s.serverError(w, r, "register user", err)
		return
	}
	s.metrics.Registered()
	s.logger.InfoContext(r.Context(), "user registered", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	s.signIn(w, r, user)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, r, http.StatusOK, loginForm{}, nil)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, f loginForm, errs fieldErrors) {
	data := s.baseData(w, r, "Log In")
	data["Form"] = f
	data["Errors"] = errs
	s.render(w, r, status, s.templates.Login, data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var f loginForm
	if !s.decode(w, r, &f) {
		return
	}
	if errs := validateForm(f); errs != nil {
		f.Password = ""
		s.renderLogin(w, r, http.StatusUnprocessableEntity, f, errs)
		return
	}

	user, err := s.auth.Login(r.Context(), f.Email, f.Password)
	switch {
	case errors.Is(err, auth.ErrEmailNotFound):
		s.metrics.Login("unknown_email")
		s.flashRedirect(w, r, msgEmailNotFound, "/login")
		return
	case errors.Is(err, auth.ErrIncorrectPassword):
		s.metrics.Login("bad_password")
		s.flashRedirect(w, r, msgIncorrectPassword, "/login")
		return
	case err != nil:
		s.serverError(w, r, "login", err)
		return
	}
	s.metrics.Login("ok")
	s.signIn(w, r, user)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user model.User) {
	if _, err := s.sessions.Start(r.Context(), w, r, user.ID); err != nil {
		s.serverError(w, r, "start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(r.Context(), w, r); err != nil {
		s.logger.WarnContext(r.Context(), "end session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// decode reports false after it has already answered the request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst normalizer) bool {
	err := decodeForm(r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errBodyTooLarge):
		s.renderError(w, r, http.StatusRequestEntityTooLarge, "")
	default:
		s.logger.InfoContext(r.Context(), "bad form", slog.String("error", err.Error()))
		s.renderError(w, r, http.StatusBadRequest, "")
	}
	return false
}
