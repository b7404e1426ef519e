package httpapp

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

var (
	formDecoder = form.NewDecoder()
	validate    = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type registerForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,max=100"`
	Name     string `form:"name" validate:"required,max=100"`
}

func (f *registerForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (f *loginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

// postForm backs both the create and the edit page. AuthorID is only
// offered on edit; empty keeps the current author.
type postForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
	AuthorID string `form:"author_id" validate:"omitempty,number"`
}

func (f *postForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.ImgURL = strings.TrimSpace(f.ImgURL)
	f.AuthorID = strings.TrimSpace(f.AuthorID)
	if strings.TrimSpace(f.Body) == "" {
		f.Body = ""
	}
}

type commentForm struct {
	Text string `form:"comment_text" validate:"required"`
}

func (f *commentForm) normalize() {
	if strings.TrimSpace(f.Text) == "" {
		f.Text = ""
	}
}

type normalizer interface {
	normalize()
}

// fieldErrors maps a form field name to a message shown next to it.
type fieldErrors map[string]string

var errBodyTooLarge = errors.New("request body too large")

// decodeForm parses the posted form into dst and normalizes it.
func decodeForm(r *http.Request, dst normalizer) error {
	if err := r.ParseForm(); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errBodyTooLarge
		}
		return fmt.Errorf("parse form: %w", err)
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	dst.normalize()
	return nil
}

// validateForm returns nil when v passes every rule.
func validateForm(v any) fieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fieldErrors{"": err.Error()}
	}
	out := make(fieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "number":
		return "Choose an author from the list."
	default:
		return "Invalid value."
	}
}
