// Package validation holds the HTML form payloads and their rules.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"msvblog/internal/models"

	"github.com/go-playground/validator/v10"
)

// RegisterForm is posted by /register.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,max=128"`
	Name     string `form:"name" validate:"required,max=100"`
}

// LoginForm is posted by /login.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// CommentForm is posted by /post/:id.
type CommentForm struct {
	Text string `form:"comment_text" validate:"required"`
}

// PostForm is posted by /new-post and /edit-post/:id.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
}

// ContactForm is posted by /contact and /sendmail.
type ContactForm struct {
	Name    string `form:"name" validate:"required,max=200"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"max=40"`
	Message string `form:"message" validate:"required"`
}

var fieldLabels = map[string]string{
	"Email":    "Email",
	"Password": "Password",
	"Name":     "Name",
	"Text":     "Comment",
	"Title":    "Blog Post Title",
	"Subtitle": "Subtitle",
	"ImgURL":   "Blog Image URL",
	"Body":     "Blog Content",
	"Phone":    "Phone Number",
	"Message":  "Message",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize trims surrounding whitespace from every string field of a known
// form. Passwords are left untouched.
func Normalize(form any) {
	switch f := form.(type) {
	case *RegisterForm:
		f.Email = strings.ToLower(strings.TrimSpace(f.Email))
		f.Name = strings.TrimSpace(f.Name)
	case *LoginForm:
		f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	case *CommentForm:
		f.Text = strings.TrimSpace(f.Text)
	case *PostForm:
		f.Title = strings.TrimSpace(f.Title)
		f.Subtitle = strings.TrimSpace(f.Subtitle)
		f.ImgURL = strings.TrimSpace(f.ImgURL)
		f.Body = strings.TrimSpace(f.Body)
	case *ContactForm:
		f.Name = strings.TrimSpace(f.Name)
		f.Email = strings.TrimSpace(f.Email)
		f.Phone = strings.TrimSpace(f.Phone)
		f.Message = strings.TrimSpace(f.Message)
	}
}

// Validate normalizes form and checks its rules. The returned error is a
// VALIDATION_ERROR AppError naming the first offending field.
func Validate(form any) error {
	Normalize(form)

	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewInternalError(err)
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "url":
		return label + " must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
