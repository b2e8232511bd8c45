package server

import (
	"fmt"

	"msvblog/internal/models"
	"msvblog/internal/service"
	"msvblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, "index", "", fiber.Map{"Posts": posts})
}

// ShowPost handles GET /post/:id
func (s *Server) ShowPost(c *fiber.Ctx) error {
	return s.showPost(c, fiber.StatusOK, validation.CommentForm{})
}

func (s *Server) showPost(c *fiber.Ctx, status int, form validation.CommentForm) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(c.UserContext(), id)
	if err != nil {
		return err
	}

	return s.renderStatus(c, status, "post", post.Title, fiber.Map{
		"Post":     post,
		"Comments": comments,
		"Form":     form,
	})
}

// AddComment handles POST /post/:id
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID: currentUserID(c),
		PostID: id,
		Text:   form.Text,
	})
	if err != nil {
		switch models.ErrorCode(err) {
		case models.CodeUnauthorized:
			return s.redirectWithFlash(c, "/login", models.PublicMessage(err))
		case models.CodeValidation:
			s.flash(c, models.PublicMessage(err))
			return s.showPost(c, fiber.StatusUnprocessableEntity, form)
		default:
			return err
		}
	}

	return c.Redirect(fmt.Sprintf("/post/%d", id), fiber.StatusFound)
}

// NewPostPage handles GET /new-post
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	return s.render(c, "make-post", "New Post", fiber.Map{
		"Form":   validation.PostForm{},
		"Action": "/new-post",
		"IsEdit": false,
	})
}

// CreatePost handles POST /new-post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	_, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   form.ImgURL,
		Body:     form.Body,
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.rerenderInvalid(c, err, "make-post", "New Post", fiber.Map{
				"Form":   form,
				"Action": "/new-post",
				"IsEdit": false,
			})
		}
		return err
	}

	return c.Redirect("/", fiber.StatusFound)
}

// EditPostPage handles GET /edit-post/:id
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}

	return s.render(c, "make-post", "Edit Post", fiber.Map{
		"Form": validation.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
		"Action": fmt.Sprintf("/edit-post/%d", post.ID),
		"IsEdit": true,
	})
}

// UpdatePost handles POST /edit-post/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	post, err := s.postService.EditPost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   id,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   form.ImgURL,
		Body:     form.Body,
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.rerenderInvalid(c, err, "make-post", "Edit Post", fiber.Map{
				"Form":   form,
				"Action": fmt.Sprintf("/edit-post/%d", id),
				"IsEdit": true,
			})
		}
		return err
	}

	return c.Redirect(fmt.Sprintf("/post/%d", post.ID), fiber.StatusFound)
}

// DeletePost handles GET /delete/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return err
	}

	return c.Redirect("/", fiber.StatusFound)
}
