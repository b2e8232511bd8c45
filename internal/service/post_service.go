package service

import (
	"context"
	"time"

	"msvblog/internal/models"
	"msvblog/internal/repository"
	"msvblog/internal/validation"
)

// MsgDuplicateTitle is returned when another post already uses a title.
const MsgDuplicateTitle = "A post with that title already exists"

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.BlogPost, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.BlogPost, error) {
	if err := AuthorizeAdmin(in.UserID); err != nil {
		return nil, err
	}

	form := validation.PostForm{Title: in.Title, Subtitle: in.Subtitle, ImgURL: in.ImgURL, Body: in.Body}
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, form.Title, 0); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		AuthorID: in.UserID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   form.ImgURL,
		Body:     form.Body,
		Date:     models.FormatPostDate(s.now()),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost overwrites the editable fields. Date and author are kept.
func (s *PostService) EditPost(ctx context.Context, in UpdatePostInput) (*models.BlogPost, error) {
	if err := AuthorizeAdmin(in.UserID); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	form := validation.PostForm{Title: in.Title, Subtitle: in.Subtitle, ImgURL: in.ImgURL, Body: in.Body}
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, form.Title, post.ID); err != nil {
		return nil, err
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.ImgURL = form.ImgURL
	post.Body = form.Body
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post together with its comments.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	if err := AuthorizeAdmin(in.UserID); err != nil {
		return err
	}
	return s.postRepo.DeleteWithComments(ctx, in.PostID)
}

func (s *PostService) ensureTitleFree(ctx context.Context, title string, selfID uint) error {
	existing, err := s.postRepo.GetByTitle(ctx, title)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.NewValidationError(MsgDuplicateTitle)
	}
	return nil
}
