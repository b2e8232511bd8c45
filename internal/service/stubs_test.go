package service

import (
	"context"
	"strings"

	"msvblog/internal/mail"
	"msvblog/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn               func(context.Context) ([]*models.BlogPost, error)
	getByIDFn            func(context.Context, uint) (*models.BlogPost, error)
	getByTitleFn         func(context.Context, string) (*models.BlogPost, error)
	createFn             func(context.Context, *models.BlogPost) error
	updateFn             func(context.Context, *models.BlogPost) error
	deleteWithCommentsFn func(context.Context, uint) error
}

func (s *postRepoStub) List(ctx context.Context) ([]*models.BlogPost, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByTitle(ctx context.Context, title string) (*models.BlogPost, error) {
	return s.getByTitleFn(ctx, title)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.BlogPost) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.BlogPost) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) DeleteWithComments(ctx context.Context, id uint) error {
	return s.deleteWithCommentsFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:               func(_ context.Context) ([]*models.BlogPost, error) { return nil, nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.BlogPost, error) { return &models.BlogPost{ID: id}, nil },
		getByTitleFn:         func(_ context.Context, _ string) (*models.BlogPost, error) { return nil, nil },
		createFn:             func(_ context.Context, _ *models.BlogPost) error { return nil },
		updateFn:             func(_ context.Context, _ *models.BlogPost) error { return nil },
		deleteWithCommentsFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}

// plainHasher prefixes the password so tests can tell hash from plaintext.
type plainHasher struct{ err error }

func (h plainHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}
func (plainHasher) Verify(encoded, password string) bool {
	return encoded == "hashed:"+password
}

type mailerStub struct {
	sent []*mail.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg *mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type rendererStub struct{}

func (rendererStub) RenderString(name string, data interface{}) (string, error) {
	fields := data.(map[string]interface{})
	return "<" + name + ">" + strings.Join([]string{
		fields["UserName"].(string),
		fields["UserEmail"].(string),
		fields["UserMessage"].(string),
	}, "|"), nil
}
