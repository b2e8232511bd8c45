package service

import (
	"context"
	"errors"

	"msvblog/internal/models"
	"msvblog/internal/repository"
	"msvblog/internal/validation"
)

// Messages shown to the visitor for auth outcomes.
const (
	MsgAlreadyRegistered  = "You've already signed up with that email, log in instead!"
	MsgEmailNotRegistered = "Email is not registered!"
	MsgIncorrectPassword  = "Incorrect Password!"
	MsgLoginRequired      = "Login Required"
)

// ErrEmailTaken is wrapped by the VALIDATION_ERROR Register returns for an
// email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

func emailTakenError() *models.AppError {
	return &models.AppError{
		Code:    models.CodeValidation,
		Message: MsgAlreadyRegistered,
		Err:     ErrEmailTaken,
	}
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) bool
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// AuthorizeAdmin returns a FORBIDDEN error unless userID is the administrator.
func AuthorizeAdmin(userID uint) error {
	if userID != models.AdminUserID {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// Register creates an account. A taken email yields a VALIDATION_ERROR
// carrying MsgAlreadyRegistered, whether found up front or by the unique index.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	form := validation.RegisterForm{Email: in.Email, Password: in.Password, Name: in.Name}
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, emailTakenError()
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    form.Email,
		Name:     form.Name,
		Password: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return nil, emailTakenError()
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	form := validation.LoginForm{Email: in.Email, Password: in.Password}
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(MsgEmailNotRegistered)
	}
	if !s.hasher.Verify(user.Password, form.Password) {
		return nil, models.NewUnauthorizedError(MsgIncorrectPassword)
	}
	return user, nil
}

// CurrentUser loads the signed-in user; a zero ID means anonymous.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.userRepo.GetByID(ctx, userID)
}
