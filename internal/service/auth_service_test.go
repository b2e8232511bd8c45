package service

import (
	"context"
	"errors"
	"testing"

	"msvblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeAdmin(t *testing.T) {
	t.Parallel()
	assert.NoError(t, AuthorizeAdmin(models.AdminUserID))
	for _, id := range []uint{0, 2, 99} {
		err := AuthorizeAdmin(id)
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeForbidden))
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	in := RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "secret"}

	t.Run("stores hashed password and lowercased email", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		var stored *models.User
		repo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 2
			stored = u
			return nil
		}
		svc := NewAuthService(repo, plainHasher{})

		user, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, uint(2), user.ID)
		require.NotNil(t, stored)
		assert.Equal(t, "ada@example.com", stored.Email)
		assert.NotEqual(t, "secret", stored.Password)
		assert.Equal(t, "hashed:secret", stored.Password)
	})

	t.Run("existing email", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 5}, nil
		}
		repo.createFn = func(_ context.Context, _ *models.User) error {
			t.Fatal("create must not be called")
			return nil
		}

		_, err := NewAuthService(repo, plainHasher{}).Register(ctx, in)
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
		assert.Equal(t, MsgAlreadyRegistered, models.PublicMessage(err))
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unique index race", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, _ *models.User) error {
			return models.NewValidationError("User already exists")
		}

		_, err := NewAuthService(repo, plainHasher{}).Register(ctx, in)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("invalid form", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuthService(noopUserRepo(), plainHasher{}).Register(ctx, RegisterInput{Email: "bad"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("hash failure is internal", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuthService(noopUserRepo(), plainHasher{err: errors.New("boom")}).Register(ctx, in)
		assert.True(t, models.HasCode(err, models.CodeInternal))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "ada@example.com" {
			return &models.User{ID: 3, Email: email, Password: "hashed:secret"}, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, plainHasher{})

	tests := []struct {
		name    string
		in      LoginInput
		wantMsg string
	}{
		{"success", LoginInput{Email: "ADA@example.com ", Password: "secret"}, ""},
		{"unknown email", LoginInput{Email: "bob@example.com", Password: "secret"}, MsgEmailNotRegistered},
		{"wrong password", LoginInput{Email: "ada@example.com", Password: "nope"}, MsgIncorrectPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(ctx, tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, uint(3), user.ID)
				return
			}
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeUnauthorized))
			assert.Equal(t, tt.wantMsg, models.PublicMessage(err))
		})
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(noopUserRepo(), plainHasher{})

	user, err := svc.CurrentUser(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.CurrentUser(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint(4), user.ID)
}
