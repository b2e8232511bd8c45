// Package seed fills a development database with an admin account and
// demo posts, readers and comments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"msvblog/internal/middleware"
	"msvblog/internal/models"
	"msvblog/internal/repository"
	"msvblog/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// ErrAdminSlotTaken means user 1 cannot be created because other accounts
// already exist.
var ErrAdminSlotTaken = errors.New("users exist but none has the admin ID")

// Options configures a seeding run.
type Options struct {
	AdminEmail      string
	AdminName       string
	AdminPassword   string
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
}

// Summary counts what a run created.
type Summary struct {
	Admin    *models.User
	Users    int
	Posts    int
	Comments int
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db          *gorm.DB
	hasher      service.PasswordHasher
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	faker       *gofakeit.Faker
	now         func() time.Time
}

// NewSeeder returns a Seeder. A zero randomSeed seeds from the clock.
func NewSeeder(db *gorm.DB, hasher service.PasswordHasher, randomSeed int64) *Seeder {
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	return &Seeder{
		db:          db,
		hasher:      hasher,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		faker:       gofakeit.New(randomSeed),
		now:         time.Now,
	}
}

// Run creates the admin when missing, then the requested demo content.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	admin, err := s.EnsureAdmin(ctx, opts.AdminEmail, opts.AdminName, opts.AdminPassword)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Admin: admin}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return summary, fmt.Errorf("failed to create users: %w", err)
	}
	summary.Users = len(users)

	posts, err := s.SeedPosts(ctx, admin, opts.NumPosts)
	if err != nil {
		return summary, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)

	commenters := append([]*models.User{admin}, users...)
	comments, err := s.SeedComments(ctx, commenters, posts, opts.CommentsPerPost)
	if err != nil {
		return summary, fmt.Errorf("failed to create comments: %w", err)
	}
	summary.Comments = comments

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments))
	return summary, nil
}

// EnsureAdmin returns user 1, creating it with the given credentials when the
// users table is empty.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, name, password string) (*models.User, error) {
	admin, err := s.userRepo.GetByID(ctx, models.AdminUserID)
	if err == nil {
		return admin, nil
	}
	if !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminSlotTaken
	}

	if email == "" || password == "" {
		return nil, models.NewValidationError("admin email and password are required")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "Admin"
	}

	admin = &models.User{ID: models.AdminUserID, Email: email, Name: name, Password: hash}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	if err := s.syncUserSequence(ctx); err != nil {
		return nil, err
	}
	return admin, nil
}

// syncUserSequence moves the postgres id sequence past an explicitly
// inserted ID. SQLite tracks this itself.
func (s *Seeder) syncUserSequence(ctx context.Context) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	err := s.db.WithContext(ctx).
		Exec("SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))").Error
	if err != nil {
		return fmt.Errorf("sync users id sequence: %w", err)
	}
	return nil
}

// SeedUsers creates n readers with fake names. Emails that already exist are
// skipped.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	hash, err := s.hasher.Hash("password123")
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("%s.%d@example.com", s.faker.Username(), i)
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return users, err
		}
		if existing != nil {
			continue
		}

		u := &models.User{Email: email, Name: s.faker.Name(), Password: hash}
		if err := s.userRepo.Create(ctx, u); err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedPosts creates n posts by author with dates spread over the last 90 days.
func (s *Seeder) SeedPosts(ctx context.Context, author *models.User, n int) ([]*models.BlogPost, error) {
	posts := make([]*models.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		title, err := s.uniqueTitle(ctx)
		if err != nil {
			return posts, err
		}

		daysBack := s.faker.Number(0, 90)
		p := &models.BlogPost{
			AuthorID: author.ID,
			Title:    title,
			Subtitle: s.faker.Sentence(8),
			Body:     "<p>" + s.faker.Paragraph(1, 4, 12, "</p><p>") + "</p>",
			ImgURL:   fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", s.faker.UUID()),
			Date:     models.FormatPostDate(s.now().AddDate(0, 0, -daysBack)),
		}
		if err := s.postRepo.Create(ctx, p); err != nil {
			return posts, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *Seeder) uniqueTitle(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		title := s.faker.Sentence(5)
		existing, err := s.postRepo.GetByTitle(ctx, title)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return title, nil
		}
	}
	return fmt.Sprintf("%s %s", s.faker.Sentence(5), s.faker.UUID()[:8]), nil
}

// SeedComments adds perPost comments to each post from random authors.
func (s *Seeder) SeedComments(ctx context.Context, authors []*models.User, posts []*models.BlogPost, perPost int) (int, error) {
	if len(authors) == 0 || perPost <= 0 {
		return 0, nil
	}

	created := 0
	for _, p := range posts {
		for i := 0; i < perPost; i++ {
			author := authors[s.faker.Number(0, len(authors)-1)]
			c := &models.Comment{
				Text:     s.faker.Sentence(s.faker.Number(4, 20)),
				AuthorID: author.ID,
				PostID:   p.ID,
			}
			if err := s.commentRepo.Create(ctx, c); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
