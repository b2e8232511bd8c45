// Command seed creates the admin account and demo content.
package main

import (
	"context"
	"flag"
	"log"

	"msvblog/internal/config"
	"msvblog/internal/database"
	"msvblog/internal/middleware"
	"msvblog/internal/passwords"
	"msvblog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of reader accounts to create")
	numPosts := flag.Int("posts", 10, "Number of posts to create")
	comments := flag.Int("comments", 3, "Comments per post")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 = random)")
	adminName := flag.String("admin-name", "Admin", "Display name of the admin account")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, %d comments per post\n", *numUsers, *numPosts, *comments)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	hasher, err := passwords.NewHasher(cfg.PasswordScheme, cfg.PasswordIterations)
	if err != nil {
		log.Fatalf("Invalid password settings: %v", err)
	}

	s := seed.NewSeeder(db, hasher, *randomSeed)
	summary, err := s.Run(context.Background(), seed.Options{
		AdminEmail:      cfg.AdminEmail,
		AdminName:       *adminName,
		AdminPassword:   cfg.AdminPassword,
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Admin %s (ID %d), %d readers, %d posts, %d comments",
		summary.Admin.Email, summary.Admin.ID, summary.Users, summary.Posts, summary.Comments)
	log.Println("📧 Seeded readers have the password: password123")
}
