// Package seed provides helpers to create demo data for the application
// database. Intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultCategories mirror the categories a fresh deployment starts with.
var DefaultCategories = []string{"travel", "cooking", "technology", "books", "music"}

// Options tunes seeding volume and speed.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// SkipBcrypt stores a plaintext marker password instead of a bcrypt
	// hash. Much faster for large seeds; never use outside development.
	SkipBcrypt bool
}

// Seeder populates the database with generated users, posts, comments,
// likes and categories.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 3
	}
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every seeded table. Dependent rows go first.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "verification_tokens", "posts", "categories", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds categories, users and their content. The first user is always
// an admin (admin@example.com / password123).
func (s *Seeder) Run() error {
	if err := s.SeedCategories(); err != nil {
		return err
	}

	users, err := s.SeedUsers(s.opts.Users)
	if err != nil {
		return err
	}

	posts, err := s.SeedPosts(users)
	if err != nil {
		return err
	}

	if err := s.SeedEngagement(users, posts); err != nil {
		return err
	}

	log.Printf("seeded %d users, %d posts", len(users), len(posts))
	return nil
}

// SeedCategories inserts the default category set owned by the admin user.
func (s *Seeder) SeedCategories() error {
	for _, title := range DefaultCategories {
		if err := s.db.Create(&models.Category{UserID: 1, Title: title}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n verified users. The first is an admin.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	password := "password123"
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:          gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(10, 99)),
			Email:             gofakeit.Email(),
			Password:          password,
			Bio:               gofakeit.Sentence(10),
			ProfilePhotoURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			IsAccountVerified: true,
		}
		if i == 0 {
			user.Username = "admin"
			user.Email = "admin@example.com"
			user.IsAdmin = true
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates posts for each user with a realistic created_at spread.
func (s *Seeder) SeedPosts(users []*models.User) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, user := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			daysBack := s.rng.Intn(90)
			post := &models.Post{
				Title:       gofakeit.Sentence(5),
				Description: gofakeit.Paragraph(1, 3, 8, "\n"),
				Category:    DefaultCategories[s.rng.Intn(len(DefaultCategories))],
				UserID:      user.ID,
				ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
				CreatedAt:   time.Now().Add(-time.Duration(daysBack) * 24 * time.Hour),
			}
			if err := s.db.Create(post).Error; err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// SeedEngagement scatters comments and likes across the given posts.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	commentsPerPost := s.opts.CommentsPerPost
	if commentsPerPost <= 0 {
		commentsPerPost = 2
	}

	for _, post := range posts {
		for i := 0; i < s.rng.Intn(commentsPerPost+1); i++ {
			author := users[s.rng.Intn(len(users))]
			comment := &models.Comment{
				PostID:   post.ID,
				UserID:   author.ID,
				Username: author.Username,
				Text:     gofakeit.Sentence(12),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
		}

		// Each user likes roughly a third of the posts they see.
		for _, user := range users {
			if s.rng.Intn(3) != 0 {
				continue
			}
			like := &models.Like{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(like).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
