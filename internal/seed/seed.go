// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"vesti/internal/feed"
	"vesti/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumProducts int
	ShouldClean bool
	// SkipBcrypt stores a plaintext marker password instead of hashing.
	// Dev-only speedup for large runs.
	SkipBcrypt bool
}

var (
	vibeTags = []string{
		"street", "minimal", "y2k", "office", "cottagecore", "techwear",
		"grunge", "preppy", "athleisure", "vintage", "avant-garde", "casual",
	}

	categories = []string{
		"tops", "bottoms", "dresses", "outerwear", "shoes", "accessories",
	}

	brands = []string{
		"Meridian", "Atelier Nord", "Kite & Co", "Velour House", "Offcut",
		"Second Sun", "Draft Studio", "Hemline", "Plainweave", "Foundry",
	}

	commentLines = []string{
		"this fit goes hard", "obsessed with the silhouette", "where is the jacket from?",
		"the drape on this is unreal", "saving this look", "color combo is perfect",
		"need this in my closet", "10/10 styling", "the render came out so clean",
	}
)

// Seeder populates the database with demo data.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes seeded tables in dependency order.
func (s *Seeder) ClearAll() error {
	tables := []string{"likes", "comments", "posts", "try_on_jobs", "products", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("cleared existing seed data")
	return nil
}

// Run seeds users, products, posts and engagement in one pass.
func (s *Seeder) Run() error {
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if _, err := s.SeedProducts(s.opts.NumProducts); err != nil {
		return fmt.Errorf("seeding products: %w", err)
	}
	posts, err := s.SeedPosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := s.SeedEngagement(users, posts); err != nil {
		return fmt.Errorf("seeding engagement: %w", err)
	}
	return nil
}

// SeedUsers creates n accounts with a spread of visibility levels. Roughly
// one in six is restricted and one in ten is private, matching the shape of
// a real install.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	password := "password123"
	var hashed string
	if s.opts.SkipBcrypt {
		hashed = password
	} else {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		hashed = string(h)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		visibility := models.VisibilityPublic
		switch {
		case i%10 == 9:
			visibility = models.VisibilityPrivate
		case i%6 == 5:
			visibility = models.VisibilityRestricted
		}

		users = append(users, &models.User{
			Username:   fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:      gofakeit.Email(),
			Password:   hashed,
			Bio:        gofakeit.Sentence(8),
			Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			Visibility: visibility,
		})
	}

	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, err
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

// SeedProducts creates n catalogue items with engagement counters so the
// trending ranking has something to chew on.
func (s *Seeder) SeedProducts(n int) ([]*models.Product, error) {
	products := make([]*models.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, &models.Product{
			Brand:        brands[s.rng.Intn(len(brands))],
			Name:         gofakeit.ProductName(),
			ImageURL:     fmt.Sprintf("https://picsum.photos/seed/garment-%s/600/800", gofakeit.UUID()),
			Category:     categories[s.rng.Intn(len(categories))],
			PriceCents:   gofakeit.Number(1500, 45000),
			Currency:     "USD",
			LikeCount:    s.rng.Intn(120),
			CommentCount: s.rng.Intn(40),
			ViewCount:    s.rng.Intn(3000),
		})
	}

	if err := s.db.CreateInBatches(&products, 100).Error; err != nil {
		return nil, err
	}
	log.Printf("seeded %d products", len(products))
	return products, nil
}

// SeedPosts creates n posts spread over the past 90 days with zeroed
// counters; SeedEngagement fills those in afterwards.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		createdAt := time.Now().
			Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour).
			Add(-time.Duration(s.rng.Intn(60)) * time.Minute)

		posts = append(posts, &models.Post{
			UserID:         author.ID,
			ResultImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/1100", gofakeit.UUID()),
			Category:       categories[s.rng.Intn(len(categories))],
			VibeTag:        vibeTags[s.rng.Intn(len(vibeTags))],
			IsManual:       s.rng.Intn(5) == 0,
			CreatedAt:      createdAt,
		})
	}

	if err := s.db.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, err
	}
	log.Printf("seeded %d posts", len(posts))
	return posts, nil
}

// SeedEngagement attaches likes, comments and views to each post and writes
// counters plus the matching score accumulator. Every like row stays
// consistent with the like counter so the unique index holds up.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	var likes []*models.Like
	var comments []*models.Comment

	for _, post := range posts {
		numLikes := s.rng.Intn(min(len(users), 25))
		numComments := s.rng.Intn(8)
		numViews := numLikes*4 + s.rng.Intn(200)

		// distinct likers, starting at a random offset
		offset := s.rng.Intn(len(users))
		for i := 0; i < numLikes; i++ {
			liker := users[(offset+i)%len(users)]
			likes = append(likes, &models.Like{UserID: liker.ID, PostID: post.ID})
		}

		for i := 0; i < numComments; i++ {
			commenter := users[s.rng.Intn(len(users))]
			comments = append(comments, &models.Comment{
				UserID: commenter.ID,
				PostID: post.ID,
				Text:   commentLines[s.rng.Intn(len(commentLines))],
			})
		}

		score := numLikes*feed.LikeWeight + numComments*feed.CommentWeight + numViews*feed.ViewWeight
		err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
			"like_count":    numLikes,
			"comment_count": numComments,
			"view_count":    numViews,
			"score":         score,
		}).Error
		if err != nil {
			return err
		}
	}

	if len(likes) > 0 {
		if err := s.db.CreateInBatches(&likes, 200).Error; err != nil {
			return err
		}
	}
	if len(comments) > 0 {
		if err := s.db.CreateInBatches(&comments, 200).Error; err != nil {
			return err
		}
	}

	log.Printf("seeded %d likes and %d comments", len(likes), len(comments))
	return nil
}
