package seed

import (
	"testing"

	"vesti/internal/database"
	"vesti/internal/feed"
	"vesti/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeederRun(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, Options{
		NumUsers:    12,
		NumPosts:    30,
		NumProducts: 8,
		SkipBcrypt:  true,
	})
	require.NoError(t, s.Run())

	var userCount, postCount, productCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&productCount).Error)
	assert.EqualValues(t, 12, userCount)
	assert.EqualValues(t, 30, postCount)
	assert.EqualValues(t, 8, productCount)
}

func TestSeedEngagementKeepsScoreConsistent(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	users, err := s.SeedUsers(10)
	require.NoError(t, err)
	posts, err := s.SeedPosts(users, 20)
	require.NoError(t, err)
	require.NoError(t, s.SeedEngagement(users, posts))

	var got []models.Post
	require.NoError(t, db.Find(&got).Error)
	for _, p := range got {
		want := p.LikeCount*feed.LikeWeight + p.CommentCount*feed.CommentWeight + p.ViewCount*feed.ViewWeight
		assert.Equal(t, want, p.Score, "post %d score should match its counters", p.ID)
	}
}

func TestSeedUsersVisibilitySpread(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	users, err := s.SeedUsers(30)
	require.NoError(t, err)

	levels := map[string]int{}
	for _, u := range users {
		levels[u.Visibility]++
	}
	assert.Greater(t, levels[models.VisibilityPublic], 0)
	assert.Greater(t, levels[models.VisibilityRestricted], 0)
	assert.Greater(t, levels[models.VisibilityPrivate], 0)
}
