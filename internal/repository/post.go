// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"vesti/internal/cache"
	"vesti/internal/feed"
	"vesti/internal/models"
	"vesti/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for feed posts, including the
// engagement mutations. Every mutation updates the relevant counter and the
// score accumulator in a single statement (or transaction), so concurrent
// callers cannot lose updates; the core never locks in-process.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListAll(ctx context.Context, currentUserID uint) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
	RecordView(ctx context.Context, postID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.Invalidate(ctx, cache.FeedKey())
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, models.ClassifyStoreError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return posts, nil
}

// ListAll fetches every live post with its author preloaded. Visibility
// filtering and ordering happen in the feed assembler, not in SQL; the
// fetch-then-filter shape keeps the predicate in one tested place.
func (r *postRepository) ListAll(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return posts, nil
}

// applyLiked adds a subquery computing whether the current viewer liked each post.
func (r *postRepository) applyLiked(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID != 0 {
		return db.Select("posts.*, EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}
	return db.Select("posts.*, false as liked")
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewStoreUnavailableError(err)
	}
	return count > 0, nil
}

func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return likedPostIDs, nil
}

// Like records userID's like on postID. The likes row, the like counter, and
// the score accumulator change together in one transaction. A repeated like
// is a no-op: ON CONFLICT DO NOTHING affects zero rows, so the counter and
// score are left untouched.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("update", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO likes (user_id, post_id, created_at)
			 VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (user_id, post_id) DO NOTHING`,
			userID, postID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// already liked; verify the post exists so a like on a missing
			// post still reports NotFound
			var count int64
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		}

		bump := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Updates(map[string]interface{}{
				"like_count": gorm.Expr("like_count + 1"),
				"score":      gorm.Expr("score + ?", feed.LikeWeight),
			})
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return models.ClassifyStoreError(err, "Post", postID)
	}
	observability.EngagementEvents.WithLabelValues("posts", "like").Inc()
	cache.InvalidatePost(ctx, postID)
	return nil
}

// Unlike removes userID's like and rolls the counter and score back, only
// when a like row actually existed.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("update", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Updates(map[string]interface{}{
				"like_count": gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END"),
				"score":      gorm.Expr("CASE WHEN score >= ? THEN score - ? ELSE 0 END", feed.LikeWeight, feed.LikeWeight),
			}).Error
	})
	if err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// AddComment appends the comment and advances the post's comment counter and
// score in the same transaction. Arrival order across concurrent callers is
// whatever the store serializes; listing always replays insertion order.
func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bump := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			Updates(map[string]interface{}{
				"comment_count": gorm.Expr("comment_count + 1"),
				"score":         gorm.Expr("score + ?", feed.CommentWeight),
			})
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return models.ClassifyStoreError(err, "Post", comment.PostID)
	}
	observability.EngagementEvents.WithLabelValues("posts", "comment").Inc()
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *postRepository) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("read", "comments")()
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return comments, nil
}

// RecordView bumps the view counter and score. Views are deliberately not
// deduplicated by viewer; every call counts.
func (r *postRepository) RecordView(ctx context.Context, postID uint) error {
	defer observability.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"view_count": gorm.Expr("view_count + 1"),
			"score":      gorm.Expr("score + ?", feed.ViewWeight),
		})
	if res.Error != nil {
		return models.NewStoreUnavailableError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	observability.EngagementEvents.WithLabelValues("posts", "view").Inc()
	cache.InvalidatePost(ctx, postID)
	return nil
}
