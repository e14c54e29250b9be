// Package service holds the application logic between HTTP handlers and
// repositories.
package service

import (
	"context"
	"strings"

	"vesti/internal/feed"
	"vesti/internal/models"
	"vesti/internal/repository"
)

// EngagementNotifier receives engagement events after they are persisted.
// Delivery is best-effort; a nil notifier disables it.
type EngagementNotifier interface {
	NotifyEngagement(ctx context.Context, event string, postID, ownerID, actorID uint)
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	notifier EngagementNotifier
}

type CreatePostInput struct {
	UserID         uint
	ResultImageURL string
	Category       string
	VibeTag        string
	IsManual       bool
}

type AddCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier EngagementNotifier,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

const (
	maxVibeTagLen     = 60
	maxCategoryLen    = 60
	maxCommentTextLen = 2000
)

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.ResultImageURL) == "" {
		return nil, models.NewValidationError("result_image_url is required")
	}
	if len(in.VibeTag) > maxVibeTagLen {
		return nil, models.NewValidationError("vibe_tag too long (max 60 characters)")
	}
	if len(in.Category) > maxCategoryLen {
		return nil, models.NewValidationError("category too long (max 60 characters)")
	}

	post := &models.Post{
		UserID:         in.UserID,
		ResultImageURL: in.ResultImageURL,
		Category:       in.Category,
		VibeTag:        in.VibeTag,
		IsManual:       in.IsManual,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost loads a post applying the same visibility rule as the feed: the
// owner always sees their own post, everyone else needs a public author. An
// invisible post reads as not found rather than forbidden.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, post, currentUserID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if userID != currentUserID {
		author, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if author.Visibility != models.VisibilityPublic {
			return []*models.Post{}, nil
		}
	}
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// LikePost records userID's like. Repeating it changes nothing; the counter
// and score move only the first time.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if err := s.requireVisible(ctx, post, userID); err != nil {
		return err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyEngagement(ctx, "like", postID, post.UserID, userID)
	}
	return nil
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

// AddComment validates and appends a comment. Validation failures surface
// before anything reaches the store.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentTextLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, post, in.UserID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: in.PostID,
		UserID: in.UserID,
		Text:   text,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyEngagement(ctx, "comment", in.PostID, post.UserID, in.UserID)
	}
	return comment, nil
}

// ListComments returns the post's comments oldest first, mirroring the order
// they arrived in.
func (s *PostService) ListComments(ctx context.Context, postID, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.GetPost(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.postRepo.ListComments(ctx, postID)
}

// RecordView counts one view, always. Repeat views from the same viewer are
// intentionally not collapsed.
func (s *PostService) RecordView(ctx context.Context, postID uint) error {
	return s.postRepo.RecordView(ctx, postID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// requireVisible applies the feed visibility predicate to a single post read.
// A missing author fails closed.
func (s *PostService) requireVisible(ctx context.Context, post *models.Post, currentUserID uint) error {
	if currentUserID != 0 && post.UserID == currentUserID {
		return nil
	}
	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NewNotFoundError("Post", post.ID)
		}
		return err
	}
	if !feed.Include(post, author, currentUserID) {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}
