package service

import (
	"context"

	"vesti/internal/cache"
	"vesti/internal/feed"
	"vesti/internal/models"
	"vesti/internal/repository"
)

// FeedService assembles the ranked feed: fetch live posts and their authors,
// drop what the viewer may not see, order by score then recency.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{postRepo: postRepo, userRepo: userRepo}
}

// GetFeed returns the assembled feed for viewerID (0 for anonymous). The
// anonymous feed is cached briefly; signed-in feeds are assembled per request
// because the owner override and liked flags differ per viewer.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if viewerID == 0 {
		var cached []*models.Post
		err := cache.Aside(ctx, cache.FeedKey(), &cached, cache.FeedTTL, func() error {
			var fetchErr error
			cached, fetchErr = s.assemble(ctx, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return trim(cached, limit), nil
	}

	posts, err := s.assemble(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return trim(posts, limit), nil
}

func (s *FeedService) assemble(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.ListAll(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for _, p := range posts {
		if p != nil && !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	return feed.Assemble(posts, authors, viewerID), nil
}

func trim(posts []*models.Post, limit int) []*models.Post {
	if len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
