// Package feed implements the ranking and visibility core of the shared
// looks feed: the engagement score accumulator, the per-viewer visibility
// predicate, and the assembler that turns raw post/author collections into
// the ordered sequence a viewer is entitled to see.
//
// Everything here is pure: no I/O, no mutation of inputs. Persistence-side
// score bumps in the repository use the same weights via Weight.
package feed

import (
	"sort"

	"vesti/internal/models"
)

// EventKind identifies an engagement event applied to a post.
type EventKind string

const (
	EventLike    EventKind = "like"
	EventComment EventKind = "comment"
	EventView    EventKind = "view"
)

// Flat additive weights for the social feed. The marketplace catalogue uses
// a separate continuous weighting (models.Product.TrendScore); the two
// schemes are intentionally not unified.
const (
	LikeWeight    = 15
	CommentWeight = 10
	ViewWeight    = 1
)

// Weight returns the score delta for one event of the given kind.
// Unknown kinds weigh nothing.
func Weight(kind EventKind) int {
	switch kind {
	case EventLike:
		return LikeWeight
	case EventComment:
		return CommentWeight
	case EventView:
		return ViewWeight
	}
	return 0
}

// Advance returns the score after applying one engagement event. Score is an
// accumulator: it only ever moves forward under engagement.
func Advance(score int, kind EventKind) int {
	return score + Weight(kind)
}

// Include decides whether a post belongs in the feed rendered for viewerID
// (0 means anonymous). A viewer always sees their own posts; everyone else
// requires the author's visibility to be public. A missing author record
// fails closed: the post is excluded unless it is the viewer's own.
func Include(post *models.Post, author *models.User, viewerID uint) bool {
	if post == nil {
		return false
	}
	if viewerID != 0 && post.UserID == viewerID {
		return true
	}
	return author != nil && author.Visibility == models.VisibilityPublic
}

// Assemble produces the ordered, visibility-filtered feed for viewerID.
// Posts are sorted by score descending, ties broken by created_at descending
// (most recent first). Empty inputs yield an empty feed. The result is
// recomputed fresh on every call; no cursor state is kept.
func Assemble(posts []*models.Post, authors []*models.User, viewerID uint) []*models.Post {
	byID := make(map[uint]*models.User, len(authors))
	for _, a := range authors {
		if a != nil {
			byID[a.ID] = a
		}
	}

	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		if Include(p, byID[p.UserID], viewerID) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
