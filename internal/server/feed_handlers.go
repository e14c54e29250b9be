package server

import (
	"github.com/gofiber/fiber/v2"

	"vesti/internal/models"
)

// GetFeed returns posts ranked by engagement score, most recent first among
// ties. Anonymous viewers get the shared public feed; signed-in viewers also
// see their own posts and posts from restricted authors.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	viewerID := currentUserID(c)

	posts, err := s.feedService.GetFeed(c.Context(), viewerID, p.Limit)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}
