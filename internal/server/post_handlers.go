package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"vesti/internal/models"
	"vesti/internal/service"
)

type createPostRequest struct {
	ResultImageURL string `json:"result_image_url"`
	Category       string `json:"category"`
	VibeTag        string `json:"vibe_tag"`
	IsManual       bool   `json:"is_manual"`
}

// CreatePost publishes a try-on result to the feed.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:         currentUserID(c),
		ResultImageURL: req.ResultImageURL,
		Category:       req.Category,
		VibeTag:        req.VibeTag,
		IsManual:       req.IsManual,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	slog.InfoContext(c.Context(), "post created", "post_id", post.ID)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost returns a single post if it is visible to the viewer.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// GetUserPosts returns a user's posts. Non-owners only see them when the
// author's profile is public.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), userID, p.Limit, p.Offset, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// LikePost records a like. Liking twice is a no-op, not an error.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikePost removes the caller's like if one exists.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": false})
}

// RecordView counts a view. Every view counts, including repeats and the
// author's own.
func (s *Server) RecordView(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.RecordView(c.Context(), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost removes the caller's own post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
