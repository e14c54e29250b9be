package server

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"vesti/internal/models"
	"vesti/internal/service"
)

// ImageUploadResponse is the API response after uploading an image.
type ImageUploadResponse struct {
	ID        uint   `json:"id"`
	Hash      string `json:"hash"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
}

// UploadImage handles POST /api/images. The multipart "image" field carries
// the file and the optional "kind" field says whether it is a person shot,
// a garment shot, or a finished render.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	kind := c.FormValue("kind", models.ImageKindPerson)
	uploaded, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		UserID:      currentUserID(c),
		Kind:        kind,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(ImageUploadResponse{
		ID:        uploaded.ID,
		Hash:      uploaded.Hash,
		Kind:      uploaded.Kind,
		Status:    uploaded.Status,
		Width:     uploaded.Width,
		Height:    uploaded.Height,
		SizeBytes: uploaded.SizeBytes,
		URL:       s.imageService.MasterURL(uploaded.Hash),
	})
}

// ServeImage streams an uploaded image by hash. The optional "size" query
// selects a downscaled variant; unknown sizes fall back to the master.
func (s *Server) ServeImage(c *fiber.Ctx) error {
	hash := strings.TrimSpace(c.Params("hash"))
	sizePx := c.QueryInt("size", 0)

	_, path, err := s.imageService.ResolveForServing(c.UserContext(), hash, sizePx)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	c.Set(fiber.HeaderContentType, "image/webp")
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
