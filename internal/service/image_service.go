package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vesti/internal/config"
	"vesti/internal/models"
	"vesti/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
	_ "image/jpeg"
	_ "image/png"
)

const (
	DefaultImageUploadDir       = "/tmp/vesti/uploads/images"
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	WebPQuality                 = 78
)

// Image processing states.
const (
	ImageStatusQueued = "queued"
	ImageStatusReady  = "ready"
	ImageStatusFailed = "failed"
)

// Person and garment shots keep their full frame; the synthesis pipeline
// needs the whole silhouette, so variants only downscale, never crop.
var variantSizes = []int{256, 640, 1280}

type UploadImageInput struct {
	UserID      uint
	Kind        string
	ContentType string
	Content     []byte
}

// ImageService stores uploaded person and garment shots: hash for dedup,
// master WebP on disk, downscaled variants alongside it.
type ImageService struct {
	repo               repository.ImageRepository
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.ImageRepository, cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		repo:               repo,
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates, dedups by content hash, writes the master WebP and its
// variants, and records the metadata. A re-upload of identical bytes by the
// same user returns the existing record untouched.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	kind := in.Kind
	if kind == "" {
		kind = models.ImageKindPerson
	}
	switch kind {
	case models.ImageKindPerson, models.ImageKindGarment, models.ImageKindRender:
	default:
		return nil, models.NewValidationError("kind must be one of person, garment, render")
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	hash := imageHash(in.UserID, in.Content)
	if existing, getErr := s.repo.GetByHash(ctx, hash); getErr == nil {
		return existing, nil
	} else if !models.IsNotFound(getErr) {
		return nil, getErr
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	masterBytes, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	masterAbs := filepath.Join(s.uploadDir, hash, "master.webp")
	if err := writeBytesToFile(masterAbs, masterBytes); err != nil {
		return nil, models.NewInternalError(err)
	}

	bounds := master.Bounds()
	record := &models.Image{
		Hash:        hash,
		UserID:      in.UserID,
		Kind:        kind,
		ContentType: "image/webp",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		SizeBytes:   int64(len(masterBytes)),
		Status:      ImageStatusQueued,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		_ = os.Remove(masterAbs)
		return nil, err
	}

	if err := s.generateVariants(ctx, record, master); err != nil {
		slog.ErrorContext(ctx, "variant generation failed", "image_id", record.ID, "err", err)
		if serr := s.repo.UpdateStatus(ctx, record.ID, ImageStatusFailed, err.Error()); serr != nil {
			slog.ErrorContext(ctx, "failed to mark image failed", "image_id", record.ID, "err", serr)
		}
		return record, nil
	}
	if err := s.repo.UpdateStatus(ctx, record.ID, ImageStatusReady, ""); err != nil {
		return nil, err
	}
	record.Status = ImageStatusReady
	return record, nil
}

func (s *ImageService) generateVariants(ctx context.Context, record *models.Image, master image.Image) error {
	b := master.Bounds()
	for _, size := range variantSizes {
		if b.Dx() < size && b.Dy() < size {
			continue
		}
		resized := resizeToFit(master, size, size)
		encoded, err := encodeWebP(resized, WebPQuality)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(filepath.Join(record.Hash, fmt.Sprintf("%d.webp", size)))
		if err := writeBytesToFile(filepath.Join(s.uploadDir, rel), encoded); err != nil {
			return err
		}
		if err := s.repo.AddVariant(ctx, &models.ImageVariant{
			ImageID:   record.ID,
			SizePx:    size,
			Format:    "webp",
			SizeBytes: int64(len(encoded)),
		}); err != nil {
			return err
		}
	}
	return nil
}

// ResolveForServing maps a hash (and optional size) to the file to stream.
// The hash is checked against strict hex before it touches a path.
func (s *ImageService) ResolveForServing(ctx context.Context, hash string, sizePx int) (*models.Image, string, error) {
	if !isValidImageHash(hash) {
		return nil, "", models.NewValidationError("Invalid image hash")
	}
	img, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, "", err
	}

	name := "master.webp"
	if sizePx > 0 {
		for _, v := range img.Variants {
			if v.SizePx == sizePx {
				name = fmt.Sprintf("%d.webp", sizePx)
				break
			}
		}
	}

	fullPath := filepath.Join(s.uploadDir, hash, name)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil, "", models.NewNotFoundError("Image", hash)
		}
		return nil, "", models.NewInternalError(err)
	}

	if err := s.repo.TouchLastAccessed(ctx, img.ID); err != nil {
		slog.WarnContext(ctx, "failed to touch image access time", "image_id", img.ID, "err", err)
	}
	return img, fullPath, nil
}

// CleanupStale removes images not served within maxAge, files and records
// both. Intended to run from a periodic background sweep.
func (s *ImageService) CleanupStale(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	stale, err := s.repo.ListStale(ctx, time.Now().Add(-maxAge), limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, img := range stale {
		if err := s.repo.Delete(ctx, img.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete stale image record", "image_id", img.ID, "err", err)
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.uploadDir, img.Hash)); err != nil {
			slog.WarnContext(ctx, "failed to remove stale image files", "hash", img.Hash, "err", err)
		}
		removed++
	}
	return removed, nil
}

// MasterURL returns the canonical serving URL for an uploaded image.
func (s *ImageService) MasterURL(hash string) string {
	return fmt.Sprintf("/api/images/%s", hash)
}

// isValidImageHash checks that the hash is strictly lowercase hex (SHA-256
// style). This prevents path traversal via crafted hash parameters.
func isValidImageHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 128 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func imageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
