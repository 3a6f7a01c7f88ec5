package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // webp decode support for image.Decode

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/repository/storage"
)

const (
	MaxImageSize    = 5 * 1024 * 1024  // 5MB
	MaxDocumentSize = 10 * 1024 * 1024 // 10MB
	MaxPhotoWidth   = 1600
	JPEGQuality     = 85
)

// AllowedImageFormats contains the supported image MIME types
var AllowedImageFormats = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AllowedImageExtensions maps extensions to content types
var AllowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// DocumentService validates and stores the files attached to loans and
// customers: contracts, signed contracts, verification photos, payment
// proofs, and KYC images.
type DocumentService struct {
	storage storage.ObjectRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(storage storage.ObjectRepository) *DocumentService {
	return &DocumentService{storage: storage}
}

// UploadPDF validates that data is a PDF and stores it under objectPath,
// returning the public URL.
func (s *DocumentService) UploadPDF(ctx context.Context, objectPath string, data []byte, declaredType string) (string, error) {
	if len(data) > MaxDocumentSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, MaxDocumentSize)
	}
	if declaredType != "application/pdf" || !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", domain.ErrNotPDFFile
	}
	url, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(data), "application/pdf", int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return url, nil
}

// UploadRendered stores already-rendered contract bytes without re-validation.
func (s *DocumentService) UploadRendered(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	url, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return url, nil
}

// UploadImage validates, normalizes, and stores a photograph. Oversized
// images are resized down to MaxPhotoWidth and everything is re-encoded as
// JPEG so stored photos have a uniform format.
func (s *DocumentService) UploadImage(ctx context.Context, objectPath string, data []byte, filename, declaredType string) (string, error) {
	img, err := s.validateAndDecode(data, filename, declaredType)
	if err != nil {
		return "", err
	}

	if img.Bounds().Dx() > MaxPhotoWidth {
		img = imaging.Resize(img, MaxPhotoWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	url, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *DocumentService) validateAndDecode(data []byte, filename, declaredType string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, MaxImageSize)
	}

	if declaredType != "" && !AllowedImageFormats[declaredType] {
		return nil, domain.ErrNotImageFile
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedImageExtensions[ext]; !ok {
		return nil, domain.ErrNotImageFile
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrNotImageFile
	}
	return img, nil
}

// Delete removes a stored object; best effort, used to clean up after a
// partially failed multi-upload.
func (s *DocumentService) Delete(ctx context.Context, objectPath string) error {
	return s.storage.Delete(ctx, objectPath)
}

// Object path builders. Keeping them here means every caller agrees on the
// bucket layout.

func ContractPath(loanID uuid.UUID) string {
	return fmt.Sprintf("loans/%s/contract.html", loanID)
}

func SignedContractPath(loanID uuid.UUID) string {
	return fmt.Sprintf("loans/%s/contract_signed.pdf", loanID)
}

func HousePhotoPath(loanID uuid.UUID, index int) string {
	return fmt.Sprintf("loans/%s/house/%d.jpg", loanID, index)
}

func EmiProofPath(loanID uuid.UUID, emiNumber int) string {
	return fmt.Sprintf("loans/%s/emi/%d.jpg", loanID, emiNumber)
}

func FeeProofPath(feeID uuid.UUID) string {
	return fmt.Sprintf("fees/%s/proof.jpg", feeID)
}

func KYCPath(customerID uuid.UUID, slot string) string {
	return fmt.Sprintf("customers/%s/kyc/%s.jpg", customerID, slot)
}
