package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted image, in bytes
const MaxUploadSize = 5 * 1024 * 1024

// Upload folders
const (
	UploadFolderProjects       = "projects"
	UploadFolderTestimonials   = "testimonials"
	UploadFolderCertifications = "certifications"
	UploadFolderMisc           = "misc"
)

var uploadFolders = map[string]bool{
	UploadFolderProjects:       true,
	UploadFolderTestimonials:   true,
	UploadFolderCertifications: true,
	UploadFolderMisc:           true,
}

// accepted image types and the extension stored objects get
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ErrStorageDisabled is returned when no object storage is configured
var ErrStorageDisabled = errors.New("object storage is not configured")

// ObjectStore is where uploaded images are kept
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadResult is the public link and object path of a stored image
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadService validates and stores admin image uploads
type UploadService struct {
	store ObjectStore
	now   func() time.Time
}

// NewUploadService creates a new upload service. store may be nil, in which
// case every call fails with ErrStorageDisabled.
func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// Upload sniffs the content type of body, checks it against the accepted
// image types and size, and stores it under folder
func (s *UploadService) Upload(ctx context.Context, folder string, body io.Reader, size int64) (*UploadResult, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if folder == "" {
		folder = UploadFolderMisc
	}
	if !uploadFolders[folder] {
		return nil, &ValidationError{Field: "folder", Message: "Invalid upload folder"}
	}
	if size <= 0 {
		return nil, &ValidationError{Field: "file", Message: "File is empty"}
	}
	if size > MaxUploadSize {
		return nil, &ValidationError{Field: "file", Message: "File too large. Maximum size is 5MB."}
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := strings.SplitN(http.DetectContentType(head), ";", 2)[0]
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, &ValidationError{Field: "file", Message: "Invalid file type. Only images are allowed."}
	}

	key := fmt.Sprintf("%s/%d-%s.%s", folder, s.now().UnixMilli(), uuid.NewString()[:8], ext)
	url, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), body), size, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: url, Path: key}, nil
}

// Delete removes a stored image by its object path
func (s *UploadService) Delete(ctx context.Context, path string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	folder, _, found := strings.Cut(path, "/")
	if !found || !uploadFolders[folder] || strings.Contains(path, "..") {
		return &ValidationError{Field: "path", Message: "Invalid path"}
	}
	return s.store.Delete(ctx, path)
}
