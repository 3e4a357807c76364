// Package media stores uploaded image and video blobs on the local
// filesystem, partitioned by kind, with random collision-resistant
// filenames. No deduplication or transcoding is performed.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sluggram/backend/internal/apperror"
)

// Kind selects the blob partition.
type Kind string

const (
	KindImage Kind = "images"
	KindVideo Kind = "videos"
)

// MaxImageSize is the fixed ceiling for image uploads.
const MaxImageSize = 10 << 20

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var videoContentTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// ParseKind validates a kind string from a URL path.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindImage, KindVideo:
		return Kind(s), nil
	default:
		return "", apperror.Invalid("invalid file type")
	}
}

// Store is a kind-partitioned filesystem blob store.
type Store struct {
	root         string
	maxVideoSize int64
}

// NewStore creates the upload directory tree under root. maxVideoSize is the
// ceiling for video uploads in bytes.
func NewStore(root string, maxVideoSize int64) (*Store, error) {
	for _, kind := range []Kind{KindImage, KindVideo} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0755); err != nil {
			return nil, fmt.Errorf("creating upload directory: %w", err)
		}
	}
	return &Store{root: root, maxVideoSize: maxVideoSize}, nil
}

// Save validates the declared content type and size for the kind, writes the
// blob under a freshly generated filename and returns the retrieval URL path
// and the filename.
func (s *Store) Save(kind Kind, contentType, originalName string, size int64, r io.Reader) (string, string, error) {
	allowed := imageContentTypes
	maxSize := int64(MaxImageSize)
	defaultExt := ".jpg"
	if kind == KindVideo {
		allowed = videoContentTypes
		maxSize = s.maxVideoSize
		defaultExt = ".mp4"
	}

	if !allowed[contentType] {
		return "", "", apperror.Invalid(fmt.Sprintf("invalid file type: %s", contentType))
	}
	if size > maxSize {
		return "", "", apperror.PayloadTooLarge(fmt.Sprintf("file too large, maximum size is %d MB", maxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = defaultExt
	}
	filename := uuid.New().String() + ext

	path := filepath.Join(s.root, string(kind), filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("creating file: %w", err)
	}

	_, err = io.Copy(dst, io.LimitReader(r, maxSize))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Do not leave a truncated blob behind.
		os.Remove(path)
		return "", "", fmt.Errorf("writing file: %w", err)
	}

	return fmt.Sprintf("/upload/files/%s/%s", kind, filename), filename, nil
}

// Path resolves a stored blob for retrieval. The filename is reduced to its
// base so a crafted name cannot escape the partition.
func (s *Store) Path(kind Kind, filename string) (string, error) {
	path := filepath.Join(s.root, string(kind), filepath.Base(filename))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", apperror.NotFound("file", filename)
	} else if err != nil {
		return "", err
	}
	return path, nil
}
