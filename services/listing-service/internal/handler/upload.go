package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
)

const (
	maxListingImages   = 5
	maxListingVideos   = 1
	maxListingFileSize = 50 << 20
	maxLogoFileSize    = 5 << 20
	multipartMemory    = 32 << 20
)

var (
	errTooManyFiles     = errors.New("too many files")
	errFileTooLarge     = errors.New("file too large")
	errUnsupportedMedia = errors.New("unsupported media type")
)

// uploadRule describes one accepted multipart file field.
type uploadRule struct {
	field    string
	maxCount int
	maxSize  int64
	allow    func(mimeType string) bool
}

func imageOrVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/")
}

func imageOnly(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// parseMultipart reads a multipart body capped at maxBytes. Non-multipart requests are left alone.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if mediaType(r) != "multipart/form-data" {
		return nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errFileTooLarge
		}
		return errInvalidBody
	}

	return nil
}

// uploadedFiles returns the files sent for rule.field after checking count, size and type.
func uploadedFiles(r *http.Request, rule uploadRule) ([]*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	files := r.MultipartForm.File[rule.field]
	if len(files) > rule.maxCount {
		return nil, fmt.Errorf("%w: at most %d %s", errTooManyFiles, rule.maxCount, rule.field)
	}

	for _, fh := range files {
		if fh.Size > rule.maxSize {
			return nil, fmt.Errorf("%w: %s", errFileTooLarge, fh.Filename)
		}

		mimeType, err := sniff(fh)
		if err != nil {
			return nil, err
		}
		if !rule.allow(mimeType) {
			return nil, fmt.Errorf("%w: %s", errUnsupportedMedia, mimeType)
		}
	}

	return files, nil
}

func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}

	return m.String(), nil
}

// saveFiles writes files into dir of the asset store and returns their store paths.
// On failure every file written so far is removed.
func saveFiles(
	assets storage.AssetStore,
	dir string,
	files []*multipart.FileHeader,
	name func(original string) string,
) ([]string, error) {
	saved := make([]string, 0, len(files))

	for _, fh := range files {
		p := strings.TrimPrefix(filepath.ToSlash(filepath.Join(dir, name(fh.Filename))), "/")
		if err := saveFile(assets, p, fh); err != nil {
			removeFiles(assets, saved)
			return nil, err
		}
		saved = append(saved, p)
	}

	return saved, nil
}

func saveFile(assets storage.AssetStore, p string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	return assets.Store(p, io.LimitReader(f, fh.Size))
}

func removeFiles(assets storage.AssetStore, paths []string) {
	for _, p := range paths {
		_ = assets.Delete(p)
	}
}

func uniquePrefix() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// mediaFileName keeps only the extension of the original name.
func mediaFileName(original string) string {
	return uniquePrefix() + strings.ToLower(filepath.Ext(original))
}

// logoFileName keeps a sanitised copy of the original name.
func logoFileName(original string) string {
	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(original)))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	return uniquePrefix() + "-" + base
}

func publicUploadPath(p string) string {
	return "/uploads/" + p
}
