package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	profileImagesDir = "profile_images"
	maxPictureBytes  = 5 << 20
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrInvalidMediaPath = errors.New("invalid media path")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage define donde se guardan los archivos subidos por usuarios.
type Storage interface {
	SaveProfilePicture(ctx context.Context, file *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, rel string) error
}

// LocalStorage guarda archivos bajo un directorio local servido en /media.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, profileImagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

// SaveProfilePicture valida el contenido y devuelve la ruta relativa al root.
func (s *LocalStorage) SaveProfilePicture(_ context.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxPictureBytes {
		return "", ErrImageTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	rel := filepath.Join(profileImagesDir, uuid.NewString()+ext)
	dst, err := os.OpenFile(filepath.Join(s.root, rel), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, io.LimitReader(src, maxPictureBytes)); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Remove borra un archivo guardado antes. Solo acepta rutas dentro de
// profile_images.
func (s *LocalStorage) Remove(_ context.Context, rel string) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || !strings.HasPrefix(clean, profileImagesDir+string(filepath.Separator)) {
		return ErrInvalidMediaPath
	}
	if err := os.Remove(filepath.Join(s.root, clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
