package media

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("picture", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["picture"][0]
}

func TestNewLocalStorage(t *testing.T) {
	if _, err := NewLocalStorage(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Root() != root {
		t.Fatalf("expected root %q, got %q", root, s.Root())
	}
	if info, err := os.Stat(filepath.Join(root, profileImagesDir)); err != nil || !info.IsDir() {
		t.Fatalf("expected profile images dir to exist")
	}
}

func TestSaveProfilePicture(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	rel, err := s.SaveProfilePicture(context.Background(), fileHeader(t, "avatar.bin", gifHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(rel, "profile_images/") || !strings.HasSuffix(rel, ".gif") {
		t.Fatalf("unexpected path %q", rel)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(data, gifHeader) {
		t.Fatalf("saved content differs from upload")
	}
}

func TestSaveProfilePicture_Rejects(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	_, err = s.SaveProfilePicture(context.Background(), fileHeader(t, "fake.png", []byte("<html>not an image</html>")))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}

	big := fileHeader(t, "big.gif", gifHeader)
	big.Size = maxPictureBytes + 1
	if _, err := s.SaveProfilePicture(context.Background(), big); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	rel, err := s.SaveProfilePicture(context.Background(), fileHeader(t, "a.gif", gifHeader))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Remove(context.Background(), rel); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file to be gone, got %v", err)
	}
	if err := s.Remove(context.Background(), rel); err != nil {
		t.Fatalf("expected removing a missing file to be a no-op, got %v", err)
	}

	for _, bad := range []string{"../outside.png", "profile_images/../../x", "/etc/passwd", "other/x.png", "profile_images"} {
		if err := s.Remove(context.Background(), bad); !errors.Is(err, ErrInvalidMediaPath) {
			t.Fatalf("%q: expected ErrInvalidMediaPath, got %v", bad, err)
		}
	}
}
