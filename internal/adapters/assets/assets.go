package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// LocalStore keeps uploaded images on disk under Dir and serves them from BaseURL.
type LocalStore struct {
	dir      string
	baseURL  string
	maxWidth uint
	maxBytes int
}

func NewLocalStore(dir, baseURL string, maxWidth uint, maxBytes int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxWidth: maxWidth,
		maxBytes: maxBytes,
	}, nil
}

// Dir is the directory the store writes to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save decodes data as an image, scales it down to the configured width and
// writes it under kind. It returns the public URL of the stored file.
func (s *LocalStore) Save(ctx context.Context, kind string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return "", errorz.Invalid("image", fmt.Sprintf("is larger than %d bytes", s.maxBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errorz.Invalid("image", "is not a png, jpeg or gif")
	}
	if s.maxWidth > 0 && uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	var (
		buf bytes.Buffer
		ext string
	)
	switch format {
	case "jpeg":
		ext = ".jpg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	default:
		ext = ".png"
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	kind = path.Clean("/" + kind)[1:]
	dir := filepath.Join(s.dir, filepath.FromSlash(kind))
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := uuid.NewString() + ext
	if err = os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + "/" + path.Join(kind, name), nil
}
