package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOfWidth(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStore_Save(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "https://cdn.test/assets/", 100, 1<<20)
	require.NoError(t, err)

	url, err := store.Save(ctx, "clubs/logo", pngOfWidth(t, 400, 200))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.test/assets/clubs/logo/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := url[strings.LastIndex(url, "/")+1:]
	file, err := os.Open(filepath.Join(dir, "clubs", "logo", name))
	require.NoError(t, err)
	defer file.Close()

	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestLocalStore_SaveRejects(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "https://cdn.test", 0, 64)
	require.NoError(t, err)

	_, err = store.Save(ctx, "avatars", []byte("not an image"))
	assert.ErrorIs(t, err, errorz.ErrInvalidInput)

	_, err = store.Save(ctx, "avatars", pngOfWidth(t, 300, 300))
	assert.ErrorIs(t, err, errorz.ErrInvalidInput)
}

func TestLocalStore_SaveStaysInsideDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "https://cdn.test", 0, 0)
	require.NoError(t, err)

	url, err := store.Save(ctx, "../../etc", pngOfWidth(t, 4, 4))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/etc/"), url)

	_, err = os.Stat(filepath.Join(dir, "etc"))
	assert.NoError(t, err)
}
