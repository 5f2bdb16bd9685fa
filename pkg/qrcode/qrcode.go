package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

type Config struct {
	Content       string
	Size          int
	RecoveryLevel qrcode.RecoveryLevel
	Background    color.Color
	Foreground    color.Color
	DisableBorder bool
	// Logo, if set, is scaled to LogoScale of Size and drawn in the center.
	// Use RecoveryLevel Highest when a logo covers part of the code.
	Logo      image.Image
	LogoScale float64
}

// Ticket is the default look of event tickets.
var Ticket = Config{
	Size:          512,
	RecoveryLevel: qrcode.Highest,
	Background:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
	Foreground:    color.RGBA{R: 20, G: 20, B: 20, A: 255},
	LogoScale:     0.2,
}

// Generate renders the QR code as PNG bytes.
func (c Config) Generate() ([]byte, error) {
	code, err := qrcode.New(c.Content, c.RecoveryLevel)
	if err != nil {
		return nil, err
	}
	if c.Background != nil {
		code.BackgroundColor = c.Background
	}
	if c.Foreground != nil {
		code.ForegroundColor = c.Foreground
	}
	code.DisableBorder = c.DisableBorder

	if c.Logo == nil {
		return code.PNG(c.Size)
	}

	base := code.Image(c.Size)
	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, image.Point{}, draw.Src)

	logoSize := uint(float64(canvas.Bounds().Dx()) * c.LogoScale)
	logo := resize.Resize(logoSize, logoSize, c.Logo, resize.Lanczos3)
	offset := image.Pt(
		(canvas.Bounds().Dx()-logo.Bounds().Dx())/2,
		(canvas.Bounds().Dy()-logo.Bounds().Dy())/2,
	)
	draw.Draw(canvas, logo.Bounds().Add(offset), logo, logo.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err = png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
