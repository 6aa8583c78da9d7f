// Package decode loads background images as tightly packed 8-bit RGB pixels,
// the layout the renderer uploads directly into GPU texture storage.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when a file matches no known image format.
var ErrUnsupportedFormat = errors.New("decode: unsupported image format")

// Image is a decoded image in 8-bit RGB, rows packed top to bottom with no
// padding between them.
type Image struct {
	Width  int
	Height int

	// Pix holds 3*Width*Height bytes of row-major RGB.
	Pix []byte
}

// format pairs a decoder with the magic bytes that identify it, '?' matching
// any byte. TGA is absent: it has no magic and is tried last. The formats are
// dispatched here rather than through image.Decode because the TGA decoder
// registers itself with an empty magic string, which would shadow every
// format registered after it.
type format struct {
	magic  string
	decode func(io.Reader) (image.Image, error)
}

var formats = []format{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8?a", gif.Decode},
	{"RIFF????WEBPVP8", webp.Decode},
	{"BM????\x00\x00\x00\x00", bmp.Decode},
	{"II\x2A\x00", tiff.Decode},
	{"MM\x00\x2A", tiff.Decode},
}

func matches(magic string, data []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, c := range []byte(magic) {
		if c != data[i] && c != '?' {
			return false
		}
	}
	return true
}

// File decodes the image at path into 8-bit RGB, auto-detecting the format
// from the file contents. Supported formats: PNG, JPEG, GIF, WebP, BMP,
// TIFF and TGA.
func File(path string) (*Image, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("decode: open %s: %w", path, err)
	}

	for _, f := range formats {
		if !matches(f.magic, data) {
			continue
		}
		img, err := f.decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode: %s: %w", path, err)
		}
		return FromImage(img), nil
	}

	// No magic matched; TGA is the only magic-less format.
	img, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %s: %w", path, ErrUnsupportedFormat)
	}
	return FromImage(img), nil
}

// FromImage converts any image.Image into the packed RGB layout. Alpha is
// discarded without premultiplying; background opacity is applied later, at
// draw time.
func FromImage(img image.Image) *Image {
	src, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		src = image.NewNRGBA(b)
		draw.Draw(src, b, img, b.Min, draw.Src)
	}

	out := &Image{
		Width:  src.Bounds().Dx(),
		Height: src.Bounds().Dy(),
		Pix:    make([]byte, 3*src.Bounds().Dx()*src.Bounds().Dy()),
	}
	packNRGBA(out, src)
	return out
}

// packNRGBA copies straight from the NRGBA pixel buffer, dropping the alpha
// channel.
func packNRGBA(out *Image, src *image.NRGBA) {
	b := src.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
		for x := 0; x < len(row); x += 4 {
			out.Pix[i] = row[x]
			out.Pix[i+1] = row[x+1]
			out.Pix[i+2] = row[x+2]
			i += 3
		}
	}
}
