package thumbnail_gateway

import (
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"thumbs/domain"
)

// codec re-encodes a scaled image in the format it was decoded from.
// src is the image as decoded, before scaling.
type codec interface {
	Format() domain.ImageFormat
	ContentType() string
	Encode(w io.Writer, scaled *image.RGBA, src image.Image) error
}

// codecs is keyed by the format name reported by image.DecodeConfig. Formats that decode
// but are missing here (webp) are served unchanged.
var codecs = map[string]codec{
	"jpeg": jpegCodec{quality: domain.ThumbnailJPEGQuality},
	"png":  pngCodec{},
	"gif":  gifCodec{},
	"bmp":  bmpCodec{},
	"tiff": tiffCodec{},
}

type jpegCodec struct {
	quality int
}

func (jpegCodec) Format() domain.ImageFormat { return domain.ImageFormatJPEG }
func (jpegCodec) ContentType() string        { return "image/jpeg" }

func (c jpegCodec) Encode(w io.Writer, scaled *image.RGBA, _ image.Image) error {
	return jpeg.Encode(w, scaled, &jpeg.Options{Quality: c.quality})
}

type pngCodec struct{}

func (pngCodec) Format() domain.ImageFormat { return domain.ImageFormatPNG }
func (pngCodec) ContentType() string        { return "image/png" }

func (pngCodec) Encode(w io.Writer, scaled *image.RGBA, _ image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, scaled)
}

// gifCodec keeps the source palette, including its transparent entry, and dithers the
// scaled pixels back onto it.
type gifCodec struct{}

func (gifCodec) Format() domain.ImageFormat { return domain.ImageFormatGIF }
func (gifCodec) ContentType() string        { return "image/gif" }

func (gifCodec) Encode(w io.Writer, scaled *image.RGBA, src image.Image) error {
	pal := palette.Plan9
	if p, ok := src.(*image.Paletted); ok && len(p.Palette) > 0 {
		pal = p.Palette
	}
	dst := image.NewPaletted(scaled.Bounds(), pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min)
	return gif.Encode(w, dst, nil)
}

type bmpCodec struct{}

func (bmpCodec) Format() domain.ImageFormat { return domain.ImageFormatBMP }
func (bmpCodec) ContentType() string        { return "image/bmp" }

func (bmpCodec) Encode(w io.Writer, scaled *image.RGBA, _ image.Image) error {
	return bmp.Encode(w, scaled)
}

type tiffCodec struct{}

func (tiffCodec) Format() domain.ImageFormat { return domain.ImageFormatTIFF }
func (tiffCodec) ContentType() string        { return "image/tiff" }

func (tiffCodec) Encode(w io.Writer, scaled *image.RGBA, _ image.Image) error {
	return tiff.Encode(w, scaled, &tiff.Options{Compression: tiff.Deflate})
}
