package domain

// ImageFormat names a codec the transcoder understands.
type ImageFormat string

const (
	ImageFormatJPEG        ImageFormat = "jpeg"
	ImageFormatPNG         ImageFormat = "png"
	ImageFormatGIF         ImageFormat = "gif"
	ImageFormatBMP         ImageFormat = "bmp"
	ImageFormatTIFF        ImageFormat = "tiff"
	ImageFormatUnsupported ImageFormat = "unsupported"
)

// TranscodeResult is the output of the transcoder. When Passthrough is set, Data holds the
// original bytes unchanged.
type TranscodeResult struct {
	Data           []byte
	ContentType    string
	Format         ImageFormat
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
	Passthrough    bool
}
