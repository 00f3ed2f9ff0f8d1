package domain

import "math"

// ScaleDimensions computes output dimensions bounded by targetSize on the governing side.
// Landscape images are bounded by width, portrait and square images by height. The aspect
// ratio is preserved and the image is never upscaled.
func ScaleDimensions(origWidth, origHeight, targetSize int) (int, int) {
	if origWidth <= 0 || origHeight <= 0 || targetSize <= 0 {
		return origWidth, origHeight
	}

	ratio := float64(origWidth) / float64(origHeight)

	var newWidth, newHeight int
	if origWidth > origHeight {
		newWidth = min(targetSize, origWidth)
		newHeight = int(math.Round(float64(newWidth) / ratio))
	} else {
		newHeight = min(targetSize, origHeight)
		newWidth = int(math.Round(float64(newHeight) * ratio))
	}

	return max(newWidth, 1), max(newHeight, 1)
}
