// Package display holds the viewport metrics shared by the render layers.
package display

// SizeInfo describes the drawable area of the terminal window in pixels.
// The windowing layer recomputes it whenever the framebuffer changes;
// render code treats it as read-only.
type SizeInfo struct {
	width  float32
	height float32
}

// NewSizeInfo builds a SizeInfo for a drawable of the given pixel size.
func NewSizeInfo(width, height float32) SizeInfo {
	return SizeInfo{width: width, height: height}
}

// Width returns the drawable width in pixels.
func (s SizeInfo) Width() float32 { return s.width }

// Height returns the drawable height in pixels.
func (s SizeInfo) Height() float32 { return s.height }
