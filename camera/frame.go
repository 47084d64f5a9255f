package camera

import (
	"errors"
	"fmt"
	"image"
	"unsafe"
)

// ErrBadGeometry is generated when a frame is requested with a non-positive
// size or an unsupported element width
var ErrBadGeometry = errors.New("invalid frame geometry")

// Frame is a row-major image.  Exactly one of U8 and U16 is non-nil,
// selected by BitsPerPixel.  Sensors with 10, 12 or 16 bit depth are
// stored in U16.
type Frame struct {
	Width        int
	Height       int
	BitsPerPixel int

	U8  []uint8
	U16 []uint16
}

// NewFrame allocates a zeroed frame
func NewFrame(width, height, bitsPerPixel int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, width, height)
	}
	f := &Frame{Width: width, Height: height, BitsPerPixel: bitsPerPixel}
	switch bitsPerPixel {
	case 8:
		f.U8 = make([]uint8, width*height)
	case 16:
		f.U16 = make([]uint16, width*height)
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrBadGeometry, bitsPerPixel)
	}
	return f, nil
}

// Bytes returns the pixel storage as bytes in host order.  The slice aliases
// the frame, it is what gets bound to the camera as image memory.
func (f *Frame) Bytes() []byte {
	if f.U8 != nil {
		return f.U8
	}
	if len(f.U16) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f.U16[0])), len(f.U16)*2)
}

// At returns the pixel at column x, row y
func (f *Frame) At(x, y int) uint16 {
	i := y*f.Width + x
	if f.U8 != nil {
		return uint16(f.U8[i])
	}
	return f.U16[i]
}

// Image returns a copy of the frame as an image.Gray or image.Gray16
func (f *Frame) Image() image.Image {
	r := image.Rect(0, 0, f.Width, f.Height)
	if f.U8 != nil {
		im := image.NewGray(r)
		copy(im.Pix, f.U8)
		return im
	}
	im := image.NewGray16(r)
	for i, v := range f.U16 {
		// Gray16 is big endian
		im.Pix[2*i] = uint8(v >> 8)
		im.Pix[2*i+1] = uint8(v)
	}
	return im
}

// Gray8 returns an 8 bit copy of the frame, dropping the low byte of 16 bit data
func (f *Frame) Gray8() *image.Gray {
	im := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	if f.U8 != nil {
		copy(im.Pix, f.U8)
		return im
	}
	for i, v := range f.U16 {
		im.Pix[i] = uint8(v / 256) // scale 16 to 8 bits
	}
	return im
}
