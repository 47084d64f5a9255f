package ids

import (
	"fmt"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/ids/ueye"
)

var (
	horizontalBinningBits = map[int]ueye.BinningBits{
		1:  ueye.BinningDisable,
		2:  ueye.Binning2xHorizontal,
		3:  ueye.Binning3xHorizontal,
		4:  ueye.Binning4xHorizontal,
		5:  ueye.Binning5xHorizontal,
		6:  ueye.Binning6xHorizontal,
		8:  ueye.Binning8xHorizontal,
		16: ueye.Binning16xHorizontal,
	}

	verticalBinningBits = map[int]ueye.BinningBits{
		1:  ueye.BinningDisable,
		2:  ueye.Binning2xVertical,
		3:  ueye.Binning3xVertical,
		4:  ueye.Binning4xVertical,
		5:  ueye.Binning5xVertical,
		6:  ueye.Binning6xVertical,
		8:  ueye.Binning8xVertical,
		16: ueye.Binning16xVertical,
	}

	horizontalBinningFactor = invert(horizontalBinningBits)
	verticalBinningFactor   = invert(verticalBinningBits)

	// sub-16 bit depths are packed into 16 bit containers
	colorModeBits = map[ueye.ColorMode]int{
		ueye.CMMono8:       8,
		ueye.CMMono10:      16,
		ueye.CMMono12:      16,
		ueye.CMMono16:      16,
		ueye.CMSensorRaw8:  8,
		ueye.CMSensorRaw10: 16,
		ueye.CMSensorRaw12: 16,
		ueye.CMSensorRaw16: 16,
	}
)

func invert(m map[int]ueye.BinningBits) map[ueye.BinningBits]int {
	out := make(map[ueye.BinningBits]int, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// HorizontalBinningBits returns the bits for a horizontal binning factor
func HorizontalBinningBits(factor int) (ueye.BinningBits, error) {
	b, ok := horizontalBinningBits[factor]
	if !ok {
		return 0, fmt.Errorf("%w: horizontal binning factor %d", ErrUnsupportedValue, factor)
	}
	return b, nil
}

// VerticalBinningBits returns the bits for a vertical binning factor
func VerticalBinningBits(factor int) (ueye.BinningBits, error) {
	b, ok := verticalBinningBits[factor]
	if !ok {
		return 0, fmt.Errorf("%w: vertical binning factor %d", ErrUnsupportedValue, factor)
	}
	return b, nil
}

// HorizontalBinningFactor returns the factor for horizontal binning bits
func HorizontalBinningFactor(bits ueye.BinningBits) (int, error) {
	f, ok := horizontalBinningFactor[bits]
	if !ok {
		return 0, fmt.Errorf("%w: horizontal binning bits %#x", ErrUnsupportedValue, uint32(bits))
	}
	return f, nil
}

// VerticalBinningFactor returns the factor for vertical binning bits
func VerticalBinningFactor(bits ueye.BinningBits) (int, error) {
	f, ok := verticalBinningFactor[bits]
	if !ok {
		return 0, fmt.Errorf("%w: vertical binning bits %#x", ErrUnsupportedValue, uint32(bits))
	}
	return f, nil
}

// BinningBits encodes a binning mode as the OR of its horizontal and vertical bits
func BinningBits(b camera.Binning) (ueye.BinningBits, error) {
	h, err := HorizontalBinningBits(b.H)
	if err != nil {
		return 0, err
	}
	v, err := VerticalBinningBits(b.V)
	if err != nil {
		return 0, err
	}
	return h | v, nil
}

// DecodeBinning is the inverse of BinningBits.  Bits outside both masks,
// or more than one factor in either direction, are an error.
func DecodeBinning(bits ueye.BinningBits) (camera.Binning, error) {
	if stray := bits &^ (ueye.BinningMaskHorizontal | ueye.BinningMaskVertical); stray != 0 {
		return camera.Binning{}, fmt.Errorf("%w: binning bits %#x", ErrUnsupportedValue, uint32(stray))
	}
	h, err := HorizontalBinningFactor(bits & ueye.BinningMaskHorizontal)
	if err != nil {
		return camera.Binning{}, err
	}
	v, err := VerticalBinningFactor(bits & ueye.BinningMaskVertical)
	if err != nil {
		return camera.Binning{}, err
	}
	return camera.Binning{H: h, V: v}, nil
}

// BitsPerPixel returns the frame element width for a color mode
func BitsPerPixel(mode ueye.ColorMode) (int, error) {
	b, ok := colorModeBits[mode]
	if !ok {
		return 0, fmt.Errorf("%w: color mode %d", ErrUnsupportedValue, int(mode))
	}
	return b, nil
}

// ColorModeForBits returns the mono color mode which produces frames of the
// given element width.  It is the reverse of BitsPerPixel for the canonical
// mono modes.
func ColorModeForBits(bits int) (ueye.ColorMode, error) {
	switch bits {
	case 8:
		return ueye.CMMono8, nil
	case 16:
		return ueye.CMMono16, nil
	default:
		return 0, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedValue, bits)
	}
}
