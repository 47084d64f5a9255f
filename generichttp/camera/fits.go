package camera

import (
	"io"

	"github.com/astrogo/fitsio"

	"github.com/nasa-jpl/idslab/camera"
)

// WriteFits streams a single frame as a fits file to w.  16 bit frames are
// stored as int16 with BZERO 32768, the FITS convention for unsigned data.
func WriteFits(w io.Writer, metadata []fitsio.Card, f *camera.Frame) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	dims := []int{f.Width, f.Height}

	var (
		im   fitsio.Image
		data interface{}
	)
	if f.U8 != nil {
		im = fitsio.NewImage(8, dims)
		data = f.U8
	} else {
		metadata = append(metadata, fitsio.Card{Name: "BZERO", Value: 32768}, fitsio.Card{Name: "BSCALE", Value: 1.0})
		im = fitsio.NewImage(16, dims)
		ints := make([]int16, len(f.U16))
		for idx, v := range f.U16 {
			ints[idx] = int16(int32(v) - 32768)
		}
		data = ints
	}
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	err = im.Write(data)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
