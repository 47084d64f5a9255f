/*Package camera describes a standard set of interfaces for control of cameras
and the Frame type they produce.

The interfaces are small so that HTTP wrappers can introspect which features
a camera has.  Device is the union used by the ueye-http server.
*/
package camera

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/astrogo/fitsio"
)

// Binning encapsulates information about pixel addition on camera
type Binning struct {
	// H is the horizontal binning factor
	H int `json:"h"`

	// V is the vertical binning factor
	V int `json:"v"`
}

// HxV returns the binning as a string such as "2x2"
func (b Binning) HxV() string {
	return fmt.Sprintf("%dx%d", b.H, b.V)
}

// ParseBinning converts a string of the form "HxV" to a Binning
func ParseBinning(s string) (Binning, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return Binning{}, fmt.Errorf("binning %q is not of the form HxV", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Binning{}, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Binning{}, err
	}
	return Binning{H: h, V: v}, nil
}

// SensorShape is the native resolution of a sensor
type SensorShape struct {
	// Width is the width in pixels
	Width int `json:"width"`

	// Height is the height in pixels
	Height int `json:"height"`
}

// ExposureRange is the legal domain of exposure times, in seconds
type ExposureRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Increment float64 `json:"inc"`
}

// ProbeAttempt records one color mode tried while probing
type ProbeAttempt struct {
	Mode    string `json:"mode"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// Enabler can be put into and out of a low power state
type Enabler interface {
	// Enable leaves standby
	Enable() error

	// Disable enters standby
	Disable() error

	// GetEnabled returns true if the camera is not in standby
	GetEnabled() (bool, error)
}

// PictureTaker describes an interface to a camera which can capture images
type PictureTaker interface {
	// Acquire captures one frame, blocking until it is complete
	Acquire() (*Frame, error)

	// SetExposureTime sets the exposure time
	SetExposureTime(time.Duration) error

	// GetExposureTime gets the exposure time
	GetExposureTime() (time.Duration, error)

	// GetExposureRange gets the legal exposure times
	GetExposureRange() (ExposureRange, error)

	// SetBinning sets the binning option of the camera
	SetBinning(Binning) error

	// GetBinning returns the binning option of the camera
	GetBinning() (Binning, error)

	// GetSensorShape returns the size of frames
	GetSensorShape() (SensorShape, error)

	// GetPixelDepth returns 8 or 16, the element width of frames
	GetPixelDepth() (int, error)
}

// Aborter can cancel an acquisition in progress
type Aborter interface {
	// Abort cancels a pending Acquire.  It must be safe to call while
	// Acquire is blocked in another goroutine.
	Abort() error
}

// ContextAcquirer can abandon an acquisition when a context is done
type ContextAcquirer interface {
	AcquireContext(context.Context) (*Frame, error)
}

// Thermometer reports a temperature in Celcius
type Thermometer interface {
	GetTemperature() (float64, error)
}

// ModeProber tries a list of named pixel formats and keeps the first the
// camera accepts
type ModeProber interface {
	ProbeMode(names []string) (string, []ProbeAttempt, error)
}

// MetadataMaker can produce an array of FITS cards
type MetadataMaker interface {
	// CollectHeaderMetadata produces an array of FITS cards
	CollectHeaderMetadata() []fitsio.Card
}

// Device is everything the HTTP camera wrapper knows how to use
type Device interface {
	Enabler
	PictureTaker
	Aborter
	Thermometer
	ModeProber
	MetadataMaker
}
