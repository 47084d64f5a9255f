/*Package ueye describes the boundary between this module and the IDS uEye
driver library.

The Driver interface has one method per driver call used by package ids.
Status codes returned by the driver are converted into DRVError values by
Error, which returns nil for benign codes.  Mock is a software simulation of
a camera that satisfies Driver and is used by the tests and by ueye-http
when no hardware is present.
*/
package ueye

import "strconv"

// Handle is the camera handle (HIDS) returned by Open
type Handle uint32

// DeviceID is the internal device ID generated by the driver depending on
// the order of connection.  It is not persistent.  0 selects the first
// available camera.
type DeviceID uint32

// MemID identifies a block of image memory bound to a camera
type MemID int32

// BinningBits is a bitmask of BINNING_* values
type BinningBits uint32

// ColorMode is an IS_CM_* color mode
type ColorMode int

// DeviceInfo describes one entry in the camera list
type DeviceInfo struct {
	// Serial is the camera serial number
	Serial string `json:"serial"`

	// ID is the device ID
	ID DeviceID `json:"id"`

	// Model is the model name, e.g. UI-3060CP-M-GL
	Model string `json:"model"`
}

// binning bits, from ueye.h
const (
	BinningDisable BinningBits = 0x00

	Binning2xVertical    BinningBits = 0x0001
	Binning2xHorizontal  BinningBits = 0x0002
	Binning4xVertical    BinningBits = 0x0004
	Binning4xHorizontal  BinningBits = 0x0008
	Binning3xVertical    BinningBits = 0x0010
	Binning3xHorizontal  BinningBits = 0x0020
	Binning5xVertical    BinningBits = 0x0040
	Binning5xHorizontal  BinningBits = 0x0080
	Binning6xVertical    BinningBits = 0x0100
	Binning6xHorizontal  BinningBits = 0x0200
	Binning8xVertical    BinningBits = 0x0400
	Binning8xHorizontal  BinningBits = 0x0800
	Binning16xVertical   BinningBits = 0x1000
	Binning16xHorizontal BinningBits = 0x2000

	// BinningMaskVertical selects the vertical bits of a binning value
	BinningMaskVertical BinningBits = 0x1555

	// BinningMaskHorizontal selects the horizontal bits of a binning value
	BinningMaskHorizontal BinningBits = 0x2AAA
)

// color modes, from ueye.h
const (
	CMMono8       ColorMode = 6
	CMMono10      ColorMode = 34
	CMMono12      ColorMode = 26
	CMMono16      ColorMode = 28
	CMSensorRaw8  ColorMode = 11
	CMSensorRaw10 ColorMode = 33
	CMSensorRaw12 ColorMode = 27
	CMSensorRaw16 ColorMode = 29
)

// Enum behaves a bit like a C enum
type Enum map[string]int

// ColorModes maps names to the color mode values used by the SDK
var ColorModes = Enum{
	"MONO8":  int(CMMono8),
	"MONO10": int(CMMono10),
	"MONO12": int(CMMono12),
	"MONO16": int(CMMono16),
	"RAW8":   int(CMSensorRaw8),
	"RAW10":  int(CMSensorRaw10),
	"RAW12":  int(CMSensorRaw12),
	"RAW16":  int(CMSensorRaw16),
}

// ParseColorMode returns the color mode with the given name
func ParseColorMode(name string) (ColorMode, error) {
	v, ok := ColorModes[name]
	if !ok {
		return 0, ErrBadEnumIndex
	}
	return ColorMode(v), nil
}

// String returns the name of the color mode, or its numeric value if it is not known
func (m ColorMode) String() string {
	for k, v := range ColorModes {
		if v == int(m) {
			return k
		}
	}
	return "CM(" + strconv.Itoa(int(m)) + ")"
}

// Driver is the set of calls made against the uEye SDK.  Implementations
// need not be safe for concurrent use except that ForceTrigger and
// StopCapture may be called while CaptureBlocking is in progress.
type Driver interface {
	// CountDevices is is_GetNumberOfCameras
	CountDevices() (int, error)

	// ListDevices is is_GetCameraList
	ListDevices() ([]DeviceInfo, error)

	// Open is is_InitCamera with IS_USE_DEVICE_ID.  id 0 opens the first
	// available camera.
	Open(id DeviceID) (Handle, error)

	// Close is is_ExitCamera
	Close(h Handle) error

	// StandbySupported is is_CameraStatus(IS_STANDBY_SUPPORTED, IS_GET_STATUS)
	StandbySupported(h Handle) (bool, error)

	// SetStandby is is_CameraStatus(IS_STANDBY, TRUE|FALSE)
	SetStandby(h Handle, standby bool) error

	// SensorShape returns nMaxWidth, nMaxHeight from is_GetSensorInfo
	SensorShape(h Handle) (width, height int, err error)

	// ExposureRange is IS_EXPOSURE_CMD_GET_EXPOSURE_RANGE, in seconds
	ExposureRange(h Handle) (min, max, inc float64, err error)

	// WriteExposure is IS_EXPOSURE_CMD_SET_EXPOSURE, in seconds.
	// Zero means automatic exposure to the SDK.
	WriteExposure(h Handle, seconds float64) error

	// ReadExposure is IS_EXPOSURE_CMD_GET_EXPOSURE, in seconds
	ReadExposure(h Handle) (float64, error)

	// SupportedBinning is is_SetBinning(IS_GET_SUPPORTED_BINNING)
	SupportedBinning(h Handle) (BinningBits, error)

	// SetBinning is is_SetBinning
	SetBinning(h Handle, bits BinningBits) error

	// Binning is is_SetBinning(IS_GET_BINNING)
	Binning(h Handle) (BinningBits, error)

	// ColorMode is is_SetColorMode(IS_GET_COLOR_MODE).  The return value
	// shares its numeric space with the status codes.
	ColorMode(h Handle) int

	// SetColorMode is is_SetColorMode
	SetColorMode(h Handle, mode ColorMode) error

	// AllocAndBind is is_SetAllocatedImageMem followed by is_SetImageMem.
	// buf must hold at least width*height*bitsPerPixel/8 bytes and is
	// filled by the driver on capture.
	AllocAndBind(h Handle, width, height, bitsPerPixel int, buf []byte) (MemID, error)

	// ReleaseImageMemory is is_FreeImageMem
	ReleaseImageMemory(h Handle, id MemID) error

	// CaptureBlocking is is_FreezeVideo(IS_WAIT)
	CaptureBlocking(h Handle) error

	// StopCapture is is_StopLiveVideo(IS_FORCE_VIDEO_STOP)
	StopCapture(h Handle) error

	// ForceTrigger is is_ForceTrigger
	ForceTrigger(h Handle) error

	// DeviceTemperatureRaw returns infoDevHeartbeat.wTemperature from is_DeviceInfo
	DeviceTemperatureRaw(h Handle) (uint16, error)
}
