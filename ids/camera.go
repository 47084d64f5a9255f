/*Package ids controls IDS uEye cameras.

A Camera owns one driver handle from Open until Close.  It tracks the power
state, caches the exposure time the hardware confirmed, validates binning
against both a fixed table and the camera's supported modes, and captures
single frames into freshly allocated buffers.

Camera does no locking.  All calls must come from one goroutine at a time,
except Abort, which may be called while Acquire is blocked.  camera.Serial
provides that discipline for servers.
*/
package ids

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/astrogo/fitsio"
	"go.uber.org/zap"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/ids/ueye"
	"github.com/nasa-jpl/idslab/util"
)

// WRAPVER is the version of the header format written by CollectHeaderMetadata
const WRAPVER = "1"

// AutoSerial selects the first available camera
const AutoSerial = "auto"

// PowerState is Enabled or Standby
type PowerState int

const (
	// Enabled is the hardware default after Open
	Enabled PowerState = iota

	// Standby is the low power state
	Standby
)

func (p PowerState) String() string {
	switch p {
	case Enabled:
		return "Enabled"
	case Standby:
		return "Standby"
	default:
		return fmt.Sprintf("PowerState(%d)", int(p))
	}
}

// Option configures a Camera at Open
type Option func(*Camera)

// WithLogger sets the logger.  The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Camera) {
		c.log = l
	}
}

// Camera is an open uEye camera
type Camera struct {
	drv    ueye.Driver
	handle ueye.Handle

	// open is read by Abort, which runs concurrently with other methods
	open atomic.Bool

	serial string
	model  string

	state PowerState
	shape camera.SensorShape
	rng   camera.ExposureRange

	// texp is the hardware confirmed exposure time, seconds
	texp float64

	// inflight is true from the start of an acquisition until it returns,
	// pending only while CaptureBlocking is in progress
	inflight atomic.Bool
	pending  atomic.Bool
	aborted  atomic.Bool

	log *zap.Logger
}

// Open opens the camera with the given serial number, or the first
// available camera if serial is "" or AutoSerial.  The handle is released if
// any part of initialization fails.
func Open(drv ueye.Driver, serial string, opts ...Option) (*Camera, error) {
	const op = "Open"
	c := &Camera{drv: drv, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}

	n, err := drv.CountDevices()
	if err != nil {
		return nil, newError(op, ErrHardwareRejected, nil, err, "failed to get number of cameras")
	}
	if n == 0 {
		return nil, newError(op, ErrNotFound, nil, nil, "no cameras found at all")
	}

	list, err := drv.ListDevices()
	if err != nil {
		return nil, newError(op, ErrHardwareRejected, nil, err, "failed to get camera list")
	}
	var id ueye.DeviceID
	if serial != "" && serial != AutoSerial {
		found := false
		for _, d := range list {
			if d.Serial == serial {
				id = d.ID
				found = true
				break
			}
		}
		if !found {
			return nil, newError(op, ErrNotFound, nil, nil, fmt.Sprintf("no camera found with serial number %q", serial))
		}
	}

	h, err := drv.Open(id)
	if err != nil {
		return nil, newError(op, ErrHardwareRejected, nil, err, "failed to init camera")
	}
	c.handle = h
	c.open.Store(true)
	c.state = Enabled
	for _, d := range list {
		if ueye.Handle(d.ID) == h {
			c.serial, c.model = d.Serial, d.Model
			break
		}
	}

	if err := c.readSessionState(op); err != nil {
		if cerr := drv.Close(h); cerr != nil {
			c.log.Warn("failed to release camera after failed init", zap.Error(cerr))
		}
		c.open.Store(false)
		return nil, err
	}
	c.log.Info("opened camera",
		zap.String("serial", c.serial),
		zap.String("model", c.model),
		zap.Int("width", c.shape.Width),
		zap.Int("height", c.shape.Height),
		zap.Float64("exposure", c.texp))
	return c, nil
}

// readSessionState reads the sensor shape, exposure range and exposure time
func (c *Camera) readSessionState(op string) error {
	w, h, err := c.drv.SensorShape(c.handle)
	if err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to read the sensor information")
	}
	if w <= 0 || h <= 0 {
		return newError(op, ErrHardwareRejected, nil, nil, fmt.Sprintf("sensor reported an empty shape %dx%d", w, h))
	}
	c.shape = camera.SensorShape{Width: w, Height: h}

	rng, err := c.readExposureRange(op)
	if err != nil {
		return err
	}
	c.rng = rng

	texp, err := c.drv.ReadExposure(c.handle)
	if err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to read exposure time")
	}
	c.texp = texp
	return nil
}

func (c *Camera) readExposureRange(op string) (camera.ExposureRange, error) {
	min, max, inc, err := c.drv.ExposureRange(c.handle)
	if err != nil {
		return camera.ExposureRange{}, newError(op, ErrHardwareRejected, nil, err, "failed to read exposure time range")
	}
	if math.IsNaN(min) || math.IsNaN(max) || min <= 0 || min > max || !(inc > 0) {
		return camera.ExposureRange{}, newError(op, ErrHardwareRejected, nil, nil,
			fmt.Sprintf("camera reported an invalid exposure range [%g, %g] step %g", min, max, inc))
	}
	return camera.ExposureRange{Min: min, Max: max, Increment: inc}, nil
}

// Close releases the handle.  The Camera cannot be used afterwards, even
// if the driver reports an error.
func (c *Camera) Close() error {
	const op = "Close"
	if err := c.checkOpen(op); err != nil {
		return err
	}
	c.open.Store(false)
	if err := c.drv.Close(c.handle); err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to shutdown camera")
	}
	c.log.Info("closed camera", zap.String("serial", c.serial))
	return nil
}

func (c *Camera) checkOpen(op string) error {
	if !c.open.Load() {
		return newError(op, ErrInvalidState, ErrNotInitialized, nil, "")
	}
	return nil
}

func (c *Camera) checkEnabled(op string) error {
	if err := c.checkOpen(op); err != nil {
		return err
	}
	if c.state != Enabled {
		return newError(op, ErrInvalidState, ErrStandby, nil, "")
	}
	return nil
}

// SerialNumber returns the serial number of the camera, if the driver listed it
func (c *Camera) SerialNumber() string {
	return c.serial
}

// Model returns the model name of the camera, if the driver listed it
func (c *Camera) Model() string {
	return c.model
}

// GetSensorShape returns the sensor shape read at Open
func (c *Camera) GetSensorShape() (camera.SensorShape, error) {
	if err := c.checkOpen("GetSensorShape"); err != nil {
		return camera.SensorShape{}, err
	}
	return c.shape, nil
}

// GetTemperature returns the device temperature in Celcius.  It works in standby.
func (c *Camera) GetTemperature() (float64, error) {
	const op = "GetTemperature"
	if err := c.checkOpen(op); err != nil {
		return 0, err
	}
	raw, err := c.drv.DeviceTemperatureRaw(c.handle)
	if err != nil {
		return 0, newError(op, ErrHardwareRejected, nil, err, "failed to get device info")
	}
	return DecodeTemperature(raw), nil
}

// CollectHeaderMetadata returns FITS cards describing the camera state
func (c *Camera) CollectHeaderMetadata() []fitsio.Card {
	// plow through errors, no need to bail early
	var errs []error
	texp, err := c.GetExposureTime()
	errs = append(errs, err)
	bin, err := c.GetBinning()
	errs = append(errs, err)
	depth, err := c.GetPixelDepth()
	errs = append(errs, err)
	temp, err := c.GetTemperature()
	errs = append(errs, err)

	var metaerr string
	if err := util.MergeErrors(errs); err != nil {
		metaerr = err.Error()
	}
	now := time.Now()
	ts := fmt.Sprintf("%d-%02d-%02dT%02d:%02d:%02d",
		now.Year(),
		now.Month(),
		now.Day(),
		now.Hour(),
		now.Minute(),
		now.Second())

	return []fitsio.Card{
		// header to the header
		{Name: "HDRVER", Value: "UEYE-1", Comment: "header version"},
		{Name: "WRAPVER", Value: WRAPVER, Comment: "server library code version"},
		{Name: "METAERR", Value: metaerr, Comment: "error encountered gathering metadata"},
		{Name: "CAMMODL", Value: c.model, Comment: "camera model"},
		{Name: "CAMSN", Value: c.serial, Comment: "camera serial number"},
		{Name: "BITDEPTH", Value: depth, Comment: "frame element width, bits"},

		// timestamp
		{Name: "DATE", Value: ts},

		// exposure parameters
		{Name: "EXPTIME", Value: texp.Seconds(), Comment: "exposure time, seconds"},

		// thermal parameters
		{Name: "TEMPER", Value: temp, Comment: "device temperature (Celcius)"},

		// geometry
		{Name: "SENSW", Value: c.shape.Width, Comment: "sensor width, px"},
		{Name: "SENSH", Value: c.shape.Height, Comment: "sensor height, px"},
		{Name: "BINNING", Value: bin.HxV(), Comment: "binning, HxV"}}
}
