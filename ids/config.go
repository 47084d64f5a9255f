package ids

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/ids/ueye"
	"github.com/nasa-jpl/idslab/util"
)

// SetExposure sets the exposure time in seconds.  Requests outside the
// exposure range are clamped into it.  The cached value is what the camera
// reports after the write, which may differ from the request by up to the
// increment.
func (c *Camera) SetExposure(secs float64) error {
	return c.setExposure("SetExposure", secs)
}

// GetExposure returns the cached exposure time in seconds.  The camera is
// not queried.
func (c *Camera) GetExposure() (float64, error) {
	if err := c.checkEnabled("GetExposure"); err != nil {
		return 0, err
	}
	return c.texp, nil
}

// SetExposureTime is SetExposure for a time.Duration
func (c *Camera) SetExposureTime(d time.Duration) error {
	return c.setExposure("SetExposureTime", d.Seconds())
}

// GetExposureTime is GetExposure as a time.Duration
func (c *Camera) GetExposureTime() (time.Duration, error) {
	if err := c.checkEnabled("GetExposureTime"); err != nil {
		return 0, err
	}
	return util.SecsToDuration(c.texp), nil
}

// GetExposureRange returns the exposure range read at Open or after the
// last binning change
func (c *Camera) GetExposureRange() (camera.ExposureRange, error) {
	if err := c.checkEnabled("GetExposureRange"); err != nil {
		return camera.ExposureRange{}, err
	}
	return c.rng, nil
}

func (c *Camera) setExposure(op string, secs float64) error {
	if err := c.checkEnabled(op); err != nil {
		return err
	}
	if math.IsNaN(secs) {
		return newError(op, ErrInvalidArgument, nil, nil, "exposure time is NaN")
	}
	clamped := util.Clamp(secs, c.rng.Min, c.rng.Max)
	if clamped == 0 {
		// zero asks the driver for automatic exposure
		return newError(op, ErrInvalidArgument, nil, nil, "exposure time clamped to zero")
	}
	if clamped != secs {
		c.log.Debug("clamped exposure time",
			zap.Float64("requested", secs),
			zap.Float64("clamped", clamped))
	}
	if err := c.drv.WriteExposure(c.handle, clamped); err != nil {
		return newError(op, ErrHardwareRejected, nil, err, fmt.Sprintf("failed to set exposure time to %g s", clamped))
	}
	readback, err := c.drv.ReadExposure(c.handle)
	if err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to read exposure time")
	}
	c.texp = readback
	return nil
}

// SetBinning sets the binning mode.  The mode must be in the binning table
// and supported by the camera; both failures return ErrNotSupported.  The
// exposure range is re-read and the cached exposure time written again.
//
// If the range cannot be re-read after the camera accepted the binning, the
// binning stays applied, the exposure is written again against the previous
// range, and the range error is returned.
func (c *Camera) SetBinning(b camera.Binning) error {
	const op = "SetBinning"
	if err := c.checkEnabled(op); err != nil {
		return err
	}
	bits, err := BinningBits(b)
	if err != nil {
		return newError(op, ErrNotSupported, err, nil, "unsupported binning mode "+b.HxV())
	}
	supported, err := c.drv.SupportedBinning(c.handle)
	if err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to query supported binning")
	}
	if supported&bits != bits {
		return newError(op, ErrNotSupported, nil, nil,
			fmt.Sprintf("unsupported binning mode %s (camera supports %#x)", b.HxV(), uint32(supported)))
	}
	if err := c.drv.SetBinning(c.handle, bits); err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to set binning "+b.HxV())
	}

	rng, err := c.readExposureRange(op)
	if err != nil {
		// the binning is applied; keep the exposure valid against the old range
		return util.MergeErrors([]error{err, c.setExposure(op, c.texp)})
	}
	c.rng = rng
	c.log.Debug("binning changed",
		zap.String("binning", b.HxV()),
		zap.Float64("minExposure", rng.Min),
		zap.Float64("maxExposure", rng.Max))
	return c.setExposure(op, c.texp)
}

// GetBinning reads the binning mode from the camera
func (c *Camera) GetBinning() (camera.Binning, error) {
	const op = "GetBinning"
	if err := c.checkEnabled(op); err != nil {
		return camera.Binning{}, err
	}
	bits, err := c.drv.Binning(c.handle)
	if err != nil {
		return camera.Binning{}, newError(op, ErrHardwareRejected, nil, err, "failed to get binning")
	}
	b, err := DecodeBinning(bits)
	if err != nil {
		return camera.Binning{}, newError(op, ErrInvalidArgument, err, nil, fmt.Sprintf("camera reported unknown binning %#x", uint32(bits)))
	}
	return b, nil
}

// GetPixelDepth returns the frame element width for the active color mode
func (c *Camera) GetPixelDepth() (int, error) {
	const op = "GetPixelDepth"
	if err := c.checkEnabled(op); err != nil {
		return 0, err
	}
	return c.pixelDepth(op)
}

func (c *Camera) pixelDepth(op string) (int, error) {
	code := c.drv.ColorMode(c.handle)
	bits, err := BitsPerPixel(ueye.ColorMode(code))
	if err != nil {
		detail := fmt.Sprintf("unrecognized pixel format %d", code)
		// the color mode query shares its numbers with status codes
		if de := ueye.DRVError(code); de.Known() {
			detail += " (or driver status " + de.Error() + ")"
		}
		return 0, newError(op, ErrInvalidArgument, ErrUnrecognizedPixelFormat, nil, detail)
	}
	return bits, nil
}

// ProbeOutcome is the result of trying one color mode
type ProbeOutcome int

const (
	// ProbeAccepted means the camera is now in the mode
	ProbeAccepted ProbeOutcome = iota

	// ProbeRejected means the driver failed the request for a reason other
	// than the mode being unsupported
	ProbeRejected

	// ProbeUnsupported means the sensor or this package does not support the mode
	ProbeUnsupported
)

func (p ProbeOutcome) String() string {
	switch p {
	case ProbeAccepted:
		return "accepted"
	case ProbeRejected:
		return "rejected"
	case ProbeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ProbeOutcome(%d)", int(p))
	}
}

// ProbeResult records one attempt made by ProbeColorMode
type ProbeResult struct {
	Mode    ueye.ColorMode
	Outcome ProbeOutcome
	Err     error
}

// DefaultProbeOrder is the order in which ProbeColorMode tries modes when
// none are given, deepest first
var DefaultProbeOrder = []ueye.ColorMode{
	ueye.CMSensorRaw16,
	ueye.CMSensorRaw12,
	ueye.CMSensorRaw10,
	ueye.CMSensorRaw8,
}

// ProbeColorMode tries each candidate in order and stops at the first the
// camera accepts.  The driver cannot list the modes a sensor supports, so
// this is the only way to find one.  It fails with ErrNotSupported only if
// no candidate is accepted.
func (c *Camera) ProbeColorMode(candidates ...ueye.ColorMode) (ueye.ColorMode, []ProbeResult, error) {
	const op = "ProbeColorMode"
	if err := c.checkEnabled(op); err != nil {
		return 0, nil, err
	}
	if len(candidates) == 0 {
		candidates = DefaultProbeOrder
	}
	results := make([]ProbeResult, 0, len(candidates))
	var errs []error
	for _, mode := range candidates {
		if _, err := BitsPerPixel(mode); err != nil {
			results = append(results, ProbeResult{Mode: mode, Outcome: ProbeUnsupported, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", mode, err))
			continue
		}
		err := c.drv.SetColorMode(c.handle, mode)
		switch {
		case err == nil:
			results = append(results, ProbeResult{Mode: mode, Outcome: ProbeAccepted})
			c.log.Info("color mode set", zap.Stringer("mode", mode))
			return mode, results, nil
		case ueye.IsStatus(err, ueye.InvalidMode, ueye.InvalidColorMode, ueye.NotSupported):
			results = append(results, ProbeResult{Mode: mode, Outcome: ProbeUnsupported, Err: err})
		default:
			results = append(results, ProbeResult{Mode: mode, Outcome: ProbeRejected, Err: err})
		}
		errs = append(errs, fmt.Errorf("%s: %w", mode, err))
		c.log.Debug("color mode not accepted", zap.Stringer("mode", mode), zap.Error(err))
	}
	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.String()
	}
	return 0, results, newError(op, ErrNotSupported, nil, errors.Join(errs...),
		"no color mode of interest is supported, tried "+strings.Join(names, ", "))
}

// ProbeMode is ProbeColorMode with modes given by name, for use over HTTP
func (c *Camera) ProbeMode(names []string) (string, []camera.ProbeAttempt, error) {
	names = util.UniqueString(util.UpperAll(names))
	modes := make([]ueye.ColorMode, 0, len(names))
	for _, n := range names {
		m, err := ueye.ParseColorMode(n)
		if err != nil {
			return "", nil, newError("ProbeMode", ErrInvalidArgument, err, nil, fmt.Sprintf("unknown color mode %q", n))
		}
		modes = append(modes, m)
	}
	mode, results, err := c.ProbeColorMode(modes...)
	attempts := make([]camera.ProbeAttempt, len(results))
	for i, r := range results {
		attempts[i] = camera.ProbeAttempt{Mode: r.Mode.String(), Outcome: r.Outcome.String()}
		if r.Err != nil {
			attempts[i].Error = r.Err.Error()
		}
	}
	if err != nil {
		return "", attempts, err
	}
	return mode.String(), attempts, nil
}
