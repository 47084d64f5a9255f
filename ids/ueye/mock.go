package ueye

import (
	"encoding/binary"
	"math"
	"sync"
)

// Mock is a simulated uEye camera.  Its exported fields may be changed
// between calls to inject faults; they are read under the lock.
type Mock struct {
	sync.Mutex

	// Cameras is the camera list
	Cameras []DeviceInfo

	// Width and Height are the sensor size
	Width, Height int

	// MinExposure, MaxExposure and ExposureIncrement are in seconds
	MinExposure, MaxExposure, ExposureIncrement float64

	// RangeForBinning, if not nil, overrides the exposure range reported
	// for a given binning value
	RangeForBinning func(BinningBits) (min, max, inc float64)

	// SupportedBinningBits is what SupportedBinning returns
	SupportedBinningBits BinningBits

	// Mode is the value returned by ColorMode; it need not be a valid color mode
	Mode int

	// AcceptedModes are the modes SetColorMode succeeds for.  Others return IS_INVALID_MODE
	AcceptedModes []ColorMode

	// ModeStatus overrides the status SetColorMode returns for a mode
	ModeStatus map[ColorMode]Status

	// RawTemperature is the packed temperature word
	RawTemperature uint16

	// StandbyUnsupported makes StandbySupported return false
	StandbyUnsupported bool

	// RejectStandby makes SetStandby fail
	RejectStandby bool

	// RejectBinning makes SetBinning fail
	RejectBinning bool

	// FailBind makes AllocAndBind fail
	FailBind bool

	// FailCapture makes CaptureBlocking fail
	FailCapture bool

	// WaitForTrigger makes CaptureBlocking wait for ForceTrigger, like a
	// camera in software trigger mode
	WaitForTrigger bool

	open     map[Handle]bool
	standby  bool
	exposure float64
	binning  BinningBits

	nextMem   MemID
	boundMem  MemID
	boundBuf  []byte
	boundBits int

	capturing bool
	trigger   chan struct{}
	started   chan struct{}

	calls map[string]int
}

// NewMock returns a mock with one 1280x1024 MONO8 camera that supports
// 2x and 4x binning and standby
func NewMock() *Mock {
	return &Mock{
		Cameras:              []DeviceInfo{{Serial: "4103000001", ID: 1, Model: "UI-3060CP-M-GL"}},
		Width:                1280,
		Height:               1024,
		MinExposure:          1e-5,
		MaxExposure:          2,
		ExposureIncrement:    1e-5,
		SupportedBinningBits: Binning2xHorizontal | Binning2xVertical | Binning4xHorizontal | Binning4xVertical,
		Mode:                 int(CMMono8),
		AcceptedModes:        []ColorMode{CMMono8, CMMono12, CMMono16, CMSensorRaw8, CMSensorRaw12},
		RawTemperature:       0x0258, // 37.5 C
		open:                 make(map[Handle]bool),
		exposure:             10e-3,
		trigger:              make(chan struct{}, 1),
		started:              make(chan struct{}, 1),
		calls:                make(map[string]int),
	}
}

// Calls returns the number of times the named Driver method has been called
func (m *Mock) Calls(method string) int {
	m.Lock()
	defer m.Unlock()
	return m.calls[method]
}

// Started receives once each time a capture begins waiting for a trigger
func (m *Mock) Started() <-chan struct{} {
	return m.started
}

// Bound returns true if image memory is currently bound
func (m *Mock) Bound() bool {
	m.Lock()
	defer m.Unlock()
	return m.boundBuf != nil
}

// Standby returns true if the camera is in standby
func (m *Mock) Standby() bool {
	m.Lock()
	defer m.Unlock()
	return m.standby
}

// check counts the call and validates the handle.  The lock must be held.
func (m *Mock) check(method string, h Handle) error {
	m.calls[method]++
	if !m.open[h] {
		return Error(InvalidCameraHandle)
	}
	return nil
}

// awake is check plus a standby test
func (m *Mock) awake(method string, h Handle) error {
	if err := m.check(method, h); err != nil {
		return err
	}
	if m.standby {
		return Error(NoSuccess)
	}
	return nil
}

func (m *Mock) exposureRange() (float64, float64, float64) {
	if m.RangeForBinning != nil {
		return m.RangeForBinning(m.binning)
	}
	return m.MinExposure, m.MaxExposure, m.ExposureIncrement
}

// CountDevices returns len(Cameras)
func (m *Mock) CountDevices() (int, error) {
	m.Lock()
	defer m.Unlock()
	m.calls["CountDevices"]++
	return len(m.Cameras), nil
}

// ListDevices returns a copy of Cameras
func (m *Mock) ListDevices() ([]DeviceInfo, error) {
	m.Lock()
	defer m.Unlock()
	m.calls["ListDevices"]++
	out := make([]DeviceInfo, len(m.Cameras))
	copy(out, m.Cameras)
	return out, nil
}

// Open opens a camera.  The handle is the device ID.
func (m *Mock) Open(id DeviceID) (Handle, error) {
	m.Lock()
	defer m.Unlock()
	m.calls["Open"]++
	for _, c := range m.Cameras {
		h := Handle(c.ID)
		if id == 0 && !m.open[h] || id == c.ID {
			if m.open[h] {
				return 0, Error(AllDevicesBusy)
			}
			m.open[h] = true
			m.standby = false
			return h, nil
		}
	}
	if id == 0 {
		return 0, Error(CantOpenDevice)
	}
	return 0, Error(InvalidDeviceID)
}

// Close closes a camera
func (m *Mock) Close(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.check("Close", h); err != nil {
		return err
	}
	delete(m.open, h)
	m.boundBuf = nil
	return nil
}

// StandbySupported returns !StandbyUnsupported
func (m *Mock) StandbySupported(h Handle) (bool, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check("StandbySupported", h); err != nil {
		return false, err
	}
	return !m.StandbyUnsupported, nil
}

// SetStandby enters or leaves standby
func (m *Mock) SetStandby(h Handle, standby bool) error {
	m.Lock()
	defer m.Unlock()
	if err := m.check("SetStandby", h); err != nil {
		return err
	}
	if m.StandbyUnsupported {
		return Error(NotSupported)
	}
	if m.RejectStandby {
		return Error(NoSuccess)
	}
	m.standby = standby
	return nil
}

// SensorShape returns Width, Height
func (m *Mock) SensorShape(h Handle) (int, int, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("SensorShape", h); err != nil {
		return 0, 0, err
	}
	return m.Width, m.Height, nil
}

// ExposureRange returns the exposure range for the current binning
func (m *Mock) ExposureRange(h Handle) (float64, float64, float64, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("ExposureRange", h); err != nil {
		return 0, 0, 0, err
	}
	min, max, inc := m.exposureRange()
	return min, max, inc, nil
}

// WriteExposure sets the exposure, rounded to the increment
func (m *Mock) WriteExposure(h Handle, seconds float64) error {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("WriteExposure", h); err != nil {
		return err
	}
	min, max, inc := m.exposureRange()
	if seconds <= 0 || seconds < min || seconds > max {
		return Error(InvalidExposureTime)
	}
	steps := math.Round((seconds - min) / inc)
	m.exposure = math.Min(min+steps*inc, max)
	return nil
}

// ReadExposure returns the exposure
func (m *Mock) ReadExposure(h Handle) (float64, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("ReadExposure", h); err != nil {
		return 0, err
	}
	return m.exposure, nil
}

// SupportedBinning returns SupportedBinningBits
func (m *Mock) SupportedBinning(h Handle) (BinningBits, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("SupportedBinning", h); err != nil {
		return 0, err
	}
	return m.SupportedBinningBits, nil
}

// SetBinning sets the binning; bits outside SupportedBinningBits are rejected
func (m *Mock) SetBinning(h Handle, bits BinningBits) error {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("SetBinning", h); err != nil {
		return err
	}
	if m.RejectBinning || bits&m.SupportedBinningBits != bits {
		return Error(InvalidParameter)
	}
	m.binning = bits
	return nil
}

// Binning returns the binning
func (m *Mock) Binning(h Handle) (BinningBits, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("Binning", h); err != nil {
		return 0, err
	}
	return m.binning, nil
}

// ColorMode returns Mode, or a status code if the handle is bad
func (m *Mock) ColorMode(h Handle) int {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("ColorMode", h); err != nil {
		return int(err.(DRVError))
	}
	return m.Mode
}

// SetColorMode sets Mode if the mode is one of AcceptedModes
func (m *Mock) SetColorMode(h Handle, mode ColorMode) error {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("SetColorMode", h); err != nil {
		return err
	}
	if st, ok := m.ModeStatus[mode]; ok {
		if err := Error(st); err != nil {
			return err
		}
	}
	for _, a := range m.AcceptedModes {
		if a == mode {
			m.Mode = int(mode)
			return nil
		}
	}
	return Error(InvalidMode)
}

// AllocAndBind binds buf as the image memory
func (m *Mock) AllocAndBind(h Handle, width, height, bitsPerPixel int, buf []byte) (MemID, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.awake("AllocAndBind", h); err != nil {
		return 0, err
	}
	if m.FailBind {
		return 0, Error(OutOfMemory)
	}
	if width <= 0 || height <= 0 || bitsPerPixel%8 != 0 || len(buf) < width*height*bitsPerPixel/8 {
		return 0, Error(InvalidParameter)
	}
	m.nextMem++
	m.boundMem = m.nextMem
	m.boundBuf = buf[:width*height*bitsPerPixel/8]
	m.boundBits = bitsPerPixel
	return m.boundMem, nil
}

// ReleaseImageMemory unbinds the image memory
func (m *Mock) ReleaseImageMemory(h Handle, id MemID) error {
	m.Lock()
	defer m.Unlock()
	if err := m.check("ReleaseImageMemory", h); err != nil {
		return err
	}
	if m.boundBuf == nil || id != m.boundMem {
		return Error(InvalidMemoryPointer)
	}
	m.boundBuf = nil
	return nil
}

// CaptureBlocking fills the bound memory with a ramp.  If WaitForTrigger
// is set it does not return until ForceTrigger is called.
func (m *Mock) CaptureBlocking(h Handle) error {
	m.Lock()
	if err := m.awake("CaptureBlocking", h); err != nil {
		m.Unlock()
		return err
	}
	if m.boundBuf == nil {
		m.Unlock()
		return Error(NoActiveImgMem)
	}
	if m.FailCapture {
		m.Unlock()
		return Error(TransferError)
	}
	wait := m.WaitForTrigger
	m.capturing = true
	m.Unlock()

	if wait {
		select {
		case m.started <- struct{}{}:
		default:
		}
		<-m.trigger
	}

	m.Lock()
	defer m.Unlock()
	m.capturing = false
	if m.boundBuf == nil {
		return Error(NoActiveImgMem)
	}
	buf := m.boundBuf
	switch m.boundBits {
	case 8:
		for i := range buf {
			buf[i] = byte(i)
		}
	default:
		stride := m.boundBits / 8
		for i := 0; i*stride+1 < len(buf); i++ {
			binary.NativeEndian.PutUint16(buf[i*stride:], uint16(i))
		}
	}
	return nil
}

// StopCapture stops a capture that has not begun exposing.  It is a no-op otherwise.
func (m *Mock) StopCapture(h Handle) error {
	m.Lock()
	defer m.Unlock()
	return m.check("StopCapture", h)
}

// ForceTrigger releases a capture waiting for a trigger.  A trigger with
// no capture waiting is dropped.
func (m *Mock) ForceTrigger(h Handle) error {
	m.Lock()
	defer m.Unlock()
	if err := m.check("ForceTrigger", h); err != nil {
		return err
	}
	if m.capturing {
		select {
		case m.trigger <- struct{}{}:
		default:
		}
	}
	return nil
}

// DeviceTemperatureRaw returns RawTemperature.  It works in standby.
func (m *Mock) DeviceTemperatureRaw(h Handle) (uint16, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check("DeviceTemperatureRaw", h); err != nil {
		return 0, err
	}
	return m.RawTemperature, nil
}
