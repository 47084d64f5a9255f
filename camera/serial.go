package camera

import (
	"context"
	"sync"
	"time"

	"github.com/astrogo/fitsio"
)

// Serial wraps a Device so that calls from many goroutines reach it one at
// a time.  Abort bypasses the lock so that it can release an Acquire which
// holds it.
type Serial struct {
	mu  sync.Mutex
	dev Device
}

// NewSerial returns a Serial wrapping d
func NewSerial(d Device) *Serial {
	return &Serial{dev: d}
}

// Enable calls Enable on the device
func (s *Serial) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Enable()
}

// Disable calls Disable on the device
func (s *Serial) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Disable()
}

// GetEnabled calls GetEnabled on the device
func (s *Serial) GetEnabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetEnabled()
}

// Acquire calls Acquire on the device
func (s *Serial) Acquire() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Acquire()
}

// AcquireContext calls AcquireContext on the device if it has one, otherwise Acquire
func (s *Serial) AcquireContext(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ca, ok := s.dev.(ContextAcquirer); ok {
		return ca.AcquireContext(ctx)
	}
	return s.dev.Acquire()
}

// SetExposureTime calls SetExposureTime on the device
func (s *Serial) SetExposureTime(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.SetExposureTime(d)
}

// GetExposureTime calls GetExposureTime on the device
func (s *Serial) GetExposureTime() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetExposureTime()
}

// GetExposureRange calls GetExposureRange on the device
func (s *Serial) GetExposureRange() (ExposureRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetExposureRange()
}

// SetBinning calls SetBinning on the device
func (s *Serial) SetBinning(b Binning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.SetBinning(b)
}

// GetBinning calls GetBinning on the device
func (s *Serial) GetBinning() (Binning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetBinning()
}

// GetSensorShape calls GetSensorShape on the device
func (s *Serial) GetSensorShape() (SensorShape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetSensorShape()
}

// GetPixelDepth calls GetPixelDepth on the device
func (s *Serial) GetPixelDepth() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetPixelDepth()
}

// GetTemperature calls GetTemperature on the device
func (s *Serial) GetTemperature() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.GetTemperature()
}

// ProbeMode calls ProbeMode on the device
func (s *Serial) ProbeMode(names []string) (string, []ProbeAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.ProbeMode(names)
}

// CollectHeaderMetadata calls CollectHeaderMetadata on the device
func (s *Serial) CollectHeaderMetadata() []fitsio.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.CollectHeaderMetadata()
}

// Abort calls Abort on the device without waiting for the lock
func (s *Serial) Abort() error {
	return s.dev.Abort()
}
