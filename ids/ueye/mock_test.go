package ueye

import (
	"encoding/binary"
	"testing"
)

var _ Driver = (*Mock)(nil)

func openMock(t *testing.T) (*Mock, Handle) {
	t.Helper()
	m := NewMock()
	h, err := m.Open(0)
	if err != nil {
		t.Fatal(err)
	}
	return m, h
}

func TestMockOpenTwiceIsBusy(t *testing.T) {
	m, _ := openMock(t)
	_, err := m.Open(m.Cameras[0].ID)
	if !IsStatus(err, AllDevicesBusy) {
		t.Errorf("expected IS_ALL_DEVICES_BUSY, got %v", err)
	}
	_, err = m.Open(99)
	if !IsStatus(err, InvalidDeviceID) {
		t.Errorf("expected IS_INVALID_DEVICE_ID, got %v", err)
	}
}

func TestMockExposureQuantized(t *testing.T) {
	m, h := openMock(t)
	m.ExposureIncrement = 1e-3
	if err := m.WriteExposure(h, 0.0123); err != nil {
		t.Fatal(err)
	}
	v, _ := m.ReadExposure(h)
	if v < 0.0119 || v > 0.0121 {
		t.Errorf("expected exposure rounded to 12 ms, got %v", v)
	}
	if err := m.WriteExposure(h, 0); !IsStatus(err, InvalidExposureTime) {
		t.Errorf("expected zero exposure to be rejected, got %v", err)
	}
}

func TestMockStandbyBlocksConfiguration(t *testing.T) {
	m, h := openMock(t)
	if err := m.SetStandby(h, true); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadExposure(h); err == nil {
		t.Error("expected ReadExposure to fail in standby")
	}
	if _, err := m.DeviceTemperatureRaw(h); err != nil {
		t.Errorf("expected temperature to be readable in standby, got %v", err)
	}
}

func TestMockCaptureFills16(t *testing.T) {
	m, h := openMock(t)
	m.Width, m.Height = 4, 2
	buf := make([]byte, 4*2*2)
	id, err := m.AllocAndBind(h, 4, 2, 16, buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.CaptureBlocking(h); err != nil {
		t.Fatal(err)
	}
	if err := m.ReleaseImageMemory(h, id); err != nil {
		t.Fatal(err)
	}
	if v := binary.NativeEndian.Uint16(buf[6:]); v != 3 {
		t.Errorf("expected pixel 3 to hold 3, got %d", v)
	}
	if m.Bound() {
		t.Error("memory still bound after release")
	}
}
