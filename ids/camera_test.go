package ids_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nasa-jpl/idslab/ids"
	"github.com/nasa-jpl/idslab/ids/ueye"
)

func openCamera(t *testing.T) (*ids.Camera, *ueye.Mock) {
	t.Helper()
	m := ueye.NewMock()
	c, err := ids.Open(m, ids.AutoSerial)
	if err != nil {
		t.Fatal(err)
	}
	return c, m
}

func expectKind(t *testing.T, err error, kinds ...error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error wrapping %v, got nil", kinds)
	}
	for _, k := range kinds {
		if !errors.Is(err, k) {
			t.Errorf("expected %q to wrap %q", err, k)
		}
	}
}

func TestOpenBySerial(t *testing.T) {
	m := ueye.NewMock()
	m.Cameras = append(m.Cameras, ueye.DeviceInfo{Serial: "4103000002", ID: 2, Model: "UI-5240CP-M-GL"})
	c, err := ids.Open(m, "4103000002")
	if err != nil {
		t.Fatal(err)
	}
	if c.SerialNumber() != "4103000002" || c.Model() != "UI-5240CP-M-GL" {
		t.Errorf("opened the wrong camera, serial %s model %s", c.SerialNumber(), c.Model())
	}
	shape, err := c.GetSensorShape()
	if err != nil {
		t.Fatal(err)
	}
	if shape.Width != m.Width || shape.Height != m.Height {
		t.Errorf("expected sensor shape %dx%d, got %+v", m.Width, m.Height, shape)
	}
	if c.PowerState() != ids.Enabled {
		t.Errorf("expected a new session to be Enabled, got %s", c.PowerState())
	}
}

func TestOpenNotFound(t *testing.T) {
	m := ueye.NewMock()
	_, err := ids.Open(m, "nope")
	expectKind(t, err, ids.ErrNotFound)
	if !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("expected the serial number in the message, got %q", err)
	}
	if m.Calls("Open") != 0 {
		t.Error("expected no camera to be opened")
	}

	m.Cameras = nil
	_, err = ids.Open(m, "")
	expectKind(t, err, ids.ErrNotFound)
}

func TestOpenReleasesHandleOnInitFailure(t *testing.T) {
	m := ueye.NewMock()
	m.MinExposure = 0 // the range minimum must be positive
	_, err := ids.Open(m, ids.AutoSerial)
	expectKind(t, err, ids.ErrHardwareRejected)
	if m.Calls("Close") != 1 {
		t.Errorf("expected the handle to be closed once after a failed init, got %d", m.Calls("Close"))
	}
	// the camera can be opened again, so the handle was really released
	m.MinExposure = 1e-5
	if _, err := ids.Open(m, ids.AutoSerial); err != nil {
		t.Errorf("expected reopen to succeed, got %v", err)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	c, _ := openCamera(t)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	expectKind(t, c.Close(), ids.ErrInvalidState, ids.ErrNotInitialized)
	expectKind(t, c.Enable(), ids.ErrInvalidState, ids.ErrNotInitialized)
	expectKind(t, c.Disable(), ids.ErrInvalidState, ids.ErrNotInitialized)
	expectKind(t, c.SetExposure(1e-3), ids.ErrNotInitialized)
	_, err := c.Acquire()
	expectKind(t, err, ids.ErrNotInitialized)
	_, err = c.GetTemperature()
	expectKind(t, err, ids.ErrNotInitialized)
	expectKind(t, c.Abort(), ids.ErrNotInitialized)
	if !strings.Contains(c.Abort().Error(), "device not initialized") {
		t.Errorf("expected message to say device not initialized, got %q", c.Abort())
	}
}

func TestGetTemperature(t *testing.T) {
	c, m := openCamera(t)
	m.RawTemperature = 0x8058
	temp, err := c.GetTemperature()
	if err != nil {
		t.Fatal(err)
	}
	if temp != -5.5 {
		t.Errorf("expected -5.5 C, got %v", temp)
	}
}

func TestCollectHeaderMetadata(t *testing.T) {
	c, _ := openCamera(t)
	cards := c.CollectHeaderMetadata()
	byName := map[string]interface{}{}
	for _, card := range cards {
		byName[card.Name] = card.Value
	}
	if byName["METAERR"] != "" {
		t.Errorf("expected no metadata error, got %v", byName["METAERR"])
	}
	if byName["BINNING"] != "1x1" {
		t.Errorf("expected BINNING 1x1, got %v", byName["BINNING"])
	}
	if byName["BITDEPTH"] != 8 {
		t.Errorf("expected BITDEPTH 8, got %v", byName["BITDEPTH"])
	}

	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	for _, card := range c.CollectHeaderMetadata() {
		if card.Name == "METAERR" && card.Value == "" {
			t.Error("expected METAERR to be filled in standby")
		}
	}
}

func TestErrorStatusCodes(t *testing.T) {
	c, m := openCamera(t)
	m.StandbyUnsupported = true
	var e *ids.Error
	if !errors.As(c.Disable(), &e) {
		t.Fatal("expected an *ids.Error")
	}
	if e.StatusCode() != 400 {
		t.Errorf("expected NotSupported to map to 400, got %d", e.StatusCode())
	}
}

// Abort bypasses any caller lock, so it may race with Close
func TestAbortConcurrentWithClose(t *testing.T) {
	c, _ := openCamera(t)
	done := make(chan error)
	go func() {
		done <- c.Abort()
	}()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	// depending on the interleaving the driver may already have released
	// the handle, so only the post-Close behavior is fixed
	<-done
	expectKind(t, c.Abort(), ids.ErrInvalidState, ids.ErrNotInitialized)
}
