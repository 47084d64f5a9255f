package ids_test

import (
	"testing"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/ids"
)

func TestDisableEnableRoundTrip(t *testing.T) {
	c, m := openCamera(t)
	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	if c.PowerState() != ids.Standby || !m.Standby() {
		t.Fatalf("expected Standby, got %s", c.PowerState())
	}

	expectKind(t, c.SetExposure(1e-3), ids.ErrInvalidState, ids.ErrStandby)
	_, err := c.GetExposureTime()
	expectKind(t, err, ids.ErrInvalidState, ids.ErrStandby)
	expectKind(t, c.SetBinning(camera.Binning{H: 2, V: 2}), ids.ErrInvalidState)
	_, err = c.GetBinning()
	expectKind(t, err, ids.ErrInvalidState)
	_, err = c.Acquire()
	expectKind(t, err, ids.ErrInvalidState)
	_, _, err = c.ProbeColorMode()
	expectKind(t, err, ids.ErrInvalidState)
	if m.Calls("WriteExposure") != 0 || m.Calls("AllocAndBind") != 0 {
		t.Error("expected no hardware configuration in standby")
	}

	if err := c.Enable(); err != nil {
		t.Fatal(err)
	}
	if c.PowerState() != ids.Enabled || m.Standby() {
		t.Fatalf("expected Enabled, got %s", c.PowerState())
	}
	if err := c.SetExposure(1e-3); err != nil {
		t.Errorf("expected exposure to be settable after Enable, got %v", err)
	}
}

func TestTransitionToCurrentStateIsNoOp(t *testing.T) {
	c, m := openCamera(t)
	if err := c.Enable(); err != nil {
		t.Fatal(err)
	}
	if m.Calls("StandbySupported") != 0 || m.Calls("SetStandby") != 0 {
		t.Error("expected Enable while Enabled not to touch the hardware")
	}
	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	if n := m.Calls("SetStandby"); n != 1 {
		t.Errorf("expected one standby command for two Disables, got %d", n)
	}
}

func TestStandbySupportQueriedEveryTime(t *testing.T) {
	c, m := openCamera(t)
	c.Disable()
	c.Enable()
	c.Disable()
	if n := m.Calls("StandbySupported"); n != 3 {
		t.Errorf("expected standby support to be queried for each of 3 transitions, got %d", n)
	}
}

func TestDisableNotSupported(t *testing.T) {
	c, m := openCamera(t)
	m.StandbyUnsupported = true
	expectKind(t, c.Disable(), ids.ErrNotSupported)
	if c.PowerState() != ids.Enabled {
		t.Errorf("expected state unchanged, got %s", c.PowerState())
	}
	if m.Calls("SetStandby") != 0 {
		t.Error("expected no standby command when standby is unsupported")
	}
}

func TestDisableRejected(t *testing.T) {
	c, m := openCamera(t)
	m.RejectStandby = true
	expectKind(t, c.Disable(), ids.ErrHardwareRejected)
	if c.PowerState() != ids.Enabled {
		t.Errorf("expected state unchanged, got %s", c.PowerState())
	}
	m.RejectStandby = false
	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	m.RejectStandby = true
	expectKind(t, c.Enable(), ids.ErrHardwareRejected)
	if c.PowerState() != ids.Standby {
		t.Errorf("expected state to remain Standby, got %s", c.PowerState())
	}
}

func TestTemperatureInStandby(t *testing.T) {
	c, _ := openCamera(t)
	if err := c.Disable(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetTemperature(); err != nil {
		t.Errorf("expected temperature to be readable in standby, got %v", err)
	}
	enabled, err := c.GetEnabled()
	if err != nil || enabled {
		t.Errorf("expected GetEnabled false, nil; got %v, %v", enabled, err)
	}
}
