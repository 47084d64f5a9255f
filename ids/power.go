package ids

import (
	"fmt"

	"go.uber.org/zap"
)

// Enable leaves standby.  It is a no-op if the camera is already enabled.
func (c *Camera) Enable() error {
	return c.transition("Enable", Enabled)
}

// Disable enters standby.  It is a no-op if the camera is already in standby.
func (c *Camera) Disable() error {
	return c.transition("Disable", Standby)
}

// GetEnabled returns true if the camera is not in standby
func (c *Camera) GetEnabled() (bool, error) {
	if err := c.checkOpen("GetEnabled"); err != nil {
		return false, err
	}
	return c.state == Enabled, nil
}

// PowerState returns the current power state
func (c *Camera) PowerState() PowerState {
	return c.state
}

// transition moves to target.  Standby support is asked of the hardware
// every time.
func (c *Camera) transition(op string, target PowerState) error {
	if err := c.checkOpen(op); err != nil {
		return err
	}
	if c.state == target {
		return nil
	}
	ok, err := c.drv.StandbySupported(c.handle)
	if err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to query standby support")
	}
	if !ok {
		return newError(op, ErrNotSupported, nil, nil, "standby not supported")
	}
	if err := c.drv.SetStandby(c.handle, target == Standby); err != nil {
		c.log.Warn("camera rejected power transition",
			zap.Stringer("from", c.state),
			zap.Stringer("to", target),
			zap.Error(err))
		return newError(op, ErrHardwareRejected, nil, err, fmt.Sprintf("hardware rejected transition to %s", target))
	}
	c.log.Debug("power transition", zap.Stringer("from", c.state), zap.Stringer("to", target))
	c.state = target
	return nil
}
