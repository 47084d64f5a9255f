package ids

import (
	"context"

	"go.uber.org/zap"

	"github.com/nasa-jpl/idslab/camera"
)

// Acquire captures one full-sensor frame, blocking until the camera
// delivers it.  The frame is freshly allocated and the camera holds no
// reference to it on return.  Frames are 8 bit for 8 bit color modes and
// 16 bit otherwise.
//
// There is no timeout.  Abort releases a pending Acquire, which then
// returns an error wrapping context.Canceled.
func (c *Camera) Acquire() (*camera.Frame, error) {
	return c.acquire(context.Background(), "Acquire")
}

// AcquireContext is Acquire that calls Abort when ctx is done
func (c *Camera) AcquireContext(ctx context.Context) (*camera.Frame, error) {
	const op = "AcquireContext"
	if err := ctx.Err(); err != nil {
		return nil, newError(op, ErrInvalidState, err, nil, "acquisition aborted")
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case <-done:
				return
			default:
			}
			if err := c.Abort(); err != nil {
				c.log.Warn("abort on context cancellation failed", zap.Error(err))
			}
		case <-done:
		}
	}()
	return c.acquire(ctx, op)
}

// acquire runs one acquisition.  ctx is checked, with the abort flag, just
// before the capture starts; an abort seen there skips the capture.
func (c *Camera) acquire(ctx context.Context, op string) (*camera.Frame, error) {
	if err := c.checkEnabled(op); err != nil {
		return nil, err
	}
	c.aborted.Store(false)
	c.inflight.Store(true)
	defer c.inflight.Store(false)

	bpp, err := c.pixelDepth(op)
	if err != nil {
		return nil, err
	}
	frame, err := camera.NewFrame(c.shape.Width, c.shape.Height, bpp)
	if err != nil {
		return nil, newError(op, ErrInvalidArgument, ErrAllocFailed, err, "")
	}

	mem, err := c.drv.AllocAndBind(c.handle, frame.Width, frame.Height, bpp, frame.Bytes())
	if err != nil {
		return nil, newError(op, ErrHardwareRejected, ErrBindFailed, err, "")
	}

	var capErr error
	c.pending.Store(true)
	if ctx.Err() != nil {
		c.aborted.Store(true)
	}
	if !c.aborted.Load() {
		capErr = c.drv.CaptureBlocking(c.handle)
	}
	c.pending.Store(false)

	relErr := c.drv.ReleaseImageMemory(c.handle, mem)
	switch {
	case c.aborted.Load():
		c.log.Info("acquisition aborted")
		if relErr != nil {
			c.log.Warn("failed to release image memory after abort", zap.Error(relErr))
		}
		return nil, newError(op, ErrInvalidState, context.Canceled, nil, "acquisition aborted")
	case capErr != nil:
		return nil, newError(op, ErrHardwareRejected, ErrCaptureFailed, capErr, "")
	case relErr != nil:
		return nil, newError(op, ErrHardwareRejected, ErrBindFailed, relErr, "failed to release image memory")
	}
	return frame, nil
}

// Abort cancels an acquisition.  If a capture is waiting, a trigger is
// forced so that it returns.  If an acquisition has started but not yet
// reached the capture, the capture is skipped.  Otherwise the capture is
// stopped.  A trigger forced in the instant between the skip check and
// the camera starting to wait may be lost, so Abort is best effort.  It is
// safe to call while Acquire is blocked in another goroutine.
func (c *Camera) Abort() error {
	const op = "Abort"
	if err := c.checkOpen(op); err != nil {
		return err
	}
	if c.inflight.Load() {
		c.aborted.Store(true)
	}
	if c.pending.Load() {
		if err := c.drv.ForceTrigger(c.handle); err != nil {
			return newError(op, ErrHardwareRejected, nil, err, "failed to force trigger")
		}
		return nil
	}
	if err := c.drv.StopCapture(c.handle); err != nil {
		return newError(op, ErrHardwareRejected, nil, err, "failed to stop capture")
	}
	return nil
}
