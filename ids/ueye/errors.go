package ueye

import (
	"errors"
	"fmt"
)

// Status is a return code of a uEye SDK function
type Status int

// status codes, from ueye.h
const (
	NoSuccess                 Status = -1
	Success                   Status = 0
	InvalidCameraHandle       Status = 1
	IORequestFailed           Status = 2
	CantOpenDevice            Status = 3
	CantCloseDevice           Status = 4
	CantSetupMemory           Status = 5
	NoImageMemAllocated       Status = 15
	CantCommunicateWithDriver Status = 17
	InvalidImageSize          Status = 30
	InvalidCaptureMode        Status = 32
	InvalidColorMode          Status = 28
	NoMemory                  Status = 48
	InvalidMemoryPointer      Status = 49
	InvalidMode               Status = 101
	NoActiveImgMem            Status = 108
	TimedOut                  Status = 122
	OutOfMemory               Status = 124
	InvalidParameter          Status = 125
	AllDevicesBusy            Status = 126
	TriggerActivated          Status = 129
	InvalidExposureTime       Status = 134
	CaptureRunning            Status = 140
	InvalidDeviceID           Status = 143
	NotSupported              Status = 155
	TransferError             Status = 159
)

var (
	// ErrBadEnumIndex is generated when an unknown enum index is used
	ErrBadEnumIndex = errors.New("index not found in enum")

	// ErrCodes is a map of status codes to their string values
	ErrCodes = map[DRVError]string{
		-1:  "IS_NO_SUCCESS",
		0:   "IS_SUCCESS",
		1:   "IS_INVALID_CAMERA_HANDLE",
		2:   "IS_IO_REQUEST_FAILED",
		3:   "IS_CANT_OPEN_DEVICE",
		4:   "IS_CANT_CLOSE_DEVICE",
		5:   "IS_CANT_SETUP_MEMORY",
		15:  "IS_NO_IMAGE_MEM_ALLOCATED",
		17:  "IS_CANT_COMMUNICATE_WITH_DRIVER",
		28:  "IS_INVALID_COLOR_MODE",
		30:  "IS_INVALID_IMAGE_SIZE",
		32:  "IS_INVALID_CAPTURE_MODE",
		48:  "IS_NO_MEMORY",
		49:  "IS_INVALID_MEMORY_POINTER",
		101: "IS_INVALID_MODE",
		108: "IS_NO_ACTIVE_IMG_MEM",
		122: "IS_TIMED_OUT",
		124: "IS_OUT_OF_MEMORY",
		125: "IS_INVALID_PARAMETER",
		126: "IS_ALL_DEVICES_BUSY",
		129: "IS_TRIGGER_ACTIVATED",
		134: "IS_INVALID_EXPOSURE_TIME",
		140: "IS_CAPTURE_RUNNING",
		143: "IS_INVALID_DEVICE_ID",
		155: "IS_NOT_SUPPORTED",
		159: "IS_TRANSFER_ERROR",
	}

	// BeneignErrorCodes is sequence of status codes which mean
	// the status is normal
	BeneignErrorCodes = []Status{
		Success,
	}
)

// DRVError represents a driver error and has nice formatting
type DRVError int

func (e DRVError) Error() string {
	if s, ok := ErrCodes[e]; ok {
		return fmt.Sprintf("%d - %s", int(e), s)
	}
	return fmt.Sprintf("%d - UNKNOWN_ERROR_CODE", int(e))
}

// Status returns the status code the error was made from
func (e DRVError) Status() Status {
	return Status(e)
}

// Known returns true if the code is in the ErrCodes table
func (e DRVError) Known() bool {
	_, ok := ErrCodes[e]
	return ok
}

// Error returns nil if the status code is beneign, otherwise returns
// an object which prints the status code and string value
func Error(code Status) error {
	for _, c := range BeneignErrorCodes {
		if c == code {
			return nil
		}
	}
	return DRVError(code)
}

// IsStatus returns true if err is, or wraps, a DRVError equal to any of codes
func IsStatus(err error, codes ...Status) bool {
	var de DRVError
	if !errors.As(err, &de) {
		return false
	}
	for _, c := range codes {
		if de.Status() == c {
			return true
		}
	}
	return false
}
