package provider

import (
	"errors"
	"fmt"

	"github.com/prismrgb/prismd/internal/sdk"
)

// Discovery error kinds.
var (
	ErrSDKUnavailable        = errors.New("native sdk missing or unusable version")
	ErrUnsupportedDeviceType = errors.New("unsupported device type")
	ErrDeviceInitFailed      = errors.New("device initialization failed")
)

// InitializationError reports a per-slot build failure. Kind is one of
// ErrUnsupportedDeviceType or ErrDeviceInitFailed; Cause carries the
// underlying native or setup error when there is one.
type InitializationError struct {
	Slot  sdk.Slot
	Kind  error
	Cause error
}

func (e *InitializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("slot %s: %v: %v", e.Slot, e.Kind, e.Cause)
	}

	return fmt.Sprintf("slot %s: %v", e.Slot, e.Kind)
}

func (e *InitializationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}

	return []error{e.Kind}
}
