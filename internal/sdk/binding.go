package sdk

import "errors"

// Binding errors.
var (
	ErrLibraryNotLoaded  = errors.New("native sdk library not loaded")
	ErrLedControlDenied  = errors.New("led control request rejected by sdk")
	ErrLayoutUnavailable = errors.New("device layout unavailable")
)

// Binding mirrors the native vendor SDK call surface. The library keeps a
// single implicit "active slot": SetControlDevice selects it and every
// other slot-scoped call targets whichever slot was selected last. Callers
// must serialize select-then-act pairs; Session does exactly that.
type Binding interface {
	// Reload re-resolves and reinitializes the native library. It fails
	// silently when the library is unavailable; Version reports the result.
	Reload()

	// Version returns the SDK version reported by the native library.
	// Values <= 0 mean the SDK is unusable.
	Version() int

	// SetControlDevice selects the active slot for subsequent calls.
	SetControlDevice(slot Slot)

	// IsDevicePlugged reports whether a device is present in the active slot.
	IsDevicePlugged() bool

	// DeviceLayout returns the physical key layout of the active slot.
	// Only valid for keyboard-class slots.
	DeviceLayout() (PhysicalLayout, error)

	// EnableLEDControl toggles LED-control ownership for the active slot.
	EnableLEDControl(enabled bool) error

	// LoadedArchitecture reports which native binary variant was resolved,
	// e.g. "x64". Empty when no library is loaded.
	LoadedArchitecture() string
}
