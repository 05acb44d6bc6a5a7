//go:build !windows

package sdk

// The vendor ships the control library for Windows only. On other
// platforms the binding reports an unusable SDK version and discovery
// fails early without touching any hardware.
type nativeBinding struct{}

// NewNativeBinding returns the stub binding for platforms without a
// native vendor library.
func NewNativeBinding() Binding {
	return nativeBinding{}
}

func (nativeBinding) Reload() {}

func (nativeBinding) Version() int { return 0 }

func (nativeBinding) SetControlDevice(Slot) {}

func (nativeBinding) IsDevicePlugged() bool { return false }

func (nativeBinding) DeviceLayout() (PhysicalLayout, error) {
	return LayoutUnknown, ErrLibraryNotLoaded
}

func (nativeBinding) EnableLEDControl(bool) error { return ErrLibraryNotLoaded }

func (nativeBinding) LoadedArchitecture() string { return "" }
