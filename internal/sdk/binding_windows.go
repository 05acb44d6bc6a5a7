//go:build windows

package sdk

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// The vendor ships one DLL per architecture. Both export the same flat
// C surface.
const (
	dllName64 = "PrismLedSDK.x64.dll"
	dllName32 = "PrismLedSDK.dll"
)

type nativeBinding struct {
	dll  *windows.LazyDLL
	arch string

	procGetVersion       *windows.LazyProc
	procSetControlDevice *windows.LazyProc
	procIsDevicePlugged  *windows.LazyProc
	procGetDeviceLayout  *windows.LazyProc
	procEnableLedControl *windows.LazyProc
}

// NewNativeBinding returns a binding backed by the vendor DLL. The DLL is
// resolved lazily; Reload forces re-resolution and Version reports whether
// a usable library was found.
func NewNativeBinding() Binding {
	b := &nativeBinding{}
	b.resolve()

	return b
}

func (b *nativeBinding) resolve() {
	name := dllName32
	arch := "x86"

	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		name = dllName64
		arch = "x64"
	}

	b.dll = windows.NewLazySystemDLL(name)
	b.arch = arch

	b.procGetVersion = b.dll.NewProc("GetSdkVersion")
	b.procSetControlDevice = b.dll.NewProc("SetControlDevice")
	b.procIsDevicePlugged = b.dll.NewProc("IsDevicePlugged")
	b.procGetDeviceLayout = b.dll.NewProc("GetDeviceLayout")
	b.procEnableLedControl = b.dll.NewProc("EnableLedControl")
}

func (b *nativeBinding) Reload() {
	// Re-resolve from scratch; load failures stay silent and surface as
	// Version() <= 0.
	b.resolve()
}

func (b *nativeBinding) loaded() bool {
	return b.dll.Load() == nil
}

func (b *nativeBinding) Version() int {
	if !b.loaded() || b.procGetVersion.Find() != nil {
		return 0
	}

	ret, _, _ := b.procGetVersion.Call()

	return int(int32(ret)) //nolint:gosec // truncation mirrors the C ABI
}

func (b *nativeBinding) SetControlDevice(slot Slot) {
	if !b.loaded() || b.procSetControlDevice.Find() != nil {
		return
	}

	_, _, _ = b.procSetControlDevice.Call(uintptr(slot))
}

func (b *nativeBinding) IsDevicePlugged() bool {
	if !b.loaded() || b.procIsDevicePlugged.Find() != nil {
		return false
	}

	ret, _, _ := b.procIsDevicePlugged.Call()

	return ret != 0
}

func (b *nativeBinding) DeviceLayout() (PhysicalLayout, error) {
	if !b.loaded() || b.procGetDeviceLayout.Find() != nil {
		return LayoutUnknown, ErrLayoutUnavailable
	}

	ret, _, _ := b.procGetDeviceLayout.Call()

	switch PhysicalLayout(ret) {
	case LayoutANSI, LayoutISO, LayoutJIS:
		return PhysicalLayout(ret), nil
	default:
		// The SDK reports 0 for devices it has not probed yet; an unknown
		// layout is still a valid descriptor.
		return LayoutUnknown, nil
	}
}

func (b *nativeBinding) EnableLEDControl(enabled bool) error {
	if !b.loaded() || b.procEnableLedControl.Find() != nil {
		return ErrLibraryNotLoaded
	}

	var flag uintptr
	if enabled {
		flag = 1
	}

	ret, _, _ := b.procEnableLedControl.Call(flag)
	if ret == 0 {
		return ErrLedControlDenied
	}

	return nil
}

func (b *nativeBinding) LoadedArchitecture() string {
	if !b.loaded() {
		return ""
	}

	return b.arch
}
