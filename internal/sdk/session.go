package sdk

// Session confines the binding's implicit active-slot state to one place:
// every slot-scoped method takes the target slot explicitly and performs
// the select-then-act pair internally. A Session is not safe for concurrent
// use; the owner must serialize access.
type Session struct {
	binding Binding
}

// NewSession wraps a binding in a session. The session assumes exclusive
// use of the binding for its lifetime.
func NewSession(binding Binding) *Session {
	return &Session{binding: binding}
}

// Reload re-resolves the native library.
func (s *Session) Reload() {
	s.binding.Reload()
}

// Version reports the native SDK version; <= 0 means unusable.
func (s *Session) Version() int {
	return s.binding.Version()
}

// LoadedArchitecture reports the resolved native binary variant.
func (s *Session) LoadedArchitecture() string {
	return s.binding.LoadedArchitecture()
}

// Plugged reports whether a device is present in the given slot.
func (s *Session) Plugged(slot Slot) bool {
	s.binding.SetControlDevice(slot)

	return s.binding.IsDevicePlugged()
}

// Layout returns the physical key layout of the device in the given slot.
func (s *Session) Layout(slot Slot) (PhysicalLayout, error) {
	s.binding.SetControlDevice(slot)

	return s.binding.DeviceLayout()
}

// EnableLEDControl toggles LED-control ownership for the given slot.
func (s *Session) EnableLEDControl(slot Slot, enabled bool) error {
	s.binding.SetControlDevice(slot)

	return s.binding.EnableLEDControl(enabled)
}
