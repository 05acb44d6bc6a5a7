package provider

import (
	"context"
	"sync"
)

// Service is the single allowed owner of a Provider in a concurrent
// process. The provider itself carries no locking because the native
// session must never interleave two scans; Service serializes every
// operation behind one mutex so the admin API, the config watcher, and
// shutdown paths can share it safely.
type Service struct {
	mu       sync.Mutex
	provider *Provider
}

// NewService wraps a provider. The caller must not use the provider
// directly afterwards.
func NewService(p *Provider) *Service {
	return &Service{provider: p}
}

// Rescan runs one discovery pass.
func (s *Service) Rescan(ctx context.Context, opts ScanOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.provider.Initialize(ctx, opts)
}

// Reset re-arms LED control for all published devices.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.provider.ResetDevices(ctx)
}

// Devices returns the current ordered device snapshot.
func (s *Service) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.provider.Devices()
}

// History returns retained scan reports, oldest first.
func (s *Service) History() []ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.provider.History()
}

// Status is a point-in-time view of the provider state.
type Status struct {
	Initialized        bool   `json:"initialized"`
	ExclusiveAccess    bool   `json:"exclusive_access"`
	LoadedArchitecture string `json:"loaded_architecture,omitempty"`
	Devices            int    `json:"devices"`
}

// Status reports the provider state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Initialized:        s.provider.IsInitialized(),
		ExclusiveAccess:    s.provider.HasExclusiveAccess(),
		LoadedArchitecture: s.provider.LoadedArchitecture(),
		Devices:            len(s.provider.devices),
	}
}
