package provider

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/prismrgb/prismd/internal/locale"
	"github.com/prismrgb/prismd/internal/metrics"
	"github.com/prismrgb/prismd/internal/sdk"
)

// historySize bounds the retained scan reports.
const historySize = 32

// CultureFunc resolves the locale used to pick keyboard legend layouts.
type CultureFunc func() language.Tag

// ScanOptions control one discovery pass.
type ScanOptions struct {
	// ExclusiveAccess asks the SDK for sole control of the hardware. The
	// vendor library declares the capability but does not enforce it; the
	// flag is recorded and reported, nothing more.
	ExclusiveAccess bool

	// Strict makes any discovery error abort the scan and surface to the
	// caller. Without it failures are skipped at the smallest possible
	// scope and Initialize only reports overall success.
	Strict bool
}

// SlotStatus is the outcome of one slot during a scan.
type SlotStatus string

const (
	SlotBuilt   SlotStatus = "built"
	SlotAbsent  SlotStatus = "absent"
	SlotSkipped SlotStatus = "skipped"
	SlotFailed  SlotStatus = "failed"
)

// SlotOutcome records what happened to one slot during a scan.
type SlotOutcome struct {
	Slot   string     `json:"slot"`
	Type   string     `json:"type,omitempty"`
	Status SlotStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Scan results.
const (
	ScanResultOK             = "ok"
	ScanResultSDKUnavailable = "sdk_unavailable"
	ScanResultAborted        = "aborted"
)

// ScanReport summarizes one discovery pass.
type ScanReport struct {
	Seq       int           `json:"seq"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Strict    bool          `json:"strict"`
	Result    string        `json:"result"`
	Devices   int           `json:"devices"`
	Slots     []SlotOutcome `json:"slots"`
}

// Provider discovers vendor SDK peripherals and publishes them as an
// ordered, immutable device collection.
//
// A Provider is not safe for concurrent use: the native binding keeps a
// single implicit active slot, so scans and resets must be serialized by
// the owner (see Service).
type Provider struct {
	session *sdk.Session
	culture CultureFunc
	history *lru.Cache[int, ScanReport]

	devices     []*Device
	arch        string
	initialized bool
	exclusive   bool
	scanSeq     int
}

// Option configures a Provider.
type Option func(*Provider)

// WithCultureFunc overrides how the legend-layout locale is resolved.
// The default resolves the process's ambient locale.
func WithCultureFunc(fn CultureFunc) Option {
	return func(p *Provider) {
		if fn != nil {
			p.culture = fn
		}
	}
}

// New creates a provider on top of a native binding.
func New(binding sdk.Binding, opts ...Option) *Provider {
	history, _ := lru.New[int, ScanReport](historySize)

	p := &Provider{
		session: sdk.NewSession(binding),
		culture: locale.System,
		history: history,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Initialize runs a full discovery scan: reload the native library, probe
// every slot in enumeration order, classify and build present devices, and
// publish the resulting collection atomically. It reports whether the scan
// completed; the error is non-nil only in strict mode.
//
// The provider is unready from the moment Initialize starts until the scan
// finishes. On any failure the previously published collection stays
// untouched.
func (p *Provider) Initialize(ctx context.Context, opts ScanOptions) (bool, error) {
	log := zerolog.Ctx(ctx)
	started := time.Now()

	p.initialized = false
	metrics.SetReady(false)
	p.scanSeq++

	report := ScanReport{
		Seq:       p.scanSeq,
		StartedAt: started,
		Strict:    opts.Strict,
		Slots:     make([]SlotOutcome, 0, len(sdk.Slots())),
	}

	p.session.Reload()
	p.arch = p.session.LoadedArchitecture()

	if version := p.session.Version(); version <= 0 {
		log.Warn().Int("sdk_version", version).Msg("native sdk unusable, scan aborted")
		p.finishScan(&report, ScanResultSDKUnavailable, started)

		if opts.Strict {
			return false, ErrSDKUnavailable
		}

		return false, nil
	}

	loc := p.culture()
	discovered := make([]*Device, 0, len(sdk.Slots()))

	for _, slot := range sdk.Slots() {
		if !p.session.Plugged(slot) {
			report.Slots = append(report.Slots, SlotOutcome{Slot: slot.String(), Status: SlotAbsent})

			continue
		}

		deviceType := Classify(slot)

		device, err := buildDevice(p.session, slot, deviceType, loc)
		if err != nil {
			metrics.SlotFailure(slot.String())

			if opts.Strict {
				report.Slots = append(report.Slots, SlotOutcome{
					Slot:   slot.String(),
					Type:   string(deviceType),
					Status: SlotFailed,
					Error:  err.Error(),
				})
				p.finishScan(&report, ScanResultAborted, started)

				return false, err
			}

			log.Debug().
				Str("slot", slot.String()).
				Str("type", string(deviceType)).
				Err(err).
				Msg("slot skipped")
			report.Slots = append(report.Slots, SlotOutcome{
				Slot:   slot.String(),
				Type:   string(deviceType),
				Status: SlotSkipped,
				Error:  err.Error(),
			})

			continue
		}

		discovered = append(discovered, device)
		report.Slots = append(report.Slots, SlotOutcome{
			Slot:   slot.String(),
			Type:   string(deviceType),
			Status: SlotBuilt,
		})
	}

	// Publish atomically: the collection is replaced wholesale, never
	// mutated in place.
	p.devices = discovered
	p.initialized = true
	p.exclusive = opts.ExclusiveAccess

	report.Devices = len(discovered)
	p.finishScan(&report, ScanResultOK, started)
	metrics.SetDevices(len(discovered))
	metrics.SetReady(true)

	log.Info().
		Int("devices", len(discovered)).
		Str("arch", p.arch).
		Dur("duration", report.Duration).
		Msg("device scan complete")

	return true, nil
}

func (p *Provider) finishScan(report *ScanReport, result string, started time.Time) {
	report.Result = result
	report.Duration = time.Since(started)
	p.history.Add(report.Seq, *report)
	metrics.ScanCompleted(result, report.Duration)
}

// ResetDevices re-arms LED control for every published device by cycling
// it off and on, clearing stuck hardware state after external interference.
// Best-effort by contract: a no-op before the first successful scan, and
// failures are swallowed (logged at debug level only).
func (p *Provider) ResetDevices(ctx context.Context) {
	if !p.initialized {
		return
	}

	log := zerolog.Ctx(ctx)

	for _, device := range p.devices {
		slot := device.Info().Slot

		if err := p.session.EnableLEDControl(slot, false); err != nil {
			log.Debug().Str("slot", slot.String()).Err(err).Msg("led disable failed during reset")
		}

		if err := p.session.EnableLEDControl(slot, true); err != nil {
			log.Debug().Str("slot", slot.String()).Err(err).Msg("led enable failed during reset")
		}
	}
}

// Devices returns the published collection as an ordered snapshot. Devices
// appear in slot enumeration order among present, successfully built slots.
func (p *Provider) Devices() []*Device {
	out := make([]*Device, len(p.devices))
	copy(out, p.devices)

	return out
}

// IsInitialized reports whether the last scan completed successfully.
func (p *Provider) IsInitialized() bool {
	return p.initialized
}

// HasExclusiveAccess reports whether exclusive access was requested on the
// last successful scan. Advisory only; see ScanOptions.ExclusiveAccess.
func (p *Provider) HasExclusiveAccess() bool {
	return p.exclusive
}

// LoadedArchitecture reports which native binary variant was resolved.
func (p *Provider) LoadedArchitecture() string {
	return p.arch
}

// History returns retained scan reports, oldest first.
func (p *Provider) History() []ScanReport {
	keys := p.history.Keys()
	out := make([]ScanReport, 0, len(keys))

	for _, key := range keys {
		if report, ok := p.history.Peek(key); ok {
			out = append(out, report)
		}
	}

	return out
}
