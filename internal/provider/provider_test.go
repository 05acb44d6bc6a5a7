package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/sdk"
)

var errHardware = errors.New("hardware fault")

// fakeBinding simulates the vendor library, including its single implicit
// active slot.
type fakeBinding struct {
	version   int
	arch      string
	active    sdk.Slot
	plugged   map[sdk.Slot]bool
	layouts   map[sdk.Slot]sdk.PhysicalLayout
	layoutErr map[sdk.Slot]error
	enableErr map[sdk.Slot]error
	reloads   int
	ledOps    []string
}

func newFakeBinding() *fakeBinding {
	return &fakeBinding{
		version:   1,
		arch:      "x64",
		plugged:   make(map[sdk.Slot]bool),
		layouts:   make(map[sdk.Slot]sdk.PhysicalLayout),
		layoutErr: make(map[sdk.Slot]error),
		enableErr: make(map[sdk.Slot]error),
	}
}

func (b *fakeBinding) Reload() { b.reloads++ }

func (b *fakeBinding) Version() int { return b.version }

func (b *fakeBinding) SetControlDevice(s sdk.Slot) { b.active = s }

func (b *fakeBinding) IsDevicePlugged() bool { return b.plugged[b.active] }

func (b *fakeBinding) LoadedArchitecture() string { return b.arch }

func (b *fakeBinding) DeviceLayout() (sdk.PhysicalLayout, error) {
	if err := b.layoutErr[b.active]; err != nil {
		return sdk.LayoutUnknown, err
	}

	return b.layouts[b.active], nil
}

func (b *fakeBinding) EnableLEDControl(enabled bool) error {
	op := "disable:"
	if enabled {
		op = "enable:"
	}

	b.ledOps = append(b.ledOps, op+b.active.String())

	return b.enableErr[b.active]
}

func (b *fakeBinding) plug(slot sdk.Slot, layout sdk.PhysicalLayout) {
	b.plugged[slot] = true
	b.layouts[slot] = layout
}

func slotsOf(devices []*provider.Device) []sdk.Slot {
	out := make([]sdk.Slot, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Info().Slot)
	}

	return out
}

func TestInitializeSDKUnavailable(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.version = 0

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, p.IsInitialized())
	assert.Empty(t, p.Devices())
	assert.Equal(t, 1, binding.reloads)
}

func TestInitializeSDKUnavailableStrict(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.version = -1

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{Strict: true})
	require.ErrorIs(t, err, provider.ErrSDKUnavailable)
	assert.False(t, ok)
	assert.False(t, p.IsInitialized())
}

func TestInitializeDiscoversKeyboards(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)
	binding.plug(sdk.SlotKeyboardS, sdk.LayoutISO)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, p.IsInitialized())
	assert.Equal(t, "x64", p.LoadedArchitecture())

	devices := p.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardL, sdk.SlotKeyboardS}, slotsOf(devices))

	full := devices[0]
	assert.Equal(t, provider.DeviceTypeKeyboard, full.Info().Type)
	assert.Equal(t, sdk.LayoutANSI, full.Info().Layout)
	assert.Equal(t, 104, full.LEDCount())

	compact := devices[1]
	assert.Equal(t, sdk.LayoutISO, compact.Info().Layout)
	assert.Equal(t, 105, compact.LEDCount())

	// Discovery enables LED control once per built device.
	assert.Equal(t, []string{"enable:keyboard-l", "enable:keyboard-s"}, binding.ledOps)
}

func TestInitializeNonStrictSkipsFailingSlots(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutANSI)
	binding.plug(sdk.SlotMousepad, sdk.LayoutUnknown) // present but unsupported
	binding.plug(sdk.SlotKeyboardS, sdk.LayoutANSI)
	binding.enableErr[sdk.SlotKeyboardS] = errHardware

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	assert.True(t, ok)

	// One unsupported slot and one failing slot out of three present leaves
	// a published collection of one.
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardM}, slotsOf(p.Devices()))
	assert.True(t, p.IsInitialized())
}

func TestInitializeStrictAbortsAndPreservesPriorCollection(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutANSI)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	prior := p.Devices()
	require.Len(t, prior, 1)

	// A present but unsupported slot aborts the strict rescan.
	binding.plug(sdk.SlotHeadset, sdk.LayoutUnknown)

	ok, err = p.Initialize(context.Background(), provider.ScanOptions{Strict: true})
	assert.False(t, ok)
	require.ErrorIs(t, err, provider.ErrUnsupportedDeviceType)

	var initErr *provider.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, sdk.SlotHeadset, initErr.Slot)

	assert.False(t, p.IsInitialized())
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardM}, slotsOf(p.Devices()))
}

func TestInitializeStrictSurfacesDeviceInitFailure(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)
	binding.layoutErr[sdk.SlotKeyboardL] = errHardware

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{Strict: true})
	assert.False(t, ok)
	require.ErrorIs(t, err, provider.ErrDeviceInitFailed)
	require.ErrorIs(t, err, errHardware)
	assert.False(t, p.IsInitialized())
}

func TestMixedSlotScenario(t *testing.T) {
	t.Parallel()

	// Slots: keyboard-l absent, keyboard-m present, mousepad present but
	// unsupported.
	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutISO)
	binding.plug(sdk.SlotMousepad, sdk.LayoutUnknown)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardM}, slotsOf(p.Devices()))

	ok, err = p.Initialize(context.Background(), provider.ScanOptions{Strict: true})
	assert.False(t, ok)
	require.Error(t, err)
	assert.False(t, p.IsInitialized())
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardM}, slotsOf(p.Devices()))
}

func TestReinitializeReplacesCollection(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutANSI)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	old := p.Devices()
	require.Len(t, old, 2)

	// Hardware unplugged between scans.
	binding.plugged[sdk.SlotKeyboardM] = false

	ok, err = p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardL}, slotsOf(p.Devices()))

	// The prior snapshot is replaced, never mutated in place.
	assert.Len(t, old, 2)
	assert.Equal(t, []sdk.Slot{sdk.SlotKeyboardL, sdk.SlotKeyboardM}, slotsOf(old))
}

func TestResetDevicesBeforeInitializeIsNoop(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	p := provider.New(binding)

	p.ResetDevices(context.Background())

	assert.Empty(t, binding.ledOps)
}

func TestResetDevicesCyclesLedControl(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	binding.ledOps = nil
	p.ResetDevices(context.Background())

	assert.Equal(t, []string{"disable:keyboard-l", "enable:keyboard-l"}, binding.ledOps)
}

func TestResetDevicesSwallowsAllFailures(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)
	binding.plug(sdk.SlotKeyboardM, sdk.LayoutISO)

	p := provider.New(binding)

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	// Every cycle call fails from here on; reset must still visit every
	// device and never raise.
	binding.enableErr[sdk.SlotKeyboardL] = errHardware
	binding.enableErr[sdk.SlotKeyboardM] = errHardware
	binding.ledOps = nil

	p.ResetDevices(context.Background())

	assert.Equal(t, []string{
		"disable:keyboard-l", "enable:keyboard-l",
		"disable:keyboard-m", "enable:keyboard-m",
	}, binding.ledOps)
}

func TestExclusiveAccessIsRecordedNotEnforced(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)

	p := provider.New(binding)
	assert.False(t, p.HasExclusiveAccess())

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{ExclusiveAccess: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.HasExclusiveAccess())

	ok, err = p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, p.HasExclusiveAccess())
}

func TestCultureFuncFlowsIntoDeviceInfo(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutISO)

	german := language.MustParse("de-DE")
	p := provider.New(binding, provider.WithCultureFunc(func() language.Tag { return german }))

	ok, err := p.Initialize(context.Background(), provider.ScanOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	devices := p.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, german, devices[0].Info().Locale)
	assert.Equal(t, "de-DE", devices[0].Info().LegendLayout)
}

func TestHistoryRecordsScans(t *testing.T) {
	t.Parallel()

	binding := newFakeBinding()
	binding.plug(sdk.SlotKeyboardL, sdk.LayoutANSI)

	p := provider.New(binding)

	_, _ = p.Initialize(context.Background(), provider.ScanOptions{})

	binding.version = 0
	_, _ = p.Initialize(context.Background(), provider.ScanOptions{})

	history := p.History()
	require.Len(t, history, 2)
	assert.Equal(t, provider.ScanResultOK, history[0].Result)
	assert.Equal(t, 1, history[0].Devices)
	assert.Equal(t, provider.ScanResultSDKUnavailable, history[1].Result)
}
