package provider

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/prismrgb/prismd/internal/sdk"
)

// DeviceType classifies a hardware slot by peripheral category.
type DeviceType string

const (
	DeviceTypeKeyboard DeviceType = "keyboard"
	DeviceTypeUnknown  DeviceType = "unknown"
)

// DeviceInfo is per-device metadata fixed at construction time.
type DeviceInfo struct {
	Slot         sdk.Slot
	Type         DeviceType
	Layout       sdk.PhysicalLayout // physical key arrangement; keyboards only
	LegendLayout string             // key legend layout resolved from Locale
	Locale       language.Tag       // locale used to resolve LegendLayout
}

// Device is an initialized peripheral bound to one slot. The device info
// never changes after construction; the lighting framework drives color
// updates through the handle.
type Device struct {
	info     DeviceInfo
	ledCount int
}

// Info returns the device metadata.
func (d *Device) Info() DeviceInfo {
	return d.info
}

// LEDCount returns the number of addressable LEDs the device exposes.
func (d *Device) LEDCount() int {
	return d.ledCount
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s)", d.info.Slot, d.info.Type)
}

// ledCountByLayout maps a physical layout to the LED grid the vendor
// firmware exposes for it. Unknown layouts get the ANSI grid, which every
// supported keyboard at least covers.
var ledCountByLayout = map[sdk.PhysicalLayout]int{
	sdk.LayoutANSI: 104,
	sdk.LayoutISO:  105,
	sdk.LayoutJIS:  108,
}

// initialize performs device-internal setup after construction. For
// keyboards this sizes the LED grid from the physical layout.
func (d *Device) initialize() error {
	switch d.info.Type {
	case DeviceTypeKeyboard:
		count, ok := ledCountByLayout[d.info.Layout]
		if !ok {
			count = ledCountByLayout[sdk.LayoutANSI]
		}

		d.ledCount = count

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDeviceType, d.info.Type)
	}
}
