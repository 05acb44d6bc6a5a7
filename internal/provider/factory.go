package provider

import (
	"golang.org/x/text/language"

	"github.com/prismrgb/prismd/internal/sdk"
)

// legendLayouts are the key legend layouts the supported keyboards ship
// with. The matcher picks the closest one for the caller's locale.
var legendLayouts = []language.Tag{
	language.MustParse("en-US"), // first entry is the fallback
	language.MustParse("en-GB"),
	language.MustParse("de-DE"),
	language.MustParse("fr-FR"),
	language.MustParse("es-ES"),
	language.MustParse("it-IT"),
	language.MustParse("ja-JP"),
}

var legendMatcher = language.NewMatcher(legendLayouts)

// legendLayoutFor resolves the keyboard legend layout for a locale.
func legendLayoutFor(tag language.Tag) string {
	_, index, _ := legendMatcher.Match(tag)

	return legendLayouts[index].String()
}

// buildDevice constructs and initializes a typed device for a present slot.
// Failures come back as *InitializationError carrying the slot.
func buildDevice(sess *sdk.Session, slot sdk.Slot, deviceType DeviceType, loc language.Tag) (*Device, error) {
	if deviceType != DeviceTypeKeyboard {
		return nil, &InitializationError{Slot: slot, Kind: ErrUnsupportedDeviceType}
	}

	layout, err := sess.Layout(slot)
	if err != nil {
		return nil, &InitializationError{Slot: slot, Kind: ErrDeviceInitFailed, Cause: err}
	}

	device := &Device{
		info: DeviceInfo{
			Slot:         slot,
			Type:         deviceType,
			Layout:       layout,
			LegendLayout: legendLayoutFor(loc),
			Locale:       loc,
		},
	}

	if err := device.initialize(); err != nil {
		return nil, &InitializationError{Slot: slot, Kind: ErrDeviceInitFailed, Cause: err}
	}

	if err := sess.EnableLEDControl(slot, true); err != nil {
		return nil, &InitializationError{Slot: slot, Kind: ErrDeviceInitFailed, Cause: err}
	}

	return device, nil
}
