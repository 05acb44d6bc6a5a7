package provider

import "github.com/prismrgb/prismd/internal/sdk"

// deviceTypeBySlot is the static classification table. Slots without an
// entry are not a supported peripheral category.
var deviceTypeBySlot = map[sdk.Slot]DeviceType{
	sdk.SlotKeyboardL: DeviceTypeKeyboard,
	sdk.SlotKeyboardM: DeviceTypeKeyboard,
	sdk.SlotKeyboardS: DeviceTypeKeyboard,
}

// Classify maps a hardware slot to its peripheral category. Pure and total:
// the same slot always yields the same type, and unrecognized slots
// classify as DeviceTypeUnknown.
func Classify(slot sdk.Slot) DeviceType {
	if deviceType, ok := deviceTypeBySlot[slot]; ok {
		return deviceType
	}

	return DeviceTypeUnknown
}
