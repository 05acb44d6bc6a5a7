package sdk

// Slot identifies one physical controller slot the native SDK can address.
// The set is fixed by the vendor library and known at build time.
type Slot uint8

// Slot indexes as declared by the native SDK. The numeric values are part
// of the native call surface and must not be reordered.
const (
	SlotKeyboardL Slot = iota // full-size keyboard
	SlotKeyboardM             // tenkeyless keyboard
	SlotKeyboardS             // compact keyboard
	SlotMouseL
	SlotMouseS
	SlotMousepad
	SlotHeadset
)

// slotNames is indexed by Slot.
var slotNames = [...]string{
	SlotKeyboardL: "keyboard-l",
	SlotKeyboardM: "keyboard-m",
	SlotKeyboardS: "keyboard-s",
	SlotMouseL:    "mouse-l",
	SlotMouseS:    "mouse-s",
	SlotMousepad:  "mousepad",
	SlotHeadset:   "headset",
}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}

	return "slot-unknown"
}

// Slots returns every addressable slot in the SDK's declared enumeration
// order. The order is stable across calls and across processes.
func Slots() []Slot {
	return []Slot{
		SlotKeyboardL,
		SlotKeyboardM,
		SlotKeyboardS,
		SlotMouseL,
		SlotMouseS,
		SlotMousepad,
		SlotHeadset,
	}
}

// PhysicalLayout describes the key arrangement of a keyboard-class device.
// Only meaningful for keyboard slots.
type PhysicalLayout uint8

const (
	LayoutUnknown PhysicalLayout = iota
	LayoutANSI
	LayoutISO
	LayoutJIS
)

func (l PhysicalLayout) String() string {
	switch l {
	case LayoutANSI:
		return "ansi"
	case LayoutISO:
		return "iso"
	case LayoutJIS:
		return "jis"
	default:
		return "unknown"
	}
}
