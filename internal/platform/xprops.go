package platform

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// keysymPeriod is XK_period
const keysymPeriod xproto.Keysym = 0x002e

// vkKeysyms maps the virtual key codes used for hotkeys to X keysyms
var vkKeysyms = map[uint]xproto.Keysym{
	VK_OEM_PERIOD: keysymPeriod,
}

// lockMasks are the modifier states a grab must also cover so Caps Lock
// and Num Lock do not swallow the hotkey
var lockMasks = []uint16{
	0,
	xproto.ModMaskLock,
	xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2,
}

// cardinals decodes a format-32 property value
func cardinals(value []byte) []uint32 {
	vals := make([]uint32, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		vals = append(vals, xgb.Get32(value[i:]))
	}
	return vals
}

// workAreaFromCardinals reads the first desktop's rectangle from a
// _NET_WORKAREA value (x, y, width, height per desktop)
func workAreaFromCardinals(vals []uint32) (x, y, width, height int, ok bool) {
	if len(vals) < 4 || vals[2] == 0 || vals[3] == 0 {
		return 0, 0, 0, 0, false
	}
	return int(int32(vals[0])), int(int32(vals[1])), int(vals[2]), int(vals[3]), true
}

// x11Modifiers converts Mod* flags to an X modifier mask
func x11Modifiers(mods uint) uint16 {
	var mask uint16
	if mods&ModAlt != 0 {
		mask |= xproto.ModMask1
	}
	if mods&ModCtrl != 0 {
		mask |= xproto.ModMaskControl
	}
	if mods&ModShift != 0 {
		mask |= xproto.ModMaskShift
	}
	if mods&ModWin != 0 {
		mask |= xproto.ModMask4
	}
	return mask
}

// stripLockMasks drops Caps Lock and Num Lock from a key event state
func stripLockMasks(state uint16) uint16 {
	return state &^ (xproto.ModMaskLock | xproto.ModMask2)
}

// keycodeForKeysym finds the first keycode producing want in a keyboard
// mapping that starts at first with perCode keysyms per keycode
func keycodeForKeysym(first xproto.Keycode, perCode byte, syms []xproto.Keysym, want xproto.Keysym) (xproto.Keycode, bool) {
	if perCode == 0 {
		return 0, false
	}
	for i, s := range syms {
		if s == want {
			return first + xproto.Keycode(i/int(perCode)), true
		}
	}
	return 0, false
}
