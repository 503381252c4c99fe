package x11

import (
	"image"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Core protocol button numbers.
const (
	buttonLeft       xproto.Button = 1
	buttonMiddle     xproto.Button = 2
	buttonRight      xproto.Button = 3
	buttonWheelUp    xproto.Button = 4
	buttonWheelDown  xproto.Button = 5
	buttonWheelLeft  xproto.Button = 6
	buttonWheelRight xproto.Button = 7
)

func button(b xproto.Button) platform.Button {
	switch b {
	case buttonLeft:
		return platform.ButtonLeft
	case buttonMiddle:
		return platform.ButtonMiddle
	case buttonRight:
		return platform.ButtonRight
	default:
		return platform.ButtonOther
	}
}

// wheelDelta maps wheel buttons to a one-line scroll. Positive Y is down.
func wheelDelta(b xproto.Button) (image.Point, bool) {
	switch b {
	case buttonWheelUp:
		return image.Pt(0, -1), true
	case buttonWheelDown:
		return image.Pt(0, 1), true
	case buttonWheelLeft:
		return image.Pt(-1, 0), true
	case buttonWheelRight:
		return image.Pt(1, 0), true
	}
	return image.Point{}, false
}

func modifiers(state uint16) engine.Modifiers {
	var m engine.Modifiers
	if state&xproto.ModMaskShift != 0 {
		m |= engine.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= engine.ModControl
	}
	if state&xproto.ModMask1 != 0 {
		m |= engine.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= engine.ModSuper
	}
	return m
}

func keyName(xu *xgbutil.XUtil, state uint16, code xproto.Keycode) string {
	return keybind.LookupString(xu, state, code)
}
