package x11

import (
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// Glyph indices in the standard X cursor font.
const (
	glyphXCursor        = 0
	glyphCircle         = 24
	glyphCrosshair      = 34
	glyphFleur          = 52
	glyphHand2          = 60
	glyphLeftPtr        = 68
	glyphQuestionArrow  = 92
	glyphSbHDoubleArrow = 108
	glyphSbVDoubleArrow = 116
	glyphWatch          = 150
	glyphXterm          = 152
)

var cursorGlyphs = map[platform.CursorIcon]uint16{
	platform.CursorDefault:    glyphLeftPtr,
	platform.CursorHand:       glyphHand2,
	platform.CursorText:       glyphXterm,
	platform.CursorWait:       glyphWatch,
	platform.CursorHelp:       glyphQuestionArrow,
	platform.CursorCrosshair:  glyphCrosshair,
	platform.CursorMove:       glyphFleur,
	platform.CursorNotAllowed: glyphCircle,
	platform.CursorResizeEW:   glyphSbHDoubleArrow,
	platform.CursorResizeNS:   glyphSbVDoubleArrow,
}

// SetCursor changes the window cursor. Cursors are created on first use.
func (w *Window) SetCursor(icon platform.CursorIcon) {
	if icon == w.cursor {
		return
	}
	c, err := w.lookupCursor(icon)
	if err != nil {
		w.logger.Debug("create cursor", "icon", icon.String(), "error", err)
		return
	}
	xproto.ChangeWindowAttributes(w.conn.XUtil.Conn(), w.win.Id, xproto.CwCursor, []uint32{uint32(c)})
	w.cursor = icon
}

func (w *Window) lookupCursor(icon platform.CursorIcon) (xproto.Cursor, error) {
	if c, ok := w.cursors[icon]; ok {
		return c, nil
	}
	var (
		c   xproto.Cursor
		err error
	)
	if icon == platform.CursorHidden {
		c, err = w.blankCursor()
	} else {
		glyph, ok := cursorGlyphs[icon]
		if !ok {
			glyph = glyphXCursor
		}
		c, err = xcursor.CreateCursor(w.conn.XUtil, glyph)
	}
	if err != nil {
		return 0, err
	}
	w.cursors[icon] = c
	return c, nil
}

// blankCursor builds an invisible cursor from a 1x1 empty bitmap.
func (w *Window) blankCursor() (xproto.Cursor, error) {
	conn := w.conn.XUtil.Conn()
	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(w.win.Id), 1, 1).Check(); err != nil {
		return 0, err
	}
	defer xproto.FreePixmap(conn, pix)

	c, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateCursorChecked(conn, c, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check()
	return c, err
}
