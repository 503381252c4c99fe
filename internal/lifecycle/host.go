package lifecycle

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/bmatcuk/doublestar/v4"
)

// NavigationPolicy decides whether a view may navigate to url.
type NavigationPolicy interface {
	AllowNavigation(view engine.ViewHandle, url string) bool
}

// CursorMapper maps engine cursors to native icons. ok=false leaves the
// current icon in place.
type CursorMapper interface {
	MapCursor(c engine.Cursor) (icon platform.CursorIcon, ok bool)
}

// Host is the embedder's capability set offered to the controller.
type Host interface {
	NavigationPolicy
	CursorMapper
}

// AllowAll permits every navigation.
type AllowAll struct{}

func (AllowAll) AllowNavigation(engine.ViewHandle, string) bool { return true }

var defaultCursors = map[engine.Cursor]platform.CursorIcon{
	engine.CursorDefault:    platform.CursorDefault,
	engine.CursorNone:       platform.CursorHidden,
	engine.CursorPointer:    platform.CursorHand,
	engine.CursorText:       platform.CursorText,
	engine.CursorWait:       platform.CursorWait,
	engine.CursorProgress:   platform.CursorWait,
	engine.CursorHelp:       platform.CursorHelp,
	engine.CursorCrosshair:  platform.CursorCrosshair,
	engine.CursorMove:       platform.CursorMove,
	engine.CursorGrab:       platform.CursorMove,
	engine.CursorNotAllowed: platform.CursorNotAllowed,
	engine.CursorEWResize:   platform.CursorResizeEW,
	engine.CursorNSResize:   platform.CursorResizeNS,
}

// DefaultCursors maps the common engine cursors; zoom cursors are unmapped.
type DefaultCursors struct{}

func (DefaultCursors) MapCursor(c engine.Cursor) (platform.CursorIcon, bool) {
	icon, ok := defaultCursors[c]
	return icon, ok
}

// DefaultHost allows all navigations and uses DefaultCursors.
type DefaultHost struct {
	AllowAll
	DefaultCursors
}

// PatternPolicy matches URLs against doublestar globs. Deny wins over
// Allow; URLs matching neither get Default.
type PatternPolicy struct {
	Default bool
	Allow   []string
	Deny    []string
	Logger  *slog.Logger
}

func (p PatternPolicy) AllowNavigation(view engine.ViewHandle, url string) bool {
	if p.match(p.Deny, url) {
		return false
	}
	if p.match(p.Allow, url) {
		return true
	}
	return p.Default
}

func (p PatternPolicy) match(patterns []string, url string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, url)
		if err != nil {
			if p.Logger != nil {
				p.Logger.Warn("bad navigation pattern", "pattern", pattern, "error", err)
			}
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first malformed glob.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return &PatternError{Pattern: pattern}
		}
	}
	return nil
}

// PatternError names a glob doublestar cannot parse.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid navigation pattern %q", e.Pattern)
}

// PolicyHost combines a navigation policy with DefaultCursors.
type PolicyHost struct {
	NavigationPolicy
	DefaultCursors
}
