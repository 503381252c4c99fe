package engine

import "fmt"

// NotificationKind enumerates what the engine reports back to the host.
type NotificationKind int

const (
	NotifyViewOpened NotificationKind = iota
	NotifyViewClosed
	NotifyNavigationRequested
	NotifyCursorChanged
	NotifyTitleChanged
	NotifyReadyToPresent
	NotifyAnimationStateChanged
	NotifyLoadComplete
	NotifyShutdown
)

var notifyKindNames = map[NotificationKind]string{
	NotifyViewOpened:            "ViewOpened",
	NotifyViewClosed:            "ViewClosed",
	NotifyNavigationRequested:   "NavigationRequested",
	NotifyCursorChanged:         "CursorChanged",
	NotifyTitleChanged:          "TitleChanged",
	NotifyReadyToPresent:        "ReadyToPresent",
	NotifyAnimationStateChanged: "AnimationStateChanged",
	NotifyLoadComplete:          "LoadComplete",
	NotifyShutdown:              "Shutdown",
}

func (k NotificationKind) String() string {
	if name, ok := notifyKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NotificationKind(%d)", int(k))
}

// Cursor is the engine's cursor vocabulary.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorNone
	CursorPointer
	CursorText
	CursorWait
	CursorProgress
	CursorHelp
	CursorCrosshair
	CursorMove
	CursorGrab
	CursorNotAllowed
	CursorEWResize
	CursorNSResize
	CursorZoomIn
	CursorZoomOut
)

// Notification is one outbound engine event, tagged with the view it
// concerns (zero for window-level notifications).
type Notification struct {
	Kind      NotificationKind
	View      ViewHandle
	URL       string
	Title     string
	Cursor    Cursor
	Animating bool
}

func (n Notification) String() string {
	switch n.Kind {
	case NotifyNavigationRequested, NotifyLoadComplete:
		return fmt.Sprintf("%s(%d, %q)", n.Kind, n.View, n.URL)
	case NotifyTitleChanged:
		return fmt.Sprintf("TitleChanged(%d, %q)", n.View, n.Title)
	case NotifyCursorChanged:
		return fmt.Sprintf("CursorChanged(%d)", int(n.Cursor))
	case NotifyAnimationStateChanged:
		return fmt.Sprintf("AnimationStateChanged(%v)", n.Animating)
	default:
		return fmt.Sprintf("%s(%d)", n.Kind, n.View)
	}
}
