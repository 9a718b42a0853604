package editor

// Editor is the read-only view of the host editor pane the assistance core
// needs: cursor, focus, document text, and position-space conversions.
// Implementations are provided by the host; the core never mutates the
// editor through this interface.
type Editor interface {
	// CursorPosition returns the current cursor position in root space.
	CursorPosition() Position

	// HasFocus reports whether the pane currently has input focus.
	HasFocus() bool

	// Text returns the full text of the logical (root) document.
	Text() string

	// URI returns the document URI used in language server requests.
	URI() string

	// Language returns the document's language identifier (e.g. "python").
	Language() string

	// RootToVirtual converts a root-space position to the coordinate space
	// sent to the language server.
	RootToVirtual(Position) Position

	// VirtualToRoot converts a server-space position back to root space.
	VirtualToRoot(Position) Position

	// RootToEditor converts a root-space position to pane coordinates.
	RootToEditor(Position) Position

	// EditorToRoot converts pane coordinates to root space.
	EditorToRoot(Position) Position
}

// PlacementHints carries non-binding layout preferences for the popup.
type PlacementHints struct {
	// Prefer is "above", "below" or "auto".
	Prefer string

	// MaxWidth limits the popup width in columns; zero means no limit.
	MaxWidth int
}

// PopupSpec describes one show-or-update call against the popup widget.
type PopupSpec struct {
	Content   string
	Anchor    Position
	SessionID string
	ClassName string
	Placement PlacementHints
}

// Popup is the tooltip widget collaborator. At most one popup is shown per
// editor at a time; the SessionID field guards against clobbering popups
// owned by unrelated features.
type Popup interface {
	ShowOrCreate(PopupSpec)
	Hide()

	// IsShown reports whether a popup with the given session identity is
	// currently visible.
	IsShown(sessionID string) bool

	// AnchorPosition returns the anchor of the currently displayed popup.
	// Only meaningful while IsShown is true.
	AnchorPosition() Position
}

// CompletionObserver delivers the two completion-list events the assistance
// core reacts to. How visibility or activation is detected is the host's
// concern; the core only consumes the notifications.
type CompletionObserver interface {
	// OnItemShown registers a callback fired when a completion item
	// becomes visible.
	OnItemShown(func())

	// OnItemActive registers a callback fired when a completion item
	// becomes the active selection.
	OnItemActive(func())
}
