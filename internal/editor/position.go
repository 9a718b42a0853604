// Package editor defines the position model and the collaborator interfaces
// the assistance core consumes from the host editor.
package editor

import "fmt"

// Space identifies the coordinate space a Position belongs to. One logical
// document may span multiple editor panes, and the coordinates sent to the
// language server may differ from both when documents are transcluded.
type Space int

const (
	// SpaceRoot is the logical document as the user sees it.
	SpaceRoot Space = iota

	// SpaceEditor is a physical editor pane.
	SpaceEditor

	// SpaceVirtual is the coordinate space sent to the language server.
	SpaceVirtual
)

// String returns the space name for logging.
func (s Space) String() string {
	switch s {
	case SpaceRoot:
		return "root"
	case SpaceEditor:
		return "editor"
	case SpaceVirtual:
		return "virtual"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

// Position is a zero-based (line, character-offset) pair in one coordinate
// space. Positions are only comparable within the same space; conversions
// between spaces belong to the Editor collaborator.
type Position struct {
	Line      uint32
	Character uint32
	Space     Space
}

// String formats the position for logging.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Space, p.Line, p.Character)
}

// Comparable reports whether p and other live in the same coordinate space.
func (p Position) Comparable(other Position) bool {
	return p.Space == other.Space
}
