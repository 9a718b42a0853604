package assist

import (
	"strings"

	"github.com/editorkit/lsp-assist/internal/editor"
)

// Session records the editor state at the moment a request was issued. It is
// the token a settling response is correlated against; sessions are compared
// by identity, never by value.
type Session struct {
	requested  editor.Position
	anchor     *editor.Position
	superseded bool
}

// Requested returns the root-space cursor position captured at issue time.
func (s *Session) Requested() editor.Position {
	return s.requested
}

// Superseded reports whether a newer request has replaced this session. A
// superseded session's response is discarded without touching the popup.
func (s *Session) Superseded() bool {
	return s.superseded
}

// DecisionKind is the disposition of a settled response.
type DecisionKind int

const (
	// DecisionIgnore discards the response without any popup mutation.
	DecisionIgnore DecisionKind = iota

	// DecisionHide hides the popup if it is currently shown.
	DecisionHide

	// DecisionKeep leaves the popup untouched either way.
	DecisionKeep

	// DecisionShow shows or updates the popup with Response at Anchor.
	DecisionShow
)

// Decision is the correlator's verdict on one settled response.
type Decision struct {
	Kind     DecisionKind
	Response *SignatureResponse
	Anchor   editor.Position
}

// Correlator owns the single in-flight assistance session per editor and
// decides whether asynchronous responses are still relevant when they
// arrive. There is no locking anywhere: all calls happen on the event loop,
// and correctness comes from comparing the recorded session snapshot against
// the live editor state.
type Correlator struct {
	editor   editor.Editor
	popup    editor.Popup
	triggers []string
	current  *Session
}

// NewCorrelator builds a correlator over the given collaborators. The
// trigger characters are used for anchor selection when no popup anchor can
// be reused.
func NewCorrelator(ed editor.Editor, popup editor.Popup, triggerCharacters []string) *Correlator {
	return &Correlator{editor: ed, popup: popup, triggers: triggerCharacters}
}

// IssueRequest opens a new session at the given root-space cursor position,
// superseding any session still in flight. When the popup is already visible
// its displayed anchor is captured so an accepted update keeps the popup in
// place.
func (c *Correlator) IssueRequest(pos editor.Position, popupShown bool) *Session {
	session := &Session{requested: pos}
	if popupShown {
		anchor := c.popup.AnchorPosition()
		session.anchor = &anchor
	}
	if c.current != nil {
		c.current.superseded = true
		log.Debugf("superseding request issued at %s", c.current.requested)
	}
	c.current = session
	return session
}

// OnResponse decides the disposition of a settled response for the given
// session. The cursor and focus are read live at callback time, not from the
// session snapshot; the snapshot only tells us where the request was made.
func (c *Correlator) OnResponse(session *Session, res Result) Decision {
	if session.superseded {
		log.Debugf("discarding response for superseded request at %s", session.requested)
		return Decision{Kind: DecisionIgnore}
	}
	if session == c.current {
		c.current = nil
	}

	switch res.Outcome {
	case OutcomeClose:
		return Decision{Kind: DecisionHide}
	case OutcomeNoUpdate:
		return Decision{Kind: DecisionKeep}
	}
	if res.Response == nil || len(res.Response.Signatures) == 0 {
		return Decision{Kind: DecisionHide}
	}

	cursor := c.editor.CursorPosition()
	if !cursor.Comparable(session.requested) {
		log.Warningf("cursor %s not comparable with request position %s", cursor, session.requested)
		return Decision{Kind: DecisionHide}
	}
	if cursor.Line != session.requested.Line {
		log.Debugf("stale response: cursor left line %d for %d", session.requested.Line, cursor.Line)
		return Decision{Kind: DecisionHide}
	}
	if cursor.Character < session.requested.Character {
		log.Debugf("stale response: cursor receded to %d before %d", cursor.Character, session.requested.Character)
		return Decision{Kind: DecisionHide}
	}
	if !c.editor.HasFocus() {
		log.Debugf("stale response: editor lost focus")
		return Decision{Kind: DecisionHide}
	}

	return Decision{
		Kind:     DecisionShow,
		Response: res.Response,
		Anchor:   c.anchorFor(session, cursor),
	}
}

// anchorFor picks the popup anchor: the prior popup anchor when the request
// was issued over a visible popup (keeps updates visually stable), else the
// last trigger character before the cursor, else the cursor itself.
func (c *Correlator) anchorFor(session *Session, cursor editor.Position) editor.Position {
	if session.anchor != nil {
		return *session.anchor
	}
	if pos, ok := lastTriggerBefore(c.editor.Text(), cursor, c.triggers); ok {
		return pos
	}
	return cursor
}

// lastTriggerBefore scans backward from the cursor through the document text
// for the last occurrence of any trigger character. Offsets are counted in
// runes to match editor character offsets.
func lastTriggerBefore(text string, cursor editor.Position, triggers []string) (editor.Position, bool) {
	set := make(map[rune]struct{}, len(triggers))
	for _, trigger := range triggers {
		runes := []rune(trigger)
		if len(runes) == 1 {
			set[runes[0]] = struct{}{}
		}
	}
	if len(set) == 0 {
		return editor.Position{}, false
	}

	lines := strings.Split(text, "\n")
	start := int(cursor.Line)
	if start >= len(lines) {
		start = len(lines) - 1
	}
	for l := start; l >= 0; l-- {
		runes := []rune(lines[l])
		end := len(runes)
		if l == int(cursor.Line) && int(cursor.Character) < end {
			end = int(cursor.Character)
		}
		for i := end - 1; i >= 0; i-- {
			if _, ok := set[runes[i]]; ok {
				return editor.Position{Line: uint32(l), Character: uint32(i), Space: cursor.Space}, true
			}
		}
	}
	return editor.Position{}, false
}
