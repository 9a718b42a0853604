package assist

import (
	"context"

	"github.com/editorkit/lsp-assist/internal/editor"
)

// Controller wires editor events to the trigger detector and correlator,
// runs transport calls off the event loop, and owns the popup under this
// feature's session identity. All state mutation happens on the single
// goroutine draining the event queue; transport goroutines only post
// closures back.
type Controller struct {
	editor     editor.Editor
	popup      editor.Popup
	transport  Transport
	caps       Capabilities
	opts       Options
	formatter  *Formatter
	detector   *TriggerDetector
	correlator *Correlator
	events     chan func()
	ctx        context.Context
}

// NewController assembles the feature over its collaborators. The
// highlighter may be nil, in which case labels render unmarked.
func NewController(ed editor.Editor, popup editor.Popup, transport Transport, caps Capabilities, opts Options, highlight Highlighter) *Controller {
	return &Controller{
		editor:     ed,
		popup:      popup,
		transport:  transport,
		caps:       caps,
		opts:       opts,
		formatter:  NewFormatter(opts, highlight),
		detector:   NewTriggerDetector(caps.TriggerCharacters),
		correlator: NewCorrelator(ed, popup, caps.TriggerCharacters),
		events:     make(chan func(), 64),
		ctx:        context.Background(),
	}
}

// Observe subscribes to completion-list activity. A visible or active
// completion item takes precedence over signature help, so either event
// hides the popup.
func (c *Controller) Observe(observer editor.CompletionObserver) {
	observer.OnItemShown(func() { c.post(c.hidePopup) })
	observer.OnItemActive(func() { c.post(c.hidePopup) })
}

// Run drains the event queue until the context is cancelled. Editor events
// and response settlements are processed strictly in arrival order.
func (c *Controller) Run(ctx context.Context) {
	c.ctx = ctx
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.events:
			fn()
		}
	}
}

// CursorActivity reports a buffer change or cursor movement together with
// the character just typed or deleted ("" when the cursor merely moved).
func (c *Controller) CursorActivity(lastChar string) {
	c.post(func() { c.cursorActivity(lastChar) })
}

// FocusLost reports that the editor pane lost input focus. The popup stays
// up only when focus moved onto the popup itself.
func (c *Controller) FocusLost(focusOnPopup bool) {
	c.post(func() { c.focusLost(focusOnPopup) })
}

func (c *Controller) post(fn func()) {
	c.events <- fn
}

func (c *Controller) cursorActivity(lastChar string) {
	if !c.caps.SignatureHelp {
		return
	}
	shown := c.popup.IsShown(PopupSessionID)
	if !c.detector.ShouldRequest(lastChar, shown) {
		return
	}

	session := c.correlator.IssueRequest(c.editor.CursorPosition(), shown)
	uri := c.editor.URI()
	virtual := c.editor.RootToVirtual(session.Requested())

	go func() {
		res, err := c.transport.SignatureHelp(c.ctx, uri, virtual)
		c.post(func() { c.settle(session, res, err) })
	}()
}

// settle applies the correlator's decision for one settled transport call.
// A failed call carries no information about whether the existing help is
// still valid, so the popup is left as-is.
func (c *Controller) settle(session *Session, res Result, err error) {
	if err != nil {
		log.Warningf("signature help request failed: %s", err.Error())
		return
	}
	decision := c.correlator.OnResponse(session, res)
	switch decision.Kind {
	case DecisionIgnore, DecisionKeep:
	case DecisionHide:
		c.hidePopup()
	case DecisionShow:
		content := c.formatter.FormatResponse(decision.Response, c.editor.Language())
		c.popup.ShowOrCreate(editor.PopupSpec{
			Content:   content,
			Anchor:    decision.Anchor,
			SessionID: PopupSessionID,
			ClassName: c.opts.ClassName,
			Placement: editor.PlacementHints{
				Prefer:   c.opts.Placement,
				MaxWidth: c.opts.MaxWidth,
			},
		})
	}
}

func (c *Controller) focusLost(focusOnPopup bool) {
	if focusOnPopup {
		return
	}
	c.hidePopup()
}

func (c *Controller) hidePopup() {
	if c.popup.IsShown(PopupSessionID) {
		c.popup.Hide()
	}
}
