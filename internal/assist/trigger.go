package assist

// TriggerDetector decides whether a keystroke should start or refresh a
// signature help request, based on the trigger characters the server
// advertised at initialization.
type TriggerDetector struct {
	triggers map[string]struct{}
}

// NewTriggerDetector builds a detector for the advertised trigger set. An
// empty set means no keystroke ever starts a request on its own.
func NewTriggerDetector(triggerCharacters []string) *TriggerDetector {
	set := make(map[string]struct{}, len(triggerCharacters))
	for _, ch := range triggerCharacters {
		set[ch] = struct{}{}
	}
	return &TriggerDetector{triggers: set}
}

// ShouldRequest reports whether a request should fire after the given typed
// or deleted character. While the popup is already shown every keystroke
// refreshes it, because the active parameter can change without a fresh
// trigger character (deleting a comma, typing inside an argument).
func (d *TriggerDetector) ShouldRequest(lastChar string, popupShown bool) bool {
	if popupShown {
		return true
	}
	_, ok := d.triggers[lastChar]
	return ok
}

// TriggerCharacters returns the advertised trigger characters, in no
// particular order.
func (d *TriggerDetector) TriggerCharacters() []string {
	chars := make([]string, 0, len(d.triggers))
	for ch := range d.triggers {
		chars = append(chars, ch)
	}
	return chars
}
