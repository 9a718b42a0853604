// Package highlight provides the default code-highlighting callback used by
// the signature formatter: it marks the active parameter substring inside the
// signature label.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lsp-assist.highlight")

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Mark wraps the first occurrence of the active parameter substring in a
// <mark> element. The language is resolved against the chroma lexer registry
// so misspelled or unknown language identifiers surface in the debug log
// instead of silently producing an untagged block downstream.
func Mark(label, activeSubstring, language string) string {
	if lexers.Get(language) == nil {
		log.Debugf("no lexer registered for language %q", language)
	}
	if activeSubstring == "" {
		return label
	}
	index := strings.Index(label, activeSubstring)
	if index < 0 {
		log.Debugf("active parameter %q not found in label %q", activeSubstring, label)
		return label
	}
	return label[:index] + markOpen + activeSubstring + markClose + label[index+len(activeSubstring):]
}

// Language canonicalizes a language identifier via the chroma registry,
// resolving aliases like "py" to "python". Unknown identifiers are returned
// unchanged.
func Language(name string) string {
	lexer := lexers.Get(name)
	if lexer == nil {
		return name
	}
	return strings.ToLower(lexer.Config().Name)
}
