package assist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bracketMark is a minimal highlighter for tests: wraps the active substring
// in square-ish markers so assertions stay readable.
func bracketMark(label, active, language string) string {
	index := strings.Index(label, active)
	if index < 0 {
		return label
	}
	return label[:index] + "«" + active + "»" + label[index+len(active):]
}

func uptr(n uint32) *uint32 {
	return &n
}

func rangedParam(start, end uint32) Parameter {
	return Parameter{Label: ParamLabel{Start: start, End: end, Ranged: true}}
}

func newTestFormatter() *Formatter {
	return NewFormatter(DefaultOptions(), bracketMark)
}

func TestFormatHighlightsActiveParameter(t *testing.T) {
	desc := SignatureDescription{
		Label:      "foo(a, b)",
		Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)},
	}

	got := newTestFormatter().Format(desc, "python", uptr(1))

	assert.Equal(t, "```python\nfoo(a, «b»)\n```\n", got)
}

func TestFormatLiteralSubstringLabel(t *testing.T) {
	desc := SignatureDescription{
		Label: "add(x: Integer, y: Integer)",
		Parameters: []Parameter{
			{Label: ParamLabel{Text: "x: Integer"}},
			{Label: ParamLabel{Text: "y: Integer"}},
		},
	}

	got := newTestFormatter().Format(desc, "dwscript", uptr(0))

	assert.Equal(t, "```dwscript\nadd(«x: Integer», y: Integer)\n```\n", got)
}

func TestFormatActiveParameterOutOfRange(t *testing.T) {
	desc := SignatureDescription{
		Label:      "foo(a, b)",
		Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)},
	}

	got := newTestFormatter().Format(desc, "python", uptr(5))

	assert.Equal(t, "```python\nfoo(a, b)\n```\n", got,
		"out-of-range active parameter must fall back to the unmarked label")
}

func TestFormatNoActiveParameter(t *testing.T) {
	desc := SignatureDescription{Label: "bar()"}

	got := newTestFormatter().Format(desc, "go", nil)

	assert.Equal(t, "```go\nbar()\n```\n", got)
}

func TestFormatDropsLabelLineFromPlainTextDoc(t *testing.T) {
	desc := SignatureDescription{
		Label: "foo(a, b)",
		Doc: Documentation{
			Kind:  DocPlainText,
			Value: "  foo(a, b)  \nAdds a and b.",
		},
	}

	got := newTestFormatter().Format(desc, "python", nil)

	assert.NotContains(t, got, "foo(a, b)\nAdds")
	assert.Contains(t, got, "Adds a and b.")
	assert.Equal(t, 1, strings.Count(got, "foo(a, b)"), "label must appear only in the code block")
}

func TestFormatEscapesPlainTextDoc(t *testing.T) {
	desc := SignatureDescription{
		Label: "f()",
		Doc: Documentation{
			Kind:  DocPlainText,
			Value: "uses *args and [options] <here>_",
		},
	}

	got := newTestFormatter().Format(desc, "python", nil)

	assert.Contains(t, got, `uses \*args and \[options\] \<here\>\_`)
}

func TestFormatMarkdownDocVerbatim(t *testing.T) {
	desc := SignatureDescription{
		Label: "f()",
		Doc: Documentation{
			Kind:  DocMarkdown,
			Value: "some **bold** claim",
		},
	}

	got := newTestFormatter().Format(desc, "go", nil)

	assert.Equal(t, "```go\nf()\n```\n\nsome **bold** claim", got)
}

func TestFormatSynthesizesParameterBullets(t *testing.T) {
	desc := SignatureDescription{
		Label: "open(path, mode)",
		Parameters: []Parameter{
			{Label: ParamLabel{Text: "path"}, Doc: Documentation{Kind: DocPlainText, Value: "file to open"}},
			{Label: ParamLabel{Text: "mode"}},
		},
	}

	got := newTestFormatter().Format(desc, "python", nil)

	assert.Contains(t, got, "- file to open")
	assert.Equal(t, 1, strings.Count(got, "- "), "undocumented parameters get no bullet")
}

func TestCollapsingThreshold(t *testing.T) {
	tests := []struct {
		name      string
		lines     int
		collapsed bool
	}{
		{name: "under threshold", lines: 3, collapsed: false},
		{name: "at threshold", lines: 4, collapsed: false},
		{name: "over threshold", lines: 5, collapsed: true},
		{name: "well over threshold", lines: 12, collapsed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var docLines []string
			for i := 0; i < tt.lines; i++ {
				docLines = append(docLines, "detail line")
			}
			desc := SignatureDescription{
				Label: "f()",
				Doc:   Documentation{Kind: DocMarkdown, Value: strings.Join(docLines, "\n")},
			}

			got := newTestFormatter().Format(desc, "go", nil)

			if tt.collapsed {
				assert.Equal(t, 1, strings.Count(got, "<details>"), "exactly one collapsible region")
			} else {
				assert.NotContains(t, got, "<details>")
			}
		})
	}
}

func TestExtractLeadSplitsAtEarlyBlankLine(t *testing.T) {
	doc := "First line.\nSecond line.\n\nTail one.\nTail two.\nTail three."
	desc := SignatureDescription{
		Label: "f()",
		Doc:   Documentation{Kind: DocMarkdown, Value: doc},
	}

	got := newTestFormatter().Format(desc, "go", nil)

	require.Contains(t, got, "<details>")
	lead, rest, found := strings.Cut(got, "<details>")
	require.True(t, found)
	assert.Contains(t, lead, "First line.\nSecond line.")
	assert.NotContains(t, lead, "Tail one.")
	assert.Contains(t, rest, "Tail one.\nTail two.\nTail three.")
}

func TestExtractLeadRejectsMarkdownSpecials(t *testing.T) {
	tests := []struct {
		name string
		lead string
	}{
		{name: "asterisk", lead: "has *emphasis*"},
		{name: "bracket", lead: "has [link]"},
		{name: "hash", lead: "# heading"},
		{name: "angle", lead: "has <tag>"},
		{name: "underscore", lead: "has _underscore_"},
		{name: "backslash", lead: `has \escape`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.lead + "\n\nTail one.\nTail two.\nTail three.\nTail four."
			desc := SignatureDescription{
				Label: "f()",
				Doc:   Documentation{Kind: DocMarkdown, Value: doc},
			}

			got := newTestFormatter().Format(desc, "go", nil)

			// The whole details text collapses instead of splitting.
			require.Equal(t, 1, strings.Count(got, "<details>"))
			lead, _, _ := strings.Cut(got, "<details>")
			assert.NotContains(t, lead, tt.lead)
		})
	}
}

func TestExtractLeadNoBlankLineWithinThreshold(t *testing.T) {
	doc := "one\ntwo\nthree\nfour\nfive\nsix\n\nseven"
	desc := SignatureDescription{
		Label: "f()",
		Doc:   Documentation{Kind: DocMarkdown, Value: doc},
	}

	got := newTestFormatter().Format(desc, "go", nil)

	require.Equal(t, 1, strings.Count(got, "<details>"))
	lead, _, _ := strings.Cut(got, "<details>")
	assert.NotContains(t, lead, "one", "blank line past the threshold means no lead split")
}

func TestFormatResponseSingleActiveSignature(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{Label: "foo(a, b)", Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)}},
			{Label: "foo(a)", Parameters: []Parameter{rangedParam(4, 5)}},
		},
		ActiveSignature: uptr(0),
		ActiveParameter: uptr(1),
	}

	got := newTestFormatter().FormatResponse(res, "python")

	assert.Contains(t, got, "«b»")
	assert.NotContains(t, got, "foo(a)\n", "only the active signature is rendered")
}

func TestFormatResponseDescriptionOverridesFallbackParameter(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{
				Label:           "foo(a, b)",
				Parameters:      []Parameter{rangedParam(4, 5), rangedParam(7, 8)},
				ActiveParameter: uptr(0),
			},
		},
		ActiveSignature: uptr(0),
		ActiveParameter: uptr(1),
	}

	got := newTestFormatter().FormatResponse(res, "python")

	assert.Contains(t, got, "«a»")
}

func TestFormatResponseLoneSignatureWithoutActiveIndex(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{Label: "foo(a, b)", Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)}},
		},
		ActiveParameter: uptr(1),
	}

	got := newTestFormatter().FormatResponse(res, "python")

	assert.Contains(t, got, "«b»", "fallback active parameter applies without an activeSignature index")
}

func TestFormatResponseNoActiveSignatureRendersAll(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{Label: "foo(a, b)", Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)}},
			{Label: "foo(a)", Parameters: []Parameter{rangedParam(4, 5)}},
		},
		ActiveParameter: uptr(1),
	}

	got := newTestFormatter().FormatResponse(res, "python")

	assert.Equal(t, 2, strings.Count(got, "```python"))
	assert.NotContains(t, got, "«", "no highlighting without an active signature")
	assert.Contains(t, got, "```\n\n```python", "signatures separated by a blank line")
}

func TestFormatResponseActiveSignatureOutOfRange(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{Label: "foo(a)"},
			{Label: "foo(a, b)"},
		},
		ActiveSignature: uptr(9),
	}

	got := newTestFormatter().FormatResponse(res, "go")

	assert.Equal(t, 2, strings.Count(got, "```go"))
	assert.NotContains(t, got, "«")
}

func TestFormatResponseEmpty(t *testing.T) {
	assert.Empty(t, newTestFormatter().FormatResponse(nil, "go"))
	assert.Empty(t, newTestFormatter().FormatResponse(&SignatureResponse{}, "go"))
}

func TestFormatIsDeterministic(t *testing.T) {
	res := &SignatureResponse{
		Signatures: []SignatureDescription{
			{
				Label:      "foo(a, b)",
				Parameters: []Parameter{rangedParam(4, 5), rangedParam(7, 8)},
				Doc: Documentation{
					Kind:  DocPlainText,
					Value: "Line one.\n\nLine two.\nLine three.\nLine four.\nLine five.",
				},
			},
		},
		ActiveSignature: uptr(0),
		ActiveParameter: uptr(1),
	}
	formatter := newTestFormatter()

	first := formatter.FormatResponse(res, "python")
	second := formatter.FormatResponse(res, "python")

	assert.Equal(t, first, second)
}

func TestNewFormatterClampsThreshold(t *testing.T) {
	formatter := NewFormatter(Options{CollapseThreshold: 0}, nil)
	assert.Equal(t, DefaultCollapseThreshold, formatter.CollapseThreshold)
}
