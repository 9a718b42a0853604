package assist

import (
	"fmt"
	"strings"
)

// Highlighter renders a signature label with its active parameter substring
// visually marked. The returned string is embedded verbatim inside the
// language-tagged code block.
type Highlighter func(label, activeSubstring, language string) string

// leadSpecials are the Markdown characters that disqualify a candidate lead
// from being split off the details text: splitting across any of these could
// tear a multi-line Markdown construct apart.
const leadSpecials = `\*#[]<>_`

// escapeSpecials are the characters escaped when plain text documentation is
// emitted as Markdown.
const escapeSpecials = "\\`*_#[]<>"

// Formatter turns ingested signature responses into bounded Markdown. It is
// stateless apart from its configuration; identical inputs always produce
// byte-identical output.
type Formatter struct {
	// CollapseThreshold is the maximum number of detail lines rendered
	// before collapsing kicks in.
	CollapseThreshold int

	// Highlight marks the active parameter inside the label code block.
	// When nil the label is rendered unmarked.
	Highlight Highlighter
}

// NewFormatter builds a Formatter from options and an optional highlighter.
func NewFormatter(opts Options, highlight Highlighter) *Formatter {
	threshold := opts.CollapseThreshold
	if threshold < 1 {
		threshold = DefaultCollapseThreshold
	}
	return &Formatter{CollapseThreshold: threshold, Highlight: highlight}
}

// FormatResponse renders a whole response. When the active signature index is
// present and in range only that signature is rendered, with its active
// parameter marked. A lone signature gets the same treatment even without an
// index. Otherwise every signature is rendered unmarked, separated by blank
// lines.
func (f *Formatter) FormatResponse(res *SignatureResponse, language string) string {
	if res == nil || len(res.Signatures) == 0 {
		return ""
	}
	if res.ActiveSignature != nil && int(*res.ActiveSignature) < len(res.Signatures) {
		desc := res.Signatures[*res.ActiveSignature]
		return f.Format(desc, language, desc.EffectiveActiveParameter(res.ActiveParameter))
	}
	if res.ActiveSignature == nil && len(res.Signatures) == 1 {
		// Servers routinely omit activeSignature for a lone signature.
		desc := res.Signatures[0]
		return f.Format(desc, language, desc.EffectiveActiveParameter(res.ActiveParameter))
	}
	if res.ActiveSignature != nil {
		log.Warningf("activeSignature %d out of range for %d signatures", *res.ActiveSignature, len(res.Signatures))
	}
	parts := make([]string, 0, len(res.Signatures))
	for _, desc := range res.Signatures {
		parts = append(parts, strings.TrimRight(f.Format(desc, language, nil), "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Format renders a single signature description: a language-tagged code block
// of the label (active parameter marked when resolvable) followed by its
// details section. Without details the block ends in a single trailing
// newline.
func (f *Formatter) Format(desc SignatureDescription, language string, activeParameter *uint32) string {
	block := f.codeBlock(desc, language, activeParameter)
	details := f.details(desc)
	if details == "" {
		return block + "\n"
	}
	return block + "\n\n" + details
}

func (f *Formatter) codeBlock(desc SignatureDescription, language string, activeParameter *uint32) string {
	body := desc.Label
	if activeParameter != nil {
		index := int(*activeParameter)
		if index >= len(desc.Parameters) {
			log.Errorf("activeParameter %d out of range for %d parameters in %q",
				index, len(desc.Parameters), desc.Label)
		} else if sub, ok := desc.Parameters[index].Label.Resolve(desc.Label); !ok {
			log.Warningf("parameter %d of %q has an unresolvable label", index, desc.Label)
		} else if f.Highlight != nil {
			body = f.Highlight(desc.Label, sub, language)
		}
	}
	return fmt.Sprintf("```%s\n%s\n```", language, body)
}

// details builds the raw details text, then applies the collapsing policy.
func (f *Formatter) details(desc SignatureDescription) string {
	var text string
	switch desc.Doc.Kind {
	case DocPlainText:
		text = plainTextDetails(desc.Doc.Value, desc.Label)
	case DocMarkdown:
		// Verbatim; trust and sanitization are the renderer's concern.
		text = desc.Doc.Value
	default:
		text = parameterBullets(desc.Parameters)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return f.collapse(text)
}

// plainTextDetails escapes plain text documentation line by line, dropping
// any line that merely repeats the signature label.
func plainTextDetails(doc, label string) string {
	trimmedLabel := strings.TrimSpace(label)
	var kept []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == trimmedLabel {
			continue
		}
		kept = append(kept, escapeMarkdown(line))
	}
	return strings.Join(kept, "\n")
}

// parameterBullets synthesizes a bullet list from per-parameter
// documentation when the signature itself carries none.
func parameterBullets(params []Parameter) string {
	var items []string
	for _, param := range params {
		if param.Doc.Kind == DocNone || param.Doc.Value == "" {
			continue
		}
		items = append(items, "- "+escapeMarkdown(param.Doc.Value))
	}
	return strings.Join(items, "\n")
}

func escapeMarkdown(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(escapeSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// collapse bounds the details text: at most CollapseThreshold lines stay
// visible, the rest is folded into a collapsible region. When a safe lead can
// be split off before an early blank line, the lead stays outside the fold.
func (f *Formatter) collapse(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= f.CollapseThreshold {
		return text
	}
	if lead, remainder, ok := extractLead(lines, f.CollapseThreshold); ok {
		return lead + "\n\n" + collapsible(remainder)
	}
	return collapsible(text)
}

// extractLead looks for a blank line within threshold+1 lines and splits the
// text there. The split is only safe when the lead contains none of the
// Markdown special characters, otherwise a multi-line construct could be torn
// across the fold boundary.
func extractLead(lines []string, threshold int) (lead, remainder string, ok bool) {
	limit := threshold + 1
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			continue
		}
		lead = strings.Join(lines[:i], "\n")
		if strings.ContainsAny(lead, leadSpecials) {
			return "", "", false
		}
		return lead, strings.Join(lines[i+1:], "\n"), true
	}
	return "", "", false
}

func collapsible(text string) string {
	return "<details>\n<summary>Details</summary>\n\n" + text + "\n\n</details>"
}
