// Package assist implements signature assistance for an LSP-backed editor:
// deciding when to request signature help, correlating late responses with
// the editor state at arrival time, and formatting the result into bounded
// Markdown for the popup widget.
package assist

import (
	"context"
	"math"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/editorkit/lsp-assist/internal/editor"
)

// DocKind tags the documentation variant attached to a signature or
// parameter. The wire shape is duck-typed (bare string or MarkupContent);
// it is resolved once at ingestion and never re-inspected downstream.
type DocKind int

const (
	DocNone DocKind = iota
	DocPlainText
	DocMarkdown
)

// Documentation is documentation text with its resolved markup kind.
type Documentation struct {
	Kind  DocKind
	Value string
}

// ParamLabel identifies a parameter inside its signature label, either as a
// literal substring or as a [Start, End) rune-compatible byte offset range.
type ParamLabel struct {
	Text   string
	Start  uint32
	End    uint32
	Ranged bool
}

// Resolve returns the parameter's substring of the full signature label, or
// ("", false) when an offset range falls outside the label.
func (l ParamLabel) Resolve(label string) (string, bool) {
	if !l.Ranged {
		return l.Text, l.Text != ""
	}
	if l.Start > l.End || int(l.End) > len(label) {
		return "", false
	}
	return label[l.Start:l.End], true
}

// Parameter is one parameter of a signature description.
type Parameter struct {
	Label ParamLabel
	Doc   Documentation
}

// SignatureDescription is one callable signature: the full label, its
// parameters, optional documentation, and an optional active parameter.
type SignatureDescription struct {
	Label           string
	Parameters      []Parameter
	Doc             Documentation
	ActiveParameter *uint32
}

// EffectiveActiveParameter returns the description's own active parameter if
// present, falling back to the response-level value.
func (d SignatureDescription) EffectiveActiveParameter(fallback *uint32) *uint32 {
	if d.ActiveParameter != nil {
		return d.ActiveParameter
	}
	return fallback
}

// SignatureResponse is an ingested textDocument/signatureHelp result.
type SignatureResponse struct {
	Signatures      []SignatureDescription
	ActiveSignature *uint32
	ActiveParameter *uint32
}

// Outcome classifies a settled transport call.
type Outcome int

const (
	// OutcomeSignatures carries a response body (possibly with zero
	// signatures, which hides the popup).
	OutcomeSignatures Outcome = iota

	// OutcomeClose is the server's explicit "no info here" signal: hide
	// the popup if it is shown.
	OutcomeClose

	// OutcomeNoUpdate leaves the popup untouched either way.
	OutcomeNoUpdate
)

// Result is the settled value of one signature help request.
type Result struct {
	Outcome  Outcome
	Response *SignatureResponse
}

// Transport issues signature help requests against the language server. The
// call blocks until the server settles; the controller runs it off the event
// loop and posts the result back.
type Transport interface {
	SignatureHelp(ctx context.Context, uri string, pos editor.Position) (Result, error)
}

// Capabilities is the subset of server-advertised capabilities the feature
// consumes.
type Capabilities struct {
	SignatureHelp     bool
	TriggerCharacters []string
}

// ResponseFrom resolves a protocol-level SignatureHelp into the tagged
// internal model. Duck-typed fields (documentation, parameter labels) are
// normalized here; malformed shapes are logged as protocol violations and
// degrade to the safest variant rather than failing.
func ResponseFrom(help *protocol.SignatureHelp) *SignatureResponse {
	if help == nil {
		return nil
	}
	res := &SignatureResponse{
		ActiveSignature: help.ActiveSignature,
		ActiveParameter: help.ActiveParameter,
	}
	for _, sig := range help.Signatures {
		desc := SignatureDescription{
			Label:           sig.Label,
			Doc:             documentationFrom(sig.Documentation),
			ActiveParameter: sig.ActiveParameter,
		}
		for _, param := range sig.Parameters {
			desc.Parameters = append(desc.Parameters, Parameter{
				Label: paramLabelFrom(param.Label),
				Doc:   documentationFrom(param.Documentation),
			})
		}
		res.Signatures = append(res.Signatures, desc)
	}
	return res
}

// documentationFrom normalizes the string | MarkupContent union. Values
// arriving off the wire decode as map[string]any; values built in-process
// may be typed MarkupContent.
func documentationFrom(value any) Documentation {
	switch v := value.(type) {
	case nil:
		return Documentation{}
	case string:
		return Documentation{Kind: DocPlainText, Value: v}
	case protocol.MarkupContent:
		return Documentation{Kind: markupKind(string(v.Kind)), Value: v.Value}
	case *protocol.MarkupContent:
		if v == nil {
			return Documentation{}
		}
		return Documentation{Kind: markupKind(string(v.Kind)), Value: v.Value}
	case map[string]any:
		kind, _ := v["kind"].(string)
		text, _ := v["value"].(string)
		return Documentation{Kind: markupKind(kind), Value: text}
	default:
		log.Warningf("unexpected documentation shape %T, ignoring", value)
		return Documentation{}
	}
}

func markupKind(kind string) DocKind {
	switch kind {
	case string(protocol.MarkupKindPlainText):
		return DocPlainText
	case string(protocol.MarkupKindMarkdown):
		return DocMarkdown
	default:
		// Unknown markup kinds render verbatim, which Markdown handling
		// already does.
		log.Warningf("unknown documentation markup kind %q, treating as markdown", kind)
		return DocMarkdown
	}
}

// paramLabelFrom normalizes the string | [start, end] union.
func paramLabelFrom(value any) ParamLabel {
	switch v := value.(type) {
	case string:
		return ParamLabel{Text: v}
	case [2]protocol.UInteger:
		return ParamLabel{Start: uint32(v[0]), End: uint32(v[1]), Ranged: true}
	case []protocol.UInteger:
		if len(v) == 2 {
			return ParamLabel{Start: uint32(v[0]), End: uint32(v[1]), Ranged: true}
		}
	case []any:
		if len(v) == 2 {
			start, okStart := offsetFrom(v[0])
			end, okEnd := offsetFrom(v[1])
			if okStart && okEnd {
				return ParamLabel{Start: start, End: end, Ranged: true}
			}
		}
	}
	log.Warningf("unexpected parameter label shape %T, ignoring", value)
	return ParamLabel{}
}

// offsetFrom accepts the numeric types JSON decoding and in-process
// construction produce for label offsets.
func offsetFrom(value any) (uint32, bool) {
	switch n := value.(type) {
	case float64:
		if math.IsNaN(n) || n < 0 || n > math.MaxUint32 {
			return 0, false
		}
		return uint32(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	case uint32:
		return n, true
	default:
		return 0, false
	}
}

// CapabilitiesFrom extracts the signature help capabilities the feature
// consumes from a server's advertised SignatureHelpOptions. A nil options
// value means the server does not support signature help at all.
func CapabilitiesFrom(options *protocol.SignatureHelpOptions) Capabilities {
	if options == nil {
		return Capabilities{}
	}
	return Capabilities{
		SignatureHelp:     true,
		TriggerCharacters: options.TriggerCharacters,
	}
}
