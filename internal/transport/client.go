// Package transport implements the language server side of signature
// assistance: a JSON-RPC client speaking LSP to a server process, exposing
// only the calls the feature consumes.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/editorkit/lsp-assist/internal/assist"
	"github.com/editorkit/lsp-assist/internal/editor"
)

var log = commonlog.GetLogger("lsp-assist.transport")

const closeTimeout = 5 * time.Second

// Client is an LSP JSON-RPC client bound to one server connection. It
// implements assist.Transport.
type Client struct {
	conn *jsonrpc2.Conn
	cmd  *exec.Cmd
	caps assist.Capabilities
}

var _ assist.Transport = (*Client)(nil)

// Connect wraps an established byte stream (Content-Length framed, the
// VSCode codec) in a client. Used directly by tests; production callers go
// through Spawn.
func Connect(rwc io.ReadWriteCloser) *Client {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, handler{})
	return &Client{conn: conn}
}

// Spawn starts a language server process and connects to it over stdio.
func Spawn(ctx context.Context, name string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start language server %q: %w", name, err)
	}

	client := Connect(stdio{in: stdin, out: stdout})
	client.cmd = cmd
	return client, nil
}

// Initialize performs the initialize/initialized handshake and captures the
// signature help capabilities the server advertises.
func (c *Client) Initialize(ctx context.Context, rootURI string) (assist.Capabilities, error) {
	params := protocol.InitializeParams{
		RootURI:      &rootURI,
		Capabilities: protocol.ClientCapabilities{},
	}

	var raw json.RawMessage
	if err := c.conn.Call(ctx, "initialize", params, &raw); err != nil {
		return assist.Capabilities{}, fmt.Errorf("initialize: %w", err)
	}

	// Only the signature help options are consumed; the rest of the
	// capability surface stays opaque.
	var result struct {
		Capabilities struct {
			SignatureHelpProvider *protocol.SignatureHelpOptions `json:"signatureHelpProvider"`
		} `json:"capabilities"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return assist.Capabilities{}, fmt.Errorf("decode initialize result: %w", err)
	}

	if err := c.conn.Notify(ctx, "initialized", protocol.InitializedParams{}); err != nil {
		return assist.Capabilities{}, fmt.Errorf("initialized: %w", err)
	}

	c.caps = assist.CapabilitiesFrom(result.Capabilities.SignatureHelpProvider)
	log.Infof("server capabilities: signatureHelp=%t triggers=%v",
		c.caps.SignatureHelp, c.caps.TriggerCharacters)
	return c.caps, nil
}

// Capabilities returns the capabilities captured by Initialize.
func (c *Client) Capabilities() assist.Capabilities {
	return c.caps
}

// DidOpen announces a document to the server.
func (c *Client) DidOpen(ctx context.Context, uri, languageID, text string) error {
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	}
	if err := c.conn.Notify(ctx, "textDocument/didOpen", params); err != nil {
		return fmt.Errorf("didOpen %s: %w", uri, err)
	}
	return nil
}

// SignatureHelp issues textDocument/signatureHelp at a virtual-space
// position. A null result is the server's explicit close signal.
func (c *Client) SignatureHelp(ctx context.Context, uri string, pos editor.Position) (assist.Result, error) {
	if pos.Space != editor.SpaceVirtual {
		log.Warningf("signature help position %s is not in virtual space", pos)
	}
	params := protocol.SignatureHelpParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: pos.Line, Character: pos.Character},
		},
	}

	var raw json.RawMessage
	if err := c.conn.Call(ctx, "textDocument/signatureHelp", params, &raw); err != nil {
		return assist.Result{}, fmt.Errorf("signatureHelp: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return assist.Result{Outcome: assist.OutcomeClose}, nil
	}

	var help protocol.SignatureHelp
	if err := json.Unmarshal(raw, &help); err != nil {
		return assist.Result{}, fmt.Errorf("decode signatureHelp result: %w", err)
	}
	return assist.Result{Outcome: assist.OutcomeSignatures, Response: assist.ResponseFrom(&help)}, nil
}

// Close shuts the server down gracefully and tears down the connection.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := c.conn.Call(ctx, "shutdown", nil, nil); err != nil {
		log.Warningf("shutdown request failed: %s", err.Error())
	}
	if err := c.conn.Notify(ctx, "exit", nil); err != nil {
		log.Debugf("exit notification failed: %s", err.Error())
	}

	err := c.conn.Close()
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
	return err
}

// handler receives server-initiated traffic. Notifications are logged;
// requests get a method-not-found reply since the feature consumes none.
type handler struct{}

func (handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		log.Debugf("server notification %s", req.Method)
		return
	}
	err := conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
		Code:    jsonrpc2.CodeMethodNotFound,
		Message: fmt.Sprintf("method not supported: %s", req.Method),
	})
	if err != nil {
		log.Warningf("reply to %s failed: %s", req.Method, err.Error())
	}
}

// stdio joins a child process's stdin and stdout into one stream.
type stdio struct {
	in  io.WriteCloser
	out io.ReadCloser
}

func (s stdio) Read(p []byte) (int, error)  { return s.out.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.in.Write(p) }

func (s stdio) Close() error {
	if err := s.in.Close(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
