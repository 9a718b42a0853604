package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/editorkit/lsp-assist/internal/assist"
	"github.com/editorkit/lsp-assist/internal/editor"
	"github.com/editorkit/lsp-assist/internal/highlight"
	"github.com/editorkit/lsp-assist/internal/transport"
)

const (
	version        = "0.1.0"
	requestTimeout = 30 * time.Second
)

var (
	serverCommand string
	filePath      string
	line          int
	character     int
	language      string
	verbosity     int
	logFile       string
	threshold     int
	plain         bool
)

func init() {
	// Command-line flags
	flag.StringVar(&serverCommand, "server", "", "Language server command, e.g. \"gopls serve\"")
	flag.StringVar(&filePath, "file", "", "Source file to query")
	flag.IntVar(&line, "line", 0, "Zero-based line of the cursor")
	flag.IntVar(&character, "char", 0, "Zero-based character offset of the cursor")
	flag.StringVar(&language, "language", "go", "Language identifier for the document")
	flag.IntVar(&verbosity, "verbose", 0, "Log verbosity (0 = quiet)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.IntVar(&threshold, "collapse-threshold", assist.DefaultCollapseThreshold, "Detail lines shown before collapsing")
	flag.BoolVar(&plain, "plain", false, "Print raw Markdown instead of rendering it")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "lsp-assist version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: lsp-assist -server <command> -file <path> -line N -char N\n\n")
	fmt.Fprintf(os.Stderr, "Queries a language server for signature help at a position and prints\n")
	fmt.Fprintf(os.Stderr, "the formatted assistance text.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("lsp-assist version %s\n", version)
		os.Exit(0)
	}

	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)

	if serverCommand == "" || filePath == "" {
		usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lsp-assist: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	text, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	uri := "file://" + abs

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	args := strings.Fields(serverCommand)
	if len(args) == 0 {
		return fmt.Errorf("empty server command")
	}
	client, err := transport.Spawn(ctx, args[0], args[1:]...)
	if err != nil {
		return err
	}
	defer client.Close()

	caps, err := client.Initialize(ctx, "file://"+filepath.Dir(abs))
	if err != nil {
		return err
	}
	if !caps.SignatureHelp {
		return fmt.Errorf("server does not advertise signature help")
	}

	if err := client.DidOpen(ctx, uri, language, string(text)); err != nil {
		return err
	}

	pos := editor.Position{
		Line:      uint32(line),
		Character: uint32(character),
		Space:     editor.SpaceVirtual,
	}
	res, err := client.SignatureHelp(ctx, uri, pos)
	if err != nil {
		return err
	}
	if res.Outcome != assist.OutcomeSignatures || res.Response == nil || len(res.Response.Signatures) == 0 {
		fmt.Println("no signature help at this position")
		return nil
	}

	opts := assist.DefaultOptions()
	opts.CollapseThreshold = threshold
	formatter := assist.NewFormatter(opts, highlight.Mark)
	markdown := formatter.FormatResponse(res.Response, highlight.Language(language))

	if plain {
		fmt.Print(markdown)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(rendered)
	return nil
}
