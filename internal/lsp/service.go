package lsp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jwtly10/vimcfg"
	"github.com/sourcegraph/go-lsp"
)

const diagnosticSource = "vimcfg"

type DocumentServiceOptions struct {
	// Treat .md documents as literate configuration
	Literate bool
	// Report lua snippets that do not parse
	LintLua bool
}

var DefaultDocumentServiceOptions = DocumentServiceOptions{
	Literate: false,
	LintLua:  true,
}

// DocumentService turns the text of an open configuration document into
// diagnostics. It keeps no state between calls.
type DocumentService struct {
	opts DocumentServiceOptions
}

func NewDocumentService(opts DocumentServiceOptions) *DocumentService {
	return &DocumentService{
		opts: opts,
	}
}

// Diagnose decodes text as the document at uri and reports every problem
// found. Documents that are not configuration documents have no diagnostics.
func (s *DocumentService) Diagnose(uri lsp.DocumentURI, text string) ([]lsp.Diagnostic, error) {
	path, err := URIToPath(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid document URI: %w", err)
	}

	format, ok := vimcfg.FormatOf(path, s.opts.Literate)
	if !ok {
		slog.Debug("not a configuration document", "path", path)
		return []lsp.Diagnostic{}, nil
	}

	lines := strings.Split(text, "\n")

	cfg, err := vimcfg.Decode([]byte(text), format)
	if err != nil {
		line, col := 0, 0
		var de *vimcfg.DecodeError
		if errors.As(err, &de) {
			line, col = de.Line, de.Column
		}
		return []lsp.Diagnostic{diagnostic(lines, line, col, lsp.Error, err.Error())}, nil
	}

	diagnostics := []lsp.Diagnostic{}
	for _, group := range cfg.Keys {
		if !group.Spec.Flags.HasMode() {
			diagnostics = append(diagnostics, diagnostic(lines, group.Line, 0, lsp.Warning,
				fmt.Sprintf("key group %q has no mode flag (i, n or v) and renders nothing", group.Raw)))
		}
	}

	if s.opts.LintLua {
		for _, le := range vimcfg.LintLua(cfg) {
			diagnostics = append(diagnostics, diagnostic(lines, le.Line, 0, lsp.Warning, le.Error()))
		}
	}

	slog.Debug("diagnosed document", "path", path, "diagnostics", len(diagnostics))
	return diagnostics, nil
}

// diagnostic builds a diagnostic spanning the rest of a 1-indexed source
// line. An unknown line points at the start of the document.
func diagnostic(lines []string, line, col int, severity lsp.DiagnosticSeverity, msg string) lsp.Diagnostic {
	l := max(line-1, 0)
	c := max(col-1, 0)

	end := c
	if l < len(lines) {
		end = max(len(lines[l]), c)
	}

	return lsp.Diagnostic{
		Range: lsp.Range{
			Start: lsp.Position{Line: l, Character: c},
			End:   lsp.Position{Line: l, Character: end},
		},
		Severity: severity,
		Source:   diagnosticSource,
		Message:  msg,
	}
}

// URIToPath converts an LSP URI to a filesystem path
func URIToPath(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// PathToURI converts a filesystem path to an LSP URI
func PathToURI(path string) lsp.DocumentURI {
	return lsp.DocumentURI("file://" + path)
}
