package lsp

import (
	"testing"

	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnose(t *testing.T) {
	svc := NewDocumentService(DefaultDocumentServiceOptions)

	tests := []struct {
		name     string
		uri      lsp.DocumentURI
		text     string
		severity []lsp.DiagnosticSeverity
		lines    []int
	}{
		{
			name: "valid document",
			uri:  "file:///cfg/a.yaml",
			text: "keys:\n  nl:\n    ff: Telescope find_files\nset: number\n",
		},
		{
			name: "not a configuration document",
			uri:  "file:///cfg/init.lua",
			text: "keys: [broken",
		},
		{
			name:     "bad flag key",
			uri:      "file:///cfg/a.yaml",
			text:     "set: number\nkeys:\n  nq:\n    a: b\n",
			severity: []lsp.DiagnosticSeverity{lsp.Error},
			lines:    []int{2},
		},
		{
			name:     "group without mode",
			uri:      "file:///cfg/a.yaml",
			text:     "keys:\n  l:\n    a: b\n",
			severity: []lsp.DiagnosticSeverity{lsp.Warning},
			lines:    []int{1},
		},
		{
			name:     "invalid lua",
			uri:      "file:///cfg/a.yaml",
			text:     "auto_commands:\n  - triggers: BufWritePre\n    lua: vim.lsp.buf.format(\n",
			severity: []lsp.DiagnosticSeverity{lsp.Warning},
			lines:    []int{1},
		},
		{
			name:     "bad toml flag key",
			uri:      "file:///cfg/b.toml",
			text:     "[keys.nff_rust]\na = \"b\"\n",
			severity: []lsp.DiagnosticSeverity{lsp.Error},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics, err := svc.Diagnose(tt.uri, tt.text)
			require.NoError(t, err)
			require.NotNil(t, diagnostics)
			require.Len(t, diagnostics, len(tt.severity))

			for i, d := range diagnostics {
				assert.Equal(t, tt.severity[i], d.Severity)
				assert.Equal(t, diagnosticSource, d.Source)
				if tt.lines != nil {
					assert.Equal(t, tt.lines[i], d.Range.Start.Line)
				}
			}
		})
	}
}

func TestDiagnoseLintDisabled(t *testing.T) {
	svc := NewDocumentService(DocumentServiceOptions{LintLua: false})

	diagnostics, err := svc.Diagnose("file:///cfg/a.yaml", "auto_commands:\n  triggers: BufWritePre\n  lua: vim.lsp.buf.format(\n")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
}

func TestDiagnoseLiterate(t *testing.T) {
	text := "# Keys\n\nSome prose.\n\n```yaml\nkeys:\n  nz:\n    a: b\n```\n"

	svc := NewDocumentService(DocumentServiceOptions{})
	diagnostics, err := svc.Diagnose("file:///cfg/notes.md", text)
	require.NoError(t, err)
	assert.Empty(t, diagnostics, "markdown is ignored unless literate")

	svc = NewDocumentService(DocumentServiceOptions{Literate: true})
	diagnostics, err = svc.Diagnose("file:///cfg/notes.md", text)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, lsp.Error, diagnostics[0].Severity)
	assert.Equal(t, 6, diagnostics[0].Range.Start.Line)
}

func TestDiagnosticRange(t *testing.T) {
	lines := []string{"first", "second line"}

	d := diagnostic(lines, 2, 3, lsp.Error, "msg")
	assert.Equal(t, lsp.Position{Line: 1, Character: 2}, d.Range.Start)
	assert.Equal(t, lsp.Position{Line: 1, Character: 11}, d.Range.End)

	d = diagnostic(lines, 0, 0, lsp.Error, "msg")
	assert.Equal(t, lsp.Position{Line: 0, Character: 0}, d.Range.Start)
	assert.Equal(t, lsp.Position{Line: 0, Character: 5}, d.Range.End)

	d = diagnostic(lines, 10, 4, lsp.Warning, "msg")
	assert.Equal(t, lsp.Position{Line: 9, Character: 3}, d.Range.End)
}

func TestURIConversion(t *testing.T) {
	path, err := URIToPath("file:///home/user/config/keys.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/config/keys.yaml", path)
	assert.Equal(t, lsp.DocumentURI("file:///home/user/config/keys.yaml"), PathToURI(path))
}
