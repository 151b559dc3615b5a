package vimcfg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const yamlDoc = `
keys:
  nlc_Telescope:
    ff: Telescope find_files
    fg: Telescope live_grep
  nv:
    "<C-s>": ":w<CR>"
    g:
      b: gb
      a: ga
auto_commands:
  - triggers: [BufWritePre, BufWritePost]
    cmd: lua vim.lsp.buf.format()
    file_type: rust
  - triggers: TextYankPost
    lua: [vim.highlight.on_yank()]
    event:
      operator: y
      regname: ""
    silent: true
    matching: "*.rs"
set: number
set_value:
  tabstop: 4
  mouse: a
let:
  mapleader: " "
  loaded_netrw: true
`

func TestDecodeYAML(t *testing.T) {
	cfg, err := DecodeYAML([]byte(yamlDoc))
	require.NoError(t, err)

	require.Equal(t, []KeyGroup{
		{
			Raw:  "nlc_Telescope",
			Spec: KeySpec{Flags: Normal | Leader | Command, Label: "Telescope"},
			Bindings: []Binding{
				{Key: "ff", Entry: Single("Telescope find_files")},
				{Key: "fg", Entry: Single("Telescope live_grep")},
			},
			Line: 3,
		},
		{
			Raw:  "nv",
			Spec: KeySpec{Flags: Normal | Visual},
			Bindings: []Binding{
				{Key: "<C-s>", Entry: Single(":w<CR>")},
				{Key: "g", Entry: Group(Suffix{"b", "gb"}, Suffix{"a", "ga"})},
			},
			Line: 6,
		},
	}, cfg.Keys)

	require.Equal(t, []AutoCommand{
		{
			Triggers: []string{"BufWritePre", "BufWritePost"},
			Cmd:      []string{"lua vim.lsp.buf.format()"},
			FileType: "rust",
			Line:     12,
		},
		{
			Triggers: []string{"TextYankPost"},
			Lua:      []string{"vim.highlight.on_yank()"},
			Event: []EventCondition{
				{Key: "operator", Value: "y"},
				{Key: "regname", Value: ""},
			},
			Silent:   true,
			Matching: "*.rs",
			Line:     15,
		},
	}, cfg.AutoCommands)

	require.Equal(t, []string{"number"}, cfg.Set)
	require.Equal(t, []Setting{{"tabstop", Int(4)}, {"mouse", String("a")}}, cfg.SetValue)
	require.Equal(t, []Setting{{"mapleader", String(" ")}, {"loaded_netrw", Bool(true)}}, cfg.Let)
}

const tomlDoc = `
set = ["number", "relativenumber"]

[set_value]
tabstop = 4
expandtab = false

[let]
mapleader = " "

[keys.nf_rust_Rust]
"<leader>r" = "RustRun"
"<leader>t" = { a = "RustTestAll", "" = "RustTest" }

[[auto_commands]]
triggers = "BufWritePre"
lua = "vim.lsp.buf.format()"

[auto_commands.event]
operator = "y"
`

func TestDecodeTOML(t *testing.T) {
	cfg, err := DecodeTOML([]byte(tomlDoc))
	require.NoError(t, err)

	require.Equal(t, []string{"number", "relativenumber"}, cfg.Set)
	// TOML tables are unordered, keys come out sorted
	require.Equal(t, []Setting{{"expandtab", Bool(false)}, {"tabstop", Int(4)}}, cfg.SetValue)
	require.Equal(t, []Setting{{"mapleader", String(" ")}}, cfg.Let)

	require.Len(t, cfg.Keys, 1)
	require.Equal(t, "nf_rust_Rust", cfg.Keys[0].Raw)
	require.Equal(t, KeySpec{Flags: Normal, FileType: "rust", Label: "Rust"}, cfg.Keys[0].Spec)
	require.Equal(t, []Binding{
		{Key: "<leader>r", Entry: Single("RustRun")},
		{Key: "<leader>t", Entry: Group(Suffix{"", "RustTest"}, Suffix{"a", "RustTestAll"})},
	}, cfg.Keys[0].Bindings)

	require.Equal(t, []AutoCommand{
		{
			Triggers: []string{"BufWritePre"},
			Lua:      []string{"vim.lsp.buf.format()"},
			Event:    []EventCondition{{Key: "operator", Value: "y"}},
		},
	}, cfg.AutoCommands)
}

func TestDecodeEmptyDocuments(t *testing.T) {
	cfg, err := DecodeYAML([]byte(""))
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)

	cfg, err = DecodeYAML([]byte("keys:\nset:\n"))
	require.NoError(t, err)
	require.Empty(t, cfg.Keys)
	require.Empty(t, cfg.Set)

	cfg, err = DecodeTOML([]byte(""))
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		input    string
		wantLine int
		wantIs   error
	}{
		{
			name:     "bad flag in key group",
			format:   FormatYAML,
			input:    "keys:\n  nff_x:\n    a: b\n",
			wantLine: 2,
			wantIs:   ErrDuplicateFileType,
		},
		{
			name:   "unsupported flag in toml",
			format: FormatTOML,
			input:  "[keys.z]\na = \"b\"\n",
			wantIs: ErrUnsupportedFlag,
		},
		{
			name:     "binding is a list",
			format:   FormatYAML,
			input:    "keys:\n  n:\n    a: [b, c]\n",
			wantLine: 3,
		},
		{
			name:     "group suffix is not a string",
			format:   FormatYAML,
			input:    "keys:\n  n:\n    a:\n      b: {c: d}\n",
			wantLine: 4,
		},
		{
			name:     "auto command without triggers",
			format:   FormatYAML,
			input:    "auto_commands:\n  - cmd: echo\n",
			wantLine: 2,
		},
		{
			name:     "silent is not a boolean",
			format:   FormatYAML,
			input:    "auto_commands:\n  triggers: X\n  silent: loud\n",
			wantLine: 3,
		},
		{
			name:     "float setting value",
			format:   FormatYAML,
			input:    "set_value:\n  scrolloff: 1.5\n",
			wantLine: 2,
		},
		{
			name:   "malformed yaml",
			format: FormatYAML,
			input:  "keys:\n  n: [\n",
		},
		{
			name:   "malformed toml",
			format: FormatTOML,
			input:  "set = \n",
		},
		{
			name:   "top level is not a mapping",
			format: FormatYAML,
			input:  "- a\n- b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), tt.format)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "expected a DecodeError, got %T", err)
			if tt.wantLine > 0 {
				require.Equal(t, tt.wantLine, de.Line)
			}
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name     string
		literate bool
		want     Format
		ok       bool
	}{
		{name: "keys.yaml", want: FormatYAML, ok: true},
		{name: "keys.YML", want: FormatYAML, ok: true},
		{name: "options.toml", want: FormatTOML, ok: true},
		{name: "notes.md", ok: false},
		{name: "notes.md", literate: true, want: FormatMarkdown, ok: true},
		{name: "init.lua", ok: false},
		{name: "Makefile", ok: false},
	}

	for _, tt := range tests {
		got, ok := FormatOf(tt.name, tt.literate)
		require.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			require.Equal(t, tt.want, got, tt.name)
		}
	}
}
