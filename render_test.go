package vimcfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	require.Equal(t, []KeyCommand{{"<C-s>", ":w<CR>"}}, Expand("<C-s>", Single(":w<CR>")))

	got := Expand("<leader>g", Group(Suffix{"s", "Git status"}, Suffix{"c", "Git commit"}))
	require.Equal(t, []KeyCommand{
		{"<leader>gs", "Git status"},
		{"<leader>gc", "Git commit"},
	}, got)

	require.Empty(t, Expand("x", Group()))
}

func TestRenderMapping(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		command string
		flags   Flag
		want    []string
	}{
		{
			name:    "all modifiers",
			key:     "k",
			command: "foo",
			flags:   Normal | Leader | Command | Recursive,
			want:    []string{"nmap <silent> <LEADER>k <CMD>foo<CR>"},
		},
		{
			name:    "one line per mode in insert normal visual order",
			key:     "<C-s>",
			command: ":w<CR>",
			flags:   Visual | Insert | Normal,
			want: []string{
				"inoremap <silent> <C-s> :w<CR>",
				"nnoremap <silent> <C-s> :w<CR>",
				"vnoremap <silent> <C-s> :w<CR>",
			},
		},
		{
			name:    "no mode renders nothing",
			key:     "k",
			command: "foo",
			flags:   Leader | Command | Recursive,
			want:    nil,
		},
		{
			name:    "pipes are escaped",
			key:     "x",
			command: "echo 'a' | echo 'b'",
			flags:   Normal,
			want:    []string{`nnoremap <silent> x echo 'a' \| echo 'b'`},
		},
		{
			name:    "pipes are escaped inside command wrapping",
			key:     "x",
			command: "a|b",
			flags:   Visual | Command,
			want:    []string{`vnoremap <silent> x <CMD>a\|b<CR>`},
		},
		{
			name:    "whitespace is removed from keys",
			key:     " <C-w> \t h ",
			command: "<C-w>h",
			flags:   Normal,
			want:    []string{"nnoremap <silent> <C-w>h <C-w>h"},
		},
		{
			name:    "leader is prefixed before whitespace removal",
			key:     "f f",
			command: "Telescope find_files",
			flags:   Normal | Leader | Command,
			want:    []string{"nnoremap <silent> <LEADER>ff <CMD>Telescope find_files<CR>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RenderMapping(tt.key, tt.command, tt.flags))
		})
	}
}

func TestRenderGroup(t *testing.T) {
	group := KeyGroup{
		Spec: KeySpec{Flags: Normal | Visual},
		Bindings: []Binding{
			{Key: "g", Entry: Group(Suffix{"a", "ga"}, Suffix{"b", "gb"})},
			{Key: "Y", Entry: Single("y$")},
		},
	}

	require.Equal(t, []string{
		"nnoremap <silent> ga ga",
		"vnoremap <silent> ga ga",
		"nnoremap <silent> gb gb",
		"vnoremap <silent> gb gb",
		"nnoremap <silent> Y y$",
		"vnoremap <silent> Y y$",
	}, RenderGroup(group))
}

func TestRenderAutoCommand(t *testing.T) {
	tests := []struct {
		name string
		ac   AutoCommand
		want []string
	}{
		{
			name: "unconditional keeps spacing of empty silence",
			ac: AutoCommand{
				Triggers: []string{"BufWritePre"},
				Cmd:      []string{"lua vim.lsp.buf.format()"},
			},
			want: []string{"autocmd BufWritePre *  lua vim.lsp.buf.format()"},
		},
		{
			name: "triggers joined and cmd before lua",
			ac: AutoCommand{
				Triggers: []string{"BufEnter", "BufWinEnter"},
				Cmd:      []string{"setlocal spell", "setlocal wrap"},
				Lua:      []string{"print('hi')"},
				Silent:   true,
			},
			want: []string{
				"autocmd BufEnter,BufWinEnter * silent! setlocal spell",
				"autocmd BufEnter,BufWinEnter * silent! setlocal wrap",
				"autocmd BufEnter,BufWinEnter * silent! lua print('hi')",
			},
		},
		{
			name: "explicit matching wins over file type",
			ac: AutoCommand{
				Triggers: []string{"BufWritePre"},
				Cmd:      []string{"Format"},
				Matching: "*.go",
				FileType: "go",
			},
			want: []string{"autocmd BufWritePre *.go  Format"},
		},
		{
			name: "file type matches the current buffer",
			ac: AutoCommand{
				Triggers: []string{"BufWritePre"},
				Cmd:      []string{"Format"},
				FileType: "go",
			},
			want: []string{"autocmd BufWritePre <buffer>  Format"},
		},
		{
			name: "event conditions wrap in execute and escape quotes",
			ac: AutoCommand{
				Triggers: []string{"TextYankPost"},
				Lua:      []string{"vim.highlight.on_yank({higroup='Visual'})"},
				Event: []EventCondition{
					{Key: "operator", Value: "y"},
					{Key: "regname", Value: ""},
				},
				Silent: true,
			},
			want: []string{
				`autocmd TextYankPost * silent! if v:event.operator is 'y' && v:event.regname is '' | execute 'lua vim.highlight.on_yank({higroup=\'Visual\'})' | endif`,
			},
		},
		{
			name: "no statements renders nothing",
			ac: AutoCommand{
				Triggers: []string{"BufEnter"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RenderAutoCommand(tt.ac))
		})
	}
}

func TestRenderSettings(t *testing.T) {
	cfg := &Config{
		Set:      []string{"number", "nowrap"},
		SetValue: []Setting{{"tabstop", Int(4)}, {"mouse", String("a")}},
		Let:      []Setting{{"g:loaded_netrw", Bool(true)}, {"g:autoformat", Bool(false)}},
	}

	require.Equal(t, []string{
		"set number",
		"set nowrap",
		"set tabstop=4",
		`set mouse="a"`,
		"let g:loaded_netrw=yes",
		"let g:autoformat=no",
	}, RenderSettings(cfg))
}

func TestValueString(t *testing.T) {
	require.Equal(t, "-3", Int(-3).String())
	require.Equal(t, `"a b"`, String("a b").String())
	// embedded quotes are emitted verbatim
	require.Equal(t, `"say "hi""`, String(`say "hi"`).String())
	require.Equal(t, "yes", Bool(true).String())
	require.Equal(t, "no", Bool(false).String())
}
