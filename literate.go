package vimcfg

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced configuration block extracted from a literate
// markdown document.
type CodeBlock struct {
	Format Format
	Code   string
	// The line of the markdown document the block's code starts on
	StartLine int
}

var literateParser = goldmark.New()

func getLineNumber(content []byte, byteOffset int) int {
	return bytes.Count(content[:byteOffset], []byte("\n")) + 1
}

// ExtractBlocks walks a markdown document and returns every fenced code block
// tagged yaml, yml or toml, in document order. Blocks in other languages are
// prose and skipped.
func ExtractBlocks(content []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock

	doc := literateParser.Parser().Parse(text.NewReader(content))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		cb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var format Format
		switch lang := strings.ToLower(string(cb.Language(content))); lang {
		case "yaml", "yml":
			format = FormatYAML
		case "toml":
			format = FormatTOML
		default:
			slog.Debug("skipping code block", "language", lang)
			return ast.WalkContinue, nil
		}

		l := cb.Lines().Len()
		if l == 0 {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		for i := 0; i < l; i++ {
			line := cb.Lines().At(i)
			buf.Write(line.Value(content))
		}

		blocks = append(blocks, CodeBlock{
			Format:    format,
			Code:      buf.String(),
			StartLine: getLineNumber(content, cb.Lines().At(0).Start),
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// DecodeLiterate decodes every configuration block of a markdown document and
// merges them, in block order, into one Config. Reported line numbers refer to
// the markdown document.
func DecodeLiterate(content []byte) (*Config, error) {
	blocks, err := ExtractBlocks(content)
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}

	cfg := &Config{}
	for _, block := range blocks {
		part, err := Decode([]byte(block.Code), block.Format)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) && de.Line > 0 {
				de.Line += block.StartLine - 1
			}
			return nil, err
		}

		shiftLines(part, block.StartLine-1)
		cfg.Merge(part)
	}

	return cfg, nil
}

func shiftLines(cfg *Config, offset int) {
	for i := range cfg.Keys {
		if cfg.Keys[i].Line > 0 {
			cfg.Keys[i].Line += offset
		}
	}
	for i := range cfg.AutoCommands {
		if cfg.AutoCommands[i].Line > 0 {
			cfg.AutoCommands[i].Line += offset
		}
	}
}
