package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwtly10/vimcfg"
	"github.com/jwtly10/vimcfg/internal/cli"
)

type Options struct {
	// Directory holding the configuration documents
	ConfigDir string
	// Editor configuration root, scripts are written to plugin/ and ftplugin/ below it
	OutDir string
	// If true, existing scripts are copied aside before being overwritten
	Backup bool
	// If true, .md files are read as literate documents
	Literate bool
	// If true, lua snippets of autocommands are syntax checked before anything is written
	LintLua bool
	// If set, scripts are written here instead of to OutDir
	DryRun io.Writer
}

// DefaultOptions resolves the standard neovim locations below the user's
// configuration directory.
func DefaultOptions() (Options, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Options{}, fmt.Errorf("resolving user config directory: %w", err)
	}

	nvimDir := filepath.Join(configDir, "nvim")
	return Options{
		ConfigDir: filepath.Join(nvimDir, "config"),
		OutDir:    nvimDir,
	}, nil
}

func (o Options) Validate() error {
	if o.ConfigDir == "" {
		return fmt.Errorf("config directory is required")
	}
	if o.OutDir == "" && o.DryRun == nil {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

func (o *Options) Pretty() string {
	return fmt.Sprintf("config=%s out=%s backup=%s literate=%s lint_lua=%s dry_run=%s",
		o.ConfigDir,
		o.OutDir,
		boolToText(o.Backup),
		boolToText(o.Literate),
		boolToText(o.LintLua),
		boolToText(o.DryRun != nil))
}

func boolToText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Output describes one written script.
type Output struct {
	Scope vimcfg.Scope
	Path  string
	// Empty unless a previous script was backed up
	BackupPath string
	Lines      int
}

type Compiler struct {
	processor *cli.Processor
	backup    *vimcfg.BackupManager

	opts Options
}

// NewCompiler creates a new Compiler instance with the specified options [Options]
func NewCompiler(opts Options) (*Compiler, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler options: %w", err)
	}

	return &Compiler{
		processor: cli.NewProcessor(cli.Options{Literate: opts.Literate}),
		backup:    vimcfg.NewBackupManager(),
		opts:      opts,
	}, nil
}

// Compile runs a full pass: every document in the config directory is loaded,
// rendered and written. Nothing is written if any document fails to load.
func (c *Compiler) Compile(ctx context.Context) ([]Output, error) {
	startTime := time.Now()
	slog.Debug("compiling", "options", c.opts.Pretty())

	docs, err := c.processor.Load(c.opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	if c.opts.LintLua {
		if err := lint(docs); err != nil {
			return nil, err
		}
	}

	agg := vimcfg.NewAggregator()
	for _, doc := range docs {
		agg.Add(doc.Name, doc.Config)
	}

	payloads := agg.Emit()
	outputs := make([]Output, 0, len(payloads))
	for _, p := range payloads {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}

		out, err := c.write(p)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}

	slog.Debug("compilation completed", "duration", time.Since(startTime), "documents", len(docs), "scripts", len(outputs))
	return outputs, nil
}

func lint(docs []cli.LoadedDocument) error {
	var errs []error
	for _, doc := range docs {
		for _, le := range vimcfg.LintLua(doc.Config) {
			errs = append(errs, &vimcfg.DocumentError{Path: doc.Name, Err: le})
		}
	}
	return errors.Join(errs...)
}

func (c *Compiler) write(p vimcfg.Payload) (Output, error) {
	out := Output{
		Scope: p.Scope,
		Path:  vimcfg.ResolveOutputPath(c.opts.OutDir, p.Scope),
		Lines: countLines(p.Text),
	}

	if c.opts.DryRun != nil {
		if _, err := fmt.Fprintf(c.opts.DryRun, "\" ==> %s <==\n%s\n", out.Path, p.Text); err != nil {
			return out, fmt.Errorf("writing dry run output: %w", err)
		}
		return out, nil
	}

	if c.opts.Backup {
		bkPath, err := c.backup.CreateBackupOf(out.Path)
		if err != nil {
			return out, fmt.Errorf("backup error: %w", err)
		}
		if bkPath != "" {
			slog.Info("script already existed. Created backup", "backup", bkPath, "script", out.Path)
		}
		out.BackupPath = bkPath
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0755); err != nil {
		return out, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(out.Path, []byte(p.Text), 0644); err != nil {
		return out, fmt.Errorf("failed to write script: %w", err)
	}

	slog.Debug("script written", "scope", string(p.Scope), "path", out.Path)
	return out, nil
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
