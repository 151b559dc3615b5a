package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jwtly10/vimcfg"
	"github.com/jwtly10/vimcfg/internal/compiler"
	"github.com/jwtly10/vimcfg/internal/watch"
	"github.com/spf13/cobra"
)

var (
	configDir string
	outDir    string
	debug     bool
	backup    bool
	literate  bool
	lintLua   bool
	dryRun    bool
	watchDir  bool
)

var rootCmd = &cobra.Command{
	Use:   "vimcfg",
	Short: "Compile YAML and TOML editor configuration into vimscript",
	Long: `Reads every .yaml, .yml and .toml document in the config directory and writes
plugin/config.vim plus one ftplugin/<file_type>_config.vim per file type below the output directory.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "Directory of configuration documents (default <config>/nvim/config)")
	rootCmd.Flags().StringVar(&outDir, "out-dir", "", "Editor configuration root to write scripts below (default <config>/nvim)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&backup, "backup", false, "Back up existing scripts before overwriting them")
	rootCmd.Flags().BoolVar(&literate, "literate", false, "Also read yaml/toml code blocks from .md documents")
	rootCmd.Flags().BoolVar(&lintLua, "lint-lua", false, "Fail when a lua snippet of an autocommand does not parse")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the scripts instead of writing them")
	rootCmd.Flags().BoolVar(&watchDir, "watch", false, "Recompile whenever a document changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts, err := compiler.DefaultOptions()
	if err != nil {
		return err
	}
	if configDir != "" {
		opts.ConfigDir = vimcfg.MustAbs(configDir)
	}
	if outDir != "" {
		opts.OutDir = vimcfg.MustAbs(outDir)
	}
	opts.Backup = backup
	opts.Literate = literate
	opts.LintLua = lintLua
	if dryRun {
		opts.DryRun = cmd.OutOrStdout()
	}

	c, err := compiler.NewCompiler(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	compile := func(ctx context.Context) error {
		outputs, err := c.Compile(ctx)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		for _, out := range outputs {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d lines)\n", out.Path, out.Lines)
		}
		return nil
	}

	if err := compile(ctx); err != nil && !watchDir {
		return err
	} else if err != nil {
		slog.Error("initial compile failed", "error", err)
	}

	if !watchDir {
		return nil
	}

	w, err := watch.NewWatcher(watch.Options{
		Dir:      opts.ConfigDir,
		Literate: opts.Literate,
		OnChange: compile,
	})
	if err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
