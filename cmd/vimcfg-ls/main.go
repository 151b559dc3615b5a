package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwtly10/vimcfg"
	"github.com/jwtly10/vimcfg/internal/compiler"
	iLsp "github.com/jwtly10/vimcfg/internal/lsp"
	"github.com/jwtly10/vimcfg/internal/lsp/server"
	"github.com/spf13/cobra"
)

var (
	debug         bool
	literate      bool
	compileOnSave bool
	configDir     string
	outDir        string
)

var rootCmd = &cobra.Command{
	Use:          "vimcfg-ls",
	Short:        "Language server reporting problems in vimcfg configuration documents",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&literate, "literate", false, "Also check yaml/toml code blocks in .md documents")
	rootCmd.Flags().BoolVar(&compileOnSave, "compile-on-save", false, "Recompile the config directory whenever a document is saved")
	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "Directory of configuration documents (default <config>/nvim/config)")
	rootCmd.Flags().StringVar(&outDir, "out-dir", "", "Editor configuration root to write scripts below (default <config>/nvim)")
}

// getLogFile returns a log file for the lsp server to write to.
//
// During development (-debug flag) uses persistent log for easy access.
func getLogFile(debug bool) (*os.File, error) {
	if debug {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		logDir := filepath.Join(homeDir, ".vimcfg")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}
		return os.OpenFile(filepath.Join(logDir, "vimcfg-ls.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	return os.CreateTemp("", "vimcfg-ls-*.log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logFile, err := getLogFile(debug)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// stdout carries JSON-RPC, never log there
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("starting vimcfg-ls", "logfile", logFile.Name())

	opts := server.DefaultServerOptions
	opts.DocService = iLsp.DocumentServiceOptions{
		Literate: literate,
		LintLua:  true,
	}

	if compileOnSave {
		cOpts, err := compiler.DefaultOptions()
		if err != nil {
			return err
		}
		if configDir != "" {
			cOpts.ConfigDir = vimcfg.MustAbs(configDir)
		}
		if outDir != "" {
			cOpts.OutDir = vimcfg.MustAbs(outDir)
		}
		cOpts.Literate = literate

		c, err := compiler.NewCompiler(cOpts)
		if err != nil {
			return err
		}
		opts.Compiler = server.CompilerFunc(func(ctx context.Context) error {
			_, err := c.Compile(ctx)
			return err
		})
	}

	server.NewServer(opts).Serve(context.Background(), server.NewStdRWC())
	return nil
}
