package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/jwtly10/vimcfg"
)

const (
	maxFiles   = 100
	maxWorkers = 4
)

// ignoreFiles are read from the config directory, in order, for patterns of
// documents to skip.
var ignoreFiles = []string{".gitignore", ".vimcfgignore"}

type Options struct {
	// Decode .md files as literate documents
	Literate bool
}

// LoadedDocument is a decoded configuration document.
type LoadedDocument struct {
	// The file name, relative to the config directory
	Name   string
	Path   string
	Config *vimcfg.Config
}

type loadResult struct {
	index int
	doc   LoadedDocument
	err   error
}

type Processor struct {
	opts Options
}

func NewProcessor(opts Options) *Processor {
	return &Processor{
		opts: opts,
	}
}

// Load decodes every configuration document directly inside dir.
//
// Documents are returned sorted by file name. Any document that fails to
// decode fails the whole load.
func (p *Processor) Load(dir string) ([]LoadedDocument, error) {
	startTime := time.Now()
	slog.Debug("loading config directory", "path", dir)

	files, err := p.findFiles(dir)
	if err != nil {
		return nil, err
	}

	slog.Debug("found files to load", "count", len(files), "duration", time.Since(startTime))

	jobs := make(chan int, len(files))
	results := make(chan loadResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < min(maxWorkers, len(files)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				doc, err := p.LoadFile(files[idx])
				results <- loadResult{index: idx, doc: doc, err: err}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// results arrive in completion order, put them back in discovery order
	docs := make([]LoadedDocument, len(files))
	errs := make([]error, len(files))
	for result := range results {
		if result.err != nil {
			slog.Debug("failed to load document", "path", files[result.index], "error", result.err)
		}
		docs[result.index] = result.doc
		errs[result.index] = result.err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("config directory loaded", "duration", time.Since(startTime), "documents", len(docs))
	return docs, nil
}

// LoadFile reads and decodes a single document.
func (p *Processor) LoadFile(path string) (LoadedDocument, error) {
	name := filepath.Base(path)

	format, ok := vimcfg.FormatOf(name, p.opts.Literate)
	if !ok {
		return LoadedDocument{}, &vimcfg.DocumentError{Path: name, Err: fmt.Errorf("unsupported document extension")}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return LoadedDocument{}, fmt.Errorf("error reading file: %w", err)
	}

	cfg, err := vimcfg.Decode(content, format)
	if err != nil {
		return LoadedDocument{}, &vimcfg.DocumentError{Path: name, Err: err}
	}

	return LoadedDocument{
		Name:   name,
		Path:   path,
		Config: cfg,
	}, nil
}

// findFiles lists the documents directly inside root, skipping anything
// matched by an ignore file in root.
func (p *Processor) findFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("error reading config directory: %w", err)
	}

	matcher := gitignore.NewMatcher(loadIgnorePatterns(root))

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if _, ok := vimcfg.FormatOf(name, p.opts.Literate); !ok {
			continue
		}

		if matcher.Match([]string{name}, false) {
			slog.Debug("ignoring document", "name", name)
			continue
		}

		if len(files) >= maxFiles {
			return nil, fmt.Errorf("max files limit reached (%d)", maxFiles)
		}
		files = append(files, filepath.Join(root, name))
	}

	sort.Strings(files)
	return files, nil
}

func loadIgnorePatterns(root string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	for _, name := range ignoreFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, p := range strings.Split(string(data), "\n") {
			if p = strings.TrimSpace(p); p != "" && !strings.HasPrefix(p, "#") {
				patterns = append(patterns, gitignore.ParsePattern(p, nil))
			}
		}
	}
	return patterns
}
