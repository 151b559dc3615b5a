package vimcfg

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"
)

// LintError reports a lua snippet of an autocommand that does not parse.
type LintError struct {
	// Index of the autocommand within its document
	AutoCommand int
	Line        int
	Snippet     string
	Err         error
}

func (e *LintError) Error() string {
	return fmt.Sprintf("auto command %d: invalid lua %q: %s", e.AutoCommand, e.Snippet, e.Err)
}

func (e *LintError) Unwrap() error {
	return e.Err
}

// LintLua syntax checks every lua entry of every autocommand. Nothing is
// executed.
func LintLua(cfg *Config) []*LintError {
	var errs []*LintError
	for i, ac := range cfg.AutoCommands {
		for _, snippet := range ac.Lua {
			if _, err := parse.Parse(strings.NewReader(snippet), "<autocmd>"); err != nil {
				errs = append(errs, &LintError{
					AutoCommand: i,
					Line:        ac.Line,
					Snippet:     snippet,
					Err:         err,
				})
			}
		}
	}
	return errs
}
