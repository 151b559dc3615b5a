package vimcfg

import (
	"path/filepath"
)

const (
	pluginDir   = "plugin"
	ftPluginDir = "ftplugin"
)

// ResolveOutputPath returns where the script for scope is written under the
// editor configuration root.
//
// The global scope maps to plugin/config.vim, a file type to
// ftplugin/<file_type>_config.vim.
func ResolveOutputPath(root string, scope Scope) string {
	if scope.IsGlobal() {
		return filepath.Join(root, pluginDir, "config.vim")
	}
	return filepath.Join(root, ftPluginDir, string(scope)+"_config.vim")
}

// MustAbs resolves path against the working directory, panicking if it cannot.
func MustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}
