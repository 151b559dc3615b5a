package vimcfg

import (
	"fmt"
	"strings"
)

// KeyCommand is a single key sequence bound to a command.
type KeyCommand struct {
	Key     string
	Command string
}

// Expand flattens a binding into key/command pairs. A single entry binds the
// prefix itself, a group binds prefix+suffix for every suffix in declaration
// order.
func Expand(prefix string, entry BindingEntry) []KeyCommand {
	if !entry.IsGroup {
		return []KeyCommand{{Key: prefix, Command: entry.Command}}
	}

	out := make([]KeyCommand, 0, len(entry.Group))
	for _, s := range entry.Group {
		out = append(out, KeyCommand{Key: prefix + s.Suffix, Command: s.Command})
	}
	return out
}

var modePrefixes = []struct {
	flag   Flag
	prefix string
}{
	{Insert, "i"},
	{Normal, "n"},
	{Visual, "v"},
}

// RenderMapping renders one binding as a map command for every mode set in
// flags, in insert, normal, visual order. Without a mode flag nothing is
// rendered.
func RenderMapping(key, command string, flags Flag) []string {
	if flags.Has(Leader) {
		key = "<LEADER>" + key
	}

	// `|` separates commands in a mapping
	command = strings.ReplaceAll(command, "|", `\|`)

	if flags.Has(Command) {
		command = "<CMD>" + command + "<CR>"
	}

	key = strings.Join(strings.Fields(key), "")

	directive := "noremap"
	if flags.Has(Recursive) {
		directive = "map"
	}

	line := fmt.Sprintf("%s <silent> %s %s", directive, key, command)

	var out []string
	for _, m := range modePrefixes {
		if flags.Has(m.flag) {
			out = append(out, m.prefix+line)
		}
	}
	return out
}

// RenderGroup renders every binding of a key group.
func RenderGroup(group KeyGroup) []string {
	var out []string
	for _, b := range group.Bindings {
		for _, kc := range Expand(b.Key, b.Entry) {
			out = append(out, RenderMapping(kc.Key, kc.Command, group.Spec.Flags)...)
		}
	}
	return out
}

// Condition builds the `v:event` guard of an autocommand. It is empty when
// the autocommand has no event conditions.
func (ac AutoCommand) Condition() string {
	clauses := make([]string, 0, len(ac.Event))
	for _, e := range ac.Event {
		clauses = append(clauses, fmt.Sprintf("v:event.%s is '%s'", e.Key, e.Value))
	}
	return strings.Join(clauses, " && ")
}

// Statements returns the commands run by the autocommand: every cmd entry
// followed by every lua entry.
func (ac AutoCommand) Statements() []string {
	out := make([]string, 0, len(ac.Cmd)+len(ac.Lua))
	out = append(out, ac.Cmd...)
	for _, l := range ac.Lua {
		out = append(out, "lua "+l)
	}
	return out
}

// RenderAutoCommand renders one autocmd line per statement. Guarded
// autocommands wrap the statement in `execute` with single quotes escaped.
func RenderAutoCommand(ac AutoCommand) []string {
	triggers := strings.Join(ac.Triggers, ",")

	matching := ac.Matching
	if matching == "" {
		if ac.FileType != "" {
			matching = "<buffer>"
		} else {
			matching = "*"
		}
	}

	silent := ""
	if ac.Silent {
		silent = "silent!"
	}

	condition := ac.Condition()

	var out []string
	for _, stmt := range ac.Statements() {
		if condition == "" {
			out = append(out, fmt.Sprintf("autocmd %s %s %s %s", triggers, matching, silent, stmt))
			continue
		}
		out = append(out, fmt.Sprintf("autocmd %s %s %s if %s | execute '%s' | endif",
			triggers, matching, silent, condition, strings.ReplaceAll(stmt, "'", `\'`)))
	}
	return out
}

// RenderSettings renders set, set_value and let entries in that order.
func RenderSettings(cfg *Config) []string {
	out := make([]string, 0, len(cfg.Set)+len(cfg.SetValue)+len(cfg.Let))
	for _, s := range cfg.Set {
		out = append(out, "set "+s)
	}
	for _, s := range cfg.SetValue {
		out = append(out, fmt.Sprintf("set %s=%s", s.Name, s.Value))
	}
	for _, s := range cfg.Let {
		out = append(out, fmt.Sprintf("let %s=%s", s.Name, s.Value))
	}
	return out
}
