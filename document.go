package vimcfg

import (
	"strconv"
)

// Scope identifies an output bucket. The empty scope is the global plugin
// script, any other value is a file type.
type Scope string

const GlobalScope Scope = ""

func (s Scope) IsGlobal() bool {
	return s == GlobalScope
}

// Config is a single decoded configuration document.
//
// All collections keep the order of the source document so that generated
// scripts are reproducible between runs.
type Config struct {
	AutoCommands []AutoCommand
	Keys         []KeyGroup
	Set          []string
	SetValue     []Setting
	Let          []Setting
}

// Merge appends every entry of other to c.
func (c *Config) Merge(other *Config) {
	c.AutoCommands = append(c.AutoCommands, other.AutoCommands...)
	c.Keys = append(c.Keys, other.Keys...)
	c.Set = append(c.Set, other.Set...)
	c.SetValue = append(c.SetValue, other.SetValue...)
	c.Let = append(c.Let, other.Let...)
}

// KeyGroup is every binding declared under one flag-key string.
type KeyGroup struct {
	// The flag-key string as written in the document
	Raw      string
	Spec     KeySpec
	Bindings []Binding
	// Position of the flag-key in the source document, zero if unknown
	Line int
}

type Binding struct {
	Key   string
	Entry BindingEntry
}

// BindingEntry is either a single command or a group of suffix-keyed
// commands sharing the binding's key as prefix.
type BindingEntry struct {
	Command string
	Group   []Suffix
	// IsGroup is set when the entry was declared as a mapping
	IsGroup bool
}

type Suffix struct {
	Suffix  string
	Command string
}

// Single returns a BindingEntry holding one command.
func Single(cmd string) BindingEntry {
	return BindingEntry{Command: cmd}
}

// Group returns a BindingEntry holding suffix-keyed commands.
func Group(suffixes ...Suffix) BindingEntry {
	return BindingEntry{Group: suffixes, IsGroup: true}
}

type AutoCommand struct {
	Triggers []string
	Cmd      []string
	Lua      []string
	Matching string
	Event    []EventCondition
	Silent   bool
	// FileType only affects the default match pattern, autocommands are always
	// written to the global script
	FileType string
	Line     int
}

// EventCondition is one `v:event` comparison guarding an autocommand.
type EventCondition struct {
	Key   string
	Value string
}

type Setting struct {
	Name  string
	Value Value
}

type ValueKind int

const (
	IntValue ValueKind = iota
	StringValue
	BoolValue
)

// Value is a scalar setting value.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
	Bool bool
}

func Int(i int64) Value     { return Value{Kind: IntValue, Int: i} }
func String(s string) Value { return Value{Kind: StringValue, Str: s} }
func Bool(b bool) Value     { return Value{Kind: BoolValue, Bool: b} }

// String renders the value as vimscript. Strings are quoted verbatim, an
// embedded double quote is not escaped.
func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case BoolValue:
		if v.Bool {
			return "yes"
		}
		return "no"
	default:
		return `"` + v.Str + `"`
	}
}
