package vimcfg

import (
	"strings"
)

// Flag is a set of mapping flags. Insert, Normal and Visual select the modes a
// binding is active in, the rest modify how the binding is rendered.
type Flag uint8

const (
	Insert Flag = 1 << iota
	Normal
	Visual
	Leader
	Command
	Recursive
)

// Modes is the union of all mode flags.
const Modes = Insert | Normal | Visual

// keySeparator splits flags, file type and label in a flag-key string.
const keySeparator = "_"

var flagChars = map[rune]Flag{
	'i': Insert,
	'n': Normal,
	'v': Visual,
	'l': Leader,
	'c': Command,
	'r': Recursive,
}

// Has reports whether every flag in f2 is set in f.
func (f Flag) Has(f2 Flag) bool {
	return f&f2 == f2
}

// HasMode reports whether at least one of Insert, Normal or Visual is set.
func (f Flag) HasMode() bool {
	return f&Modes != 0
}

func (f Flag) String() string {
	var b strings.Builder
	for _, c := range "invlcr" {
		if f.Has(flagChars[c]) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// KeySpec is the parsed form of a flag-key string such as "nlc_Telescope" or
// "nf_rust_Comment".
type KeySpec struct {
	Flags Flag
	// The file type the group is scoped to, empty for global bindings
	FileType string
	// An optional comment emitted before the group's bindings
	Label string
}

// Scope returns the output bucket the group belongs to.
func (k KeySpec) Scope() Scope {
	return Scope(k.FileType)
}

// ParseKeySpec parses a flag-key string.
//
// The grammar is `flags[_remainder]`. Flag characters are case-insensitive and
// map as i=Insert, n=Normal, v=Visual, l=Leader, c=Command, r=Recursive. The
// `f` flag takes the file type from the remainder: `nf_rust_Comment` scopes the
// group to "rust" with label "Comment", `nf_rust` has no label. Without `f`
// the whole remainder is the label.
func ParseKeySpec(s string) (KeySpec, error) {
	flagPart, remainder, hasRemainder := strings.Cut(s, keySeparator)

	var spec KeySpec
	wantsFileType := false
	for _, c := range strings.ToLower(flagPart) {
		if c == 'f' {
			if wantsFileType {
				return KeySpec{}, &KeySpecError{Raw: s, Err: ErrDuplicateFileType}
			}
			if !hasRemainder {
				return KeySpec{}, &KeySpecError{Raw: s, Err: ErrMissingFileType}
			}
			wantsFileType = true
			continue
		}

		flag, ok := flagChars[c]
		if !ok {
			return KeySpec{}, &KeySpecError{Raw: s, Char: c, Err: ErrUnsupportedFlag}
		}
		spec.Flags |= flag
	}

	if !wantsFileType {
		spec.Label = remainder
		return spec, nil
	}

	spec.FileType, spec.Label, _ = strings.Cut(remainder, keySeparator)
	if spec.FileType == "" {
		return KeySpec{}, &KeySpecError{Raw: s, Err: ErrMissingFileType}
	}

	return spec, nil
}
