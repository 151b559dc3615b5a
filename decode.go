package vimcfg

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatMarkdown:
		return "markdown"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf returns the document format for a file name, based on its
// extension. Markdown is only recognised when literate documents are enabled.
func FormatOf(name string, literate bool) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".md":
		return FormatMarkdown, literate
	}
	return 0, false
}

// Decode decodes a document of the given format.
func Decode(data []byte, format Format) (*Config, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatTOML:
		return DecodeTOML(data)
	case FormatMarkdown:
		return DecodeLiterate(data)
	}
	return nil, fmt.Errorf("unknown document format %s", format)
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// DecodeYAML decodes a YAML configuration document. Mapping order in the
// document is kept.
func DecodeYAML(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		de := &DecodeError{Err: err}
		if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
			de.Line, _ = strconv.Atoi(m[1])
		}
		return nil, de
	}
	return decodeConfig(&root)
}

// DecodeTOML decodes a TOML configuration document. TOML tables carry no
// order, so keys are sorted to keep the output stable.
func DecodeTOML(data []byte) (*Config, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, &DecodeError{Line: row, Column: col, Err: err}
		}
		return nil, &DecodeError{Err: err}
	}
	return decodeConfig(tomlToNode(tree))
}

// tomlToNode converts a decoded TOML tree into a yaml.Node so that both
// formats share one schema decoder.
func tomlToNode(v any) *yaml.Node {
	switch v := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				tomlToNode(v[k]),
			)
		}
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			n.Content = append(n.Content, tomlToNode(e))
		}
		return n
	case []map[string]any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			n.Content = append(n.Content, tomlToNode(e))
		}
		return n
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}
	default:
		// dates and times have no vimscript counterpart, keep their text form
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: fmt.Sprint(v)}
	}
}

func nodeError(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Line: n.Line, Column: n.Column, Err: fmt.Errorf(format, args...)}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// eachPair calls fn for every key/value pair of a mapping node.
func eachPair(n *yaml.Node, what string, fn func(k, v *yaml.Node) error) error {
	n = resolve(n)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return nodeError(n, "%s must be a mapping", what)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(resolve(n.Content[i]), resolve(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func decodeConfig(root *yaml.Node) (*Config, error) {
	cfg := &Config{}

	n := root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return cfg, nil
		}
		n = n.Content[0]
	}

	err := eachPair(n, "configuration document", func(k, v *yaml.Node) error {
		var err error
		switch k.Value {
		case "auto_commands":
			cfg.AutoCommands, err = decodeAutoCommands(v)
		case "keys":
			cfg.Keys, err = decodeKeys(v)
		case "set":
			cfg.Set, err = decodeOneOrMany(v, "set")
		case "set_value":
			cfg.SetValue, err = decodeSettings(v, "set_value")
		case "let":
			cfg.Let, err = decodeSettings(v, "let")
		default:
			slog.Debug("ignoring unknown document field", "field", k.Value, "line", k.Line)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeString(n *yaml.Node, what string) (string, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return "", nodeError(n, "%s must be a string", what)
	}
	return n.Value, nil
}

// decodeOneOrMany accepts either a single scalar or a sequence of scalars.
func decodeOneOrMany(n *yaml.Node, what string) ([]string, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}

	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}

	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(n, "%s must be a string or a list of strings", what)
	}

	out := make([]string, 0, len(n.Content))
	for _, e := range n.Content {
		s, err := decodeString(e, what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeKeys(n *yaml.Node) ([]KeyGroup, error) {
	var groups []KeyGroup
	err := eachPair(n, "keys", func(k, v *yaml.Node) error {
		spec, err := ParseKeySpec(k.Value)
		if err != nil {
			return &DecodeError{Line: k.Line, Column: k.Column, Err: err}
		}

		group := KeyGroup{
			Raw:  k.Value,
			Spec: spec,
			Line: k.Line,
		}

		err = eachPair(v, fmt.Sprintf("key group %q", k.Value), func(key, binding *yaml.Node) error {
			entry, err := decodeBinding(binding)
			if err != nil {
				return err
			}
			group.Bindings = append(group.Bindings, Binding{Key: key.Value, Entry: entry})
			return nil
		})
		if err != nil {
			return err
		}

		groups = append(groups, group)
		return nil
	})
	return groups, err
}

// decodeBinding decodes a plain string as a single command and a mapping as
// a group of suffixed commands. Anything else is an error.
func decodeBinding(n *yaml.Node) (BindingEntry, error) {
	switch {
	case n.Kind == yaml.ScalarNode && !isNull(n):
		return Single(n.Value), nil
	case n.Kind == yaml.MappingNode:
		entry := Group()
		err := eachPair(n, "binding group", func(k, v *yaml.Node) error {
			cmd, err := decodeString(v, fmt.Sprintf("binding for suffix %q", k.Value))
			if err != nil {
				return err
			}
			entry.Group = append(entry.Group, Suffix{Suffix: k.Value, Command: cmd})
			return nil
		})
		return entry, err
	default:
		return BindingEntry{}, nodeError(n, "binding must be a command string or a mapping of suffixes to commands")
	}
}

func decodeAutoCommands(n *yaml.Node) ([]AutoCommand, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}

	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}

	out := make([]AutoCommand, 0, len(items))
	for _, item := range items {
		ac, err := decodeAutoCommand(resolve(item))
		if err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, nil
}

func decodeAutoCommand(n *yaml.Node) (AutoCommand, error) {
	if n.Kind != yaml.MappingNode {
		return AutoCommand{}, nodeError(n, "auto command must be a mapping")
	}

	ac := AutoCommand{Line: n.Line}
	err := eachPair(n, "auto command", func(k, v *yaml.Node) error {
		var err error
		switch k.Value {
		case "triggers":
			ac.Triggers, err = decodeOneOrMany(v, "triggers")
		case "cmd":
			ac.Cmd, err = decodeOneOrMany(v, "cmd")
		case "lua":
			ac.Lua, err = decodeOneOrMany(v, "lua")
		case "matching":
			if !isNull(v) {
				ac.Matching, err = decodeString(v, "matching")
			}
		case "file_type":
			if !isNull(v) {
				ac.FileType, err = decodeString(v, "file_type")
			}
		case "silent":
			if !isNull(v) {
				if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!bool" {
					return nodeError(v, "silent must be a boolean")
				}
				err = v.Decode(&ac.Silent)
			}
		case "event":
			err = eachPair(v, "event", func(ek, ev *yaml.Node) error {
				value, err := decodeString(ev, fmt.Sprintf("event %q", ek.Value))
				if err != nil {
					return err
				}
				ac.Event = append(ac.Event, EventCondition{Key: ek.Value, Value: value})
				return nil
			})
		default:
			slog.Debug("ignoring unknown auto command field", "field", k.Value, "line", k.Line)
		}
		return err
	})
	if err != nil {
		return AutoCommand{}, err
	}

	if len(ac.Triggers) == 0 {
		return AutoCommand{}, nodeError(n, "auto command requires at least one trigger")
	}

	return ac, nil
}

func decodeSettings(n *yaml.Node, what string) ([]Setting, error) {
	var out []Setting
	err := eachPair(n, what, func(k, v *yaml.Node) error {
		value, err := decodeValue(v)
		if err != nil {
			return err
		}
		out = append(out, Setting{Name: k.Value, Value: value})
		return nil
	})
	return out, err
}

func decodeValue(n *yaml.Node) (Value, error) {
	if n.Kind != yaml.ScalarNode {
		return Value{}, nodeError(n, "value must be an integer, string or boolean")
	}

	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, nodeError(n, "invalid integer %q: %w", n.Value, err)
		}
		return Int(i), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, nodeError(n, "invalid boolean %q: %w", n.Value, err)
		}
		return Bool(b), nil
	case "!!str":
		return String(n.Value), nil
	}

	return Value{}, nodeError(n, "unsupported value %q, expected an integer, string or boolean", n.Value)
}
