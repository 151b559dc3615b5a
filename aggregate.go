package vimcfg

import (
	"fmt"
	"log/slog"
	"strings"
)

// Bucket holds the generated lines of one output script.
type Bucket struct {
	Scope Scope
	Lines []string
}

// Aggregator collects generated lines from every document into per-scope
// buckets. Lines keep the order documents were added in.
//
// An Aggregator is owned by a single compilation pass and is not safe for
// concurrent use.
type Aggregator struct {
	buckets map[Scope]*Bucket
	// creation order, so emitted payloads are stable
	order []*Bucket
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		buckets: make(map[Scope]*Bucket),
	}
}

// Bucket returns the bucket for scope, creating it on first use.
func (a *Aggregator) Bucket(scope Scope) *Bucket {
	if b, ok := a.buckets[scope]; ok {
		return b
	}
	b := &Bucket{Scope: scope}
	a.buckets[scope] = b
	a.order = append(a.order, b)
	return b
}

func (b *Bucket) append(lines ...string) {
	b.Lines = append(b.Lines, lines...)
}

// Add renders a document into the buckets. The header, key groups,
// autocommands and settings are appended in that order.
func (a *Aggregator) Add(name string, cfg *Config) {
	global := a.Bucket(GlobalScope)
	global.append(fmt.Sprintf("\n\n\" File: %s", name), "\n\" Keybindings:")

	for _, group := range cfg.Keys {
		if !group.Spec.Flags.HasMode() {
			slog.Warn("key group has no mode flag and renders nothing", "document", name, "group", group.Raw)
		}

		b := a.Bucket(group.Spec.Scope())
		if group.Spec.Label != "" {
			b.append(fmt.Sprintf("\" %s", group.Spec.Label))
		}
		b.append(RenderGroup(group)...)
	}

	for _, ac := range cfg.AutoCommands {
		global.append(RenderAutoCommand(ac)...)
	}

	global.append(RenderSettings(cfg)...)

	slog.Debug("document aggregated", "document", name, "groups", len(cfg.Keys), "auto_commands", len(cfg.AutoCommands))
}

// Payload is the final text of one output script.
type Payload struct {
	Scope Scope
	Text  string
}

// Emit joins every bucket into its script text, in bucket creation order.
func (a *Aggregator) Emit() []Payload {
	out := make([]Payload, 0, len(a.order))
	for _, b := range a.order {
		out = append(out, Payload{
			Scope: b.Scope,
			Text:  strings.Join(b.Lines, "\n"),
		})
	}
	return out
}
