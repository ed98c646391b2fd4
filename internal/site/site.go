// Package site holds the content model shared between the compilation
// engine and the instrumentation core: items, their representations, and
// the execution frames exposed for diagnostics.
package site

import "time"

// Kind distinguishes textual pages from binary/passthrough assets.
type Kind string

const (
	KindPage  Kind = "page"
	KindAsset Kind = "asset"
)

// Item is a single piece of source content (page or asset) with one or
// more representations.
type Item struct {
	Identifier string
	Kind       Kind
	Content    []byte
	SourcePath string
	ModTime    time.Time
	Reps       []*Rep
}

// Rep is one concrete output artifact derived from an item. OutputPath is
// the unique correlation key for timing. The four booleans are terminal
// facts set by the engine during a run and consumed read-only by the
// classifier and renderer.
type Rep struct {
	Item *Item
	Name string

	// OutputPath is empty for reps that are compiled but never written
	// (rules with write: false).
	OutputPath string

	Compiled bool
	Written  bool
	Created  bool
	Modified bool
}

// Key returns the timing correlation key for the rep. Reps without an
// output path still need a stable key, so the identifier and rep name
// stand in.
func (r *Rep) Key() string {
	if r.OutputPath != "" {
		return r.OutputPath
	}
	return r.Item.Identifier + "#" + r.Name
}

// FrameKind tags execution stack frames for diagnostic rendering.
type FrameKind string

const (
	FrameItemRep FrameKind = "item_rep"
	FrameLayout  FrameKind = "layout"
)

// Frame is one entry of the engine's execution stack, captured at failure
// time for the diagnostic report. Exactly one of the kinds applies; the
// renderer switches exhaustively over Kind.
type Frame struct {
	Kind       FrameKind
	ItemKind   Kind   // set for FrameItemRep
	Identifier string // item identifier or layout identifier
	RepName    string // set for FrameItemRep
}
