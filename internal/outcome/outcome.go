// Package outcome classifies the terminal state of a compiled
// representation into exactly one category, and decides whether and how
// loudly that state is logged per rep.
package outcome

import (
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Category is the mutually exclusive classification of a rep's result.
type Category string

const (
	Created    Category = "created"
	Modified   Category = "modified"
	Skipped    Category = "skipped"
	NotWritten Category = "not_written"
	Identical  Category = "identical"
)

// Categories lists all categories in classification precedence order.
var Categories = []Category{Created, Modified, Skipped, NotWritten, Identical}

// Classify assigns exactly one category to a rep. Precedence is strict and
// first match wins: a rep inconsistently flagged both created and modified
// is created, never double counted.
func Classify(rep *site.Rep) Category {
	switch {
	case rep.Created:
		return Created
	case rep.Modified:
		return Modified
	case !rep.Compiled:
		return Skipped
	case !rep.Written:
		return NotWritten
	default:
		return Identical
	}
}

// Partition buckets every rep into exactly one category. Buckets for
// categories with no reps are present and empty, so callers can render a
// complete count table without nil checks.
func Partition(reps []*site.Rep) map[Category][]*site.Rep {
	buckets := make(map[Category][]*site.Rep, len(Categories))
	for _, c := range Categories {
		buckets[c] = []*site.Rep{}
	}
	for _, rep := range reps {
		c := Classify(rep)
		buckets[c] = append(buckets[c], rep)
	}
	return buckets
}

// Action names the per-rep log line emitted for written reps.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionIdentical Action = "identical"
)

// ShouldLog reports whether a rep deserves a per-event log line, and at
// what level. Non-written reps (skipped or not written) are never logged
// per event; they only show up in the summary counts.
func ShouldLog(rep *site.Rep) (Action, slog.Level, bool) {
	if !rep.Written {
		return "", 0, false
	}
	switch Classify(rep) {
	case Created:
		return ActionCreate, slog.LevelInfo, true
	case Modified:
		return ActionUpdate, slog.LevelInfo, true
	default:
		return ActionIdentical, slog.LevelDebug, true
	}
}
