// Package compiler implements the compilation engine: rule matching,
// filter chains, layout application, and output writing. The engine owns
// item and rep state, emits the four lifecycle events on the bus, and
// exposes its execution stack for diagnostics when a run fails.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/eventbus"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/outcome"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// layoutFilterName is the filter name under which layout rendering is
// timed in the profiling table.
const layoutFilterName = "gotemplate"

// Engine compiles items according to the configured rules. Single-threaded:
// all event publication happens inline on the compilation call path.
type Engine struct {
	cfg     *config.Config
	bus     *eventbus.Bus
	filters map[string]Filter

	items []*site.Item
	byID  map[string]*site.Item
	rules map[*site.Rep]config.Rule

	// stack is popped only on the success path, so a failure leaves the
	// frames in place for the diagnostic report.
	stack    []site.Frame
	compiled map[*site.Rep][]byte

	// includeErr holds the first error raised inside a layout's include
	// call. text/template reformats function errors, so the original is
	// kept here to survive with its kind intact.
	includeErr *errors.CompileError
}

// New creates an engine over the loaded items. Call Prepare before Run.
func New(cfg *config.Config, bus *eventbus.Bus, items []*site.Item) *Engine {
	byID := make(map[string]*site.Item, len(items))
	for _, item := range items {
		byID[item.Identifier] = item
	}
	return &Engine{
		cfg:      cfg,
		bus:      bus,
		filters:  DefaultFilters(),
		items:    items,
		byID:     byID,
		rules:    map[*site.Rep]config.Rule{},
		compiled: map[*site.Rep][]byte{},
	}
}

// Prepare matches every item against the rules and builds its default
// representation. Fails when no rules are configured or an item matches
// none of them.
func (e *Engine) Prepare() error {
	if len(e.cfg.Rules) == 0 {
		return errors.New(errors.KindNoRulesFile, "no compilation rules configured")
	}
	for _, item := range e.items {
		rule, ok, err := e.matchRule(item)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(errors.KindNoMatchingRule, "no rule matches item %s", item.Identifier)
		}
		rep := &site.Rep{Item: item, Name: "default"}
		if rule.ShouldWrite() {
			rep.OutputPath = e.outputPath(item)
		}
		item.Reps = []*site.Rep{rep}
		e.rules[rep] = rule
	}
	return nil
}

func (e *Engine) matchRule(item *site.Item) (config.Rule, bool, error) {
	for _, rule := range e.cfg.Rules {
		ok, err := matchPattern(rule.Pattern, item.Identifier)
		if err != nil {
			return config.Rule{}, false, err
		}
		if ok {
			return rule, true, nil
		}
	}
	return config.Rule{}, false, nil
}

func (e *Engine) outputPath(item *site.Item) string {
	rel := strings.TrimPrefix(item.Identifier, "/")
	if item.Kind == site.KindPage {
		ext := filepath.Ext(rel)
		if ext == ".md" || ext == ".markdown" {
			rel = strings.TrimSuffix(rel, ext) + ".html"
		}
	}
	return filepath.Join(e.cfg.OutputDir, filepath.FromSlash(rel))
}

// Reps returns every representation in item order.
func (e *Engine) Reps() []*site.Rep {
	var reps []*site.Rep
	for _, item := range e.items {
		reps = append(reps, item.Reps...)
	}
	return reps
}

// Stack returns a copy of the current execution stack, outermost first.
// Meaningful mid-failure: frames of the failing compilation are still
// present because unwinding does not pop them.
func (e *Engine) Stack() []site.Frame {
	return append([]site.Frame(nil), e.stack...)
}

// Run compiles the targeted items (all items when targets is nil).
// Returns ctx.Err() unwrapped on cancellation so the orchestrator can
// distinguish interrupts from failures.
func (e *Engine) Run(ctx context.Context, targets []*site.Item, force bool) error {
	if targets == nil {
		targets = e.items
	}
	for _, item := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, rep := range item.Reps {
			if err := e.compileRep(ctx, rep, force); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) compileRep(ctx context.Context, rep *site.Rep, force bool) error {
	if _, done := e.compiled[rep]; done {
		return nil
	}
	if !force && rep.OutputPath != "" && !e.outdated(rep) {
		return nil // remains uncompiled: classified as skipped
	}
	for _, f := range e.stack {
		if f.Kind == site.FrameItemRep && f.Identifier == rep.Item.Identifier && f.RepName == rep.Name {
			return errors.New(errors.KindRecursiveCompilation,
				"item %s (rep %s) depends on its own compiled content", rep.Item.Identifier, rep.Name)
		}
	}

	e.push(site.Frame{
		Kind:       site.FrameItemRep,
		ItemKind:   rep.Item.Kind,
		Identifier: rep.Item.Identifier,
		RepName:    rep.Name,
	})
	if err := e.bus.Publish(eventbus.CompilationStarted{Rep: rep}); err != nil {
		return err
	}

	rule := e.rules[rep]
	content := rep.Item.Content

	for _, name := range rule.Filters {
		var err error
		content, err = e.runFilter(rep, name, content)
		if err != nil {
			return err
		}
	}

	if rule.Layout != "" {
		var err error
		content, err = e.applyLayout(ctx, rep, rule.Layout, content)
		if err != nil {
			return err
		}
	}

	e.compiled[rep] = content
	rep.Compiled = true
	if err := e.bus.Publish(eventbus.CompilationEnded{Rep: rep}); err != nil {
		return err
	}

	if err := e.write(rep, content, rule); err != nil {
		return err
	}
	e.logOutcome(ctx, rep)

	e.pop()
	return nil
}

func (e *Engine) runFilter(rep *site.Rep, name string, content []byte) ([]byte, error) {
	if err := e.bus.Publish(eventbus.FilteringStarted{Rep: rep, Filter: name}); err != nil {
		return nil, err
	}
	f, ok := e.filters[name]
	if !ok {
		return nil, errors.New(errors.KindUnknownFilter, "filter %q is not registered", name)
	}
	out, err := f.Apply(content)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindGeneric, "filter %s failed on %s", name, rep.Item.Identifier)
	}
	if err := e.bus.Publish(eventbus.FilteringEnded{Rep: rep, Filter: name}); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) applyLayout(ctx context.Context, rep *site.Rep, layout string, content []byte) ([]byte, error) {
	e.push(site.Frame{Kind: site.FrameLayout, Identifier: "/" + layout})

	switch filepath.Ext(layout) {
	case ".tmpl", ".gotmpl":
	default:
		return nil, errors.New(errors.KindCannotDetermineFilter,
			"cannot determine filter for layout %s (extension %q)", layout, filepath.Ext(layout))
	}

	src, err := os.ReadFile(filepath.Join(e.cfg.LayoutsDir, layout))
	if err != nil {
		return nil, errors.New(errors.KindUnknownLayout, "layout %s does not exist", layout)
	}

	if err := e.bus.Publish(eventbus.FilteringStarted{Rep: rep, Filter: layoutFilterName}); err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		// include compiles another item and splices in its content, which
		// is how nested compilations (and recursion failures) arise.
		"include": func(identifier string) (string, error) {
			other, ok := e.byID[identifier]
			if !ok {
				err := errors.New(errors.KindGeneric, "include: unknown item %s", identifier)
				e.includeErr = err
				return "", err
			}
			target := other.Reps[0]
			if err := e.compileRep(ctx, target, true); err != nil {
				e.includeErr = errors.Generic(err)
				return "", err
			}
			return string(e.compiled[target]), nil
		},
	}
	tmpl, err := template.New(layout).Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindGeneric, "parse layout %s", layout)
	}

	var buf bytes.Buffer
	data := struct {
		Content string
		Item    *site.Item
		Rep     *site.Rep
	}{Content: string(content), Item: rep.Item, Rep: rep}
	if err := tmpl.Execute(&buf, data); err != nil {
		// Failures raised inside include keep their original kind
		// (recursive compilation, unknown item) instead of the template
		// engine's reformatted message.
		if ce := e.includeErr; ce != nil {
			e.includeErr = nil
			return nil, ce
		}
		return nil, errors.Wrap(err, errors.KindGeneric, "render layout %s", layout)
	}

	if err := e.bus.Publish(eventbus.FilteringEnded{Rep: rep, Filter: layoutFilterName}); err != nil {
		return nil, err
	}

	e.pop()
	return buf.Bytes(), nil
}

func (e *Engine) outdated(rep *site.Rep) bool {
	info, err := os.Stat(rep.OutputPath)
	if err != nil {
		return true
	}
	return rep.Item.ModTime.After(info.ModTime())
}

func (e *Engine) write(rep *site.Rep, content []byte, rule config.Rule) error {
	if !rule.ShouldWrite() || rep.OutputPath == "" {
		return nil // compiled but never written
	}
	old, err := os.ReadFile(rep.OutputPath)
	switch {
	case os.IsNotExist(err):
		rep.Created = true
	case err != nil:
		return fmt.Errorf("read existing output %s: %w", rep.OutputPath, err)
	case !bytes.Equal(old, content):
		rep.Modified = true
	}

	if err := os.MkdirAll(filepath.Dir(rep.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", rep.OutputPath, err)
	}
	if err := os.WriteFile(rep.OutputPath, content, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", rep.OutputPath, err)
	}
	rep.Written = true
	return nil
}

func (e *Engine) logOutcome(ctx context.Context, rep *site.Rep) {
	action, level, ok := outcome.ShouldLog(rep)
	if !ok {
		return
	}
	slog.LogAttrs(ctx, level, string(action),
		logfields.Item(rep.Item.Identifier),
		logfields.Rep(rep.Name),
		logfields.OutputPath(rep.OutputPath))
}

func (e *Engine) push(f site.Frame) { e.stack = append(e.stack, f) }
func (e *Engine) pop()              { e.stack = e.stack[:len(e.stack)-1] }
