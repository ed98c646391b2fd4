package eventbus

import (
	"encoding/json"

	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Event is a lifecycle notification published by the engine. Payload is the
// JSON form persisted by the journal and forwarded by the relay.
type Event interface {
	Name() string
	Payload() []byte
}

// Event names emitted by the compilation engine.
const (
	EventCompilationStarted = "compilation_started"
	EventCompilationEnded   = "compilation_ended"
	EventFilteringStarted   = "filtering_started"
	EventFilteringEnded     = "filtering_ended"
)

// CompilationStarted signals that a representation began compiling.
type CompilationStarted struct{ Rep *site.Rep }

func (CompilationStarted) Name() string      { return EventCompilationStarted }
func (e CompilationStarted) Payload() []byte { return repPayload(e.Rep, "") }

// CompilationEnded signals that a representation finished compiling.
type CompilationEnded struct{ Rep *site.Rep }

func (CompilationEnded) Name() string      { return EventCompilationEnded }
func (e CompilationEnded) Payload() []byte { return repPayload(e.Rep, "") }

// FilteringStarted signals that a named filter began running for a rep.
type FilteringStarted struct {
	Rep    *site.Rep
	Filter string
}

func (FilteringStarted) Name() string      { return EventFilteringStarted }
func (e FilteringStarted) Payload() []byte { return repPayload(e.Rep, e.Filter) }

// FilteringEnded signals that a named filter finished running for a rep.
type FilteringEnded struct {
	Rep    *site.Rep
	Filter string
}

func (FilteringEnded) Name() string      { return EventFilteringEnded }
func (e FilteringEnded) Payload() []byte { return repPayload(e.Rep, e.Filter) }

func repPayload(rep *site.Rep, filter string) []byte {
	p := struct {
		Item   string `json:"item"`
		Rep    string `json:"rep"`
		Output string `json:"output,omitempty"`
		Filter string `json:"filter,omitempty"`
	}{Filter: filter}
	if rep != nil {
		p.Item = rep.Item.Identifier
		p.Rep = rep.Name
		p.Output = rep.OutputPath
	}
	b, _ := json.Marshal(p)
	return b
}
