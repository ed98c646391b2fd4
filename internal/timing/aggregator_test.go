package timing

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/eventbus"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out timestamps advancing by a fixed step per call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestAggregator(step time.Duration) (*Aggregator, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0), step: step}
	return NewAggregator().WithClock(clock.now), clock
}

func repWithOutput(path string) *site.Rep {
	item := &site.Item{Identifier: "/" + path, Kind: site.KindPage}
	rep := &site.Rep{Item: item, Name: "default", OutputPath: path}
	item.Reps = []*site.Rep{rep}
	return rep
}

func TestCompilationTiming_ElapsedBetweenStartAndEnd(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	rep := repWithOutput("out/a.html")

	agg.OnCompilationStarted(rep)
	require.NoError(t, agg.OnCompilationEnded(rep))

	d, ok := agg.ElapsedFor(rep.Key())
	require.True(t, ok)
	require.Equal(t, time.Second, d)
}

func TestCompilationTiming_RestartOverwritesStart(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	rep := repWithOutput("out/a.html")

	agg.OnCompilationStarted(rep)
	agg.OnCompilationStarted(rep) // later start wins
	require.NoError(t, agg.OnCompilationEnded(rep))

	d, ok := agg.ElapsedFor(rep.Key())
	require.True(t, ok)
	require.Equal(t, time.Second, d)
}

func TestCompilationTiming_EndWithoutStartIsDefect(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	err := agg.OnCompilationEnded(repWithOutput("out/a.html"))
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindDefect))
}

func TestElapsedFor_UnknownKeyAbsent(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	_, ok := agg.ElapsedFor("out/missing.html")
	require.False(t, ok)
}

func TestFilterTiming_NestedAttribution(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)

	// start(A) start(B) end(B) end(A): B gets its own interval, A spans it.
	agg.OnFilteringStarted("a")
	agg.OnFilteringStarted("b")
	require.NoError(t, agg.OnFilteringEnded("b"))
	require.NoError(t, agg.OnFilteringEnded("a"))

	bSamples := agg.SamplesFor("b")
	aSamples := agg.SamplesFor("a")
	require.Len(t, bSamples, 1)
	require.Len(t, aSamples, 1)
	require.Equal(t, time.Second, bSamples[0])
	require.Equal(t, 3*time.Second, aSamples[0])
	require.GreaterOrEqual(t, aSamples[0], bSamples[0])
	require.Zero(t, agg.StackDepth())
}

func TestFilterTiming_EmptyStackPopIsDefect(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	err := agg.OnFilteringEnded("markdown")
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindDefect))
	require.Empty(t, agg.SamplesFor("markdown"))
}

func TestFilterTiming_MultipleSamplesPerFilter(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	for i := 0; i < 3; i++ {
		agg.OnFilteringStarted("markdown")
		require.NoError(t, agg.OnFilteringEnded("markdown"))
	}
	require.Len(t, agg.SamplesFor("markdown"), 3)
}

func TestFilterNames_SortedAscending(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	for _, name := range []string{"rot13", "markdown", "strip_html"} {
		agg.OnFilteringStarted(name)
		require.NoError(t, agg.OnFilteringEnded(name))
	}
	require.Equal(t, []string{"markdown", "rot13", "strip_html"}, agg.FilterNames())
}

func TestAttach_DrivesAggregatorFromBusEvents(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	bus := eventbus.NewBus()
	agg.Attach(bus)
	rep := repWithOutput("out/a.html")

	require.NoError(t, bus.Publish(eventbus.CompilationStarted{Rep: rep}))
	require.NoError(t, bus.Publish(eventbus.FilteringStarted{Rep: rep, Filter: "markdown"}))
	require.NoError(t, bus.Publish(eventbus.FilteringEnded{Rep: rep, Filter: "markdown"}))
	require.NoError(t, bus.Publish(eventbus.CompilationEnded{Rep: rep}))

	_, ok := agg.ElapsedFor(rep.Key())
	require.True(t, ok)
	require.Len(t, agg.SamplesFor("markdown"), 1)
}

func TestAttach_DefectPropagatesThroughBus(t *testing.T) {
	agg, _ := newTestAggregator(time.Second)
	bus := eventbus.NewBus()
	agg.Attach(bus)

	err := bus.Publish(eventbus.FilteringEnded{Rep: repWithOutput("out/a.html"), Filter: "markdown"})
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindDefect))
}
