package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndEventsForRun(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.Append(ctx, "run-1", "compilation_started", []byte(`{"item":"/a.md"}`)))
	require.NoError(t, j.Append(ctx, "run-1", "compilation_ended", []byte(`{"item":"/a.md"}`)))
	require.NoError(t, j.Append(ctx, "run-2", "compilation_started", nil))

	entries, err := j.EventsForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "compilation_started", entries[0].EventType)
	require.Equal(t, "compilation_ended", entries[1].EventType)
	require.JSONEq(t, `{"item":"/a.md"}`, string(entries[0].Payload))
}

func TestEventsForRun_UnknownRunIsEmpty(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.EventsForRun(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, entries)
}
