package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithRunID_RoundTrips(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-42")
	require.Equal(t, "run-42", GetContext(ctx).RunID)
}

func TestWithItem_PreservesRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-42")
	ctx = WithItem(ctx, "/about.md")

	lc := GetContext(ctx)
	require.Equal(t, "run-42", lc.RunID)
	require.Equal(t, "/about.md", lc.Item)
}

func TestNewRunID_Unique(t *testing.T) {
	require.NotEqual(t, NewRunID(), NewRunID())
}

func TestGetContext_EmptyWithoutValues(t *testing.T) {
	require.Equal(t, LogContext{}, GetContext(context.Background()))
}
