package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/sitegen/internal/site"
	"github.com/stretchr/testify/require"
)

func TestFilesystem_LoadsItemsSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "b.md"), []byte("# B"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))

	items, err := NewFilesystem(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "/a.md", items[0].Identifier)
	require.Equal(t, "/posts/b.md", items[1].Identifier)
	require.Equal(t, "/style.css", items[2].Identifier)
}

func TestFilesystem_ClassifiesPagesAndAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte{0x89}, 0o644))

	items, err := NewFilesystem(dir).Load(context.Background())
	require.NoError(t, err)
	byID := map[string]*site.Item{}
	for _, item := range items {
		byID[item.Identifier] = item
	}
	require.Equal(t, site.KindPage, byID["/page.md"].Kind)
	require.Equal(t, site.KindAsset, byID["/logo.png"].Kind)
}

func TestFilesystem_SkipsDotfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644))

	items, err := NewFilesystem(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "/a.md", items[0].Identifier)
}

func TestFilesystem_SkipsDotDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".obsidian"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".obsidian", "workspace.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644))

	items, err := NewFilesystem(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "/a.md", items[0].Identifier)
}

func TestFilesystem_DotNamedRootIsWalked(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, ".content")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644))

	items, err := NewFilesystem(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFilesystem_CanceledContextAborts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFilesystem(dir).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
