// Package source loads site content into items. The filesystem source
// walks a local content directory; the git source shallow-clones a
// repository first and then delegates to the filesystem source.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Source produces the items of a site.
type Source interface {
	Load(ctx context.Context) ([]*site.Item, error)
}

// pageExtensions lists the extensions treated as textual pages; everything
// else is an asset copied through untouched.
var pageExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
}

// Filesystem loads items from a local directory.
type Filesystem struct {
	dir string
}

func NewFilesystem(dir string) *Filesystem { return &Filesystem{dir: dir} }

// Load walks the content directory and returns one item per regular file,
// sorted by identifier for deterministic compilation order.
func (s *Filesystem) Load(ctx context.Context) ([]*site.Item, error) {
	var items []*site.Item
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.dir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		kind := site.KindAsset
		if pageExtensions[strings.ToLower(filepath.Ext(path))] {
			kind = site.KindPage
		}
		items = append(items, &site.Item{
			Identifier: "/" + filepath.ToSlash(rel),
			Kind:       kind,
			Content:    content,
			SourcePath: path,
			ModTime:    info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content dir %s: %w", s.dir, err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Identifier < items[j].Identifier })
	return items, nil
}
