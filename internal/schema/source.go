package schema

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoDocument is returned by a Source that has no document for an id.
var ErrNoDocument = errors.New("no schema document")

// Source provides raw schema documents keyed by table id.
type Source interface {
	// Fetch returns the YAML document for tableID, or ErrNoDocument.
	Fetch(ctx context.Context, tableID string) ([]byte, error)
	// List returns every table id the source can provide, sorted.
	List(ctx context.Context) ([]string, error)
}

//go:embed builtin/*.yaml
var builtinFS embed.FS

// FSSource reads <id>.yaml documents from a directory of an fs.FS.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// Builtin returns the schemas shipped with the engine.
func Builtin() *FSSource {
	return &FSSource{fsys: builtinFS, dir: "builtin"}
}

// NewDirSource reads <id>.yaml documents from a directory on disk.
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), dir: "."}
}

// Fetch implements Source.
func (s *FSSource) Fetch(ctx context.Context, tableID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tableID == "" || strings.ContainsAny(tableID, `/\.`) {
		return nil, fmt.Errorf("invalid table id %q: %w", tableID, ErrNoDocument)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := fs.ReadFile(s.fsys, path.Join(s.dir, tableID+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read schema %s: %w", tableID, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", tableID, ErrNoDocument)
}

// List implements Source.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(ids)
	return ids, nil
}

// MapSource serves documents from memory. It is mostly useful in tests.
type MapSource map[string]string

// Fetch implements Source.
func (m MapSource) Fetch(ctx context.Context, tableID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := m[tableID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", tableID, ErrNoDocument)
	}
	return []byte(doc), nil
}

// List implements Source.
func (m MapSource) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Chain consults sources in order; the first one holding a document wins.
type Chain []Source

// Fetch implements Source.
func (c Chain) Fetch(ctx context.Context, tableID string) ([]byte, error) {
	for _, s := range c {
		data, err := s.Fetch(ctx, tableID)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNoDocument) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", tableID, ErrNoDocument)
}

// List implements Source.
func (c Chain) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range c {
		sub, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range sub {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
