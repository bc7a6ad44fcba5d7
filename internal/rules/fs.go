package rules

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// FSRepository loads rule documents from a directory tree of the form
// <dir>/<category>/<file>.json (or .yaml/.yml). All documents are read
// once at construction and treated as immutable for the lifetime of the
// repository.
type FSRepository struct {
	documents map[Category]map[string]*Document
}

// NewFS loads every category subdirectory under dir. Missing category
// directories are fine; a ruleset only provides what it has.
func NewFS(dir string) (*FSRepository, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, engerr.Wrapf(err, "rules directory '%s' is not readable", dir)
	}
	if !info.IsDir() {
		return nil, engerr.InvalidArgumentf("rules path '%s' is not a directory", dir)
	}

	repo := &FSRepository{
		documents: make(map[Category]map[string]*Document, len(Categories)),
	}

	// Every inner map exists before any worker starts, so each worker
	// touches only its own category and the outer map stays read-only
	for _, category := range Categories {
		repo.documents[category] = make(map[string]*Document)
	}

	var g errgroup.Group
	for _, category := range Categories {
		category := category
		g.Go(func() error {
			return repo.loadCategory(dir, category)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return repo, nil
}

// GetDocument retrieves one rule document
func (r *FSRepository) GetDocument(ctx context.Context, category Category, name string) (*Document, error) {
	docs, ok := r.documents[category]
	if !ok {
		return nil, engerr.DataIntegrityf("unknown rule category '%s'", category)
	}

	doc, ok := docs[name]
	if !ok {
		return nil, engerr.DataIntegrityf("rule document '%s' not found in category '%s'", name, category).
			WithMeta("category", string(category)).
			WithMeta("document", name)
	}

	return doc, nil
}

// ListNames lists the document names available in a category, sorted
func (r *FSRepository) ListNames(ctx context.Context, category Category) ([]string, error) {
	docs, ok := r.documents[category]
	if !ok {
		return nil, engerr.DataIntegrityf("unknown rule category '%s'", category)
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (r *FSRepository) loadCategory(dir string, category Category) error {
	categoryDir := filepath.Join(dir, string(category))

	entries, err := os.ReadDir(categoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return engerr.Wrapf(err, "failed to read category directory '%s'", categoryDir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(categoryDir, entry.Name())
		doc, err := loadDocument(path, ext)
		if err != nil {
			return engerr.Wrapf(err, "failed to load rule document '%s'", path)
		}

		if doc.Name == "" {
			return engerr.DataIntegrityf("rule document '%s' has no name", path)
		}
		doc.Category = category

		r.documents[category][doc.Name] = doc
	}

	return nil
}

func loadDocument(path, ext string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}
