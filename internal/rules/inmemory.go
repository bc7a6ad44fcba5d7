package rules

import (
	"context"
	"sort"

	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// InMemoryRepository serves rule documents from maps. Useful for testing
// and for rulesets assembled in code.
type InMemoryRepository struct {
	documents map[Category]map[string]*Document
}

// NewInMemory creates an empty in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		documents: make(map[Category]map[string]*Document),
	}
}

// Add registers a document under its category. The last document with a
// given name wins.
func (r *InMemoryRepository) Add(category Category, doc *Document) *InMemoryRepository {
	if r.documents[category] == nil {
		r.documents[category] = make(map[string]*Document)
	}
	doc.Category = category
	r.documents[category][doc.Name] = doc
	return r
}

// GetDocument retrieves one rule document
func (r *InMemoryRepository) GetDocument(ctx context.Context, category Category, name string) (*Document, error) {
	docs, ok := r.documents[category]
	if ok {
		if doc, found := docs[name]; found {
			return doc, nil
		}
	}

	return nil, engerr.DataIntegrityf("rule document '%s' not found in category '%s'", name, category).
		WithMeta("category", string(category)).
		WithMeta("document", name)
}

// ListNames lists the document names available in a category, sorted
func (r *InMemoryRepository) ListNames(ctx context.Context, category Category) ([]string, error) {
	names := make([]string, 0, len(r.documents[category]))
	for name := range r.documents[category] {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
