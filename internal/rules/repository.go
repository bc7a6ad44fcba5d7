package rules

//go:generate mockgen -destination=mock/mock_repository.go -package=mockrules -source=repository.go

import (
	"context"
)

// Repository supplies named, nested rule documents on lookup by
// category and name. Documents are immutable read-only lookup tables;
// the engine does not care how the repository is populated or cached.
type Repository interface {
	// GetDocument retrieves one rule document
	GetDocument(ctx context.Context, category Category, name string) (*Document, error)

	// ListNames lists the document names available in a category, sorted
	ListNames(ctx context.Context, category Category) ([]string, error)
}
