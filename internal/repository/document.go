package repository

import (
	"context"

	"kyccase/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByCase returns all documents for a case ordered by uploadedAt
	// descending.
	ListByCase(ctx context.Context, caseID string) ([]model.Document, error)

	// FindByCaseAndType returns the case's documents of the given type,
	// newest first.
	FindByCaseAndType(ctx context.Context, caseID string, t model.DocumentType) ([]model.Document, error)

	// Delete removes a document by ID. Returns sql.ErrNoRows if the row
	// did not exist.
	Delete(ctx context.Context, id string) error
}
