package postgres

import (
	"context"
	"database/sql"

	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, document_type, file_name, storage_path, file_size, mime_type, uploaded_at, case_id`

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.DocumentType,
		&d.FileName,
		&d.StoragePath,
		&d.FileSize,
		&d.MimeType,
		&d.UploadedAt,
		&d.CaseID,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (id, document_type, file_name, storage_path, file_size, mime_type, uploaded_at, case_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.DocumentType,
		doc.FileName,
		doc.StoragePath,
		doc.FileSize,
		doc.MimeType,
		doc.UploadedAt,
		doc.CaseID,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByCase returns the case's documents, newest upload first.
func (r *DocumentPostgres) ListByCase(ctx context.Context, caseID string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE case_id = $1 ORDER BY uploaded_at DESC`
	return r.queryDocuments(ctx, q, caseID)
}

// FindByCaseAndType returns the case's documents of the given type, newest first.
func (r *DocumentPostgres) FindByCaseAndType(ctx context.Context, caseID string, t model.DocumentType) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE case_id = $1 AND document_type = $2 ORDER BY uploaded_at DESC`
	return r.queryDocuments(ctx, q, caseID, t)
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a document by ID. Returns sql.ErrNoRows if no row matched.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
