package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// CasePostgres is a PostgreSQL implementation of repository.CaseRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CasePostgres struct {
	db *sql.DB
}

// NewCasePostgres creates a new CasePostgres repository.
func NewCasePostgres(db *sql.DB) *CasePostgres {
	return &CasePostgres{db: db}
}

var _ repository.CaseRepository = (*CasePostgres)(nil)

// caseColumns is the canonical SELECT list for case rows. Optional text
// fields are coalesced so rows scan into plain strings.
const caseColumns = `id, case_number, client_type, client_name, date_of_birth, date_of_incorporation,
		country, COALESCE(nationality, ''), COALESCE(business_type, ''), COALESCE(industry, ''),
		COALESCE(source_of_wealth, ''), status, risk_score, rm_id,
		approved_at, approved_by, rejected_at, rejected_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*model.Case, error) {
	var c model.Case
	if err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.ClientType,
		&c.ClientName,
		&c.DateOfBirth,
		&c.DateOfIncorporation,
		&c.Country,
		&c.Nationality,
		&c.BusinessType,
		&c.Industry,
		&c.SourceOfWealth,
		&c.Status,
		&c.RiskScore,
		&c.RMID,
		&c.ApprovedAt,
		&c.ApprovedBy,
		&c.RejectedAt,
		&c.RejectedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new case row and returns the stored record.
func (r *CasePostgres) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	q := `
		INSERT INTO cases (id, case_number, client_type, client_name, date_of_birth, date_of_incorporation,
			country, nationality, business_type, industry, source_of_wealth, status, rm_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + caseColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.CaseNumber,
		c.ClientType,
		c.ClientName,
		c.DateOfBirth,
		c.DateOfIncorporation,
		c.Country,
		c.Nationality,
		c.BusinessType,
		c.Industry,
		c.SourceOfWealth,
		c.Status,
		c.RMID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	out, err := scanCase(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return out, nil
}

// NextCaseNumber returns the next value of the case number sequence.
func (r *CasePostgres) NextCaseNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('case_number_seq')`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// FindByID fetches a single case by its ID.
func (r *CasePostgres) FindByID(ctx context.Context, id string) (*model.Case, error) {
	q := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return scanCase(r.db.QueryRowContext(ctx, q, id))
}

// sortColumns whitelists externally selectable sort fields. Anything outside
// this map falls back to created_at.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"caseNumber": "case_number",
	"clientName": "client_name",
	"country":    "country",
	"status":     "status",
	"riskScore":  "risk_score",
}

// caseListColumns is the list projection: caseColumns qualified with the c
// alias, then the joined RM identity, the summary projection and the per-case
// document count.
const caseListColumns = `c.id, c.case_number, c.client_type, c.client_name, c.date_of_birth, c.date_of_incorporation,
		c.country, COALESCE(c.nationality, ''), COALESCE(c.business_type, ''), COALESCE(c.industry, ''),
		COALESCE(c.source_of_wealth, ''), c.status, c.risk_score, c.rm_id,
		c.approved_at, c.approved_by, c.rejected_at, c.rejected_by, c.created_at, c.updated_at,
		COALESCE(u.name, ''), COALESCE(u.email, ''),
		s.risk_score, s.recommendation,
		(SELECT COUNT(*) FROM documents d WHERE d.case_id = c.id)`

func scanCaseListRow(row rowScanner) (*repository.CaseListRow, error) {
	var lr repository.CaseListRow
	c := &lr.Case
	if err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.ClientType,
		&c.ClientName,
		&c.DateOfBirth,
		&c.DateOfIncorporation,
		&c.Country,
		&c.Nationality,
		&c.BusinessType,
		&c.Industry,
		&c.SourceOfWealth,
		&c.Status,
		&c.RiskScore,
		&c.RMID,
		&c.ApprovedAt,
		&c.ApprovedBy,
		&c.RejectedAt,
		&c.RejectedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
		&lr.RMName,
		&lr.RMEmail,
		&lr.SummaryRiskScore,
		&lr.SummaryRecommendation,
		&lr.DocumentCount,
	); err != nil {
		return nil, err
	}
	return &lr, nil
}

// List returns a filtered page of cases plus the total count for the filter.
// Each row left-joins the RM and the analysis summary so the list endpoint
// needs no per-row follow-up queries. Filters are appended as parameterized
// predicates; the sort column comes from the whitelist only.
func (r *CasePostgres) List(ctx context.Context, q repository.CaseQuery) (*repository.PageResult[repository.CaseListRow], error) {
	var (
		preds []string
		args  []any
	)
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		preds = append(preds, "(c.client_name ILIKE "+p+" OR c.case_number ILIKE "+p+")")
	}
	if q.Status != "" {
		args = append(args, q.Status)
		preds = append(preds, fmt.Sprintf("c.status = $%d", len(args)))
	}

	where := ""
	if len(preds) > 0 {
		where = " WHERE " + strings.Join(preds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cases c"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}

	args = append(args, q.Limit, q.Offset)
	qList := fmt.Sprintf(`SELECT %s FROM cases c
		LEFT JOIN users u ON u.id = c.rm_id
		LEFT JOIN ai_summaries s ON s.case_id = c.id%s
		ORDER BY c.%s %s, c.id DESC LIMIT $%d OFFSET $%d`,
		caseListColumns, where, col, dir, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]repository.CaseListRow, 0)
	for rows.Next() {
		lr, err := scanCaseListRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[repository.CaseListRow]{Items: items, Total: total}, nil
}

// Update applies the patch as one UPDATE statement and returns the new row.
// An empty patch reads the row back without touching updated_at.
func (r *CasePostgres) Update(ctx context.Context, id string, p repository.CasePatch) (*model.Case, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{"updated_at = now()"}
	var args []any

	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.ClientType != nil {
		set("client_type", *p.ClientType)
	}
	if p.ClientName != nil {
		set("client_name", *p.ClientName)
	}
	if p.DateOfBirth != nil {
		set("date_of_birth", *p.DateOfBirth)
	}
	if p.DateOfIncorporation != nil {
		set("date_of_incorporation", *p.DateOfIncorporation)
	}
	if p.Country != nil {
		set("country", *p.Country)
	}
	if p.Nationality != nil {
		set("nationality", *p.Nationality)
	}
	if p.BusinessType != nil {
		set("business_type", *p.BusinessType)
	}
	if p.Industry != nil {
		set("industry", *p.Industry)
	}
	if p.SourceOfWealth != nil {
		set("source_of_wealth", *p.SourceOfWealth)
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE cases SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), caseColumns)

	return scanCase(r.db.QueryRowContext(ctx, q, args...))
}

// UpdateStatus sets the status and the matching stamp pair in one write.
func (r *CasePostgres) UpdateStatus(ctx context.Context, id string, ch repository.StatusChange) (*model.Case, error) {
	switch ch.Status {
	case model.StatusApproved:
		q := `UPDATE cases SET status = $1, approved_at = $2, approved_by = $3, updated_at = now()
			WHERE id = $4 RETURNING ` + caseColumns
		return scanCase(r.db.QueryRowContext(ctx, q, ch.Status, ch.At, ch.ActorID, id))
	case model.StatusRejected:
		q := `UPDATE cases SET status = $1, rejected_at = $2, rejected_by = $3, updated_at = now()
			WHERE id = $4 RETURNING ` + caseColumns
		return scanCase(r.db.QueryRowContext(ctx, q, ch.Status, ch.At, ch.ActorID, id))
	default:
		q := `UPDATE cases SET status = $1, updated_at = now() WHERE id = $2 RETURNING ` + caseColumns
		return scanCase(r.db.QueryRowContext(ctx, q, ch.Status, id))
	}
}

// Delete removes a case by ID. Documents and the summary cascade at the
// schema level.
func (r *CasePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
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
