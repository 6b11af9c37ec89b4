package repository

import (
	"context"
	"time"

	"kyccase/internal/model"
)

// CaseQuery is a typed filter for listing cases. SortBy is validated against
// a whitelist by the implementation; user-supplied values are never
// concatenated into SQL.
type CaseQuery struct {
	Search    string
	Status    model.CaseStatus
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// CasePatch enumerates the externally editable case fields. A nil field is
// left untouched. id, caseNumber, createdAt, rmId and status are not
// representable here: identity fields are immutable and status changes go
// through UpdateStatus so the stamping rule cannot be bypassed.
type CasePatch struct {
	ClientType          *model.ClientType
	ClientName          *string
	DateOfBirth         *time.Time
	DateOfIncorporation *time.Time
	Country             *string
	Nationality         *string
	BusinessType        *string
	Industry            *string
	SourceOfWealth      *string
}

// Empty reports whether the patch carries no edits.
func (p CasePatch) Empty() bool {
	return p.ClientType == nil && p.ClientName == nil &&
		p.DateOfBirth == nil && p.DateOfIncorporation == nil &&
		p.Country == nil && p.Nationality == nil &&
		p.BusinessType == nil && p.Industry == nil && p.SourceOfWealth == nil
}

// CaseListRow is one list row: the case plus the joined relationship
// manager identity, the slim analysis projection and the document count.
// The RM and summary fields are zero when the joined row is absent.
type CaseListRow struct {
	Case                  model.Case
	RMName                string
	RMEmail               string
	SummaryRiskScore      *int
	SummaryRecommendation *string
	DocumentCount         int
}

// StatusChange describes a status transition together with the acting user
// and timestamp used for approval/rejection stamping.
type StatusChange struct {
	Status  model.CaseStatus
	ActorID string
	At      time.Time
}

// CaseRepository defines data access for cases using SQL queries only.
// No business logic here, strictly persistence operations.
type CaseRepository interface {
	// Create inserts a new case row and returns the stored record.
	Create(ctx context.Context, c *model.Case) (*model.Case, error)

	// NextCaseNumber returns the next value of the global case number
	// sequence. The sequence never repeats, so numbers derived from it are
	// unique across all cases.
	NextCaseNumber(ctx context.Context) (int64, error)

	// FindByID returns a case by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Case, error)

	// List returns a filtered, sorted, paginated page of cases, each row
	// joined with its RM, analysis projection and document count, plus the
	// total row count for the filter.
	List(ctx context.Context, q CaseQuery) (*PageResult[CaseListRow], error)

	// Update applies the non-nil patch fields in a single UPDATE and
	// returns the updated row, or sql.ErrNoRows if the case is absent.
	Update(ctx context.Context, id string, p CasePatch) (*model.Case, error)

	// UpdateStatus sets the status and, for approved/rejected, the
	// corresponding stamp pair in one atomic write. The opposing stamp
	// pair is left untouched. Returns sql.ErrNoRows if the case is absent.
	UpdateStatus(ctx context.Context, id string, ch StatusChange) (*model.Case, error)

	// Delete removes a case; documents and the analysis summary cascade at
	// the schema level. Returns sql.ErrNoRows if the case is absent.
	Delete(ctx context.Context, id string) error
}
