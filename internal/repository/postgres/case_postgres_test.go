package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"kyccase/internal/model"
	"kyccase/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var caseCols = []string{
	"id", "case_number", "client_type", "client_name", "date_of_birth", "date_of_incorporation",
	"country", "nationality", "business_type", "industry", "source_of_wealth", "status", "risk_score",
	"rm_id", "approved_at", "approved_by", "rejected_at", "rejected_by", "created_at", "updated_at",
}

func caseRow(id, caseNumber string, status model.CaseStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(caseCols).AddRow(
		id, caseNumber, "individual", "Jane Roe", nil, nil,
		"Hong Kong", "", "", "", "", status, nil,
		"rm-1", nil, nil, nil, nil, now, now,
	)
}

// caseListCols extends caseCols with the joined RM identity, the summary
// projection and the document count.
var caseListCols = append(append([]string{}, caseCols...),
	"name", "email", "summary_risk_score", "recommendation", "document_count")

func caseListRow(id, caseNumber string, status model.CaseStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(caseListCols).AddRow(
		id, caseNumber, "individual", "Jane Roe", nil, nil,
		"Hong Kong", "", "", "", "", status, nil,
		"rm-1", nil, nil, nil, nil, now, now,
		"Rita Manager", "rm@example.com", 4, "EDD", 2,
	)
}

func TestCasePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	c := &model.Case{
		ID:         "case-1",
		CaseNumber: "KYC-2026-00001",
		ClientType: model.ClientIndividual,
		ClientName: "Jane Roe",
		Country:    "Hong Kong",
		Status:     model.StatusPending,
		RMID:       "rm-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectQuery("INSERT INTO cases").
		WithArgs(c.ID, c.CaseNumber, c.ClientType, c.ClientName, c.DateOfBirth, c.DateOfIncorporation,
			c.Country, c.Nationality, c.BusinessType, c.Industry, c.SourceOfWealth, c.Status, c.RMID,
			c.CreatedAt, c.UpdatedAt).
		WillReturnRows(caseRow(c.ID, c.CaseNumber, c.Status))

	out, err := repo.Create(ctx, c)

	assert.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "KYC-2026-00001", out.CaseNumber)
	assert.Equal(t, model.StatusPending, out.Status)
	assert.Nil(t, out.RiskScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCasePostgres_NextCaseNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT nextval").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(42)))

	n, err := NewCasePostgres(db).NextCaseNumber(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestCasePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cases WHERE id = ?").
			WithArgs("case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusPending))

		c, err := repo.FindByID(ctx, "case-1")

		assert.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "case-1", c.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cases WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, c)
	})
}

func TestCasePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM cases c").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM cases c LEFT JOIN users u (.+) ORDER BY c.created_at DESC").
			WithArgs(20, 0).
			WillReturnRows(caseListRow("case-1", "KYC-2026-00001", model.StatusPending))

		res, err := repo.List(ctx, repository.CaseQuery{Limit: 20, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)

		row := res.Items[0]
		assert.Equal(t, "case-1", row.Case.ID)
		assert.Equal(t, "Rita Manager", row.RMName)
		assert.Equal(t, "rm@example.com", row.RMEmail)
		require.NotNil(t, row.SummaryRiskScore)
		assert.Equal(t, 4, *row.SummaryRiskScore)
		require.NotNil(t, row.SummaryRecommendation)
		assert.Equal(t, "EDD", *row.SummaryRecommendation)
		assert.Equal(t, 2, row.DocumentCount)
	})

	t.Run("search and status", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM cases c WHERE \\(c.client_name ILIKE (.+) OR c.case_number ILIKE (.+)\\) AND c.status = ").
			WithArgs("%Jane%", model.StatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM cases c (.+) WHERE (.+) ORDER BY c.client_name ASC").
			WithArgs("%Jane%", model.StatusPending, 10, 0).
			WillReturnRows(caseListRow("case-1", "KYC-2026-00001", model.StatusPending))

		res, err := repo.List(ctx, repository.CaseQuery{
			Search:    "Jane",
			Status:    model.StatusPending,
			SortBy:    "clientName",
			SortOrder: "asc",
			Limit:     10,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM cases c").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT (.+) FROM cases c (.+) ORDER BY c.created_at DESC").
			WithArgs(20, 0).
			WillReturnRows(sqlmock.NewRows(caseListCols))

		_, err := repo.List(ctx, repository.CaseQuery{SortBy: "password; DROP TABLE cases", Limit: 20})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCasePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()

	t.Run("patched fields only", func(t *testing.T) {
		name := "Jane Roe-Smith"
		country := "Singapore"

		mock.ExpectQuery("UPDATE cases SET updated_at = now\\(\\), client_name = (.+), country = (.+) WHERE id = (.+) RETURNING").
			WithArgs(name, country, "case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusPending))

		out, err := repo.Update(ctx, "case-1", repository.CasePatch{ClientName: &name, Country: &country})

		assert.NoError(t, err)
		assert.NotNil(t, out)
	})

	t.Run("empty patch reads row back", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cases WHERE id = ?").
			WithArgs("case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusPending))

		out, err := repo.Update(ctx, "case-1", repository.CasePatch{})

		assert.NoError(t, err)
		assert.NotNil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCasePostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()
	at := time.Now().UTC()

	t.Run("approved stamps approver", func(t *testing.T) {
		mock.ExpectQuery("UPDATE cases SET status = (.+), approved_at = (.+), approved_by = ").
			WithArgs(model.StatusApproved, at, "user-1", "case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusApproved))

		out, err := repo.UpdateStatus(ctx, "case-1", repository.StatusChange{
			Status: model.StatusApproved, ActorID: "user-1", At: at,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusApproved, out.Status)
	})

	t.Run("rejected stamps rejecter", func(t *testing.T) {
		mock.ExpectQuery("UPDATE cases SET status = (.+), rejected_at = (.+), rejected_by = ").
			WithArgs(model.StatusRejected, at, "user-1", "case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusRejected))

		_, err := repo.UpdateStatus(ctx, "case-1", repository.StatusChange{
			Status: model.StatusRejected, ActorID: "user-1", At: at,
		})

		assert.NoError(t, err)
	})

	t.Run("in_review has no stamps", func(t *testing.T) {
		mock.ExpectQuery("UPDATE cases SET status = (.+), updated_at = now\\(\\) WHERE id = ").
			WithArgs(model.StatusInReview, "case-1").
			WillReturnRows(caseRow("case-1", "KYC-2026-00001", model.StatusInReview))

		_, err := repo.UpdateStatus(ctx, "case-1", repository.StatusChange{Status: model.StatusInReview})

		assert.NoError(t, err)
	})
}

func TestCasePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCasePostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM cases WHERE id = ?").
			WithArgs("case-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "case-1"))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM cases WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)
	})
}
