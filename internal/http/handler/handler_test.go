package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kyccase/internal/model"
	"kyccase/internal/service"
	serviceMocks "kyccase/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateCase(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Post("/cases", CreateCase(mockSvc))

	t.Run("success", func(t *testing.T) {
		created := &service.CaseWithRM{
			Case:                model.Case{ID: uuid.NewString(), CaseNumber: "KYC-2026-00001", Status: model.StatusPending},
			RelationshipManager: &model.UserRef{ID: "rm-1", Name: "Rita Manager", Email: "rm@example.com"},
		}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateCaseInput) bool {
			return in.ClientName == "Acme Pte Ltd" && in.ClientType == model.ClientCorporate
		}), mock.Anything).Return(created, nil).Once()

		body := strings.NewReader(`{"clientType":"corporate","clientName":"Acme Pte Ltd","country":"SG"}`)
		req := httptest.NewRequest(http.MethodPost, "/cases", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Case service.CaseWithRM `json:"case"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, created.CaseNumber, result.Case.CaseNumber)
		assert.NotNil(t, result.Case.RelationshipManager)
		assert.Equal(t, "Rita Manager", result.Case.RelationshipManager.Name)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrMissingFields).Once()

		body := strings.NewReader(`{"clientName":"No Type"}`)
		req := httptest.NewRequest(http.MethodPost, "/cases", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "MISSING_FIELDS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cases", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListCases(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Get("/cases", ListCases(mockSvc))

	t.Run("success with filters", func(t *testing.T) {
		expected := &service.CaseListResult{
			Cases: []service.CaseListItem{{
				Case:                model.Case{ID: uuid.NewString()},
				RelationshipManager: &model.UserRef{ID: "rm-1", Name: "Rita Manager", Email: "rm@example.com"},
				AISummary:           &service.AISummaryRef{RiskScore: 4, Recommendation: "EDD"},
				DocumentCount:       2,
			}},
			Pagination: service.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2},
		}
		mockSvc.On("List", mock.Anything, service.CaseListQuery{
			Search:    "acme",
			Status:    "pending",
			SortBy:    "createdAt",
			SortOrder: "asc",
			Page:      2,
			Limit:     5,
		}).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases?search=acme&status=pending&sortBy=createdAt&sortOrder=asc&page=2&limit=5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.CaseListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Cases, 1)
		assert.Equal(t, "Rita Manager", result.Cases[0].RelationshipManager.Name)
		assert.Equal(t, 4, result.Cases[0].AISummary.RiskScore)
		assert.Equal(t, 2, result.Cases[0].DocumentCount)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cases?page=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_PAGE", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetCase(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Get("/cases/:id", GetCase(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		detail := &service.CaseDetail{
			Case:      model.Case{ID: id},
			Documents: []model.Document{{ID: "d1"}},
		}
		mockSvc.On("Get", mock.Anything, id).Return(detail, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Case service.CaseDetail `json:"case"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.Case.ID)
		assert.Len(t, result.Case.Documents, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cases/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrCaseNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateCase(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Put("/cases/:id", UpdateCase(mockSvc))

	t.Run("success ignores immutable fields", func(t *testing.T) {
		id := uuid.NewString()
		updated := &model.Case{ID: id, ClientName: "New Name"}
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(in service.UpdateCaseInput) bool {
			return in.ClientName != nil && *in.ClientName == "New Name"
		})).Return(updated, nil).Once()

		// caseNumber is not an editable field, silently dropped by decoding
		body := strings.NewReader(`{"clientName":"New Name","caseNumber":"KYC-9999-99999"}`)
		req := httptest.NewRequest(http.MethodPut, "/cases/"+id, body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Case model.Case `json:"case"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "New Name", result.Case.ClientName)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, id, mock.Anything).
			Return(nil, service.ErrCaseNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/cases/"+id, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateCaseStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Patch("/cases/:id/status", UpdateCaseStatus(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		updated := &model.Case{ID: id, Status: model.StatusApproved}
		mockSvc.On("UpdateStatus", mock.Anything, id, model.StatusApproved, mock.Anything).
			Return(updated, nil).Once()

		body := strings.NewReader(`{"status":"approved"}`)
		req := httptest.NewRequest(http.MethodPatch, "/cases/"+id+"/status", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid transition", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("UpdateStatus", mock.Anything, id, model.StatusAIReady, mock.Anything).
			Return(nil, service.ErrStatusAnalyzerOnly).Once()

		body := strings.NewReader(`{"status":"ai_ready"}`)
		req := httptest.NewRequest(http.MethodPatch, "/cases/"+id+"/status", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_TRANSITION", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteCase(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Delete("/cases/:id", DeleteCase(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/cases/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrCaseNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/cases/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/cases/:id/documents", UploadDocument(mockSvc))

	caseID := uuid.NewString()

	multipartBody := func(docType string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "passport.pdf")
		part.Write([]byte("pdf bytes"))
		if docType != "" {
			writer.WriteField("documentType", docType)
		}
		writer.Close()
		return body, writer.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		expected := &model.Document{ID: uuid.NewString(), FileName: "passport.pdf"}
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadDocumentInput) bool {
			return in.CaseID == caseID &&
				in.DocumentType == model.DocTypePassport &&
				in.FileName == "passport.pdf"
		})).Return(expected, nil).Once()

		body, ct := multipartBody("passport")
		req := httptest.NewRequest(http.MethodPost, "/cases/"+caseID+"/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Document model.Document `json:"document"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.Document.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cases/"+caseID+"/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("invalid document type", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, service.ErrInvalidDocumentType).Once()

		body, ct := multipartBody("selfie")
		req := httptest.NewRequest(http.MethodPost, "/cases/"+caseID+"/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_DOCUMENT_TYPE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("streams inline", func(t *testing.T) {
		id := uuid.NewString()
		doc := &model.Document{ID: id, FileName: "passport.pdf", MimeType: "application/pdf"}
		rc := io.NopCloser(strings.NewReader("pdf bytes"))
		mockSvc.On("Open", mock.Anything, id).Return(doc, rc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "inline")

		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "pdf bytes", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, id).Return(nil, nil, service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))

	t.Run("streams attachment", func(t *testing.T) {
		id := uuid.NewString()
		doc := &model.Document{ID: id, FileName: "passport.pdf", MimeType: "application/pdf"}
		rc := io.NopCloser(strings.NewReader("pdf bytes"))
		mockSvc.On("Open", mock.Anything, id).Return(doc, rc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "passport.pdf")

		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "pdf bytes", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, id).Return(nil, nil, service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestTriggerAnalysis(t *testing.T) {
	mockSvc := new(serviceMocks.MockAnalysisService)
	app := fiber.New()
	app.Post("/cases/:id/trigger-analysis", TriggerAnalysis(mockSvc))

	t.Run("triggered", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Trigger", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/cases/"+id+"/trigger-analysis", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no screening report", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Trigger", mock.Anything, id).Return(service.ErrNoScreeningReport).Once()

		req := httptest.NewRequest(http.MethodPost, "/cases/"+id+"/trigger-analysis", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NO_SCREENING_REPORT", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("analyzer unreachable", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Trigger", mock.Anything, id).
			Return(fmt.Errorf("%w: connection refused", service.ErrAnalysisTrigger)).Once()

		req := httptest.NewRequest(http.MethodPost, "/cases/"+id+"/trigger-analysis", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetCaseSummary(t *testing.T) {
	mockSvc := new(serviceMocks.MockAnalysisService)
	app := fiber.New()
	app.Get("/cases/:id/summary", GetCaseSummary(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		expected := &model.AnalysisSummary{ID: uuid.NewString(), CaseID: id, RiskScore: 4}
		mockSvc.On("Summary", mock.Anything, id).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases/"+id+"/summary", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Summary model.AnalysisSummary `json:"summary"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 4, result.Summary.RiskScore)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Summary", mock.Anything, id).Return(nil, service.ErrSummaryNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/cases/"+id+"/summary", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAnalyzerWebhook(t *testing.T) {
	const apiKey = "webhook-secret"

	mockSvc := new(serviceMocks.MockAnalysisService)
	app := fiber.New()
	app.Post("/webhook/analyzer", AnalyzerWebhook(mockSvc, apiKey))

	payload := `{"caseId":"case-1","riskScore":4,"summary":"High risk","recommendation":"EDD"}`

	t.Run("success", func(t *testing.T) {
		expected := &model.AnalysisSummary{ID: uuid.NewString(), CaseID: "case-1", RiskScore: 4}
		mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(in service.IngestInput) bool {
			return in.CaseID == "case-1" && in.RiskScore == 4
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/webhook/analyzer", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, apiKey)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/analyzer", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_API_KEY", res.Error.Code)
	})

	t.Run("wrong api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/analyzer", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, "nope")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown case", func(t *testing.T) {
		mockSvc.On("Ingest", mock.Anything, mock.Anything).
			Return(nil, service.ErrCaseNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/webhook/analyzer", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, apiKey)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no key configured skips the check", func(t *testing.T) {
		openSvc := new(serviceMocks.MockAnalysisService)
		openApp := fiber.New()
		openApp.Post("/webhook/analyzer", AnalyzerWebhook(openSvc, ""))

		expected := &model.AnalysisSummary{ID: uuid.NewString(), CaseID: "case-1", RiskScore: 4}
		openSvc.On("Ingest", mock.Anything, mock.Anything).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/webhook/analyzer", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := openApp.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		openSvc.AssertExpectations(t)
	})
}

func TestAuthEndpoints(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockSvc))
	app.Post("/auth/login", Login(mockSvc))

	t.Run("register success", func(t *testing.T) {
		sess := &service.Session{Token: "tok", User: model.UserRef{ID: "u1", Email: "jane@example.com"}}
		mockSvc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
			return in.Email == "jane@example.com"
		})).Return(sess, nil).Once()

		body := strings.NewReader(`{"name":"Jane","email":"jane@example.com","password":"secret"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.Session
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "tok", result.Token)
		mockSvc.AssertExpectations(t)
	})

	t.Run("register duplicate", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, service.ErrUserExists).Once()

		body := strings.NewReader(`{"name":"Jane","email":"jane@example.com","password":"secret"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("login success", func(t *testing.T) {
		sess := &service.Session{Token: "tok", User: model.UserRef{ID: "u1"}}
		mockSvc.On("Login", mock.Anything, "jane@example.com", "secret").Return(sess, nil).Once()

		body := strings.NewReader(`{"email":"jane@example.com","password":"secret"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("login bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "jane@example.com", "wrong").
			Return(nil, service.ErrInvalidCredentials).Once()

		body := strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, Deps{
		Cases:     new(serviceMocks.MockCaseService),
		Documents: new(serviceMocks.MockDocumentService),
		Analysis:  new(serviceMocks.MockAnalysisService),
		Users:     new(serviceMocks.MockUserService),
		JWTSecret: []byte("test-secret"),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("protected route requires token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
	})
}
