package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ===== SERVICE MOCKS =====

type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) Create(ctx context.Context, payload *services.FormPayload) (*models.Form, error) {
	args := m.Called(ctx, payload)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) GetByID(ctx context.Context, id string) (*models.Form, error) {
	args := m.Called(ctx, id)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) Update(ctx context.Context, id string, payload *services.FormPayload) (*models.Form, error) {
	args := m.Called(ctx, id, payload)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFormService) List(ctx context.Context, req *services.ListFormsRequest) (*services.FormListResponse, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.FormListResponse)
	return result, args.Error(1)
}

type MockResponseService struct {
	mock.Mock
}

func (m *MockResponseService) Submit(ctx context.Context, formID string, req *models.SubmitRequest) (*models.FormResponse, error) {
	args := m.Called(ctx, formID, req)
	response, _ := args.Get(0).(*models.FormResponse)
	return response, args.Error(1)
}

func (m *MockResponseService) GetByID(ctx context.Context, formID, responseID string) (*models.FormResponse, error) {
	args := m.Called(ctx, formID, responseID)
	response, _ := args.Get(0).(*models.FormResponse)
	return response, args.Error(1)
}

func (m *MockResponseService) List(ctx context.Context, formID string, req *services.ListResponsesRequest) (*services.ResponseListResponse, error) {
	args := m.Called(ctx, formID, req)
	result, _ := args.Get(0).(*services.ResponseListResponse)
	return result, args.Error(1)
}

func (m *MockResponseService) Delete(ctx context.Context, formID, responseID string) error {
	return m.Called(ctx, formID, responseID).Error(0)
}

func (m *MockResponseService) Rescore(ctx context.Context, formID, responseID string) (*models.FormResponse, error) {
	args := m.Called(ctx, formID, responseID)
	response, _ := args.Get(0).(*models.FormResponse)
	return response, args.Error(1)
}

func (m *MockResponseService) Analytics(ctx context.Context, formID string) (*analytics.Analytics, error) {
	args := m.Called(ctx, formID)
	summary, _ := args.Get(0).(*analytics.Analytics)
	return summary, args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportResponses(ctx context.Context, formID string) (*services.ExportFile, error) {
	args := m.Called(ctx, formID)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

// ===== FIXTURES =====

type testServer struct {
	router    *gin.Engine
	forms     *MockFormService
	responses *MockResponseService
	export    *MockExportService
}

func newTestServer(storage Pinger) *testServer {
	gin.SetMode(gin.TestMode)
	logger := utils.NewNopLogger()

	s := &testServer{
		forms:     new(MockFormService),
		responses: new(MockResponseService),
		export:    new(MockExportService),
	}
	manager := NewHandlerManager(&services.ServiceManager{
		Forms:     s.forms,
		Responses: s.responses,
		Export:    s.export,
	}, storage, logger)

	s.router = gin.New()
	s.router.Use(utils.ContextLogger(logger), RecoveryMiddleware(logger))
	manager.SetupRoutes(s.router)
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ===== TESTS =====

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(stubPinger{})
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Server is running", body["message"])
		assert.NotEmpty(t, body["timestamp"])
		assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
	})

	t.Run("storage down", func(t *testing.T) {
		s := newTestServer(stubPinger{err: errors.New("no route to host")})
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, false, decodeEnvelope(t, w)["success"])
	})
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(nil)
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestListForms_PassesQuery(t *testing.T) {
	s := newTestServer(nil)
	want := &services.ListFormsRequest{Page: 2, Limit: 10, Search: "quiz"}
	s.forms.On("List", mock.Anything, want).Return(&services.FormListResponse{
		Forms:      []*models.Form{},
		Pagination: services.Pagination{Page: 2, Limit: 10, Total: 11, Pages: 2},
	}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/forms?page=2&limit=oops&search=quiz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, []interface{}{}, body["data"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(11), pagination["total"])
	assert.Equal(t, float64(2), pagination["pages"])
	assert.NotContains(t, body, "analytics")
}

func TestGetForm_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"malformed id", services.ErrInvalidFormID, http.StatusBadRequest, "Invalid form ID"},
		{"missing", services.ErrFormNotFound, http.StatusNotFound, "Form not found"},
		{"storage failure", errors.New("socket closed"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			s.forms.On("GetByID", mock.Anything, "abc").Return(nil, tt.err)

			w := s.do(httptest.NewRequest(http.MethodGet, "/api/forms/abc", nil))

			assert.Equal(t, tt.status, w.Code)
			body := decodeEnvelope(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			if tt.status >= http.StatusInternalServerError {
				assert.Equal(t, w.Header().Get(utils.RequestIDHeader), body["requestId"])
			} else {
				assert.NotContains(t, body, "requestId")
			}
		})
	}
}

func TestRecovery_ReportsRequestID(t *testing.T) {
	s := newTestServer(nil)
	s.forms.On("Delete", mock.Anything, "f1").Run(func(mock.Arguments) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/forms/f1", nil)
	req.Header.Set(utils.RequestIDHeader, "req-123")
	w := s.do(req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "Something went wrong!", body["message"])
	assert.Equal(t, "req-123", body["requestId"])
}

func TestCreateForm_Multipart(t *testing.T) {
	s := newTestServer(nil)
	formJSON := `{"title":"Quiz","questions":[]}`

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("formData", formJSON))
	require.NoError(t, mw.WriteField("createdBy", "ada"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="headerImage"; filename="banner.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	created := models.NewForm()
	created.ID = primitive.NewObjectID()
	s.forms.On("Create", mock.Anything, mock.MatchedBy(func(p *services.FormPayload) bool {
		return string(p.Data) == formJSON &&
			p.CreatedBy == "ada" &&
			p.HeaderImage != nil &&
			p.HeaderImage.Filename == "banner.png" &&
			p.HeaderImage.Mimetype == "image/png"
	})).Return(created, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/forms", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, created.ID.Hex(), body["data"].(map[string]interface{})["_id"])
	s.forms.AssertExpectations(t)
}

func TestCreateForm_RawJSONValidationError(t *testing.T) {
	s := newTestServer(nil)
	s.forms.On("Create", mock.Anything, mock.Anything).Return(nil, services.ValidationErrors{
		{Field: "title", Message: "is required", Rule: "required"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/forms", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "Invalid form data", body["message"])
	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "title", details[0].(map[string]interface{})["field"])
}

func TestDeleteForm(t *testing.T) {
	s := newTestServer(nil)
	s.forms.On("Delete", mock.Anything, "f1").Return(nil)

	w := s.do(httptest.NewRequest(http.MethodDelete, "/api/forms/f1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Form deleted successfully", decodeEnvelope(t, w)["message"])
}

func TestSubmitResponse(t *testing.T) {
	s := newTestServer(nil)
	saved := &models.FormResponse{ID: primitive.NewObjectID(), Score: 3, MaxScore: 4, SubmittedBy: "Ada"}
	s.responses.On("Submit", mock.Anything, "f1", mock.MatchedBy(func(r *models.SubmitRequest) bool {
		return r.Name == "Ada" && len(r.Responses) == 1 && r.TimeSpent == 42
	})).Return(saved, nil)

	body := `{"name":"Ada","timeSpent":42,"responses":[{"questionId":"q1","type":"cloze","answers":[{"blankId":"k1","selectedAnswer":"x"}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/forms/f1/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)

	assert.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "Response submitted successfully", envelope["message"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(75), data["percentageScore"])
}

func TestSubmitResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"name", services.ErrNameRequired, http.StatusBadRequest, "Name is required"},
		{"empty", services.ErrEmptySubmission, http.StatusBadRequest, "Please answer at least one question before submitting"},
		{"form", services.ErrFormNotFound, http.StatusNotFound, "Form not found"},
		{"answers", services.ValidationErrors{{Field: "responses[0].answers[0]", Message: "bad"}}, http.StatusBadRequest, "Invalid response data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			s.responses.On("Submit", mock.Anything, "f1", mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/forms/f1/submit", strings.NewReader(`{"responses":[]}`))
			req.Header.Set("Content-Type", "application/json")
			w := s.do(req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeEnvelope(t, w)["message"])
		})
	}
}

func TestSubmitResponse_MalformedBody(t *testing.T) {
	s := newTestServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/forms/f1/submit", strings.NewReader(`{"responses": 5}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid response data", decodeEnvelope(t, w)["message"])
	s.responses.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestListResponses_IncludesAnalytics(t *testing.T) {
	s := newTestServer(nil)
	s.responses.On("List", mock.Anything, "f1", &services.ListResponsesRequest{Page: 1, Limit: 10}).Return(&services.ResponseListResponse{
		Responses:  []*models.FormResponse{},
		Pagination: services.Pagination{Page: 1, Limit: 10},
		Analytics:  analytics.Analytics{TotalResponses: 2, AverageScore: 62.5, AverageTime: 1.25},
	}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/forms/f1/responses", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	summary := decodeEnvelope(t, w)["analytics"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["totalResponses"])
	assert.Equal(t, 62.5, summary["averageScore"])
	assert.Equal(t, 1.25, summary["averageTime"])
}

func TestResponseRoutes(t *testing.T) {
	s := newTestServer(nil)
	stored := &models.FormResponse{ID: primitive.NewObjectID(), Score: 1, MaxScore: 1}

	s.responses.On("GetByID", mock.Anything, "f1", "r1").Return(stored, nil)
	s.responses.On("Delete", mock.Anything, "f1", "r2").Return(services.ErrResponseNotFound)
	s.responses.On("Rescore", mock.Anything, "f1", "bad").Return(nil, services.ErrInvalidResponseID)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/forms/f1/responses/r1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodDelete, "/api/forms/f1/responses/r2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Response not found", decodeEnvelope(t, w)["message"])

	w = s.do(httptest.NewRequest(http.MethodPost, "/api/forms/f1/responses/bad/rescore", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID", decodeEnvelope(t, w)["message"])
}

func TestExportResponses(t *testing.T) {
	s := newTestServer(nil)
	s.export.On("ExportResponses", mock.Anything, "f1").Return(&services.ExportFile{
		Filename:    "quiz-responses.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("PK"),
	}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/forms/f1/responses/export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="quiz-responses.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
	s.responses.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	allowed := httptest.NewRequest(http.MethodGet, "/ping", nil)
	allowed.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, allowed)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodGet, "/ping", nil)
	denied.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, denied)
	assert.Equal(t, http.StatusForbidden, w.Code)

	noOrigin := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, noOrigin)
	assert.Equal(t, http.StatusOK, w.Code)
}
