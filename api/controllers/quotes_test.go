package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassops/glassops-backend/internal/jobs"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/pkg/config"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/types"
)

const validQuoteJSON = `{
	"firstName": "Jane",
	"lastName": "Doe",
	"mobilePhone": "555-0100",
	"email": "Jane@Example.com",
	"location": "12 Main St",
	"zipCode": "78701",
	"division": "glass",
	"serviceType": "windshield replacement"
}`

type stubQuoteService struct {
	quotes.Service
	submitted []quotes.SubmitRequest
	fileNames []string
	err       error
}

func (s *stubQuoteService) Submit(_ context.Context, req quotes.SubmitRequest) (*quotes.SubmitResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.submitted = append(s.submitted, req)
	return &quotes.SubmitResult{Success: true, SubmissionID: uuid.New(), CustomerID: uuid.New(), Message: "received"}, nil
}

func (s *stubQuoteService) SubmitWithFiles(_ context.Context, req quotes.SubmitRequest, files []*multipart.FileHeader) (*quotes.SubmitResult, error) {
	s.submitted = append(s.submitted, req)
	for _, f := range files {
		s.fileNames = append(s.fileNames, f.Filename)
	}
	return &quotes.SubmitResult{Success: true, SubmissionID: uuid.New(), CustomerID: uuid.New()}, nil
}

type stubConverter struct {
	result *jobs.ConvertResult
	err    error
	got    uuid.UUID
}

func (s *stubConverter) Convert(_ context.Context, quoteID uuid.UUID) (*jobs.ConvertResult, error) {
	s.got = quoteID
	return s.result, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-controllers", Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func decodeError(t *testing.T, body io.Reader) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env.Error
}

func TestQuoteSubmitReturnsFlatCreatedBody(t *testing.T) {
	svc := &stubQuoteService{}
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit", strings.NewReader(validQuoteJSON))
	resp := httptest.NewRecorder()

	QuoteSubmit(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["submissionId"])
	assert.NotContains(t, body, "data")
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "78701", svc.submitted[0].ZipCode)
}

func TestQuoteSubmitRejectsMissingFields(t *testing.T) {
	svc := &stubQuoteService{}
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit", strings.NewReader(`{"firstName":"Jane"}`))
	resp := httptest.NewRecorder()

	QuoteSubmit(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, resp.Body).Code)
	assert.Empty(t, svc.submitted)
}

func TestQuoteSubmitRejectsUnknownDivision(t *testing.T) {
	svc := &stubQuoteService{}
	payload := strings.Replace(validQuoteJSON, `"glass"`, `"tires"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	QuoteSubmit(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.submitted)
}

func TestQuoteSubmitAcceptsExtraFieldsAndDivisionCase(t *testing.T) {
	svc := &stubQuoteService{}
	payload := strings.Replace(validQuoteJSON, `"glass"`, `"Glass", "smsConsent": true`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	QuoteSubmit(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, enums.DivisionGlass, svc.submitted[0].Division)
}

func TestQuoteSubmitMapsServiceErrors(t *testing.T) {
	svc := &stubQuoteService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit", strings.NewReader(validQuoteJSON))
	resp := httptest.NewRecorder()

	QuoteSubmit(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func multipartQuote(t *testing.T, data string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if data != "" {
		require.NoError(t, mw.WriteField("data", data))
	}
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestQuoteSubmitWithFilesPassesAttachments(t *testing.T) {
	svc := &stubQuoteService{}
	cfg := config.UploadsConfig{MaxFiles: 5, MaxFileMB: 1, MaxMemoryMB: 1}
	body, contentType := multipartQuote(t, validQuoteJSON, map[string][]byte{
		"crack.jpg": {0xFF, 0xD8, 0xFF, 0xE0},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit-with-files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	QuoteSubmitWithFiles(svc, cfg, testLogger())(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, []string{"crack.jpg"}, svc.fileNames)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "Jane", svc.submitted[0].FirstName)
}

func TestQuoteSubmitWithFilesRequiresDataField(t *testing.T) {
	svc := &stubQuoteService{}
	cfg := config.UploadsConfig{MaxFiles: 5, MaxFileMB: 1, MaxMemoryMB: 1}
	body, contentType := multipartQuote(t, "", map[string][]byte{"crack.jpg": {0xFF, 0xD8}})
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit-with-files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	QuoteSubmitWithFiles(svc, cfg, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, resp.Body).Code)
	assert.Empty(t, svc.submitted)
}

func TestQuoteSubmitWithFilesRejectsNonMultipart(t *testing.T) {
	svc := &stubQuoteService{}
	req := httptest.NewRequest(http.MethodPost, "/api/quote/submit-with-files", strings.NewReader(validQuoteJSON))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	QuoteSubmitWithFiles(svc, config.UploadsConfig{}, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestQuoteConvertReturnsAssignment(t *testing.T) {
	quoteID := uuid.New()
	converter := &stubConverter{result: &jobs.ConvertResult{
		Success: true,
		JobID:   uuid.New(),
		QuoteID: quoteID,
		AssignedTechnician: &types.AssignedTechnician{
			ID:   uuid.NewString(),
			Name: "Sam Tech",
		},
	}}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", quoteID.String())
	resp := httptest.NewRecorder()

	QuoteConvert(converter, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, quoteID, converter.got)
	var body jobs.ConvertResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.AssignedTechnician)
	assert.Equal(t, "Sam Tech", body.AssignedTechnician.Name)
}

func TestQuoteConvertRejectsBadID(t *testing.T) {
	converter := &stubConverter{}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", "not-a-uuid")
	resp := httptest.NewRecorder()

	QuoteConvert(converter, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, uuid.Nil, converter.got)
}

func TestQuoteConvertSurfacesConflict(t *testing.T) {
	converter := &stubConverter{err: pkgerrors.New(pkgerrors.CodeConflict, "quote has already been converted to a job")}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", uuid.NewString())
	resp := httptest.NewRecorder()

	QuoteConvert(converter, testLogger())(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), decodeError(t, resp.Body).Code)
}
