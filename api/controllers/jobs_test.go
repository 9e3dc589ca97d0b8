package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassops/glassops-backend/internal/jobs"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
)

type stubJobService struct {
	jobs.Service
	gotID    uuid.UUID
	gotInput jobs.UpdateStatusInput
	err      error
}

func (s *stubJobService) UpdateStatus(_ context.Context, id uuid.UUID, input jobs.UpdateStatusInput) (*jobs.JobDTO, error) {
	s.gotID = id
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &jobs.JobDTO{ID: id, CustomerName: "Jane Doe"}, nil
}

func TestJobUpdateStatusPassesAmount(t *testing.T) {
	svc := &stubJobService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"completed","amount":"249.99"}`))
	req = withURLParam(req, "id", id.String())
	resp := httptest.NewRecorder()

	JobUpdateStatus(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, svc.gotID)
	assert.Equal(t, "completed", svc.gotInput.Status)
	require.NotNil(t, svc.gotInput.Amount)
	assert.Equal(t, "249.99", svc.gotInput.Amount.String())

	var body struct {
		Data jobs.JobDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id, body.Data.ID)
}

func TestJobUpdateStatusRequiresStatus(t *testing.T) {
	svc := &stubJobService{}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "id", uuid.NewString())
	resp := httptest.NewRecorder()

	JobUpdateStatus(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, uuid.Nil, svc.gotID)
}

func TestJobUpdateStatusSurfacesIllegalTransition(t *testing.T) {
	svc := &stubJobService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "job is already completed")}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"pending"}`)), "id", uuid.NewString())
	resp := httptest.NewRecorder()

	JobUpdateStatus(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeError(t, resp.Body).Code)
}
