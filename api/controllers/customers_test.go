package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassops/glassops-backend/internal/customers"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
)

type stubCustomerService struct {
	customers.Service
	gotEmail  string
	deleteErr error
}

func (s *stubCustomerService) FindByEmail(_ context.Context, email string) ([]customers.CustomerDTO, error) {
	s.gotEmail = email
	return []customers.CustomerDTO{{ID: uuid.New(), Email: email}}, nil
}

func (s *stubCustomerService) Delete(context.Context, uuid.UUID) error {
	return s.deleteErr
}

func TestCustomerFindByEmailReadsPathParam(t *testing.T) {
	svc := &stubCustomerService{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "email", "jane@example.com")
	resp := httptest.NewRecorder()

	CustomerFindByEmail(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "jane@example.com", svc.gotEmail)
	var body struct {
		Data []customers.CustomerDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
}

func TestCustomerDeleteNotFound(t *testing.T) {
	svc := &stubCustomerService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")}
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", uuid.NewString())
	resp := httptest.NewRecorder()

	CustomerDelete(svc, testLogger())(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCustomerDeleteReturnsNoContent(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", uuid.NewString())
	resp := httptest.NewRecorder()

	CustomerDelete(&stubCustomerService{}, testLogger())(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}
