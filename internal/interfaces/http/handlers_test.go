package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/internal/notification"
	"github.com/arslant84/syntra.production-sub009/internal/permission"
	"github.com/arslant84/syntra.production-sub009/internal/report"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"github.com/arslant84/syntra.production-sub009/internal/workflow"
	"github.com/arslant84/syntra.production-sub009/migrations"
	"github.com/arslant84/syntra.production-sub009/pkg/database"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(migrations.Files))

	requests := repository.NewRequestRepository(db.DB, logger)
	steps := repository.NewStepRepository(db.DB, logger)
	executions := repository.NewExecutionRepository(db.DB, logger)
	store := repository.NewStore(db, requests, steps, logger)

	oracle := permission.StaticOracle{
		"focal":   {"approve_transport_focal"},
		"manager": {"approve_transport_manager"},
		"clerk":   {"approve_transport_clerk"},
	}

	dispatcher := notification.NewDispatcher(notification.NopSender{}, 16, logger)
	dispatcher.Start(context.Background())
	t.Cleanup(dispatcher.Stop)

	tracker := workflow.NewExecutionTracker(executions, logger)
	engine := workflow.NewEngine(store, oracle, dispatcher, tracker, logger)
	exporter := report.NewRegisterExporter(store, logger)

	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, engine, store, exporter, logger)
}

func doJSON(t *testing.T, srv *Server, method, path, staffID string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if staffID != "" {
		req.Header.Set("X-Staff-Id", staffID)
		req.Header.Set("X-Staff-Name", "Test User")
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func submitTestRequest(t *testing.T, srv *Server) string {
	t.Helper()
	w, resp := doJSON(t, srv, http.MethodPost, "/api/requests", "S1001", SubmitRequestBody{
		Type:           "Transport",
		RequestorName:  "Aida Karimova",
		Department:     "Operations",
		RequestorEmail: "aida@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := resp.Data.(map[string]interface{})
	return data["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	w, resp := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestSubmitRequest(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)
	assert.Contains(t, id, "TRN-")

	w, resp := doJSON(t, srv, http.MethodGet, "/api/requests/"+id+"?type=Transport", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, domain.StatusPendingFocal, data["status"])
}

func TestSubmitRequest_MissingActorHeader(t *testing.T) {
	srv := newTestServer(t)
	w, resp := doJSON(t, srv, http.MethodPost, "/api/requests", "", SubmitRequestBody{
		Type:          "Transport",
		RequestorName: "Aida Karimova",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
}

func TestSubmitRequest_InvalidBody(t *testing.T) {
	srv := newTestServer(t)
	w, _ := doJSON(t, srv, http.MethodPost, "/api/requests", "S1001", map[string]string{"type": "Transport"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActOnRequest_Approve(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)

	w, resp := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/actions", "focal", ActionBody{
		Type:    "Transport",
		Action:  "approve",
		Comment: "ok",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	result := resp.Data.(map[string]interface{})
	request := result["request"].(map[string]interface{})
	assert.Equal(t, domain.StatusPendingLineManager, request["status"])
}

func TestActOnRequest_ErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)

	tests := []struct {
		name     string
		path     string
		staffID  string
		body     ActionBody
		wantCode int
		wantKind string
	}{
		{
			name:     "unauthorized approver",
			path:     "/api/requests/" + id + "/actions",
			staffID:  "clerk",
			body:     ActionBody{Type: "Transport", Action: "approve"},
			wantCode: http.StatusForbidden,
			wantKind: "Unauthorized",
		},
		{
			name:     "unknown request",
			path:     "/api/requests/TRN-20260830-FFFF/actions",
			staffID:  "focal",
			body:     ActionBody{Type: "Transport", Action: "approve"},
			wantCode: http.StatusNotFound,
			wantKind: "NotFound",
		},
		{
			name:     "stale snapshot",
			path:     "/api/requests/" + id + "/actions",
			staffID:  "focal",
			body:     ActionBody{Type: "Transport", Action: "approve", ExpectedStatus: domain.StatusPendingClerk},
			wantCode: http.StatusConflict,
			wantKind: "StaleTransition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, srv, http.MethodPost, tt.path, tt.staffID, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantKind, resp.ErrorKind)
		})
	}
}

func TestActOnRequest_InvalidTransitionOnTerminal(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)

	w, _ := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/actions", "focal", ActionBody{
		Type: "Transport", Action: "reject", Comment: "no budget",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, srv, http.MethodPost, "/api/requests/"+id+"/actions", "focal", ActionBody{
		Type: "Transport", Action: "approve",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidTransition", resp.ErrorKind)
}

func TestGetSteps(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/requests/"+id+"/steps", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	steps := resp.Data.([]interface{})
	require.Len(t, steps, 1)
	step := steps[0].(map[string]interface{})
	assert.Equal(t, "Pending", step["status"])
}

func TestGetExecution(t *testing.T) {
	srv := newTestServer(t)
	id := submitTestRequest(t, srv)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/requests/"+id+"/execution?type=Transport", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	exec := resp.Data.(map[string]interface{})
	assert.Equal(t, "Completed", exec["status"])
}

func TestGetRequest_NotFound(t *testing.T) {
	srv := newTestServer(t)
	w, resp := doJSON(t, srv, http.MethodGet, "/api/requests/TRN-20260830-FFFF?type=Transport", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", resp.ErrorKind)
}

func TestGetRequest_MissingType(t *testing.T) {
	srv := newTestServer(t)
	w, _ := doJSON(t, srv, http.MethodGet, "/api/requests/TRN-20260830-0001", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRequests(t *testing.T) {
	srv := newTestServer(t)
	submitTestRequest(t, srv)
	submitTestRequest(t, srv)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/requests?type=Transport", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 2)

	w, resp = doJSON(t, srv, http.MethodGet, "/api/requests?status=Approved", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)
}

func TestExportRegister(t *testing.T) {
	srv := newTestServer(t)
	submitTestRequest(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/register", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "approval_register.xlsx")
	assert.NotZero(t, w.Body.Len())
}
