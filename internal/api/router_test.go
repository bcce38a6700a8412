package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard/internal/dashboard"
	"shiftboard/internal/export"
	"shiftboard/internal/storage"
	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

type testServer struct {
	handler http.Handler
	manager *storage.Manager
	local   *storage.LocalService
	cloud   *storage.CloudService
	exports atomic.Int32
	logouts atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	area := store.NewMemoryStore()

	ts := &testServer{
		local: storage.NewLocalService(area, 0, log),
		cloud: storage.NewCloudService(area, storage.CloudConfig{}, log),
	}
	ts.manager = storage.NewManager(ts.local, log)

	h, err := NewRouter(Deps{
		Manager:  ts.manager,
		Backends: storage.NewBackends(ts.local, ts.cloud),
		Exports: export.NewServices(nil,
			export.WithLogger(log),
		),
		Header: func(ctx context.Context) *dashboard.Header {
			return dashboard.NewHeader(dashboard.LoadUser(ctx, ts.manager),
				func() { ts.exports.Add(1) },
				func() { ts.logouts.Add(1) },
			)
		},
		Logger: log,
	})
	require.NoError(t, err)
	ts.handler = h
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewRouter_RequiresManager(t *testing.T) {
	_, err := NewRouter(Deps{})
	assert.ErrorIs(t, err, errNoManager)
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "local", body["backend"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRouter_Items(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/storage/items/turni", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/storage/items/turni", `{"value":"[1,2]"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ItemResponse{Key: "turni", Value: "[1,2]", Backend: "local"}, decode[ItemResponse](t, rec))

	rec = ts.do(t, http.MethodGet, "/api/storage/items/turni", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[1,2]", decode[ItemResponse](t, rec).Value)

	rec = ts.do(t, http.MethodGet, "/api/storage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"turni"}, decode[KeysResponse](t, rec).Keys)

	rec = ts.do(t, http.MethodDelete, "/api/storage/items/turni", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/storage/items/turni", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SetItemErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed JSON", body: `{`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"val":"x"}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPut, "/api/storage/items/k", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_ClearAndInfo(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPut, "/api/storage/items/a", `{"value":"bc"}`)

	rec := ts.do(t, http.MethodGet, "/api/storage/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[InfoResponse](t, rec)
	assert.Equal(t, "local", info.Backend)
	assert.Equal(t, int64(6), info.Used)
	assert.Equal(t, storage.DefaultCapacity, info.Capacity)

	rec = ts.do(t, http.MethodDelete, "/api/storage", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/storage", "")
	assert.Empty(t, decode[KeysResponse](t, rec).Keys)
}

func TestRouter_SwitchBackend(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/storage/backend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, BackendResponse{Backend: "local", Available: []string{"cloud", "local"}}, decode[BackendResponse](t, rec))

	rec = ts.do(t, http.MethodPut, "/api/storage/backend", `{"backend":"cloud"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cloud", decode[BackendResponse](t, rec).Backend)
	assert.Same(t, ts.cloud, ts.manager.StorageService())

	ts.do(t, http.MethodPut, "/api/storage/items/k", `{"value":"v"}`)
	_, ok := ts.local.GetItem(context.Background(), "k")
	assert.False(t, ok, "writes must go to the cloud backend")
	got, ok := ts.cloud.GetItem(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	rec = ts.do(t, http.MethodPut, "/api/storage/backend", `{"backend":"s3"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_backend", decode[ErrorResponse](t, rec).Code)
}

func TestRouter_Migrate(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.True(t, ts.local.SetItem(ctx, "dipendenti", "[]"))
	require.True(t, ts.local.SetItem(ctx, "turni", "[]"))

	rec := ts.do(t, http.MethodPost, "/api/storage/migrate", `{"from":"local","to":"cloud","keys":["dipendenti","turni","assente"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MigrateResponse{From: "local", To: "cloud", Requested: 3, Copied: 2}, decode[MigrateResponse](t, rec))

	assert.ElementsMatch(t, []string{"dipendenti", "turni"}, ts.cloud.Keys(ctx))

	rec = ts.do(t, http.MethodPost, "/api/storage/migrate", `{"from":"local","to":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Export(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/export/excel/employees?fileName=staff", `[{"id":1,"nome":"Mario","cognome":"Rossi"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[export.Result](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "staff.xlsx", res.FileName)
	assert.Contains(t, res.Message, "Mario Rossi")

	rec = ts.do(t, http.MethodPost, "/api/export/pdf/statistics", `{"totaleTurni":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[export.Result](t, rec)
	assert.True(t, strings.HasSuffix(res.FileName, ".pdf"))

	rec = ts.do(t, http.MethodPost, "/api/export/pdf/shifts", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res = decode[export.Result](t, rec)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	rec = ts.do(t, http.MethodPost, "/api/export/docx/shifts", "[]")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_format", decode[ErrorResponse](t, rec).Code)

	rec = ts.do(t, http.MethodPost, "/api/export/pdf/payroll", "[]")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_kind", decode[ErrorResponse](t, rec).Code)
}

func TestRouter_DashboardHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/dashboard/header", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Utente")

	require.True(t, dashboard.SaveUser(context.Background(), ts.manager, dashboard.User{Name: "Anna Bianchi"}))
	rec = ts.do(t, http.MethodGet, "/dashboard/header", "")
	assert.Contains(t, rec.Body.String(), "Anna Bianchi")
	assert.Contains(t, rec.Body.String(), ">AB<")

	rec = ts.do(t, http.MethodPost, "/dashboard/header/export", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = ts.do(t, http.MethodPost, "/dashboard/header/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int32(1), ts.exports.Load())
	assert.Equal(t, int32(1), ts.logouts.Load())
}

func TestRouter_Fallbacks(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", decode[ErrorResponse](t, rec).Message)

	rec = ts.do(t, http.MethodPatch, "/api/storage/items/k", `{"value":"v"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", decode[ErrorResponse](t, rec).Message)

	rec = ts.do(t, http.MethodOptions, "/api/storage", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
