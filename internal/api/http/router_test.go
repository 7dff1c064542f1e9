package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/inventory"
	"github.com/shestoi/stocktracker/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	svc, err := service.NewInventoryService(logger, service.NewLoggingRestockPublisher(logger), 10)
	require.NoError(t, err)
	return NewRouter(NewHandler(svc, logger), func() bool { return true }, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeItems(t *testing.T, rec *httptest.ResponseRecorder) []inventory.Item {
	t.Helper()
	var items []inventory.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	return items
}

func TestRouter_ItemLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/items/101", `{"name":"Laptop","category":"Electronics","quantity":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"101","name":"Laptop","category":"Electronics","quantity":50}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/items/101", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"101","name":"Laptop","category":"Electronics","quantity":50}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/items/101", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/items/101", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/items/101", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"item not found"}`, rec.Body.String())
}

func TestRouter_QueryEndpoints(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []struct{ id, json string }{
		{"101", `{"name":"Laptop","category":"Electronics","quantity":50}`},
		{"102", `{"name":"Chair","category":"Furniture","quantity":20}`},
		{"103", `{"name":"Apple","category":"Groceries","quantity":5}`},
		{"104", `{"name":"Table","category":"Furniture","quantity":15}`},
	} {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/items/"+body.id, body.json).Code)
	}

	rec := do(t, h, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeItems(t, rec), 4)

	rec = do(t, h, http.MethodGet, "/categories/Furniture/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	furniture := decodeItems(t, rec)
	require.Len(t, furniture, 2)
	require.Equal(t, "102", furniture[0].ID)
	require.Equal(t, "104", furniture[1].ID)

	rec = do(t, h, http.MethodGet, "/categories/Unknown/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/top?k=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decodeItems(t, rec)
	require.Len(t, top, 2)
	require.Equal(t, 50, top[0].Quantity)
	require.Equal(t, 20, top[1].Quantity)

	rec = do(t, h, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `["Electronics","Furniture","Groceries"]`, rec.Body.String())
}

func TestRouter_Merge(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/items/102", `{"name":"Chair","category":"Furniture","quantity":20}`).Code)

	rec := do(t, h, http.MethodPost, "/merge", `{"items":[
		{"id":"102","name":"Chair","category":"Furniture","quantity":25},
		{"id":"105","name":"Fan","category":"Electronics","quantity":30}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"added":1,"updated":1,"skipped":0}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/items/102", "")
	require.JSONEq(t, `{"id":"102","name":"Chair","category":"Furniture","quantity":25}`, rec.Body.String())
}

func TestRouter_BadRequests(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "broken JSON", method: http.MethodPut, path: "/items/1", body: `{"name":`},
		{name: "missing quantity", method: http.MethodPut, path: "/items/1", body: `{"name":"Fan","category":"Electronics"}`},
		{name: "k is not a number", method: http.MethodGet, path: "/top?k=ten"},
		{name: "k is missing", method: http.MethodGet, path: "/top"},
		{name: "merge item without id", method: http.MethodPost, path: "/merge", body: `{"items":[{"quantity":1}]}`},
		{name: "merge broken JSON", method: http.MethodPost, path: "/merge", body: `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestRouter_TopNonPositive(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPut, "/items/1", `{"name":"Fan","category":"Electronics","quantity":3}`)

	rec := do(t, h, http.MethodGet, "/top?k=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
