package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore/memory"
	applog "agency/internal/log"
	"agency/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

type testServer struct {
	*Server
	token string
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Output: &bytes.Buffer{}})
	}
	verifier := auth.NewTokenVerifier(testSecret, "")
	gw := services.NewGateway(memory.New(), services.WithLogger(opts.Logger))
	srv := NewServer(":0", gw, verifier, opts)
	t.Cleanup(srv.limiter.Stop)

	token, err := verifier.Issue(core.Identity{UID: "u1", DisplayName: "Ana", Email: "ana@example.com"}, time.Hour)
	require.NoError(t, err)
	return &testServer{Server: srv, token: token}
}

// do sends body as JSON; auth is true to attach the test bearer token.
func (ts *testServer) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := ts.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	down := newTestServer(t, Options{Ready: func(context.Context) error { return errors.New("database is locked") }})
	rr := down.do(t, http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "database is locked")
}

func TestCreateRequiresIdentity(t *testing.T) {
	ts := newTestServer(t, Options{})
	client := map[string]any{"name": "ACME", "service": "web"}

	rr := ts.do(t, http.MethodPost, "/api/clients", client, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "user not authenticated", decodeBody[ErrorBody](t, rr).Error)

	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr = httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "invalid_token")

	rr = ts.do(t, http.MethodPost, "/api/clients", client, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := decodeBody[CreatedBody](t, rr).ID
	assert.NotEmpty(t, id)

	rr = ts.do(t, http.MethodGet, "/api/clients", nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	clients := decodeBody[[]core.Client](t, rr)
	require.Len(t, clients, 1)
	assert.Equal(t, id, clients[0].ID)
	assert.Equal(t, "Ana", clients[0].RecordedBy)
	assert.False(t, clients[0].RegisteredAt.IsZero())
}

func TestListWithoutIdentityIsEmpty(t *testing.T) {
	ts := newTestServer(t, Options{})
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/clients", map[string]any{"name": "ACME"}, true).Code)

	rr := ts.do(t, http.MethodGet, "/api/clients", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRevenueAmountNormalization(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/revenues", map[string]any{
		"description": "Site", "amount": "abc", "category": "web", "date": "2025-03-01",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/revenues", `{"description":"Site","amount":"150,50","category":"web","date":"2025-03-01"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = ts.do(t, http.MethodPost, "/api/revenues", `{"description":"Logo","amount":80.25,"category":"design","date":"2025-02-01"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	revenues := decodeBody[[]core.Revenue](t, ts.do(t, http.MethodGet, "/api/revenues", nil, true))
	require.Len(t, revenues, 2)
	assert.Equal(t, 150.5, revenues[0].Amount, "newest first")
	assert.Equal(t, 80.25, revenues[1].Amount)
}

func TestMalformedBodies(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, body := range []string{``, `{`, `{"name":"x","unknown":1}`, `{"name":"a"}{"name":"b"}`} {
		rr := ts.do(t, http.MethodPost, "/api/clients", body, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(`name=x`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectStatusAndActivities(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/projects", map[string]any{
		"name": "Site", "client": "ACME", "amount": "1.500,00", "startDate": "2025-03-01",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "thousands separators are not amounts")

	rr = ts.do(t, http.MethodPost, "/api/projects", map[string]any{
		"name": "Site", "client": "ACME", "amount": "1500,00", "startDate": "2025-03-01",
	}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	pid := decodeBody[CreatedBody](t, rr).ID

	rr = ts.do(t, http.MethodPatch, "/api/projects/"+pid+"/status", map[string]any{"status": "delivered", "deliveryDate": "2025-04-01"}, true)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	rr = ts.do(t, http.MethodPatch, "/api/projects/"+pid+"/status", map[string]any{"status": "shipped"}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = ts.do(t, http.MethodPatch, "/api/projects/missing/status", map[string]any{"status": "paused"}, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	projects := decodeBody[[]core.Project](t, ts.do(t, http.MethodGet, "/api/projects", nil, true))
	require.Len(t, projects, 1)
	assert.Equal(t, core.ProjectDelivered, projects[0].Status)
	require.NotNil(t, projects[0].DeliveryDate)
	assert.Equal(t, "2025-04-01", projects[0].DeliveryDate.Format("2006-01-02"))

	for _, desc := range []string{"wireframes", "copy"} {
		rr = ts.do(t, http.MethodPost, "/api/projects/"+pid+"/activities", map[string]any{"description": desc}, true)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr = ts.do(t, http.MethodPost, "/api/projects/other/activities", map[string]any{"description": "elsewhere"}, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	activities := decodeBody[[]core.ProjectActivity](t, ts.do(t, http.MethodGet, "/api/projects/"+pid+"/activities", nil, true))
	require.Len(t, activities, 2)
	assert.Equal(t, "wireframes", activities[0].Description)
	assert.Equal(t, pid, activities[1].ProjectID)

	rr = ts.do(t, http.MethodPatch, "/api/activities/"+activities[0].ID+"/completed", map[string]any{}, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.do(t, http.MethodPatch, "/api/activities/"+activities[0].ID+"/completed", map[string]any{"completed": true}, true)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	activities = decodeBody[[]core.ProjectActivity](t, ts.do(t, http.MethodGet, "/api/projects/"+pid+"/activities", nil, true))
	assert.True(t, activities[0].Completed)
	assert.NotNil(t, activities[0].CompletedAt)
}

func TestBudgetAndReceiptPatches(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/budgets", map[string]any{
		"client": "ACME", "title": "Site",
		"items":    []map[string]any{{"description": "pages", "quantity": 3, "unitAmount": "17"}},
		"discount": "1,5", "dueDate": "2025-04-01",
	}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	bid := decodeBody[CreatedBody](t, rr).ID

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPatch, "/api/budgets/"+bid+"/status", map[string]any{"status": "approved"}, true).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPatch, "/api/budgets/"+bid, map[string]any{"title": "Site v2"}, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPatch, "/api/budgets/"+bid, map[string]any{"total": "lots"}, true).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPatch, "/api/budgets/missing", map[string]any{}, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPost, "/api/expenses",
		`{"description":"x","amount":1e400,"category":"c","date":"2025-03-01"}`, true).Code)

	budgets := decodeBody[[]core.Budget](t, ts.do(t, http.MethodGet, "/api/budgets", nil, true))
	require.Len(t, budgets, 1)
	assert.Equal(t, core.BudgetApproved, budgets[0].Status)
	assert.Equal(t, "Site v2", budgets[0].Title)
	assert.Equal(t, 49.5, budgets[0].Total)

	rr = ts.do(t, http.MethodPost, "/api/receipts", map[string]any{
		"client": "ACME", "description": "Site", "budgetId": bid, "amountPaid": "49,50", "paymentDate": "2025-04-02",
	}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rid := decodeBody[CreatedBody](t, rr).ID

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPatch, "/api/receipts/"+rid+"/status", map[string]any{"status": "paid"}, true).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPatch, "/api/receipts/"+rid, map[string]any{"description": "Site launch"}, true).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPatch, "/api/receipts/"+rid, map[string]any{"description": "x"}, false).Code)

	receipts := decodeBody[[]core.Receipt](t, ts.do(t, http.MethodGet, "/api/receipts", nil, true))
	require.Len(t, receipts, 1)
	assert.Equal(t, core.ReceiptPaid, receipts[0].Status)
	assert.Equal(t, "Site launch", receipts[0].Description)
	assert.Equal(t, 49.5, receipts[0].AmountPaid)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, body := range []string{
		`{"description":"Site","amount":150,"category":"web","date":"2025-03-01"}`,
		`{"description":"Logo","amount":80,"category":"design","date":"2025-03-05"}`,
	} {
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/revenues", body, true).Code)
	}
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/expenses",
		`{"description":"Hosting","amount":"30,25","category":"infra","date":"2025-03-04"}`, true).Code)

	rr := ts.do(t, http.MethodGet, "/api/dashboard/recent?limit=2", nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	feed := decodeBody[[]core.Activity](t, rr)
	require.Len(t, feed, 2)
	assert.Equal(t, "Logo", feed[0].Description)
	assert.Equal(t, core.KindExpense, feed[1].Kind)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/dashboard/recent?limit=zero", nil, true).Code)

	rr = ts.do(t, http.MethodGet, "/api/dashboard/overview?year=2025&month=3", nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	ov := decodeBody[core.MonthOverview](t, rr)
	assert.Equal(t, 230.0, ov.Revenue)
	assert.Equal(t, 30.25, ov.Expenses)
	assert.Equal(t, 199.75, ov.Balance)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/dashboard/overview?month=13", nil, true).Code)
}

func TestMiddlewareStack(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMinute: 2})

	rr := ts.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	ts.do(t, http.MethodGet, "/healthz", nil, false)
	rr = ts.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate limit exceeded", decodeBody[ErrorBody](t, rr).Error)
	assert.Equal(t, rr.Header().Get("X-Request-ID"), decodeBody[ErrorBody](t, rr).RequestID)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{core.ErrInvalidTimestamp, http.StatusUnprocessableEntity},
		{errors.Join(core.ErrStoreFailure, errors.New("disk full")), http.StatusBadGateway},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
