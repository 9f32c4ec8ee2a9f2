package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/settlement"
	"github.com/fkhayef/invoicevista/internal/store"
	"github.com/fkhayef/invoicevista/pkg/response"
)

type testServer struct {
	handler  http.Handler
	gate     *auth.Gate
	sessions *auth.MemorySessions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, store.Seed(ctx, s, auth.Hasher(bcrypt.MinCost)))

	sessions := auth.NewMemorySessions()
	gate := auth.NewGate(s, sessions, bcrypt.MinCost)
	service := NewService(s, settlement.NewEngine(s))
	service.now = func() time.Time { return fixedNow }

	return &testServer{handler: NewHandler(service, gate).Routes(), gate: gate, sessions: sessions}
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	sess, err := ts.gate.Login(context.Background(), username, password)
	require.NoError(t, err)
	return sess.Token
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response.APIResponse {
	t.Helper()
	resp := response.APIResponse{Data: data}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/dashboard", "not-a-session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerDashboard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	rec := ts.do(t, http.MethodGet, "/dashboard", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dash DashboardResponse
	resp := decode(t, rec, &dash)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.Total)
	assert.Equal(t, "John Doe", dash.Client.Name)
	require.Len(t, dash.Invoices, 3)
	assert.Equal(t, "INV-0001", dash.Invoices[0].Number)
	assert.Equal(t, "$1,500.00", dash.Invoices[0].AmountFormatted)
	assert.Equal(t, "overdue", dash.Invoices[2].DisplayStatus)
	require.NotNil(t, dash.Invoices[0].Notification)
	assert.Equal(t, "2023-11-15", *dash.Invoices[0].Notification.Date)
}

func TestHandlerInvoiceDetail(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	rec := ts.do(t, http.MethodGet, "/invoices/2", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail InvoiceDetailResponse
	decode(t, rec, &detail)
	assert.False(t, detail.CanPay)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, "2023-11-10", detail.Payments[0].Date)
	assert.Equal(t, "14:30", detail.Payments[0].Time)
	assert.Equal(t, "800.00", detail.Payments[0].AmountPaid)
	assert.Equal(t, "100.00", detail.Totals.Percentage)
	assert.Equal(t, "0.00", detail.Totals.Remaining)
}

func TestHandlerForeignInvoiceRedirectsToDashboard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client2", "password2")

	for _, path := range []string{"/invoices/1", "/invoices/1/payments", "/invoices/1/pdf", "/invoices/404"} {
		rec := ts.do(t, http.MethodGet, path, token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		resp := decode(t, rec, nil)
		require.NotNil(t, resp.Error, path)
		assert.Equal(t, DashboardPath, resp.Error.Redirect, path)
		assert.Equal(t, "Invoice not found", resp.Error.Message, path)
	}
}

func TestHandlerDashboardForMissingClientRedirectsToLogin(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.sessions.Save(context.Background(), &auth.Session{Token: "orphan", UserID: 9, ClientID: 99}))

	rec := ts.do(t, http.MethodGet, "/dashboard", "orphan", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode(t, rec, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Client not found", resp.Error.Message)
	assert.Equal(t, LoginPath, resp.Error.Redirect)
}

func TestHandlerInvalidInvoiceID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	rec := ts.do(t, http.MethodGet, "/invoices/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSubmitPayment(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	rec := ts.do(t, http.MethodPost, "/invoices/1/payments", token, `{"amount":"1500.00","payment_method":"UPI"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result PaymentResultResponse
	decode(t, rec, &result)
	assert.True(t, result.Settled)
	assert.Equal(t, "paid", result.Invoice.Status)
	assert.Equal(t, "0.00", result.Totals.Remaining)
	assert.Equal(t, "2023-12-01", result.Payment.Date)
	assert.Equal(t, "10:15", result.Payment.Time)

	rec = ts.do(t, http.MethodGet, "/invoices/1/payments", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history PaymentHistoryResponse
	decode(t, rec, &history)
	assert.Len(t, history.Payments, 1)
}

func TestHandlerSubmitPaymentRejections(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	tests := []struct {
		name  string
		body  string
		code  int
		field string
	}{
		{"over remaining", `{"amount":2000,"payment_method":"credit card"}`, http.StatusBadRequest, "amount"},
		{"zero amount", `{"amount":0,"payment_method":"credit card"}`, http.StatusBadRequest, "amount"},
		{"unknown method", `{"amount":10,"payment_method":"cash"}`, http.StatusBadRequest, "payment_method"},
		{"fraction of a cent", `{"amount":"0.001","payment_method":"UPI"}`, http.StatusBadRequest, "amount"},
		{"rounds up to a cent", `{"amount":"0.006","payment_method":"UPI"}`, http.StatusBadRequest, "amount"},
		{"malformed body", `{"amount":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/invoices/1/payments", token, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			if tt.field != "" {
				resp := decode(t, rec, nil)
				require.NotNil(t, resp.Error)
				assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
				assert.Contains(t, resp.Error.Fields, tt.field)
			}
		})
	}

	rec := ts.do(t, http.MethodGet, "/invoices/1/payments", token, "")
	var history PaymentHistoryResponse
	decode(t, rec, &history)
	assert.Empty(t, history.Payments)
}

func TestHandlerDownloadPDF(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "client1", "password1")

	rec := ts.do(t, http.MethodGet, "/invoices/1/pdf", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-0001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}
