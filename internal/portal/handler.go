package portal

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/settlement"
	"github.com/fkhayef/invoicevista/internal/store"
	"github.com/fkhayef/invoicevista/pkg/middleware"
	"github.com/fkhayef/invoicevista/pkg/response"
	"github.com/fkhayef/invoicevista/pkg/validation"
)

// Client-side views a 404 sends the caller back to
const (
	DashboardPath = "/api/v1/dashboard"
	LoginPath     = "/api/v1/auth/login"
)

// Handler handles HTTP requests for the portal views
type Handler struct {
	service  *Service
	resolver middleware.TokenResolver
}

// NewHandler creates a new portal handler. Every route requires a session
// the resolver accepts.
func NewHandler(service *Service, resolver middleware.TokenResolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// Routes returns the router for portal endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireToken(h.resolver))

	r.Get("/dashboard", h.Dashboard)
	r.Route("/invoices/{id}", func(r chi.Router) {
		r.Get("/", h.GetInvoice)
		r.Get("/payments", h.ListPayments)
		r.Post("/payments", h.SubmitPayment)
		r.Get("/pdf", h.DownloadPDF)
	})

	return r
}

// writeError maps service errors to responses. notFound and redirect are
// used for store.ErrNotFound, fallback for unexpected failures.
func (h *Handler) writeError(w http.ResponseWriter, err error, notFound, redirect, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFoundRedirect(w, notFound, redirect)
	case settlement.IsValidationError(err):
		var ve *settlement.ValidationError
		errors.As(err, &ve)
		response.ValidationError(w, ve.Error(), map[string]string{ve.Field: ve.Err.Error()})
	default:
		h.service.log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}

func invoiceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Dashboard handles GET /dashboard
// @Summary      Client dashboard
// @Description  The logged-in client's profile and invoices with notification badges
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=DashboardResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	dash, err := h.service.Dashboard(r.Context(), sess)
	if err != nil {
		h.writeError(w, err, "Client not found", LoginPath, "Failed to load dashboard")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, dash.ToResponse(), &response.Meta{Total: len(dash.Invoices)})
}

// GetInvoice handles GET /invoices/{id}
// @Summary      Invoice detail
// @Description  An invoice with its client, payment history and totals
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      200 {object} response.APIResponse{data=InvoiceDetailResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /invoices/{id} [get]
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		response.BadRequest(w, "Invalid invoice ID")
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())

	detail, err := h.service.InvoiceDetail(r.Context(), sess, id)
	if err != nil {
		h.writeError(w, err, "Invoice not found", DashboardPath, "Failed to load invoice")
		return
	}

	response.JSON(w, http.StatusOK, detail.ToResponse())
}

// ListPayments handles GET /invoices/{id}/payments
// @Summary      Payment history
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      200 {object} response.APIResponse{data=PaymentHistoryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /invoices/{id}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		response.BadRequest(w, "Invalid invoice ID")
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())

	detail, err := h.service.InvoiceDetail(r.Context(), sess, id)
	if err != nil {
		h.writeError(w, err, "Invoice not found", DashboardPath, "Failed to load payments")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, &PaymentHistoryResponse{
		Payments: toPaymentResponses(detail.Payments),
		Totals:   toTotalsResponse(detail.Totals),
	}, &response.Meta{Total: len(detail.Payments)})
}

// SubmitPayment handles POST /invoices/{id}/payments
// @Summary      Pay an invoice
// @Description  Record a full or partial payment. The amount may not exceed the remaining balance.
// @Tags         portal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Param        request body SubmitPaymentRequest true "Payment"
// @Success      201 {object} response.APIResponse{data=PaymentResultResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /invoices/{id}/payments [post]
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		response.BadRequest(w, "Invalid invoice ID")
		return
	}

	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.ValidationError(w, "Invalid payment", validation.Fields(err))
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())
	result, err := h.service.SubmitPayment(r.Context(), sess, id, req.Amount, model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		h.writeError(w, err, "Invoice not found", DashboardPath, "Failed to record payment")
		return
	}

	response.JSON(w, http.StatusCreated, &PaymentResultResponse{
		Payment: toPaymentResponse(result.Payment),
		Invoice: toInvoiceResponse(result.Invoice, result.Invoice.DisplayStatus(h.service.now())),
		Totals:  toTotalsResponse(result.Totals),
		Settled: result.Settled,
	})
}

// DownloadPDF handles GET /invoices/{id}/pdf
// @Summary      Download invoice PDF
// @Tags         portal
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.APIResponse
// @Router       /invoices/{id}/pdf [get]
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		response.BadRequest(w, "Invalid invoice ID")
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())

	var buf bytes.Buffer
	name, err := h.service.ExportInvoice(r.Context(), sess, id, &buf)
	if err != nil {
		h.writeError(w, err, "Invoice not found", DashboardPath, "Failed to export invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
