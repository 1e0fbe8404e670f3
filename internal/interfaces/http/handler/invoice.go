package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/cshub/backend/internal/application/ledger"
	"github.com/cshub/backend/internal/domain/ledger"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles the invoice ledger of a customer
type InvoiceHandler struct {
	BaseHandler
	invoices *appledger.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appledger.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// List godoc
// @Summary      List invoices of a customer
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	customerID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.invoices.List(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Create godoc
// @Summary      Record an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Customer ID"
// @Param        request body ledger.InvoiceInput true "Invoice"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers/{id}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	customerID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var in ledger.InvoiceInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.invoices.Create(c.Request.Context(), customerID, in, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Summary godoc
// @Summary      Totals and aging of a customer's invoices
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Router       /customers/{id}/invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	customerID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.invoices.Summary(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Get godoc
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id        path string true "Customer ID"
// @Param        invoiceId path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/invoices/{invoiceId} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	customerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	resp, err := h.invoices.Get(c.Request.Context(), customerID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id        path string              true "Customer ID"
// @Param        invoiceId path string              true "Invoice ID"
// @Param        request   body ledger.InvoicePatch true "Fields to change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/invoices/{invoiceId} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	customerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	var patch ledger.InvoicePatch
	if !h.BindJSON(c, &patch) {
		return
	}
	resp, err := h.invoices.Update(c.Request.Context(), customerID, invoiceID, patch, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id        path string true "Customer ID"
// @Param        invoiceId path string true "Invoice ID"
// @Success      204
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/invoices/{invoiceId} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	customerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), customerID, invoiceID, middleware.GetActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *InvoiceHandler) ids(c *gin.Context) (customerID, invoiceID uuid.UUID, ok bool) {
	if customerID, ok = h.PathUUID(c, "id"); !ok {
		return
	}
	invoiceID, ok = h.PathUUID(c, "invoiceId")
	return
}
