// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketflow-backend/internal/domain/order"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
	"github.com/your-org/marketflow-backend/internal/pkg/pdf"
)

// InvoiceHandler handles order confirmation documents
type InvoiceHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, pdfService *pdf.Service) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		pdfService:   pdfService,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice. ?format=html returns the
// rendered document without the PDF conversion.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "html" {
		page, err := h.pdfService.GenerateHTML(o)
		if err != nil {
			respondError(c, apperror.Wrap(apperror.KindInternal, "invoice_failed", "failed to generate invoice", err))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}

	pdfBuffer, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		respondError(c, apperror.Wrap(apperror.KindInternal, "invoice_failed", "failed to generate invoice", err))
		return
	}

	// Set headers for PDF download
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.OrderNumber()))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))

	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
