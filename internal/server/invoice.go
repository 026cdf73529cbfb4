package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
)

type listInvoicesQuery struct {
	ContractID string `form:"contract_id"`
	Year       string `form:"year"`
	Month      string `form:"month"`
	Status     string `form:"status"`
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req invoicedomain.GenerateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ContractID = strings.TrimSpace(req.ContractID)

	resp, err := s.invoiceSvc.GenerateMonthlyInvoice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ContractID = strings.TrimSpace(req.ContractID)

	resp, err := s.invoiceSvc.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.invoiceSvc.UpdateInvoice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	req, err := query.toRequest()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.ListInvoices(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetInvoice(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	doc, err := s.invoiceSvc.RenderInvoicePDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writePDF(c, id, doc)
}

func (q listInvoicesQuery) toRequest() (invoicedomain.ListInvoiceRequest, error) {
	year, err := parseOptionalInt(q.Year)
	if err != nil {
		return invoicedomain.ListInvoiceRequest{}, invoicedomain.ErrInvalidYear
	}
	month, err := parseOptionalInt(q.Month)
	if err != nil {
		return invoicedomain.ListInvoiceRequest{}, invoicedomain.ErrInvalidMonth
	}

	req := invoicedomain.ListInvoiceRequest{
		ContractID: strings.TrimSpace(q.ContractID),
		Status:     strings.TrimSpace(q.Status),
	}
	if year != nil {
		req.Year = *year
	}
	if month != nil {
		req.Month = *month
	}
	return req, nil
}

func writePDF(c *gin.Context, invoiceID string, doc []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"invoice-%s.pdf\"", invoiceID))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidContract),
		errors.Is(err, invoicedomain.ErrInvalidYear),
		errors.Is(err, invoicedomain.ErrInvalidMonth),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}
