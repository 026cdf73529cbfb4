package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
)

// Self-service routes. The contract always comes from the actor, never from
// the request, so a tenant can only reach their own records.

func (s *Server) GetOwnProfile(c *gin.Context) {
	actor, _ := s.actorFromContext(c)

	resp, err := s.leaseSvc.GetTenant(c.Request.Context(), actor.ContractID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOwnProfile(c *gin.Context) {
	actor, _ := s.actorFromContext(c)

	var req leasedomain.SelfUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ContractID = actor.ContractID
	req.FullName = trimStringPtr(req.FullName)

	resp, err := s.leaseSvc.UpdateOwnProfile(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOwnInvoices(c *gin.Context) {
	actor, _ := s.actorFromContext(c)

	var query listInvoicesQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}
	query.ContractID = actor.ContractID

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

func (s *Server) GetOwnInvoice(c *gin.Context) {
	resp, err := s.ownInvoice(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderOwnInvoicePDF(c *gin.Context) {
	inv, err := s.ownInvoice(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := inv.ID.String()
	doc, err := s.invoiceSvc.RenderInvoicePDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writePDF(c, id, doc)
}

// ownInvoice loads an invoice and hides it when it belongs to another contract.
func (s *Server) ownInvoice(c *gin.Context) (*invoicedomain.Invoice, error) {
	actor, _ := s.actorFromContext(c)

	inv, err := s.invoiceSvc.GetInvoice(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return nil, err
	}
	if inv.ContractID.String() != actor.ContractID {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return inv, nil
}
