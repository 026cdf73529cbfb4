package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
)

type setTenantLockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

func (s *Server) ListContracts(c *gin.Context) {
	var query struct {
		RoomID string `form:"room_id"`
	}
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leaseSvc.ListContracts(c.Request.Context(), leasedomain.ListContractsRequest{
		RoomID: strings.TrimSpace(query.RoomID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContract(c *gin.Context) {
	resp, err := s.leaseSvc.GetContract(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateContract(c *gin.Context) {
	var req leasedomain.CreateContractRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)

	resp, err := s.leaseSvc.CreateContract(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateContract(c *gin.Context) {
	var req leasedomain.UpdateContractRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.RoomID = trimStringPtr(req.RoomID)
	req.StartDate = trimStringPtr(req.StartDate)
	req.EndDate = trimStringPtr(req.EndDate)

	resp, err := s.leaseSvc.UpdateContract(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetUtilityAmounts previews what the next invoice would charge for utilities.
func (s *Server) GetUtilityAmounts(c *gin.Context) {
	var query periodQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	contract, err := s.leaseSvc.GetContract(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.ComputeUtilityAmounts(ctx, contract.ID, query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenants(c *gin.Context) {
	var query struct {
		Name            string `form:"name"`
		ResidenceStatus string `form:"residence_status"`
	}
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leaseSvc.ListTenants(c.Request.Context(), leasedomain.ListTenantsRequest{
		Name:            strings.TrimSpace(query.Name),
		ResidenceStatus: strings.TrimSpace(query.ResidenceStatus),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenant(c *gin.Context) {
	resp, err := s.leaseSvc.GetTenant(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req leasedomain.CreateTenantRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ContractID = strings.TrimSpace(req.ContractID)
	req.FullName = strings.TrimSpace(req.FullName)

	resp, err := s.leaseSvc.CreateTenant(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTenant(c *gin.Context) {
	var req leasedomain.UpdateTenantRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ContractID = strings.TrimSpace(c.Param("id"))
	req.FullName = trimStringPtr(req.FullName)

	resp, err := s.leaseSvc.UpdateTenant(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetTenantLock(c *gin.Context) {
	var req setTenantLockRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leaseSvc.SetLock(c.Request.Context(), strings.TrimSpace(c.Param("id")), *req.Locked)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLeaseValidationError(err error) bool {
	switch {
	case errors.Is(err, leasedomain.ErrInvalidID),
		errors.Is(err, leasedomain.ErrInvalidContract),
		errors.Is(err, leasedomain.ErrInvalidRoom),
		errors.Is(err, leasedomain.ErrInvalidDates),
		errors.Is(err, leasedomain.ErrInvalidAmount),
		errors.Is(err, leasedomain.ErrInvalidFullName),
		errors.Is(err, leasedomain.ErrInvalidResidenceStatus):
		return true
	default:
		return false
	}
}
