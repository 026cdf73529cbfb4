package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	"github.com/smallbiznis/rentbook/pkg/db/pagination"
)

type listOpexQuery struct {
	BuildingID string `form:"building_id"`
	Year       string `form:"year"`
	Month      string `form:"month"`
	pagination.Pagination
}

type listLedgerQuery struct {
	BuildingID string `form:"building_id"`
	pagination.Pagination
}

func (s *Server) ListOpex(c *gin.Context) {
	var query listOpexQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	year, err := parseOptionalInt(query.Year)
	if err != nil {
		AbortWithError(c, expensedomain.ErrInvalidYear)
		return
	}
	month, err := parseOptionalInt(query.Month)
	if err != nil {
		AbortWithError(c, expensedomain.ErrInvalidMonth)
		return
	}

	req := expensedomain.ListOpexRequest{
		BuildingID: strings.TrimSpace(query.BuildingID),
		Pagination: query.Pagination,
	}
	if year != nil {
		req.Year = *year
	}
	if month != nil {
		req.Month = *month
	}

	resp, err := s.expenseSvc.ListOpex(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateOpex(c *gin.Context) {
	var req expensedomain.CreateOpexRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	req.Category = strings.TrimSpace(req.Category)

	resp, err := s.expenseSvc.CreateOpex(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOpex(c *gin.Context) {
	var req expensedomain.UpdateOpexRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.BuildingID = trimStringPtr(req.BuildingID)
	req.Category = trimStringPtr(req.Category)

	resp, err := s.expenseSvc.UpdateOpex(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOpex(c *gin.Context) {
	if err := s.expenseSvc.DeleteOpex(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListSetupCosts(c *gin.Context) {
	var query listLedgerQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.expenseSvc.ListSetupCosts(c.Request.Context(), expensedomain.ListRequest{
		BuildingID: strings.TrimSpace(query.BuildingID),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSetupCost(c *gin.Context) {
	var req expensedomain.CreateSetupCostRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	req.Category = strings.TrimSpace(req.Category)
	req.OccurredDate = strings.TrimSpace(req.OccurredDate)

	resp, err := s.expenseSvc.CreateSetupCost(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSetupCost(c *gin.Context) {
	var req expensedomain.UpdateSetupCostRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.BuildingID = trimStringPtr(req.BuildingID)
	req.Category = trimStringPtr(req.Category)
	req.OccurredDate = trimStringPtr(req.OccurredDate)

	resp, err := s.expenseSvc.UpdateSetupCost(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSetupCost(c *gin.Context) {
	if err := s.expenseSvc.DeleteSetupCost(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListAssets(c *gin.Context) {
	var query listLedgerQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.expenseSvc.ListAssets(c.Request.Context(), expensedomain.ListRequest{
		BuildingID: strings.TrimSpace(query.BuildingID),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateAsset(c *gin.Context) {
	var req expensedomain.CreateAssetRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Category = strings.TrimSpace(req.Category)
	req.PurchaseDate = trimStringPtr(req.PurchaseDate)

	resp, err := s.expenseSvc.CreateAsset(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAsset(c *gin.Context) {
	var req expensedomain.UpdateAssetRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.BuildingID = trimStringPtr(req.BuildingID)
	req.ItemName = trimStringPtr(req.ItemName)
	req.Category = trimStringPtr(req.Category)
	req.PurchaseDate = trimStringPtr(req.PurchaseDate)

	resp, err := s.expenseSvc.UpdateAsset(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAsset(c *gin.Context) {
	if err := s.expenseSvc.DeleteAsset(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isExpenseValidationError(err error) bool {
	switch {
	case errors.Is(err, expensedomain.ErrInvalidID),
		errors.Is(err, expensedomain.ErrInvalidBuilding),
		errors.Is(err, expensedomain.ErrInvalidYear),
		errors.Is(err, expensedomain.ErrInvalidMonth),
		errors.Is(err, expensedomain.ErrInvalidAmount),
		errors.Is(err, expensedomain.ErrInvalidCategory),
		errors.Is(err, expensedomain.ErrInvalidDate),
		errors.Is(err, expensedomain.ErrInvalidItemName),
		errors.Is(err, expensedomain.ErrInvalidDepreciation):
		return true
	default:
		return false
	}
}
