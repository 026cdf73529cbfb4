package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	financedomain "github.com/smallbiznis/rentbook/internal/finance/domain"
)

// GetBuildingSummary returns the profit and loss of one building for a month.
// Unknown buildings report an all-zero summary.
func (s *Server) GetBuildingSummary(c *gin.Context) {
	var query periodQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	buildingID, err := financedomain.ParseID(strings.TrimSpace(c.Param("buildingId")))
	if err != nil || buildingID <= 0 {
		AbortWithError(c, financedomain.ErrInvalidBuilding)
		return
	}

	resp, err := s.financeSvc.BuildingMonthSummary(c.Request.Context(), buildingID, query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPortfolioSummary(c *gin.Context) {
	var query periodQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.financeSvc.PortfolioSummary(c.Request.Context(), query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isFinanceValidationError(err error) bool {
	switch {
	case errors.Is(err, financedomain.ErrInvalidBuilding),
		errors.Is(err, financedomain.ErrInvalidYear),
		errors.Is(err, financedomain.ErrInvalidMonth):
		return true
	default:
		return false
	}
}
