package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
)

func (s *Server) ListCategories(c *gin.Context) {
	var query struct {
		Type string `form:"type" binding:"required"`
	}
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	categoryType := categorydomain.CategoryType(strings.ToLower(strings.TrimSpace(query.Type)))
	resp, err := s.categorySvc.ListByType(c.Request.Context(), categoryType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req categorydomain.CreateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Label = strings.TrimSpace(req.Label)

	resp, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCategory(c *gin.Context) {
	var req categorydomain.UpdateRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.Label = trimStringPtr(req.Label)

	resp, err := s.categorySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCategory(c *gin.Context) {
	if err := s.categorySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isCategoryValidationError(err error) bool {
	switch {
	case errors.Is(err, categorydomain.ErrInvalidType),
		errors.Is(err, categorydomain.ErrInvalidCode),
		errors.Is(err, categorydomain.ErrInvalidLabel),
		errors.Is(err, categorydomain.ErrInvalidID),
		errors.Is(err, categorydomain.ErrUnknownCategory):
		return true
	default:
		return false
	}
}
