package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
)

func (s *Server) RecordMeterReading(c *gin.Context) {
	var req meterdomain.RecordRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.Note = trimStringPtr(req.Note)

	resp, err := s.meterSvc.RecordReading(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMeterReadings(c *gin.Context) {
	var query struct {
		RoomID string `form:"room_id"`
	}
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.meterSvc.ListReadings(c.Request.Context(), meterdomain.ListRequest{
		RoomID: strings.TrimSpace(query.RoomID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMeterReading(c *gin.Context) {
	if err := s.meterSvc.DeleteReading(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isMeterValidationError(err error) bool {
	switch {
	case errors.Is(err, meterdomain.ErrInvalidID),
		errors.Is(err, meterdomain.ErrInvalidRoom),
		errors.Is(err, meterdomain.ErrInvalidYear),
		errors.Is(err, meterdomain.ErrInvalidMonth),
		errors.Is(err, meterdomain.ErrInvalidReading):
		return true
	default:
		return false
	}
}
