package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
)

func (s *Server) ListBuildings(c *gin.Context) {
	resp, err := s.propertySvc.ListBuildings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBuilding(c *gin.Context) {
	resp, err := s.propertySvc.GetBuilding(c.Request.Context(), strings.TrimSpace(c.Param("buildingId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateBuilding(c *gin.Context) {
	var req propertydomain.CreateBuildingRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = trimStringPtr(req.Address)

	resp, err := s.propertySvc.CreateBuilding(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBuilding(c *gin.Context) {
	var req propertydomain.UpdateBuildingRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("buildingId"))
	req.Name = trimStringPtr(req.Name)
	req.Address = trimStringPtr(req.Address)

	resp, err := s.propertySvc.UpdateBuilding(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRooms(c *gin.Context) {
	var query struct {
		BuildingID string `form:"building_id"`
		RoomNumber string `form:"room_number"`
	}
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.propertySvc.ListRooms(c.Request.Context(), propertydomain.ListRoomsRequest{
		BuildingID: strings.TrimSpace(query.BuildingID),
		RoomNumber: strings.TrimSpace(query.RoomNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRoom(c *gin.Context) {
	resp, err := s.propertySvc.GetRoom(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req propertydomain.CreateRoomRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)

	resp, err := s.propertySvc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	var req propertydomain.UpdateRoomRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.BuildingID = trimStringPtr(req.BuildingID)
	req.RoomNumber = trimStringPtr(req.RoomNumber)

	resp, err := s.propertySvc.UpdateRoom(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetConsumption reports the metered usage of a room for one period.
func (s *Server) GetConsumption(c *gin.Context) {
	var query periodQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	room, err := s.propertySvc.GetRoom(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.meterSvc.ConsumptionForPeriod(ctx, room.ID, query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPropertyValidationError(err error) bool {
	switch {
	case errors.Is(err, propertydomain.ErrInvalidID),
		errors.Is(err, propertydomain.ErrInvalidBuilding),
		errors.Is(err, propertydomain.ErrInvalidName),
		errors.Is(err, propertydomain.ErrInvalidRoomNumber),
		errors.Is(err, propertydomain.ErrInvalidStatus),
		errors.Is(err, propertydomain.ErrInvalidAmount),
		errors.Is(err, propertydomain.ErrInvalidPaymentCycle),
		errors.Is(err, propertydomain.ErrInvalidLeaseDates):
		return true
	default:
		return false
	}
}

func trimStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
