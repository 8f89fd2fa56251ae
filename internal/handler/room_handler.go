package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/pkg/response"
)

// RoomLister abstracts room lookups for the handler.
type RoomLister interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	ListDescriptions(ctx context.Context, roomID int64) ([]models.RoomDescription, error)
}

// RoomHandler exposes room endpoints.
type RoomHandler struct {
	rooms RoomLister
}

// NewRoomHandler constructs RoomHandler.
func NewRoomHandler(rooms RoomLister) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms)
}

// Get godoc
// @Summary Get room detail with its descriptions
// @Tags Rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.rooms.FindByID(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	descriptions, err := h.rooms.ListDescriptions(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"room": room, "descriptions": descriptions})
}
