package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/internal/service"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
	"github.com/TomRob62/GSSDA-Web-App/pkg/response"
)

// BoardHandler exposes the room board endpoints.
type BoardHandler struct {
	registry *service.BoardRegistry
}

// NewBoardHandler constructs BoardHandler.
func NewBoardHandler(registry *service.BoardRegistry) *BoardHandler {
	return &BoardHandler{registry: registry}
}

type rotationOptionsRequest struct {
	ShowCallers        *bool `json:"show_callers" binding:"required"`
	ShowAdvertisements *bool `json:"show_advertisements" binding:"required"`
	LockActive         *bool `json:"lock_active" binding:"required"`
}

// Get godoc
// @Summary Get the board read model for a room
// @Tags Board
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/board [get]
func (h *BoardHandler) Get(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	session, err := h.registry.Ensure(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := session.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// UpdateOptions godoc
// @Summary Update rotation options for a room board
// @Tags Board
// @Accept json
// @Produce json
// @Param id path int true "Room ID"
// @Param payload body rotationOptionsRequest true "Rotation options"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/board/options [put]
func (h *BoardHandler) UpdateOptions(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req rotationOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	opts := models.RotationOptions{
		ShowCallers:        *req.ShowCallers,
		ShowAdvertisements: *req.ShowAdvertisements,
		LockActive:         *req.LockActive,
	}
	session, err := h.registry.Ensure(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	session.SetOptions(c.Request.Context(), opts)
	response.JSON(c, http.StatusOK, session.Options())
}

// Refresh godoc
// @Summary Force a board refresh outside the regular cadence
// @Tags Board
// @Produce json
// @Param id path int true "Room ID"
// @Success 202 {object} response.Envelope
// @Router /rooms/{id}/board/refresh [post]
func (h *BoardHandler) Refresh(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	session, err := h.registry.Ensure(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	session.ForceRefresh(c.Request.Context())
	response.JSON(c, http.StatusAccepted, gin.H{"status": "refreshing"})
}

func roomIDParam(c *gin.Context) (int64, bool) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room id"))
		return 0, false
	}
	return roomID, true
}
