package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

type fakeRoomLister struct {
	rooms        []models.Room
	room         *models.Room
	descriptions []models.RoomDescription
	err          error
}

func (f *fakeRoomLister) List(context.Context) ([]models.Room, error) {
	return f.rooms, f.err
}

func (f *fakeRoomLister) FindByID(context.Context, int64) (*models.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.room, nil
}

func (f *fakeRoomLister) ListDescriptions(context.Context, int64) ([]models.RoomDescription, error) {
	return f.descriptions, nil
}

func TestRoomHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRoomHandler(&fakeRoomLister{rooms: []models.Room{
		{ID: 1, RoomNumber: "Main Hall"},
		{ID: 2, RoomNumber: "Round Room"},
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []models.Room `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

func TestRoomHandlerListError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRoomHandler(&fakeRoomLister{err: errors.New("boom")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms", nil)

	handler.List(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRoomHandlerGetInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRoomHandler(&fakeRoomLister{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoomHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRoomHandler(&fakeRoomLister{err: appErrors.ErrNotFound})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
