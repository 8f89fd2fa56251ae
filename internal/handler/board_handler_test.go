package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/internal/service"
	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

type stubEvents struct{}

func (stubEvents) ListByRoom(context.Context, int64) ([]models.Event, error) {
	now := time.Now()
	end := now.Add(time.Hour)
	return []models.Event{{ID: 11, RoomID: 1, Start: now.Add(-time.Minute), End: &end, CallerIDs: []int64{101}}}, nil
}

type stubMCs struct{}

func (stubMCs) ListByRoom(context.Context, int64) ([]models.MCAssignment, error) {
	return nil, nil
}

type stubProfiles struct{}

func (stubProfiles) ListCatalog(context.Context) (*models.ProfileCatalog, error) {
	cid := int64(101)
	return &models.ProfileCatalog{
		CallerProfiles:        []models.Profile{{ID: 1, CallerCuerID: &cid, Content: "bio"}},
		AdvertisementProfiles: []models.Profile{{ID: 10, Advertisement: true, Content: "ad"}},
	}, nil
}

type stubRooms struct{}

func (stubRooms) FindByID(_ context.Context, id int64) (*models.Room, error) {
	if id != 1 {
		return nil, appErrors.ErrNotFound
	}
	return &models.Room{ID: 1, RoomNumber: "Main Hall"}, nil
}

func (stubRooms) ListDescriptions(context.Context, int64) ([]models.RoomDescription, error) {
	return nil, nil
}

type stubCallers struct{}

func (stubCallers) FindByIDs(_ context.Context, ids []int64) (map[int64]models.CallerCuer, error) {
	out := make(map[int64]models.CallerCuer)
	for _, id := range ids {
		out[id] = models.CallerCuer{ID: id, FirstName: "Pat", LastName: "Carson"}
	}
	return out, nil
}

type silentBroadcaster struct{}

func (silentBroadcaster) BroadcastToRoom(int64, string, interface{}) {}

func testRegistry(t *testing.T) *service.BoardRegistry {
	t.Helper()
	cfg := &config.Config{
		Rotation: config.RotationConfig{TickInterval: time.Hour, AdOverrideAfter: time.Hour, AdOverrideCount: 2},
		Refresh:  config.RefreshConfig{StandardInterval: time.Hour, FastInterval: time.Hour, MaxLoadAttempts: 1, SkipWarnThreshold: 4},
		Catalog:  config.CatalogConfig{RefreshInterval: time.Hour, CacheTTL: time.Hour},
	}
	schedule := service.NewScheduleCache(stubEvents{}, stubMCs{}, nil, nil, nil)
	catalog := service.NewCatalogService(stubProfiles{}, service.NewCacheService(nil, nil, time.Minute, nil, false), cfg.Catalog, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	registry := service.NewBoardRegistry(ctx, cfg, schedule, catalog, stubRooms{}, stubCallers{}, silentBroadcaster{}, nil, nil, nil)
	t.Cleanup(registry.StopAll)
	return registry
}

func TestBoardHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBoardHandler(testRegistry(t))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms/1/board", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data models.BoardSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Main Hall", body.Data.RoomNumber)
	assert.False(t, body.Data.NoEvents)
}

func TestBoardHandlerGetInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBoardHandler(testRegistry(t))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms/zero/board", nil)
	c.Params = gin.Params{{Key: "id", Value: "zero"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardHandlerGetUnknownRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := testRegistry(t)
	handler := NewBoardHandler(registry)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/rooms/99/board", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, running := registry.Session(99)
	assert.False(t, running, "no session may be started for a room that does not exist")
}

func TestBoardHandlerUpdateOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := testRegistry(t)
	handler := NewBoardHandler(registry)

	payload := bytes.NewBufferString(`{"show_callers":true,"show_advertisements":false,"lock_active":true}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/rooms/1/board/options", payload)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.UpdateOptions(c)

	require.Equal(t, http.StatusOK, rec.Code)
	session, ok := registry.Session(1)
	require.True(t, ok)
	opts := session.Options()
	assert.True(t, opts.ShowCallers)
	assert.False(t, opts.ShowAdvertisements)
	assert.True(t, opts.LockActive)
}

func TestBoardHandlerUpdateOptionsRejectsPartialPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBoardHandler(testRegistry(t))

	payload := bytes.NewBufferString(`{"show_callers":true}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/rooms/1/board/options", payload)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.UpdateOptions(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardHandlerRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBoardHandler(testRegistry(t))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/rooms/1/board/refresh", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Refresh(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
