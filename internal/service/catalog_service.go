package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
)

const catalogCacheKey = "board:catalog"

type profileSource interface {
	ListCatalog(ctx context.Context) (*models.ProfileCatalog, error)
}

// CatalogService loads the caller and advertisement profile catalog. A DB
// failure never wipes the board: the last successfully loaded catalog keeps
// serving until a later load succeeds.
type CatalogService struct {
	profiles profileSource
	cache    *CacheService
	cfg      config.CatalogConfig

	mu       sync.RWMutex
	lastGood *models.ProfileCatalog

	now     func() time.Time
	logger  *zap.Logger
	metrics *MetricsService
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(profiles profileSource, cache *CacheService, cfg config.CatalogConfig, clock func() time.Time, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		profiles: profiles,
		cache:    cache,
		cfg:      cfg,
		now:      clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load returns the profile catalog. Without force it consults the shared
// cache first; with force it always goes to the database. When the database
// is unreachable the last good catalog is returned instead of an error so
// rotation keeps running on stale data.
func (s *CatalogService) Load(ctx context.Context, force bool) (*models.ProfileCatalog, error) {
	if !force {
		var cached models.ProfileCatalog
		if hit, err := s.cache.Get(ctx, catalogCacheKey, &cached); err == nil && hit {
			s.remember(&cached)
			return &cached, nil
		}
	}

	catalog, err := s.profiles.ListCatalog(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCatalogLoad(false)
		}
		if last := s.LastGood(); last != nil {
			s.logger.Warn("catalog load failed, serving last good copy",
				zap.Time("loaded_at", last.LoadedAt),
				zap.Error(err))
			return last, nil
		}
		return nil, err
	}
	catalog.LoadedAt = s.now()

	if s.metrics != nil {
		s.metrics.RecordCatalogLoad(true)
	}
	s.remember(catalog)
	if err := s.cache.Set(ctx, catalogCacheKey, catalog, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return catalog, nil
}

// Invalidate drops the shared cache entry so the next load hits the database.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

// LastGood returns the most recently loaded catalog, or nil before the first
// successful load.
func (s *CatalogService) LastGood() *models.ProfileCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGood
}

func (s *CatalogService) remember(catalog *models.ProfileCatalog) {
	s.mu.Lock()
	s.lastGood = catalog
	s.mu.Unlock()
}
