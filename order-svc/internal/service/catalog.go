package service

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

const menuCacheKey = "menu_cache"

type MenuFilter struct {
	Category   string
	Diet       string
	PriceRange string
	Query      string
}

// CatalogService serves the menu from the repository, falling back to the
// last cached catalog and then to the sample menu.
type CatalogService struct {
	repo    OrderRepository
	storage Storage
	logger  *zap.Logger

	mu          sync.Mutex
	catalog     []domain.MenuItem
	live        bool
	searchCache map[string]map[string]bool
}

func NewCatalogService(repo OrderRepository, storage Storage, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:        repo,
		storage:     storage,
		logger:      logger,
		searchCache: make(map[string]map[string]bool),
	}
}

// Menu always returns a usable catalog. When the repository fails the error
// is a *RepositoryError and the items come from a fallback.
func (s *CatalogService) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.repo.FetchCatalog(ctx)
	if err == nil {
		if err := s.storage.Set(menuCacheKey, items); err != nil {
			s.logger.Warn("menu cache write failed", zap.Error(err))
		}
		s.remember(items, true)
		return items, nil
	}

	repoErr := &RepositoryError{Op: "fetch catalog", Err: err}
	s.logger.Warn("catalog unavailable, using fallback", zap.Error(err))

	var cached []domain.MenuItem
	found, cacheErr := s.storage.Get(menuCacheKey, &cached)
	if cacheErr != nil {
		s.logger.Warn("menu cache read failed", zap.Error(cacheErr))
	}
	if !found || len(cached) == 0 {
		cached = domain.SampleMenu()
	}
	s.remember(cached, false)
	return cached, repoErr
}

// remember keeps the catalog last served. Search results are dropped only
// when its content changes.
func (s *CatalogService) remember(items []domain.MenuItem, live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = live
	if reflect.DeepEqual(s.catalog, items) {
		return
	}
	s.catalog = make([]domain.MenuItem, len(items))
	copy(s.catalog, items)
	s.searchCache = make(map[string]map[string]bool)
}

// Find looks itemID up in the last live catalog, fetching one only when
// none has been served yet or the last fetch fell back.
func (s *CatalogService) Find(ctx context.Context, itemID string) (domain.MenuItem, error) {
	s.mu.Lock()
	items, live := s.catalog, s.live
	s.mu.Unlock()

	if !live {
		items, _ = s.Menu(ctx)
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return domain.MenuItem{}, ErrItemNotFound
}

// AddToCart looks the item up in the live catalog and adds one unit.
func (s *CatalogService) AddToCart(ctx context.Context, cart *CartStore, itemID string) (domain.MenuItem, error) {
	item, err := s.Find(ctx, itemID)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if !item.Availability {
		return item, ErrItemUnavailable
	}
	cart.AddItem(item)
	return item, nil
}

func (s *CatalogService) searchHits(items []domain.MenuItem, query string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hits, ok := s.searchCache[query]; ok {
		return hits
	}
	hits := make(map[string]bool)
	for _, item := range items {
		text := strings.ToLower(item.Name + " " + item.Description + " " + item.Category)
		if strings.Contains(text, query) {
			hits[item.ID] = true
		}
	}
	s.searchCache[query] = hits
	return hits
}

func matchesDiet(item domain.MenuItem, diet string) bool {
	switch diet {
	case "veg":
		return item.IsVeg
	case "non-veg":
		return !item.IsVeg
	case "popular":
		return item.IsPopular
	}
	return true
}

func matchesPrice(item domain.MenuItem, band string) bool {
	switch band {
	case "low":
		return item.Price < 200
	case "medium":
		return item.Price >= 200 && item.Price <= 500
	case "high":
		return item.Price > 500
	}
	return true
}

// Filter narrows items. Search hits are cached per query for the catalog
// last returned by Menu, so items should come from Menu.
func (s *CatalogService) Filter(items []domain.MenuItem, filter MenuFilter) []domain.MenuItem {
	category := strings.ToLower(strings.TrimSpace(filter.Category))
	if category == "all" {
		category = ""
	}
	diet := strings.ToLower(strings.TrimSpace(filter.Diet))
	band := strings.ToLower(strings.TrimSpace(filter.PriceRange))
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var hits map[string]bool
	if query != "" {
		hits = s.searchHits(items, query)
	}

	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && strings.ToLower(item.Category) != category {
			continue
		}
		if !matchesDiet(item, diet) || !matchesPrice(item, band) {
			continue
		}
		if hits != nil && !hits[item.ID] {
			continue
		}
		out = append(out, item)
	}
	return out
}
