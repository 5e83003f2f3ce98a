package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"overcooked-orders/order-svc/internal/domain"
	"overcooked-orders/order-svc/internal/mocks"
	"overcooked-orders/order-svc/internal/service"
	"overcooked-orders/order-svc/internal/storage"
)

func ids(items []domain.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestCatalogService_Menu(t *testing.T) {
	live := []domain.MenuItem{pizza, coffee}

	tests := []struct {
		name         string
		setupMock    func(*mocks.OrderRepository)
		seedCache    []domain.MenuItem
		wantIDs      []string
		wantFallback bool
	}{
		{
			name: "repository catalog",
			setupMock: func(m *mocks.OrderRepository) {
				m.On("FetchCatalog", mock.Anything).Return(live, nil).Once()
			},
			wantIDs: []string{"1", "4"},
		},
		{
			name: "falls back to the cached catalog",
			setupMock: func(m *mocks.OrderRepository) {
				m.On("FetchCatalog", mock.Anything).Return(nil, errors.New("offline")).Once()
			},
			seedCache:    []domain.MenuItem{coffee},
			wantIDs:      []string{"4"},
			wantFallback: true,
		},
		{
			name: "falls back to the sample menu",
			setupMock: func(m *mocks.OrderRepository) {
				m.On("FetchCatalog", mock.Anything).Return(nil, errors.New("offline")).Once()
			},
			wantIDs:      []string{"1", "2", "3", "4", "5", "6"},
			wantFallback: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewOrderRepository(t)
			testCase.setupMock(repo)
			store := storage.NewMemoryStorage()
			if testCase.seedCache != nil {
				require.NoError(t, store.Set("menu_cache", testCase.seedCache))
			}
			svc := service.NewCatalogService(repo, store, nil)

			items, err := svc.Menu(context.Background())

			assert.Equal(t, testCase.wantIDs, ids(items))
			if testCase.wantFallback {
				var repoErr *service.RepositoryError
				assert.ErrorAs(t, err, &repoErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCatalogService_MenuRefreshesCache(t *testing.T) {
	repo := mocks.NewOrderRepository(t)
	repo.On("FetchCatalog", mock.Anything).Return([]domain.MenuItem{pizza}, nil).Once()
	repo.On("FetchCatalog", mock.Anything).Return(nil, errors.New("offline")).Once()
	svc := service.NewCatalogService(repo, storage.NewMemoryStorage(), nil)

	_, err := svc.Menu(context.Background())
	require.NoError(t, err)

	items, err := svc.Menu(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"1"}, ids(items))
}

func TestCatalogService_Filter(t *testing.T) {
	svc := service.NewCatalogService(nil, storage.NewMemoryStorage(), nil)
	menu := domain.SampleMenu()

	tests := []struct {
		name   string
		filter service.MenuFilter
		want   []string
	}{
		{name: "no filter", filter: service.MenuFilter{}, want: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "all categories", filter: service.MenuFilter{Category: "all"}, want: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "category", filter: service.MenuFilter{Category: "Pizza"}, want: []string{"1", "6"}},
		{name: "veg", filter: service.MenuFilter{Diet: "veg"}, want: []string{"1", "3", "4", "5"}},
		{name: "non-veg", filter: service.MenuFilter{Diet: "non-veg"}, want: []string{"2", "6"}},
		{name: "popular", filter: service.MenuFilter{Diet: "popular"}, want: []string{"1", "4", "5", "6"}},
		{name: "low price", filter: service.MenuFilter{PriceRange: "low"}, want: []string{"3", "4", "5"}},
		{name: "medium price", filter: service.MenuFilter{PriceRange: "medium"}, want: []string{"1", "2", "6"}},
		{name: "high price", filter: service.MenuFilter{PriceRange: "high"}, want: []string{}},
		{name: "search by name", filter: service.MenuFilter{Query: "coffee"}, want: []string{"4"}},
		{name: "search by category", filter: service.MenuFilter{Query: "PIZZA"}, want: []string{"1", "6"}},
		{name: "search by description", filter: service.MenuFilter{Query: "frosting"}, want: []string{"5"}},
		{name: "combined", filter: service.MenuFilter{Category: "pizza", Diet: "non-veg"}, want: []string{"6"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, ids(svc.Filter(menu, testCase.filter)))
		})
	}
}

func TestCatalogService_AddToCart(t *testing.T) {
	soldOut := domain.MenuItem{ID: "9", Name: "Soup", Price: 120, Availability: false}

	tests := []struct {
		name      string
		itemID    string
		wantErr   error
		wantCount int
	}{
		{name: "available item", itemID: pizza.ID, wantCount: 1},
		{name: "unavailable item", itemID: soldOut.ID, wantErr: service.ErrItemUnavailable},
		{name: "unknown item", itemID: "404", wantErr: service.ErrItemNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewOrderRepository(t)
			repo.On("FetchCatalog", mock.Anything).Return([]domain.MenuItem{pizza, soldOut}, nil).Once()
			store := storage.NewMemoryStorage()
			svc := service.NewCatalogService(repo, store, nil)
			cart := newCart(t, store)

			_, err := svc.AddToCart(context.Background(), cart, testCase.itemID)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.wantCount, cart.GetItemCount())
		})
	}
}

func TestCatalogService_SearchCacheSurvivesUnchangedCatalog(t *testing.T) {
	ctx := context.Background()
	menu := domain.SampleMenu()
	renamed := domain.SampleMenu()
	for i := range renamed {
		renamed[i].Name = "Item " + renamed[i].ID
		renamed[i].Description = ""
		renamed[i].Category = "misc"
	}

	repo := mocks.NewOrderRepository(t)
	repo.On("FetchCatalog", mock.Anything).Return(menu, nil).Twice()
	repo.On("FetchCatalog", mock.Anything).Return(renamed, nil).Once()
	svc := service.NewCatalogService(repo, storage.NewMemoryStorage(), nil)
	query := service.MenuFilter{Query: "pizza"}

	items, err := svc.Menu(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6"}, ids(svc.Filter(items, query)))

	_, err = svc.Menu(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6"}, ids(svc.Filter(renamed, query)), "same catalog reuses the cached hits")

	items, err = svc.Menu(ctx)
	require.NoError(t, err)
	assert.Empty(t, svc.Filter(items, query), "a changed catalog drops the cached hits")
}

func TestCatalogService_FindUsesServedCatalog(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewOrderRepository(t)
	repo.On("FetchCatalog", mock.Anything).Return([]domain.MenuItem{pizza, coffee}, nil).Once()
	svc := service.NewCatalogService(repo, storage.NewMemoryStorage(), nil)
	cart := newCart(t, storage.NewMemoryStorage())

	for _, id := range []string{pizza.ID, coffee.ID, pizza.ID} {
		_, err := svc.AddToCart(ctx, cart, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, cart.GetItemCount())
}

func TestCatalogService_FindRetriesAfterFallback(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewOrderRepository(t)
	repo.On("FetchCatalog", mock.Anything).Return(nil, errors.New("offline")).Once()
	repo.On("FetchCatalog", mock.Anything).Return([]domain.MenuItem{coffee}, nil).Once()
	svc := service.NewCatalogService(repo, storage.NewMemoryStorage(), nil)

	_, err := svc.Menu(ctx)
	require.Error(t, err)

	item, err := svc.Find(ctx, coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, coffee.Name, item.Name)
}
