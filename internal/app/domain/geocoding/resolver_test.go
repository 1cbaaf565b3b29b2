package geocoding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

type MockRegionStore struct {
	mock.Mock
}

func (m *MockRegionStore) GetRegionByID(ctx context.Context, id string) (*models.Region, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Region), args.Error(1)
}

func (m *MockRegionStore) GetRegionByName(ctx context.Context, name, countryCode string) (*models.Region, error) {
	args := m.Called(ctx, name, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Region), args.Error(1)
}

func (m *MockRegionStore) ListCitiesByRegion(ctx context.Context, regionID string) ([]models.City, error) {
	args := m.Called(ctx, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.City), args.Error(1)
}

func (m *MockRegionStore) IsRegionVisited(ctx context.Context, userID uuid.UUID, regionID string) (bool, error) {
	args := m.Called(ctx, userID, regionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegionStore) IsCityVisited(ctx context.Context, userID, cityID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, cityID)
	return args.Bool(0), args.Error(1)
}

func newTestResolver(store RegionStore) *Resolver {
	return NewResolver(store, zap.NewNop())
}

func TestResolve_RegionAndCity(t *testing.T) {
	store := new(MockRegionStore)
	maine := &models.Region{ID: "US-ME", Name: "Maine", CountryCode: "US", CountryName: "United States"}
	portland := models.City{ID: uuid.New(), Name: "Portland", RegionID: "US-ME"}
	bangor := models.City{ID: uuid.New(), Name: "Bangor", RegionID: "US-ME"}

	store.On("GetRegionByID", mock.Anything, "US-ME").Return(maine, nil)
	store.On("ListCitiesByRegion", mock.Anything, "US-ME").Return([]models.City{bangor, portland}, nil)

	comps := &models.AddressComponents{
		CountryCode: "us",
		State:       "Maine",
		City:        "Portland",
		ISO3166_2:   map[string]string{"lvl1": "US-ME"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "US-ME", place.RegionID)
	assert.Equal(t, "Portland", place.CityName)
	assert.Equal(t, "Portland, Maine, US", place.DisplayName)
	store.AssertExpectations(t)
}

func TestResolve_DiacriticFoldedCityMatch(t *testing.T) {
	store := new(MockRegionStore)
	troms := &models.Region{ID: "NO-54", Name: "Troms og Finnmark", CountryCode: "NO", CountryName: "Norway"}
	tromso := models.City{ID: uuid.New(), Name: "Tromsø", RegionID: "NO-54"}

	store.On("GetRegionByID", mock.Anything, "NO-54").Return(troms, nil)
	store.On("ListCitiesByRegion", mock.Anything, "NO-54").Return([]models.City{tromso}, nil)

	comps := &models.AddressComponents{
		CountryCode: "no",
		City:        "Tromso",
		ISO3166_2:   map[string]string{"lvl4": "NO-54"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Tromsø", place.CityName)
}

func TestResolve_FoldedMatchIgnoresPunctuation(t *testing.T) {
	store := new(MockRegionStore)
	idf := &models.Region{ID: "FR-IDF", Name: "Île-de-France", CountryCode: "FR", CountryName: "France"}
	saintDenis := models.City{ID: uuid.New(), Name: "Saint-Denis", RegionID: "FR-IDF"}

	store.On("GetRegionByID", mock.Anything, "FR-IDF").Return(idf, nil)
	store.On("ListCitiesByRegion", mock.Anything, "FR-IDF").Return([]models.City{saintDenis}, nil)

	comps := &models.AddressComponents{
		CountryCode: "fr",
		City:        "Saint Denis",
		ISO3166_2:   map[string]string{"lvl4": "FR-IDF"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Saint-Denis", place.CityName)
}

func TestResolve_FrancePrefersLvl4(t *testing.T) {
	store := new(MockRegionStore)
	idf := &models.Region{ID: "FR-IDF", Name: "Île-de-France", CountryCode: "FR", CountryName: "France"}
	paris := &models.Region{ID: "FR-75", Name: "Paris", CountryCode: "FR", CountryName: "France"}

	store.On("GetRegionByID", mock.Anything, "FR-IDF").Return(idf, nil)
	store.On("GetRegionByID", mock.Anything, "FR-75").Return(paris, nil)
	store.On("ListCitiesByRegion", mock.Anything, mock.Anything).Return([]models.City{}, nil)

	comps := &models.AddressComponents{
		CountryCode: "fr",
		ISO3166_2:   map[string]string{"lvl4": "FR-IDF", "lvl6": "FR-75"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "FR-IDF", place.RegionID)
}

func TestResolve_BareCountryCodeFallsBackToName(t *testing.T) {
	store := new(MockRegionStore)
	maine := &models.Region{ID: "US-ME", Name: "Maine", CountryCode: "US", CountryName: "United States"}

	store.On("GetRegionByName", mock.Anything, "Maine", "us").Return(maine, nil)
	store.On("ListCitiesByRegion", mock.Anything, "US-ME").Return([]models.City{}, nil)

	comps := &models.AddressComponents{
		CountryCode: "us",
		State:       "Maine",
		// Country-level codes are not subdivisions and must be discarded.
		ISO3166_2: map[string]string{"lvl1": "US"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "US-ME", place.RegionID)
	assert.Equal(t, "Maine, US", place.DisplayName)
}

func TestResolve_NoMatchReturnsNotFound(t *testing.T) {
	store := new(MockRegionStore)
	store.On("GetRegionByName", mock.Anything, "Atlantis", "").Return(nil, nil)

	comps := &models.AddressComponents{State: "Atlantis"}

	_, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolve_CountyNeverMatchedBySubstring(t *testing.T) {
	store := new(MockRegionStore)
	maine := &models.Region{ID: "US-ME", Name: "Maine", CountryCode: "US", CountryName: "United States"}
	portland := models.City{ID: uuid.New(), Name: "Portland", RegionID: "US-ME"}

	store.On("GetRegionByID", mock.Anything, "US-ME").Return(maine, nil)
	store.On("ListCitiesByRegion", mock.Anything, "US-ME").Return([]models.City{portland}, nil)

	comps := &models.AddressComponents{
		CountryCode: "us",
		County:      "Greater Portland",
		ISO3166_2:   map[string]string{"lvl1": "US-ME"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, place.CityName)
}

func TestResolve_RegionWithCityMatchWinsOverMoreSpecific(t *testing.T) {
	store := new(MockRegionStore)
	specific := &models.Region{ID: "GB-WSM", Name: "Westminster", CountryCode: "GB", CountryName: "United Kingdom"}
	england := &models.Region{ID: "GB-ENG", Name: "England", CountryCode: "GB", CountryName: "United Kingdom"}
	london := models.City{ID: uuid.New(), Name: "London", RegionID: "GB-ENG"}

	store.On("GetRegionByID", mock.Anything, "GB-WSM").Return(specific, nil)
	store.On("GetRegionByID", mock.Anything, "GB-ENG").Return(england, nil)
	store.On("ListCitiesByRegion", mock.Anything, "GB-WSM").Return([]models.City{}, nil)
	store.On("ListCitiesByRegion", mock.Anything, "GB-ENG").Return([]models.City{london}, nil)

	comps := &models.AddressComponents{
		CountryCode: "gb",
		City:        "London",
		ISO3166_2:   map[string]string{"lvl8": "GB-WSM", "lvl4": "GB-ENG"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "GB-ENG", place.RegionID)
	assert.Equal(t, "London", place.CityName)
}

func TestResolve_VisitedFlags(t *testing.T) {
	store := new(MockRegionStore)
	userID := uuid.New()
	maine := &models.Region{ID: "US-ME", Name: "Maine", CountryCode: "US", CountryName: "United States"}
	portland := models.City{ID: uuid.New(), Name: "Portland", RegionID: "US-ME"}

	store.On("GetRegionByID", mock.Anything, "US-ME").Return(maine, nil)
	store.On("ListCitiesByRegion", mock.Anything, "US-ME").Return([]models.City{portland}, nil)
	store.On("IsRegionVisited", mock.Anything, userID, "US-ME").Return(true, nil)
	store.On("IsCityVisited", mock.Anything, userID, portland.ID).Return(false, nil)

	comps := &models.AddressComponents{
		CountryCode: "us",
		City:        "Portland",
		ISO3166_2:   map[string]string{"lvl1": "US-ME"},
	}

	place, err := newTestResolver(store).Resolve(context.Background(), comps, userID)
	require.NoError(t, err)
	assert.True(t, place.RegionVisited)
	assert.False(t, place.CityVisited)
}

func TestFoldName(t *testing.T) {
	cases := map[string]string{
		"Tromsø":      "tromso",
		"São Paulo":   "saopaulo",
		"Zürich":      "zurich",
		"Łódź":        "lodz",
		"Portland":    "portland",
		"Saint-Denis": "saintdenis",
		"Saint Denis": "saintdenis",
		"L'Aquila":    "laquila",
	}
	for in, want := range cases {
		assert.Equal(t, want, foldName(in), "foldName(%q)", in)
	}
}
