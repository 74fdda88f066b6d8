package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/modules/dining/infrastructure"
	"eateryApi/internal/shared/auth"
)

type stubFetcher struct {
	mu    sync.Mutex
	halls map[string]domain.DiningHall
	errs  map[string]error
	menus map[string]*domain.Menu
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		halls: map[string]domain.DiningHall{},
		errs:  map[string]error{},
		menus: map[string]*domain.Menu{},
	}
}

func (s *stubFetcher) FetchDiningHall(_ context.Context, id string) (domain.DiningHall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[id]; ok {
		return domain.DiningHall{}, err
	}
	if hall, ok := s.halls[id]; ok {
		return hall, nil
	}
	return domain.DiningHall{}, fmt.Errorf("%w: calendar %s", port.ErrNotFound, id)
}

func (s *stubFetcher) FetchCalendarRange(ctx context.Context, id string, _, _ domain.DayRef) (domain.DiningHall, error) {
	return s.FetchDiningHall(ctx, id)
}

func (s *stubFetcher) FetchMenu(_ context.Context, id string) (*domain.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	if menu, ok := s.menus[id]; ok {
		return menu, nil
	}
	return nil, fmt.Errorf("%w: menu %s", port.ErrNotFound, id)
}

func (s *stubFetcher) FetchMenuMeal(ctx context.Context, id string, meal domain.MealType) (*domain.Menu, error) {
	menu, err := s.FetchMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Menu{HallID: id, Meals: map[domain.MealType][]domain.FoodItem{meal: menu.Items(meal)}}, nil
}

func newTestServer(t *testing.T, fetcher *stubFetcher, guard echo.MiddlewareFunc, opts ...usecase.Option) (*echo.Echo, *usecase.DataManager) {
	t.Helper()
	manager := usecase.NewDataManager(fetcher, opts...)
	e := echo.New()
	RegisterRoutes(e, manager, infrastructure.NewHub(), guard)
	return e, manager
}

func serve(e *echo.Echo, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListAndGetDiningHalls(t *testing.T) {
	e, manager := newTestServer(t, newStubFetcher(), nil)
	manager.LoadFixtures()

	rec := serve(e, http.MethodGet, "/dining-halls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data  []domain.DiningHall `json:"data"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 6, list.Count)
	require.Equal(t, "north_star", list.Data[0].ID)

	rec = serve(e, http.MethodGet, "/dining-halls/goldies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Goldies"`)

	rec = serve(e, http.MethodGet, "/dining-halls/rpme", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshOne_MapsErrors(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["north_star"] = domain.DiningHall{ID: "north_star", Name: "North Star"}
	fetcher.errs["flaky"] = fmt.Errorf("%w: unexpected calendar response 502", port.ErrNetwork)
	fetcher.errs["garbled"] = fmt.Errorf("%w: %w", port.ErrParse, domain.ErrMalformedPayload)
	fetcher.errs["slow"] = fmt.Errorf("%w: %w", port.ErrNetwork, context.DeadlineExceeded)
	e, manager := newTestServer(t, fetcher, nil)

	cases := map[string]int{
		"north_star": http.StatusOK,
		"missing":    http.StatusNotFound,
		"flaky":      http.StatusBadGateway,
		"garbled":    http.StatusBadGateway,
		"slow":       http.StatusGatewayTimeout,
	}
	for id, status := range cases {
		rec := serve(e, http.MethodPost, "/dining-halls/"+id+"/refresh", nil)
		require.Equalf(t, status, rec.Code, "refresh %s", id)
	}
	require.Equal(t, 1, manager.Len())
}

func TestRefreshAll_ReportsAggregate(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["a"] = domain.DiningHall{ID: "a"}
	fetcher.errs["b"] = fmt.Errorf("%w: %w", port.ErrNetwork, context.DeadlineExceeded)
	e, _ := newTestServer(t, fetcher, nil, usecase.WithCatalog([]string{"a", "b"}))

	rec := serve(e, http.MethodPost, "/dining-halls/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"a"}, body.Succeeded)
	require.Equal(t, map[string]string{"a": "a"}, body.Stored)
	require.Equal(t, 2, body.Total)
	require.Len(t, body.Failed, 1)
	require.Equal(t, port.KindNetwork, body.Failed["b"].Kind)
}

func TestMenus(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.menus["okenshields"] = &domain.Menu{
		HallID: "okenshields",
		Meals: map[domain.MealType][]domain.FoodItem{
			domain.Lunch: {{Name: "Pizza", Category: "Pizza Station"}},
		},
	}
	e, _ := newTestServer(t, fetcher, nil)

	rec := serve(e, http.MethodGet, "/menus/okenshields", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pizza Station")

	rec = serve(e, http.MethodGet, "/menus/okenshields/lunch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"lunch"`)

	rec = serve(e, http.MethodGet, "/menus/okenshields/supper", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/menus/cascadeli", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHours(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["goldies"] = domain.DiningHall{ID: "goldies", Hours: []domain.TimeRange{domain.TimeRange(`{"start":"8:00am"}`)}}
	e, manager := newTestServer(t, fetcher, nil)

	rec := serve(e, http.MethodGet, "/dining-halls/goldies/hours/today/tomorrow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "8:00am")
	require.Zero(t, manager.Len())

	rec = serve(e, http.MethodGet, "/dining-halls/goldies/hours/today/yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRoutes_RequireToken(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["a"] = domain.DiningHall{ID: "a"}
	validator, err := auth.NewJWTValidator("secret", "")
	require.NoError(t, err)
	e, _ := newTestServer(t, fetcher, RequireToken(validator, "operator"), usecase.WithCatalog([]string{"a"}))

	sign := func(roles ...string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
			Roles: roles,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		return token
	}

	rec := serve(e, http.MethodPost, "/dining-halls/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/dining-halls/a/refresh", map[string]string{"Authorization": "Bearer " + sign("viewer")})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodPost, "/dining-halls/a/refresh", map[string]string{"Authorization": "Bearer " + sign("operator")})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/dining-halls", nil)
	require.Equal(t, http.StatusOK, rec.Code, "read routes stay public")
}

func TestPathParam_UnescapesCatalogIDs(t *testing.T) {
	fetcher := newStubFetcher()
	id := "jansens_dining_room,_bethe_house"
	fetcher.halls[id] = domain.DiningHall{ID: id}
	e, manager := newTestServer(t, fetcher, nil)

	rec := serve(e, http.MethodPost, "/dining-halls/"+strings.ReplaceAll(id, ",", "%2C")+"/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := manager.DiningHall(id)
	require.True(t, ok)
}
