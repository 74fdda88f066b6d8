package transport

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/shared/httputil"
)

// NewDiningErrorMapper maps the eatery error taxonomy onto HTTP statuses.
func NewDiningErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		With(port.ErrInvalidIdentifier, http.StatusBadRequest, "unknown dining hall").
		With(port.ErrNotFound, http.StatusNotFound, "dining hall not found").
		With(port.ErrParse, http.StatusBadGateway, "malformed upstream payload").
		With(port.ErrNetwork, http.StatusBadGateway, "eatery api unavailable")
}

// DiningHandler exposes the data manager over REST.
type DiningHandler struct {
	manager *usecase.DataManager
	errors  *httputil.ErrorMapper
}

func NewDiningHandler(manager *usecase.DataManager) *DiningHandler {
	return &DiningHandler{manager: manager, errors: NewDiningErrorMapper()}
}

type diningHallsResponse struct {
	Data  []domain.DiningHall `json:"data"`
	Count int                 `json:"count"`
}

type refreshFailure struct {
	Kind  port.ErrorKind `json:"kind"`
	Error string         `json:"error"`
}

type batchResponse struct {
	Succeeded []string                  `json:"succeeded"`
	Stored    map[string]string         `json:"stored"`
	Failed    map[string]refreshFailure `json:"failed"`
	Total     int                       `json:"total"`
	ElapsedMs int64                     `json:"elapsedMs"`
}

func newBatchResponse(result usecase.BatchResult) batchResponse {
	resp := batchResponse{
		Succeeded: result.Succeeded,
		Stored:    result.Stored,
		Failed:    make(map[string]refreshFailure, len(result.Failed)),
		Total:     result.Total(),
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	if resp.Stored == nil {
		resp.Stored = map[string]string{}
	}
	for id, err := range result.Failed {
		resp.Failed[id] = refreshFailure{Kind: port.KindOf(err), Error: err.Error()}
	}
	return resp
}

// ListDiningHalls handles GET /dining-halls.
func (h *DiningHandler) ListDiningHalls(c echo.Context) error {
	halls := h.manager.DiningHalls()
	return c.JSON(http.StatusOK, diningHallsResponse{Data: halls, Count: len(halls)})
}

// GetDiningHall handles GET /dining-halls/:id from the in-memory collection.
func (h *DiningHandler) GetDiningHall(c echo.Context) error {
	id := pathParam(c, "id")
	hall, ok := h.manager.DiningHall(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "dining hall not loaded")
	}
	return c.JSON(http.StatusOK, hall)
}

// GetHours handles GET /dining-halls/:id/hours/:start/:end.
func (h *DiningHandler) GetHours(c echo.Context) error {
	id := pathParam(c, "id")
	start, okStart := domain.ParseDayRef(c.Param("start"))
	end, okEnd := domain.ParseDayRef(c.Param("end"))
	if !okStart || !okEnd {
		return echo.NewHTTPError(http.StatusBadRequest, "day must be today or tomorrow")
	}
	hall, err := h.manager.FetchHours(c.Request().Context(), id, start, end)
	if err != nil {
		return h.fail(c, "hours", id, err)
	}
	return c.JSON(http.StatusOK, hall)
}

// GetMenu handles GET /menus/:id.
func (h *DiningHandler) GetMenu(c echo.Context) error {
	id := pathParam(c, "id")
	menu, err := h.manager.FetchMenu(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "menu", id, err)
	}
	return c.JSON(http.StatusOK, menu)
}

// GetMenuMeal handles GET /menus/:id/:meal.
func (h *DiningHandler) GetMenuMeal(c echo.Context) error {
	id := pathParam(c, "id")
	meal, ok := domain.ParseMealType(c.Param("meal"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown meal")
	}
	menu, err := h.manager.FetchMenuMeal(c.Request().Context(), id, meal)
	if err != nil {
		return h.fail(c, "menu meal", id, err)
	}
	return c.JSON(http.StatusOK, menu)
}

// RefreshAll handles POST /dining-halls/refresh. Partial failures still answer 200; the body
// lists every failed hall with its error kind.
func (h *DiningHandler) RefreshAll(c echo.Context) error {
	result := h.manager.RefreshAll(c.Request().Context())
	return c.JSON(http.StatusOK, newBatchResponse(result))
}

// RefreshOne handles POST /dining-halls/:id/refresh.
func (h *DiningHandler) RefreshOne(c echo.Context) error {
	id := pathParam(c, "id")
	hall, err := h.manager.RefreshOne(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "refresh", id, err)
	}
	return c.JSON(http.StatusOK, hall)
}

func (h *DiningHandler) fail(c echo.Context, op, id string, err error) error {
	httpErr := h.errors.HTTPError(err)
	attrs := []any{slog.String("op", op), slog.String("hallId", id), slog.Int("status", httpErr.Code), slog.Any("error", err)}
	if httpErr.Code >= http.StatusInternalServerError {
		slog.Error("dining request failed", attrs...)
	} else {
		slog.Warn("dining request rejected", attrs...)
	}
	c.Logger().Debugf("dining %s failed id=%s reqID=%s", op, id, c.Response().Header().Get(echo.HeaderXRequestID))
	return httpErr
}

// pathParam returns the unescaped value of a path parameter. Catalog ids contain commas.
func pathParam(c echo.Context, name string) string {
	raw := strings.TrimSpace(c.Param(name))
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}
