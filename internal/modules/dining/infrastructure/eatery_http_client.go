package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/shared/logging"
)

const maxResponseBytes = 4 << 20

// EateryHTTPClient implements EateryFetcher against the eatery REST API.
type EateryHTTPClient struct {
	rest   *RESTClient
	router Router
}

// NewEateryHTTPClient creates a client for baseURL. A nil client gets a fresh http.Client using timeout.
func NewEateryHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *EateryHTTPClient {
	return &EateryHTTPClient{rest: NewRESTClient(timeout, client), router: NewRouter(baseURL)}
}

// Router exposes the endpoint router used by the client.
func (c *EateryHTTPClient) Router() Router {
	return c.router
}

func (c *EateryHTTPClient) FetchDiningHall(ctx context.Context, id string) (domain.DiningHall, error) {
	body, err := c.get(ctx, "calendar", c.router.Calendar(id))
	if err != nil {
		return domain.DiningHall{}, err
	}
	hall, err := domain.DecodeDiningHall(body)
	if err != nil {
		slog.Warn("calendar decode failed", slog.String("hallId", id), slog.Any("error", err))
		return domain.DiningHall{}, fmt.Errorf("%w: %w", port.ErrParse, err)
	}
	return hall, nil
}

// FetchCalendarRange loads a hall with its hours restricted to the start..end window.
func (c *EateryHTTPClient) FetchCalendarRange(ctx context.Context, id string, start, end domain.DayRef) (domain.DiningHall, error) {
	body, err := c.get(ctx, "calendar range", c.router.CalendarRange(id, start, end))
	if err != nil {
		return domain.DiningHall{}, err
	}
	hall, err := domain.DecodeDiningHall(body)
	if err != nil {
		slog.Warn("calendar range decode failed", slog.String("hallId", id), slog.Any("error", err))
		return domain.DiningHall{}, fmt.Errorf("%w: %w", port.ErrParse, err)
	}
	return hall, nil
}

func (c *EateryHTTPClient) FetchMenu(ctx context.Context, id string) (*domain.Menu, error) {
	body, err := c.get(ctx, "menu", c.router.Menu(id))
	if err != nil {
		return nil, err
	}
	menu, err := domain.DecodeMenu(id, body)
	if err != nil {
		slog.Warn("menu decode failed", slog.String("hallId", id), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", port.ErrParse, err)
	}
	return menu, nil
}

func (c *EateryHTTPClient) FetchMenuMeal(ctx context.Context, id string, meal domain.MealType) (*domain.Menu, error) {
	body, err := c.get(ctx, "menu meal", c.router.MenuMeal(id, meal))
	if err != nil {
		return nil, err
	}
	menu, err := domain.DecodeMealMenu(id, meal, body)
	if err != nil {
		slog.Warn("menu meal decode failed", slog.String("hallId", id), slog.String("meal", meal.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", port.ErrParse, err)
	}
	return menu, nil
}

func (c *EateryHTTPClient) get(ctx context.Context, resource, url string) ([]byte, error) {
	if timeout := c.rest.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Error("eatery request build failed", slog.String("resource", resource), slog.String("url", url), slog.Any("error", err))
		return nil, fmt.Errorf("%w: build %s request: %w", port.ErrNetwork, resource, err)
	}

	slog.Debug("eatery request", slog.String("resource", resource), slog.String("url", url))
	started := time.Now()

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Warn("eatery request error", slog.String("resource", resource), slog.String("url", url), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s request failed: %w", port.ErrNetwork, resource, err)
	}
	defer res.Body.Close()
	slog.Debug("eatery response", slog.String("resource", resource), slog.Int("status", res.StatusCode), slog.String("url", url), slog.Duration("elapsed", time.Since(started)))

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", port.ErrNotFound, resource, url)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		slog.Error("eatery unexpected status", slog.String("resource", resource), slog.Int("status", res.StatusCode), slog.String("url", url), slog.String("body", strings.TrimSpace(string(body))))
		return nil, fmt.Errorf("%w: unexpected %s response %d", port.ErrNetwork, resource, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		slog.Warn("eatery response read failed", slog.String("resource", resource), slog.String("url", url), slog.Any("error", err))
		return nil, fmt.Errorf("%w: read %s response: %w", port.ErrNetwork, resource, err)
	}
	slog.Log(ctx, logging.LevelTrace, "eatery response body", slog.String("url", url), slog.String("body", string(body)))
	return body, nil
}

var _ port.EateryFetcher = (*EateryHTTPClient)(nil)
