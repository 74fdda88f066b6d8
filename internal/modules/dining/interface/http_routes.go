package transport

import (
	"github.com/labstack/echo/v4"

	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/infrastructure"
)

// RegisterRoutes mounts the dining REST and WebSocket endpoints. guard wraps the refresh routes
// and may be nil.
func RegisterRoutes(e *echo.Echo, manager *usecase.DataManager, hub *infrastructure.Hub, guard echo.MiddlewareFunc) {
	h := NewDiningHandler(manager)
	var guards []echo.MiddlewareFunc
	if guard != nil {
		guards = append(guards, guard)
	}

	e.GET("/dining-halls", h.ListDiningHalls)
	e.GET("/dining-halls/:id", h.GetDiningHall)
	e.GET("/dining-halls/:id/hours/:start/:end", h.GetHours)
	e.GET("/menus/:id", h.GetMenu)
	e.GET("/menus/:id/:meal", h.GetMenuMeal)
	e.POST("/dining-halls/refresh", h.RefreshAll, guards...)
	e.POST("/dining-halls/:id/refresh", h.RefreshOne, guards...)

	e.GET("/ws/dining-halls", NewDiningHallsWebsocketHandler(hub, manager))
}
