package reminder

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/token"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminGroup := api.Group("/admin", token.RequireRole(token.RoleAdmin))
	adminGroup.POST("/send-upcoming-reminders", h.Send)
}

func (h *Handler) Send(c echo.Context) error {
	mode := c.QueryParam("mode")
	if mode == "" {
		mode = Mode24h
	}
	count, err := h.svc.Send(c.Request().Context(), mode)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "count": count})
}
