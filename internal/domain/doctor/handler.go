package doctor

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/token"
)

type Handler struct {
	svc    *Service
	tokens *token.Issuer
}

func NewHandler(svc *Service, tokens *token.Issuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes wires login on the public group, the doctor directory
// and dashboards on the authenticated group, and doctor CRUD on the
// admin-only group.
func (h *Handler) RegisterRoutes(public, secured *echo.Group) {
	public.POST("/login/doctor", h.Login)

	g := secured.Group("", token.RequireRole(token.RolePatient, token.RoleDoctor, token.RoleAdmin))
	g.GET("/doctors", h.List)
	g.GET("/doctors/:doctorId", h.Get)

	docGroup := secured.Group("", token.RequireRole(token.RoleDoctor, token.RoleAdmin))
	docGroup.GET("/doctors/:doctorId/dashboard", h.Dashboard)

	adminGroup := secured.Group("/admin", token.RequireRole(token.RoleAdmin))
	adminGroup.POST("/doctors", h.Create)
	adminGroup.GET("/doctors", h.List)
	adminGroup.DELETE("/doctors/:doctorId", h.Delete)
}

type loginResponse struct {
	Token  string  `json:"token"`
	Doctor *Doctor `json:"doctor"`
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Login(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidLogin) {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidLogin.Error())
		}
		return apperr.ToHTTP(err)
	}
	tok, err := h.tokens.Issue(d.DoctorID, d.Name, token.RoleDoctor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: tok, Doctor: d})
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) List(c echo.Context) error {
	docs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *Handler) Get(c echo.Context) error {
	d, err := h.svc.Get(c.Request().Context(), c.Param("doctorId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("doctorId")); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), c.Param("doctorId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}
