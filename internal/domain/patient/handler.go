package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/token"
	"github.com/ruralcare/clinic/pkg/pagination"
)

type Handler struct {
	svc    *Service
	tokens *token.Issuer
}

func NewHandler(svc *Service, tokens *token.Issuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes wires signup and login on the public group and the
// profile routes on the authenticated group.
func (h *Handler) RegisterRoutes(public, secured *echo.Group) {
	public.POST("/signup/patient", h.Signup)
	public.POST("/login/patient", h.Login)

	g := secured.Group("", token.RequireRole(token.RolePatient, token.RoleDoctor, token.RoleAdmin))
	g.GET("/patients/:patientId", h.Get)
	g.PUT("/patients/:patientId", h.Update)
	g.GET("/patients/:patientId/dashboard", h.Dashboard)

	adminGroup := secured.Group("/admin", token.RequireRole(token.RoleAdmin))
	adminGroup.GET("/patients", h.List)
}

type loginResponse struct {
	Token   string   `json:"token"`
	Patient *Patient `json:"patient"`
}

func (h *Handler) Signup(c echo.Context) error {
	var in SignupInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Signup(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	tok, err := h.tokens.Issue(p.PatientID, p.Name, token.RolePatient)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusCreated, loginResponse{Token: tok, Patient: p})
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		PatientID string `json:"patientId"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Login(c.Request().Context(), body.PatientID, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidLogin) {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidLogin.Error())
		}
		return apperr.ToHTTP(err)
	}
	tok, err := h.tokens.Issue(p.PatientID, p.Name, token.RolePatient)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: tok, Patient: p})
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), c.Param("patientId"), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	pts, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pts, total, p.Limit, p.Offset))
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}
