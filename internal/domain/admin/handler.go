// Package admin authenticates the clinic administrator account, which is
// configured rather than stored in the database.
package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/token"
)

type Handler struct {
	username string
	password string
	tokens   *token.Issuer
}

func NewHandler(username, password string, tokens *token.Issuer) *Handler {
	return &Handler{username: username, password: password, tokens: tokens}
}

func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.POST("/login/admin", h.Login)
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Username == "" || body.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(body.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(body.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin credentials")
	}

	tok, err := h.tokens.Issue(h.username, "Administrator", token.RoleAdmin)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusOK, map[string]string{"token": tok})
}
