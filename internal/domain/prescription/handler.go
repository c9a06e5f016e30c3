package prescription

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/token"
)

type Handler struct {
	svc       *Service
	uploadDir string
}

func NewHandler(svc *Service, uploadDir string) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", token.RequireRole(token.RolePatient, token.RoleDoctor, token.RoleAdmin))
	g.GET("/prescriptions/by-appointment/:appointmentId", h.GetByAppointment)
	g.GET("/prescriptions/by-patient/:patientId", h.ListByPatient)
	g.POST("/prescriptions/upload", h.Upload)

	docGroup := api.Group("", token.RequireRole(token.RoleDoctor, token.RoleAdmin))
	docGroup.POST("/prescriptions", h.Save)
}

func (h *Handler) Save(c echo.Context) error {
	var in SaveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Save(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	p, err := h.svc.GetByAppointment(c.Request().Context(), c.Param("appointmentId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	list, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, list)
}

// Upload accepts a multipart prescription scan, stores the file under the
// upload directory with a timestamped name, and records it.
func (h *Handler) Upload(c echo.Context) error {
	patientID := c.FormValue("patientId")
	fileHeader, err := c.FormFile("file")
	if err != nil || patientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file or patientId")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read upload")
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not store upload")
	}
	stored := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fileHeader.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, stored))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not store upload")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not store upload")
	}

	p, err := h.svc.Upload(c.Request().Context(), patientID, filepath.ToSlash(filepath.Join("uploads", stored)))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}
