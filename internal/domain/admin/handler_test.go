package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ruralcare/clinic/internal/platform/token"
)

func doLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login/admin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAdminLogin(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	h := NewHandler("admin", "changeme", issuer)

	rec := doLogin(t, h, `{"username":"admin","password":"changeme"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	claims, err := issuer.Verify(resp["token"])
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Role != token.RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, token.RoleAdmin)
	}
}

func TestAdminLoginRejected(t *testing.T) {
	h := NewHandler("admin", "changeme", token.NewIssuer("test-secret", time.Hour))

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"root","password":"changeme"}`,
	} {
		if rec := doLogin(t, h, body); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", body, rec.Code)
		}
	}

	if rec := doLogin(t, h, `{"username":"admin"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rec.Code)
	}
}
