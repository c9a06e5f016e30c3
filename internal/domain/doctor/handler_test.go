package doctor

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

func doRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func newTestHandler(repo *mockRepo) *Handler {
	return NewHandler(newTestService(repo), token.NewIssuer("test-secret", time.Hour))
}

func TestHandlerLogin(t *testing.T) {
	repo := newMockRepo()
	seedDemoDoctors(repo)
	h := newTestHandler(repo)

	rec := doRequest(t, h.Login, http.MethodPost, "/api/login/doctor",
		`{"username":"alan","password":"password1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.Doctor == nil || resp.Doctor.DoctorID != "D001" {
		t.Errorf("unexpected login response: %s", rec.Body.String())
	}

	rec = doRequest(t, h.Login, http.MethodPost, "/api/login/doctor",
		`{"username":"alan","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}

	rec = doRequest(t, h.Login, http.MethodPost, "/api/login/doctor",
		`{"username":"nobody","password":"pw"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown username: expected 401, got %d", rec.Code)
	}
}

func TestHandlerCreate(t *testing.T) {
	repo := newMockRepo()
	seedDemoDoctors(repo)
	h := newTestHandler(repo)

	rec := doRequest(t, h.Create, http.MethodPost, "/api/admin/doctors",
		`{"name":"Dr. New","username":"new","password":"pw","specialization":"Cardiology"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var d Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.DoctorID != IDFloor {
		t.Errorf("doctor id = %q, want %q", d.DoctorID, IDFloor)
	}

	rec = doRequest(t, h.Create, http.MethodPost, "/api/admin/doctors",
		`{"name":"Dr. Impostor","username":"alan","password":"pw"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("taken username: expected 409, got %d", rec.Code)
	}

	rec = doRequest(t, h.Create, http.MethodPost, "/api/admin/doctors",
		`{"name":"Dr. Incomplete"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields: expected 400, got %d", rec.Code)
	}
}

func TestHandlerGetListDelete(t *testing.T) {
	repo := newMockRepo()
	seedDemoDoctors(repo)
	h := newTestHandler(repo)

	rec := doRequest(t, h.List, http.MethodGet, "/api/doctors", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var docs []*Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 5 {
		t.Errorf("expected 5 doctors, got %d", len(docs))
	}

	rec = doRequest(t, h.Get, http.MethodGet, "/api/doctors/D001", "",
		map[string]string{"doctorId": "D001"})
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, h.Delete, http.MethodDelete, "/api/admin/doctors/D002", "",
		map[string]string{"doctorId": "D002"})
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, h.Get, http.MethodGet, "/api/doctors/D002", "",
		map[string]string{"doctorId": "D002"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", rec.Code)
	}
}
