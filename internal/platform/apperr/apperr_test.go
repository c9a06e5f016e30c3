package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsAndKinds(t *testing.T) {
	v := Validation("bad %s", "input")
	if KindOf(v) != KindValidation || !IsValidation(v) {
		t.Error("expected validation kind")
	}
	if v.Error() != "validation: bad input" {
		t.Errorf("unexpected message: %q", v.Error())
	}
	if v.Message != "bad input" {
		t.Errorf("unexpected caller-facing message: %q", v.Message)
	}

	c := Conflict("slot taken")
	if KindOf(c) != KindConflict || !IsConflict(c) {
		t.Error("expected conflict kind")
	}

	n := NotFound("missing")
	if KindOf(n) != KindNotFound || !IsNotFound(n) {
		t.Error("expected not-found kind")
	}

	cause := errors.New("connection refused")
	d := Dependency(cause, "query failed")
	if KindOf(d) != KindDependency || !IsDependency(d) {
		t.Error("expected dependency kind")
	}
	if !errors.Is(d, cause) {
		t.Error("dependency error should unwrap to its cause")
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("inner"))
	if KindOf(err) != KindConflict {
		t.Error("KindOf should see through wrapping")
	}
	if !IsConflict(err) {
		t.Error("IsConflict should see through wrapping")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("v"), http.StatusBadRequest},
		{Conflict("c"), http.StatusConflict},
		{NotFound("n"), http.StatusNotFound},
		{Dependency(errors.New("x"), "d"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestToHTTPHidesInternalDetail(t *testing.T) {
	he := ToHTTP(Dependency(errors.New("password=hunter2"), "query failed"))
	if he.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("internal detail leaked: %v", he.Message)
	}

	he = ToHTTP(Conflict("slot taken"))
	if he.Code != http.StatusConflict || he.Message != "slot taken" {
		t.Errorf("conflict message should pass through, got %d %v", he.Code, he.Message)
	}
}
