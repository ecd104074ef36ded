package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/frontdesk/frontdesk/internal/platform/auth"
)

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d", code, he.Code)
	}
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// as attaches a caller to the request, as the JWT middleware would.
func as(req *http.Request, id int, role string) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id),
			ID:        "jti-" + strconv.Itoa(id),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "user" + strconv.Itoa(id),
		Role:     role,
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestHandler_Create(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()
	rec := httptest.NewRecorder()
	body := `{"username":"nurse","email":"nurse@clinic.com","password":"nurse123","firstName":"N","lastName":"R"}`
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Errorf("password leaked in response: %s", rec.Body.String())
	}
}

func TestHandler_Create_Conflict(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()
	body := `{"username":"admin","email":"x@clinic.com","password":"secret12"}`
	c := e.NewContext(jsonRequest(http.MethodPost, body), httptest.NewRecorder())

	expectHTTPError(t, h.Create(c), http.StatusConflict)
}

func TestHandler_Profile(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(as(httptest.NewRequest(http.MethodGet, "/", nil), 2, auth.RoleStaff), rec)

	if err := h.Profile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var u User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Username != "frontdesk" {
		t.Errorf("expected frontdesk, got %q", u.Username)
	}
}

func TestHandler_Update_PrivilegedFieldsNeedAdmin(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()

	c := e.NewContext(as(jsonRequest(http.MethodPatch, `{"role":"admin"}`), 2, auth.RoleStaff), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("2")
	expectHTTPError(t, h.Update(c), http.StatusForbidden)

	rec := httptest.NewRecorder()
	c = e.NewContext(as(jsonRequest(http.MethodPatch, `{"isActive":false}`), 1, auth.RoleAdmin), rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"isActive":false`) {
		t.Errorf("expected deactivated user, got %s", rec.Body.String())
	}
}

func TestHandler_UpdatePassword_OwnAccountOnly(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()
	body := `{"currentPassword":"desk1234","newPassword":"changed1"}`

	c := e.NewContext(as(jsonRequest(http.MethodPatch, body), 1, auth.RoleAdmin), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("2")
	expectHTTPError(t, h.UpdatePassword(c), http.StatusForbidden)

	rec := httptest.NewRecorder()
	c = e.NewContext(as(jsonRequest(http.MethodPatch, body), 2, auth.RoleStaff), rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Delete_Admin(t *testing.T) {
	h := NewHandler(newTestService(t))
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")

	expectHTTPError(t, h.Delete(c), http.StatusConflict)
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *auth.MemoryRevocationStore) {
	t.Helper()
	store := auth.NewMemoryRevocationStore(0)
	issuer := auth.NewTokenIssuer([]byte("test-secret-0123456789"), time.Hour)
	return NewAuthHandler(newTestService(t), issuer, store), store
}

func TestAuthHandler_Login(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"username":"admin","password":"admin123"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresIn != 3600 {
		t.Errorf("unexpected token response: %+v", resp)
	}
	if resp.User.ID != 1 || resp.User.Role != auth.RoleAdmin {
		t.Errorf("unexpected user: %+v", resp.User)
	}

	claims, err := h.issuer.Parse(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "admin" || claims.Subject != "1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	e := echo.New()
	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"ghost","password":"admin123"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":""}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(jsonRequest(http.MethodPost, tt.body), httptest.NewRecorder())
			expectHTTPError(t, h.Login(c), tt.code)
		})
	}
}

func TestAuthHandler_Register_ForcesStaffRole(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	e := echo.New()
	rec := httptest.NewRecorder()
	body := `{"username":"sneaky","email":"s@clinic.com","password":"secret12","role":"admin"}`
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.User.Role != auth.RoleStaff {
		t.Errorf("expected staff role, got %q", resp.User.Role)
	}
}

func TestAuthHandler_ProfileAndLogout(t *testing.T) {
	h, store := newTestAuthHandler(t)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(as(httptest.NewRequest(http.MethodPost, "/", nil), 2, auth.RoleStaff), rec)
	if err := h.Profile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"userId":2`) {
		t.Errorf("unexpected profile: %s", rec.Body.String())
	}

	c = e.NewContext(as(httptest.NewRequest(http.MethodPost, "/", nil), 2, auth.RoleStaff), httptest.NewRecorder())
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	revoked, err := store.IsRevoked(context.Background(), "jti-2")
	if err != nil || !revoked {
		t.Errorf("expected jti-2 revoked, got %v (%v)", revoked, err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	expectHTTPError(t, h.Logout(c), http.StatusUnauthorized)
}
