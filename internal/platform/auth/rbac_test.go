package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextAs(role string, userID int) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		claims := &Claims{Role: role}
		claims.Subject = strconv.Itoa(userID)
		req = req.WithContext(WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		roles []string
		code  int
	}{
		{"staff allowed", RoleStaff, []string{RoleStaff}, http.StatusOK},
		{"admin always passes", RoleAdmin, []string{RoleStaff}, http.StatusOK},
		{"staff denied admin route", RoleStaff, []string{RoleAdmin}, http.StatusForbidden},
		{"anonymous", "", []string{RoleStaff}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := contextAs(tt.role, 1)
			err := RequireRole(tt.roles...)(okHandler)(c)
			if tt.code == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Errorf("expected 200, got %d", rec.Code)
				}
				return
			}
			expectCode(t, err, tt.code)
		})
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	c, _ := contextAs(RoleStaff, 3)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := RequireSelfOrAdmin("id")(okHandler)(c); err != nil {
		t.Fatalf("expected own account to pass, got %v", err)
	}

	c, _ = contextAs(RoleStaff, 3)
	c.SetParamNames("id")
	c.SetParamValues("4")
	expectCode(t, RequireSelfOrAdmin("id")(okHandler)(c), http.StatusForbidden)

	c, _ = contextAs(RoleAdmin, 1)
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := RequireSelfOrAdmin("id")(okHandler)(c); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}

	c, _ = contextAs("", 0)
	c.SetParamNames("id")
	c.SetParamValues("4")
	expectCode(t, RequireSelfOrAdmin("id")(okHandler)(c), http.StatusUnauthorized)
}
