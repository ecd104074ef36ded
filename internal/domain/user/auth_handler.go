package user

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/frontdesk/frontdesk/internal/platform/auth"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	svc         *Service
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
}

func NewAuthHandler(svc *Service, issuer *auth.TokenIssuer, revocations auth.RevocationStore) *AuthHandler {
	return &AuthHandler{svc: svc, issuer: issuer, revocations: revocations}
}

// RegisterRoutes mounts /auth. Login and register are listed as public
// paths in auth.AuthSkipper.
func (h *AuthHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/profile", h.Profile)
	g.POST("/logout", h.Logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type publicUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        publicUser `json:"user"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	u, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return mapError(err)
	}
	return h.respondWithToken(c, http.StatusOK, u)
}

// Register creates a staff account and logs it in. Self-registration can
// never grant the admin role.
func (h *AuthHandler) Register(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.Role = auth.RoleStaff
	u, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return h.respondWithToken(c, http.StatusCreated, u)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, u *User) error {
	token, _, err := h.issuer.Issue(u.Identity())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(status, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.issuer.TTL().Seconds()),
		User: publicUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
		},
	})
}

type profileResponse struct {
	UserID    int    `json:"userId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Profile echoes the principal carried by the caller's token.
func (h *AuthHandler) Profile(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	uid, _ := claims.UserID()
	return c.JSON(http.StatusOK, profileResponse{
		UserID:    uid,
		Username:  claims.Username,
		Role:      claims.Role,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	})
}

// Logout revokes the caller's token until it would have expired anyway.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if h.revocations != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.revocations.Revoke(c.Request().Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.svc.logger.Error().Err(err).Str("jti", claims.ID).Msg("token revocation failed")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "logout unavailable")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
