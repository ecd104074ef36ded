package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk/frontdesk/internal/platform/auth"
)

// MinPasswordLength is the shortest password accepted for new credentials.
const MinPasswordLength = 6

// User is a staff or admin account. PasswordHash never leaves the server.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// Identity is the token payload for u.
func (u *User) Identity() auth.Identity {
	return auth.Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func validRole(role string) bool {
	return role == auth.RoleAdmin || role == auth.RoleStaff
}

type CreateInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (in *CreateInput) validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = auth.RoleStaff
	}

	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalid)
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return fmt.Errorf("%w: a valid email is required", ErrInvalid)
	case len(in.Password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, MinPasswordLength)
	case !validRole(in.Role):
		return fmt.Errorf("%w: invalid role: %s", ErrInvalid, in.Role)
	}
	return nil
}

// Patch is a partial profile update. Role and IsActive are admin-only; the
// handler enforces that.
type Patch struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

func (p Patch) Privileged() bool {
	return p.Role != nil || p.IsActive != nil
}

func (p Patch) apply(u *User) error {
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email == "" || !strings.Contains(email, "@") {
			return fmt.Errorf("%w: a valid email is required", ErrInvalid)
		}
		u.Email = email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		if !validRole(*p.Role) {
			return fmt.Errorf("%w: invalid role: %s", ErrInvalid, *p.Role)
		}
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	return nil
}
