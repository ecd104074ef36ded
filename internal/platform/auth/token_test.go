package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSigningKey, time.Hour)
}

var testIdentity = Identity{
	UserID:    7,
	Username:  "jdoe",
	Role:      RoleStaff,
	Email:     "jdoe@clinic.test",
	FirstName: "Jane",
	LastName:  "Doe",
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := newTestIssuer()
	tok, issued, err := ti.Issue(testIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued.ID == "" {
		t.Error("expected a jti")
	}

	claims, err := ti.Parse(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uid, _ := claims.UserID()
	if uid != 7 || claims.Username != "jdoe" || claims.Role != RoleStaff || claims.FirstName != "Jane" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("expected 1h lifetime, got %v", got)
	}
}

func TestTokenIssuer_UniqueJTI(t *testing.T) {
	ti := newTestIssuer()
	_, a, _ := ti.Issue(testIdentity)
	_, b, _ := ti.Issue(testIdentity)
	if a.ID == b.ID {
		t.Error("expected distinct jti per token")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := newTestIssuer()
	ti.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := ti.Issue(testIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ti.now = time.Now
	if _, err := ti.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_WrongKey(t *testing.T) {
	tok, _, _ := NewTokenIssuer([]byte("another-secret-of-enough-length"), time.Hour).Issue(testIdentity)
	if _, err := newTestIssuer().Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestIssuer().Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsNonNumericSubject(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if _, err := newTestIssuer().Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "admin123" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPassword(hash, "admin123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "admin124") {
		t.Error("expected wrong password to fail")
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
