package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminRole is the role claim carried by admin tokens.
const AdminRole = "admin"

const tokenTTL = 24 * time.Hour

// AuthService exchanges the admin password for a signed token.
type AuthService struct {
	secret       []byte
	passwordHash []byte
	now          func() time.Time
}

func NewAuthService(secret, passwordHash string) *AuthService {
	return &AuthService{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}
}

// Enabled reports whether admin routes are protected at all.
func (a *AuthService) Enabled() bool {
	return len(a.secret) > 0
}

// Login checks password against the bcrypt hash and returns an HS256 token.
func (a *AuthService) Login(password string) (string, error) {
	if !a.Enabled() || len(a.passwordHash) == 0 {
		return "", ErrAuthDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := a.now()
	claims := jwt.MapClaims{
		"role": AdminRole,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(a.secret)
}
