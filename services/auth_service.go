package services

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAdminCode = errors.New("invalid admin code")

// AuthService turns the shared admin code into a short-lived signed token.
// The code is only ever held as a bcrypt hash after startup, and every
// admin request carries the token instead of the code.
type AuthService struct {
	codeHash  []byte
	jwtSecret string
}

func NewAuthService(adminCode, jwtSecret string) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminCode), bcrypt.DefaultCost)
	if err != nil {
		// Only reachable with an absurdly long code; fail loudly at startup.
		log.Fatal("Failed to hash admin code:", err)
	}
	return &AuthService{
		codeHash:  hash,
		jwtSecret: jwtSecret,
	}
}

type UnlockRequest struct {
	Code string `json:"code" binding:"required"`
}

// Unlock checks the submitted code and issues a 12 hour admin token.
func (s *AuthService) Unlock(code string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.codeHash, []byte(code)); err != nil {
		return "", ErrInvalidAdminCode
	}

	claims := jwt.MapClaims{
		"is_admin": true,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(12 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signed, nil
}
