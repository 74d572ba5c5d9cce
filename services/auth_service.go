package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-api/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the only role issued today.
const RoleAdmin = "admin"

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService authenticates the configured admin account and signs tokens.
type AuthService struct {
	secret       []byte
	expire       time.Duration
	adminEmail   string
	passwordHash string
	now          func() time.Time
}

func NewAuthService(secret string, expireHours int, adminEmail, passwordHash string) *AuthService {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &AuthService{
		secret:       []byte(secret),
		expire:       time.Duration(expireHours) * time.Hour,
		adminEmail:   utils.NormalizeEmail(adminEmail),
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(email, password string) (string, *Claims, error) {
	if s.adminEmail == "" || s.passwordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if utils.NormalizeEmail(email) != s.adminEmail || !CheckPasswordHash(password, s.passwordHash) {
		return "", nil, ErrInvalidCredentials
	}
	return s.IssueToken(s.adminEmail, RoleAdmin)
}

// IssueToken signs an HS256 token for email and role.
func (s *AuthService) IssueToken(email, role string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseToken verifies signature and expiry.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// HashPassword hashes password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
