package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorDisabled   = errors.New("operator login is not configured")
)

// Service issues and validates control API tokens
type Service struct {
	jwtSecret    []byte
	tokenExp     time.Duration
	operator     string
	operatorHash string
	now          func() time.Time
}

// NewService creates a new authentication service from the server settings
func NewService(cfg config.Server) *Service {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}
	exp := cfg.JWTExpiry
	if exp <= 0 {
		exp = 12 * time.Hour
	}
	return &Service{
		jwtSecret:    []byte(secret),
		tokenExp:     exp,
		operator:     cfg.OperatorUser,
		operatorHash: cfg.OperatorPasswordHash,
		now:          time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// OperatorEnabled reports whether an operator password is configured
func (s *Service) OperatorEnabled() bool {
	return s.operatorHash != ""
}

// Login exchanges operator credentials for an operator token
func (s *Service) Login(req models.TokenRequest) (models.TokenResponse, error) {
	if !s.OperatorEnabled() {
		return models.TokenResponse{}, ErrOperatorDisabled
	}
	if req.Username != s.operator || !CheckPassword(req.Password, s.operatorHash) {
		return models.TokenResponse{}, ErrInvalidCredentials
	}
	return s.IssueToken(req.Username, models.RoleOperator)
}

// GuestToken issues a viewer token with a random subject
func (s *Service) GuestToken() (models.TokenResponse, error) {
	return s.IssueToken("guest-"+uuid.NewString(), models.RoleViewer)
}

// IssueToken signs a token for subject with role
func (s *Service) IssueToken(subject string, role models.Role) (models.TokenResponse, error) {
	if !models.IsValidRole(role) {
		return models.TokenResponse{}, fmt.Errorf("unknown role %q", role)
	}
	now := s.now()
	exp := now.Add(s.tokenExp).Unix()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"exp":  exp,
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return models.TokenResponse{Token: signed, ExpiresAt: exp, Role: role}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok || !models.IsValidRole(models.Role(roleStr)) {
		return nil, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		Subject: subject,
		Role:    models.Role(roleStr),
		Exp:     int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
