package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"livequiz/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// DefaultSessionTTL bounds how long a dropped client may resume its session
const DefaultSessionTTL = 12 * time.Hour

// AuthService issues operator tokens and player session resume tokens
type AuthService struct {
	hostUsername string
	hostPassword string
	jwtSecret    []byte
	sessionTTL   time.Duration
	now          func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(username, password, secret string, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		hostUsername: username,
		hostPassword: password,
		jwtSecret:    []byte(secret),
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

// Login validates operator credentials and returns a host token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.hostUsername || password != s.hostPassword {
		return nil, ErrInvalidCredentials
	}

	hostID := "host_" + uuid.New().String()[:8]

	claims := &model.HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
			Subject:  "host",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  tokenString,
		HostID: hostID,
	}, nil
}

// ValidateHostToken validates a host JWT and returns claims
func (s *AuthService) ValidateHostToken(tokenString string) (*model.HostClaims, error) {
	claims := &model.HostClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.HostID == "" || claims.Subject != "host" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateSessionToken signs a resume token for a WebSocket session id
func (s *AuthService) GenerateSessionToken(sessionID string) (string, error) {
	now := s.now()
	claims := &model.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			Subject:   "session",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken returns the session id carried by a resume token
func (s *AuthService) ValidateSessionToken(tokenString string) (string, error) {
	claims := &model.SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.SessionID == "" || claims.Subject != "session" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
