package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/trinetra/chatsim-server/internal/content"
	"github.com/trinetra/chatsim-server/internal/utils"
)

var (
	// ErrInvalidEmail is returned when the email address does not parse.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password is empty.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidName is returned when the display name is empty or too long.
	ErrInvalidName = errors.New("invalid name")
)

// RoleVisitor is the only role the mock backend hands out.
const RoleVisitor = "visitor"

const (
	demoUserID = "1"
	demoName   = "John Doe"
	avatarURL  = "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2"
)

// User is the visitor profile returned on login and signup.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// Service provides the mock authentication operations.
// Nothing is stored: every call echoes the submitted identity back.
type Service struct {
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(jwtConfig *JWTConfig) *Service {
	return &Service{jwtConfig: jwtConfig}
}

// Login accepts any well-formed email with a non-empty password and returns
// the demo visitor bound to that email, plus a signed token.
func (s *Service) Login(_ context.Context, email, password string) (User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, "", err
	}
	if password == "" {
		return User{}, "", ErrInvalidPassword
	}

	user := User{
		ID:     demoUserID,
		Name:   demoName,
		Email:  email,
		Role:   RoleVisitor,
		Avatar: avatarURL,
	}
	return s.issue(user)
}

// Signup returns a fresh visitor with the submitted name and email, plus a signed token.
func (s *Service) Signup(_ context.Context, name, email, password string) (User, string, error) {
	name = strings.TrimSpace(content.Sanitize(name))
	if err := content.ValidateDisplayName(name); err != nil {
		return User{}, "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, "", err
	}
	if password == "" {
		return User{}, "", ErrInvalidPassword
	}

	user := User{
		ID:     utils.NewID(),
		Name:   name,
		Email:  email,
		Role:   RoleVisitor,
		Avatar: avatarURL,
	}
	return s.issue(user)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

func (s *Service) issue(user User) (User, string, error) {
	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return User{}, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
