package usecase

import (
	"garage-reservation/internal/domain/user"
	"garage-reservation/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (*AuthenticatedUser, error)
}

type AuthenticatedUser struct {
	ID        uuid.UUID
	Username  string
	Role      user.Role
	StudentID string
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (*AuthenticatedUser, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, err
	}

	return &AuthenticatedUser{
		ID:        claims.UserID,
		Username:  claims.Username,
		Role:      role,
		StudentID: claims.StudentID,
	}, nil
}
