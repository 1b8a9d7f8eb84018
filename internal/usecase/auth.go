package usecase

import (
	"context"

	"garage-reservation/internal/domain/user"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/pkg/jwt"
	"garage-reservation/internal/pkg/password"
)

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

type LoginResult struct {
	Token     string
	Username  string
	Role      string
	StudentID string
}

type AuthUseCase interface {
	Login(ctx context.Context, username, plainPassword string) (*LoginResult, error)
}

type authUseCaseImpl struct {
	users      UserRepository
	jwtService *jwt.Service
}

func NewAuthUseCase(users UserRepository, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		users:      users,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, username, plainPassword string) (*LoginResult, error) {
	u, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		if infra.IsKind(err, infra.KindUnavailable) {
			return nil, errs.Mark(err, errs.ErrStorageUnavailable)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := password.ComparePassword(u.PasswordHash(), plainPassword); err != nil {
		return nil, errs.ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(u)
	if err != nil {
		return nil, errs.Wrap(err, "failed to generate token")
	}

	return &LoginResult{
		Token:     token,
		Username:  u.Username(),
		Role:      u.Role().String(),
		StudentID: u.StudentID(),
	}, nil
}
