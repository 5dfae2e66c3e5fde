package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/utils"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (models.UserRole, error)
}

type LoginInput struct {
	Password string `json:"password"`
}

type authService struct {
	adminPasswordHash string
	logger            *slog.Logger
}

// NewAuthService принимает bcrypt-хеш пароля администратора.
func NewAuthService(adminPasswordHash string, logger *slog.Logger) AuthService {
	return &authService{
		adminPasswordHash: adminPasswordHash,
		logger:            logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (models.UserRole, error) {
	if input.Password == "" {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(input.Password, s.adminPasswordHash) {
		s.logger.WarnContext(ctx, "failed admin login attempt")
		return "", ErrInvalidCredentials
	}
	return models.RoleAdmin, nil
}
