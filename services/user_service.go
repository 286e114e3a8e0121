package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"go.uber.org/zap"
)

var ErrProfileNameRequired = errors.New("profile name is required")

type UserService interface {
	SaveProfile(ctx context.Context, caller models.Identity, input SaveProfileInput) (*models.User, error)
	GetByID(ctx context.Context, uid string) (*models.User, error)
}

type SaveProfileInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	College string `json:"college"`
	Branch  string `json:"branch"`
	Year    int    `json:"year"`
}

type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// SaveProfile создает профиль при первом входе или обновляет его.
// Email всегда берется из токена, а не из тела запроса.
func (s *userService) SaveProfile(ctx context.Context, caller models.Identity, input SaveProfileInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(caller.Name)
	}
	if name == "" {
		return nil, ErrProfileNameRequired
	}

	user := &models.User{
		UID:     caller.UID,
		Name:    name,
		Email:   caller.Email,
		Phone:   strings.TrimSpace(input.Phone),
		College: strings.TrimSpace(input.College),
		Branch:  strings.TrimSpace(input.Branch),
		Year:    input.Year,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save profile for %s: %w", caller.UID, err)
	}

	saved, err := s.userRepo.GetByID(ctx, caller.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile for %s: %w", caller.UID, err)
	}
	return saved, nil
}

func (s *userService) GetByID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	return user, nil
}
