package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"github.com/josvita0323/devhost-2025-sub000/storage"
	"go.uber.org/zap"
)

var (
	ErrPosterInvalidContentType = errors.New("poster must be a png, jpeg or webp image")
	ErrPosterStorageUnavailable = errors.New("poster storage is not configured")
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	UploadPoster(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Event, error)
}

type CreateEventInput struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	MinTeamSize       int    `json:"min_team_size"`
	MaxTeamSize       int    `json:"max_team_size"`
	RequiresDriveLink bool   `json:"requires_drive_link"`
	RequiresPayment   bool   `json:"requires_payment"`
	Fee               int64  `json:"fee"`
}

type UpdateEventInput struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	MinTeamSize       *int    `json:"min_team_size"`
	MaxTeamSize       *int    `json:"max_team_size"`
	RequiresDriveLink *bool   `json:"requires_drive_link"`
	RequiresPayment   *bool   `json:"requires_payment"`
	Fee               *int64  `json:"fee"`
}

type eventService struct {
	eventRepo repositories.EventRepository
	teamRepo  repositories.TeamRepository
	uploader  storage.FileUploader
	logger    *zap.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *zap.Logger,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		teamRepo:  teamRepo,
		uploader:  uploader,
		logger:    logger,
	}
}

func validateSizeBounds(min, max int) error {
	if min < 1 || max < min {
		return ErrEventSizeInvalid
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}
	if err := validateSizeBounds(input.MinTeamSize, input.MaxTeamSize); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = slugify(title)
	}

	event := &models.Event{
		ID:                id,
		Title:             title,
		Description:       input.Description,
		MinTeamSize:       input.MinTeamSize,
		MaxTeamSize:       input.MaxTeamSize,
		RequiresDriveLink: input.RequiresDriveLink,
		RequiresPayment:   input.RequiresPayment,
		Fee:               input.Fee,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventIDConflict) {
			return nil, ErrEventIDConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("event created", zap.String("event_id", event.ID))
	s.populatePosterURL(event)
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	s.populatePosterURL(event)
	return event, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range events {
		s.populatePosterURL(&events[i])
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.MinTeamSize != nil {
		event.MinTeamSize = *input.MinTeamSize
	}
	if input.MaxTeamSize != nil {
		event.MaxTeamSize = *input.MaxTeamSize
	}
	if err := validateSizeBounds(event.MinTeamSize, event.MaxTeamSize); err != nil {
		return nil, err
	}
	if input.RequiresDriveLink != nil {
		event.RequiresDriveLink = *input.RequiresDriveLink
	}
	if input.RequiresPayment != nil {
		event.RequiresPayment = *input.RequiresPayment
	}
	if input.Fee != nil {
		event.Fee = *input.Fee
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}

	s.populatePosterURL(event)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	count, err := s.teamRepo.CountByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count teams for event %s: %w", id, err)
	}
	if count > 0 {
		return ErrEventHasTeams
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event %s: %w", id, err)
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	if event.PosterKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *event.PosterKey); err != nil {
			s.logger.Warn("failed to delete event poster from storage",
				zap.String("event_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *eventService) UploadPoster(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch contentType {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, ErrPosterInvalidContentType
	}

	if s.uploader == nil {
		return nil, ErrPosterStorageUnavailable
	}

	key := fmt.Sprintf("events/%s/poster", event.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload poster for event %s: %w", id, err)
	}

	if err := s.eventRepo.SetPosterKey(ctx, event.ID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store poster key for event %s: %w", id, err)
	}

	event.PosterKey = &result.Key
	s.populatePosterURL(event)
	return event, nil
}

func (s *eventService) populatePosterURL(event *models.Event) {
	if event.PosterKey != nil && *event.PosterKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*event.PosterKey)
		event.PosterURL = &url
	}
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, slug)
}
