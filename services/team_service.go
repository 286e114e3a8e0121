package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josvita0323/devhost-2025-sub000/live"
	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RegistrationFeed получает уведомления об изменениях команд.
// Реализуется live.Hub; в тестах подменяется заглушкой.
type RegistrationFeed interface {
	BroadcastToRoom(roomID string, message interface{})
}

const (
	feedTeamCreated   = "TEAM_CREATED"
	feedTeamUpdated   = "TEAM_UPDATED"
	feedTeamPaid      = "TEAM_PAID"
	feedTeamDisbanded = "TEAM_DISBANDED"
)

type CreateTeamInput struct {
	Name string `json:"name"`
}

type JoinTeamInput struct {
	LeaderEmail string `json:"leader_email"`
	TeamID      string `json:"team_id"`
}

type TeamService interface {
	Create(ctx context.Context, eventID string, caller models.Identity, input CreateTeamInput) (*models.Team, error)
	Join(ctx context.Context, eventID string, caller models.Identity, input JoinTeamInput) (*models.Team, error)
	Leave(ctx context.Context, eventID string, caller models.Identity) error
	RemoveMember(ctx context.Context, eventID, teamID string, caller models.Identity, memberRef string) (*models.Team, error)
	SetDriveLink(ctx context.Context, eventID string, caller models.Identity, link string) (*models.Team, error)
	Finalize(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error)
	Disband(ctx context.Context, eventID, teamID string, caller models.Identity) error
	GetMine(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error)
	GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error)
	GetForUser(ctx context.Context, caller models.Identity, explicitTeamID string) (*models.Team, error)
	List(ctx context.Context, eventID string) ([]models.Team, error)
	MarkPaid(ctx context.Context, eventID, teamID string) (*models.Team, error)
}

type teamService struct {
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	eventRepo       repositories.EventRepository
	feed            RegistrationFeed
	logger          *zap.Logger
	flagshipEventID string
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	feed RegistrationFeed,
	logger *zap.Logger,
	flagshipEventID string,
) TeamService {
	return &teamService{
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		feed:            feed,
		logger:          logger,
		flagshipEventID: flagshipEventID,
	}
}

func feedRoom(eventID string) string {
	return "event_" + eventID
}

func (s *teamService) broadcast(eventID, msgType string, payload interface{}) {
	if s.feed == nil {
		return
	}
	s.feed.BroadcastToRoom(feedRoom(eventID), live.FeedMessage{
		Type:    msgType,
		Payload: payload,
		EventID: eventID,
	})
}

// currentTeam возвращает команду, в которой состоит caller (по uid или email),
// или ErrTeamNotFound.
func (s *teamService) currentTeam(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error) {
	team, err := s.teamRepo.GetByMemberUID(ctx, eventID, caller.UID)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, err
	}
	team, err = s.teamRepo.GetByMemberEmail(ctx, eventID, caller.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) isFlagship(eventID string) bool {
	return eventID == s.flagshipEventID
}

// stampTeamID поддерживает обратную ссылку user.team_id для флагманского
// события. Отсутствие профиля не фатально: он мог еще не быть сохранен.
func (s *teamService) stampTeamID(ctx context.Context, eventID, uid, teamID string) {
	if !s.isFlagship(eventID) {
		return
	}
	if err := s.userRepo.SetTeamID(ctx, uid, teamID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.logger.Warn("skipping team_id stamp, no user profile", zap.String("uid", uid))
			return
		}
		s.logger.Error("failed to stamp user team_id", zap.String("uid", uid), zap.Error(err))
	}
}

func (s *teamService) Create(ctx context.Context, eventID string, caller models.Identity, input CreateTeamInput) (*models.Team, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}

	existing, err := s.currentTeam(ctx, eventID, caller)
	if err != nil && !errors.Is(err, ErrTeamNotFound) {
		return nil, err
	}
	if existing != nil {
		// Повторный create от лидера — идемпотентный, команда не трогается.
		if s.isFlagship(eventID) && existing.LeaderUID == caller.UID {
			return existing, nil
		}
		return nil, ErrAlreadyInTeam
	}

	teamID := uuid.NewString()
	if s.isFlagship(eventID) {
		// Флагманские команды живут под uid лидера.
		teamID = caller.UID
	}

	team := &models.Team{
		ID:          teamID,
		EventID:     event.ID,
		Name:        input.Name,
		LeaderUID:   caller.UID,
		LeaderEmail: caller.Email,
		LeaderName:  caller.Name,
		Members: []models.TeamMember{
			{UID: caller.UID, Name: caller.Name, Email: caller.Email},
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamConflict) {
			// Гонка двух create от одного лидера: возвращаем победителя.
			if existing, getErr := s.teamRepo.GetByID(ctx, eventID, teamID); getErr == nil {
				return existing, nil
			}
			return nil, ErrAlreadyInTeam
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.stampTeamID(ctx, eventID, caller.UID, team.ID)
	s.broadcast(eventID, feedTeamCreated, team)
	return team, nil
}

func (s *teamService) Join(ctx context.Context, eventID string, caller models.Identity, input JoinTeamInput) (*models.Team, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}

	if existing, err := s.currentTeam(ctx, eventID, caller); err == nil {
		if existing.ID == input.TeamID || existing.LeaderEmail == input.LeaderEmail {
			// Повторный join в свою же команду, ничего не меняем.
			return existing, nil
		}
		return nil, ErrAlreadyInTeam
	} else if !errors.Is(err, ErrTeamNotFound) {
		return nil, err
	}

	var team *models.Team
	switch {
	case input.TeamID != "":
		team, err = s.teamRepo.GetByID(ctx, eventID, input.TeamID)
	case input.LeaderEmail != "":
		team, err = s.teamRepo.GetByLeaderEmail(ctx, eventID, input.LeaderEmail)
	default:
		return nil, ErrTeamNotFound
	}
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to resolve target team: %w", err)
	}

	if team.Finalized {
		return nil, ErrTeamLocked
	}
	if len(team.Members) >= event.MaxTeamSize {
		return nil, ErrTeamFull
	}

	member := models.TeamMember{UID: caller.UID, Name: caller.Name, Email: caller.Email}
	err = s.teamRepo.AddMember(ctx, eventID, team.ID, member, event.MaxTeamSize)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamUpdateConflict) {
			return s.diagnoseJoinConflict(ctx, eventID, team.ID, caller, event.MaxTeamSize)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.stampTeamID(ctx, eventID, caller.UID, team.ID)

	updated, err := s.teamRepo.GetByID(ctx, eventID, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team after join: %w", err)
	}
	s.broadcast(eventID, feedTeamUpdated, updated)
	return updated, nil
}

// diagnoseJoinConflict перечитывает команду после несработавшего условного
// апдейта и возвращает точную причину отказа. Если вызывающий уже в составе
// (параллельный join успел раньше), это не ошибка: возвращаем команду.
func (s *teamService) diagnoseJoinConflict(ctx context.Context, eventID, teamID string, caller models.Identity, maxSize int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	switch {
	case team.HasMemberUID(caller.UID):
		return team, nil // кто-то успел добавить нас раньше, join идемпотентен
	case team.Finalized:
		return nil, ErrTeamLocked
	case len(team.Members) >= maxSize:
		return nil, ErrTeamFull
	default:
		return nil, fmt.Errorf("join rejected for team %s: %w", teamID, repositories.ErrTeamUpdateConflict)
	}
}

func (s *teamService) Leave(ctx context.Context, eventID string, caller models.Identity) error {
	team, err := s.currentTeam(ctx, eventID, caller)
	if err != nil {
		return err
	}
	if team.LeaderUID == caller.UID {
		return ErrLeaderCannotLeave
	}
	if team.Finalized {
		return ErrTeamLocked
	}

	if err := s.teamRepo.RemoveMemberByUID(ctx, eventID, team.ID, caller.UID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberNotFound):
			return ErrMemberNotFound
		case errors.Is(err, repositories.ErrTeamUpdateConflict):
			return ErrTeamLocked
		default:
			return fmt.Errorf("failed to leave team: %w", err)
		}
	}

	s.stampTeamID(ctx, eventID, caller.UID, "")

	if updated, getErr := s.teamRepo.GetByID(ctx, eventID, team.ID); getErr == nil {
		s.broadcast(eventID, feedTeamUpdated, updated)
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, eventID, teamID string, caller models.Identity, memberRef string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}

	if team.LeaderUID != caller.UID && caller.Role != models.RoleAdmin {
		return nil, ErrLeaderActionForbidden
	}
	if team.Finalized {
		return nil, ErrTeamLocked
	}

	// Участника ищем по uid или email, никогда по кортежу {id, name}.
	var member *models.TeamMember
	for i := range team.Members {
		if team.Members[i].UID == memberRef || team.Members[i].Email == memberRef {
			member = &team.Members[i]
			break
		}
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.UID == team.LeaderUID {
		return nil, ErrCannotRemoveLeader
	}

	if err := s.teamRepo.RemoveMemberByUID(ctx, eventID, teamID, member.UID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberNotFound):
			return nil, ErrMemberNotFound
		case errors.Is(err, repositories.ErrTeamUpdateConflict):
			return nil, ErrTeamLocked
		default:
			return nil, fmt.Errorf("failed to remove member: %w", err)
		}
	}

	s.stampTeamID(ctx, eventID, member.UID, "")

	updated, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team after removal: %w", err)
	}
	s.broadcast(eventID, feedTeamUpdated, updated)
	return updated, nil
}

func (s *teamService) SetDriveLink(ctx context.Context, eventID string, caller models.Identity, link string) (*models.Team, error) {
	team, err := s.currentTeam(ctx, eventID, caller)
	if err != nil {
		return nil, err
	}
	if team.LeaderUID != caller.UID {
		return nil, ErrLeaderActionForbidden
	}
	if team.Finalized {
		return nil, ErrTeamLocked
	}

	if err := s.teamRepo.SetDriveLink(ctx, eventID, team.ID, link); err != nil {
		if errors.Is(err, repositories.ErrTeamUpdateConflict) {
			return nil, ErrTeamLocked
		}
		return nil, fmt.Errorf("failed to set drive link: %w", err)
	}

	team.DriveLink = link
	return team, nil
}

func (s *teamService) Finalize(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}

	team, err := s.currentTeam(ctx, eventID, caller)
	if err != nil {
		return nil, err
	}
	if team.LeaderUID != caller.UID {
		return nil, ErrLeaderActionForbidden
	}
	if team.Finalized {
		return nil, ErrTeamLocked
	}

	size := len(team.Members)
	if size < event.MinTeamSize || size > event.MaxTeamSize {
		return nil, ErrFinalizeRejected
	}
	if event.RequiresDriveLink && team.DriveLink == "" {
		return nil, ErrFinalizeRejected
	}
	if event.RequiresPayment && !team.PaymentDone {
		// Платные события финализируются через подтверждение оплаты.
		return nil, ErrFinalizeRejected
	}

	err = s.teamRepo.SetFinalized(ctx, eventID, team.ID, event.MinTeamSize, event.MaxTeamSize, event.RequiresDriveLink)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamUpdateConflict) {
			return nil, ErrFinalizeRejected
		}
		return nil, fmt.Errorf("failed to finalize team: %w", err)
	}

	team.Finalized = true
	s.broadcast(eventID, feedTeamUpdated, team)
	s.logger.Info("team finalized",
		zap.String("event_id", eventID),
		zap.String("team_id", team.ID),
		zap.Int("members", size))
	return team, nil
}

func (s *teamService) Disband(ctx context.Context, eventID, teamID string, caller models.Identity) error {
	team, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %s: %w", teamID, err)
	}

	if team.LeaderUID != caller.UID && caller.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	// Оплаченную команду не расформировываем, иначе осиротеет запись платежа.
	if team.PaymentDone {
		return ErrTeamAlreadyPaid
	}

	if err := s.teamRepo.Delete(ctx, eventID, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if s.isFlagship(eventID) {
		g, gctx := errgroup.WithContext(ctx)
		for _, m := range team.Members {
			uid := m.UID
			g.Go(func() error {
				err := s.userRepo.SetTeamID(gctx, uid, "")
				if errors.Is(err, repositories.ErrUserNotFound) {
					return nil
				}
				return err
			})
		}
		if err := g.Wait(); err != nil {
			s.logger.Error("failed to clear member team refs after disband",
				zap.String("team_id", teamID), zap.Error(err))
		}
	}

	s.broadcast(eventID, feedTeamDisbanded, map[string]string{"team_id": teamID})
	return nil
}

// GetMine возвращает (nil, nil), если команды нет: каждый авторизованный
// пользователь вправе спросить про себя.
func (s *teamService) GetMine(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error) {
	team, err := s.currentTeam(ctx, eventID, caller)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// GetForUser обслуживает легаси-поверхность /team/get: команда либо по
// явному id, либо через обратную ссылку user.team_id.
func (s *teamService) GetForUser(ctx context.Context, caller models.Identity, explicitTeamID string) (*models.Team, error) {
	teamID := explicitTeamID
	if teamID == "" {
		user, err := s.userRepo.GetByID(ctx, caller.UID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		if user.TeamID == "" {
			return nil, ErrTeamNotFound
		}
		teamID = user.TeamID
	}
	return s.GetByID(ctx, s.flagshipEventID, teamID)
}

func (s *teamService) List(ctx context.Context, eventID string) ([]models.Team, error) {
	return s.teamRepo.ListByEvent(ctx, eventID)
}

// MarkPaid — административный обход платежного шлюза: paymentDone и
// finalized проставляются безусловно.
func (s *teamService) MarkPaid(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	if err := s.teamRepo.SetPaid(ctx, eventID, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to mark team paid: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, eventID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team after payment: %w", err)
	}
	s.broadcast(eventID, feedTeamPaid, team)
	return team, nil
}
