package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrAlreadyInTeam      = errors.New("user is already in a team for this event")
	ErrTeamFull           = errors.New("team is already full")
	ErrTeamLocked         = errors.New("team registration is locked")
	ErrTeamAlreadyPaid    = errors.New("team payment is already recorded")
	ErrFinalizeRejected   = errors.New("team does not satisfy finalization requirements")
	ErrLeaderCannotLeave  = errors.New("team leader cannot leave the team")
	ErrCannotRemoveLeader = errors.New("cannot remove the team leader")
	ErrMemberNotFound     = errors.New("member not found in team")
	ErrDriveLinkRequired  = errors.New("drive link is required")

	// Ошибки событий
	ErrEventTitleRequired = errors.New("event title is required")
	ErrEventSizeInvalid   = errors.New("event team size bounds are invalid")
	ErrEventIDConflict    = errors.New("event id is already in use")
	ErrEventHasTeams      = errors.New("event still has registered teams")

	// Ошибки платежей
	ErrPaymentNotRequired      = errors.New("event does not require payment")
	ErrPaymentSignatureInvalid = errors.New("payment signature verification failed")
	ErrOrderTeamMismatch       = errors.New("order does not belong to this team")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrLeaderActionForbidden  = errors.New("only the team leader can perform this action")

	// Ошибки, специфичные для сущностей (могут дублировать ErrNotFound, но дают больше контекста)
	ErrUserNotFound  = errors.New("user not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrEventNotFound = errors.New("event not found")
	ErrOrderNotFound = errors.New("order not found")
)
