package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrLeagueNameRequired     = errors.New("league name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrInvalidTeamSize        = errors.New("team size must be positive")
	ErrInvalidMaxMembers      = errors.New("max members must be positive")
	ErrDeadlineInPast         = errors.New("draft deadline must be in the future")
	ErrDraftDeadlinePassed    = errors.New("draft deadline has passed")
	ErrPlayerNotInField       = errors.New("player is not in the tournament field")
	ErrInvalidRoundNumber     = errors.New("round number must be between 1 and 4")
	ErrTournamentNotSyncable  = errors.New("tournament has no leaderboard to sync yet")
	ErrLogoInvalidContentType = errors.New("logo content type must be an image")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrTournamentImported   = errors.New("tournament is already imported for this year")
	ErrAlreadyInLeague      = errors.New("user already has a team in this league")
	ErrLeagueFull           = errors.New("league has reached its member limit")
	ErrTeamFull             = errors.New("team has reached the league team size")
	ErrPlayerAlreadyDrafted = errors.New("player is already drafted in this league")
	ErrPlayerAlreadyOnTeam  = errors.New("player is already on this team")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotApproved     = errors.New("account is pending approval")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrPrimaryOwnerProtected  = errors.New("primary owner cannot be modified")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrLeagueNotFound     = errors.New("league not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamPlayerNotFound = errors.New("player is not on this team")
	ErrInviteCodeNotFound = errors.New("invite code not found")
)
