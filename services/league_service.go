package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"mime"
	"strings"
	"time"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
	"github.com/fairwayleague/fantasy-golf/storage"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 8
	// Коллизия 8-символьного кода крайне маловероятна, но constraint в БД
	// всё равно её поймает, поэтому ограничиваемся парой повторов.
	inviteCodeAttempts = 5
)

type CreateLeagueInput struct {
	Name          string    `json:"name"`
	TournamentID  int       `json:"tournament_id"`
	MaxMembers    int       `json:"max_members"`
	TeamSize      int       `json:"team_size"`
	DraftDeadline time.Time `json:"draft_deadline"`
}

type JoinLeagueInput struct {
	InviteCode string `json:"invite_code"`
	TeamName   string `json:"team_name"`
}

// LeagueService управляет жизненным циклом лиг: создание, вступление по
// инвайт-коду, логотипы. Создатель лиги автоматически получает в ней команду.
type LeagueService struct {
	leagueRepo     repositories.LeagueRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *LeagueService {
	return &LeagueService{
		leagueRepo:     leagueRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// CreateLeague создаёт лигу и команду создателя в ней. Доступно с роли
// league_admin и выше.
func (s *LeagueService) CreateLeague(ctx context.Context, actor *models.User, input CreateLeagueInput) (*models.League, error) {
	if !actor.Role.AtLeast(models.RoleLeagueAdmin) {
		return nil, ErrForbiddenOperation
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrLeagueNameRequired
	}
	if input.TeamSize < 1 {
		return nil, ErrInvalidTeamSize
	}
	if input.MaxMembers < 1 {
		return nil, ErrInvalidMaxMembers
	}
	if !input.DraftDeadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	league := &models.League{
		TournamentID:  tournament.ID,
		AdminID:       &actor.ID,
		Name:          input.Name,
		MaxMembers:    input.MaxMembers,
		TeamSize:      input.TeamSize,
		Status:        models.LeagueDraft,
		DraftDeadline: input.DraftDeadline,
	}

	for attempt := 0; ; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}
		league.InviteCode = code

		err = s.leagueRepo.Create(ctx, league)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrLeagueInviteCodeConflict) && attempt < inviteCodeAttempts {
			continue
		}
		if errors.Is(err, repositories.ErrLeagueTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	team := &models.Team{
		LeagueID: league.ID,
		UserID:   actor.ID,
		Name:     actor.Username + "'s Team",
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}

	league.Tournament = tournament
	league.MemberCount = 1
	s.logger.Info("league created",
		slog.Int("league_id", league.ID),
		slog.Int("tournament_id", tournament.ID),
		slog.Int("admin_id", actor.ID))
	return league, nil
}

// JoinLeague создаёт команду пользователя в лиге по инвайт-коду.
// После дедлайна драфта вступление закрыто.
func (s *LeagueService) JoinLeague(ctx context.Context, user *models.User, input JoinLeagueInput) (*models.Team, error) {
	code := strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if code == "" {
		return nil, ErrInviteCodeNotFound
	}
	teamName := strings.TrimSpace(input.TeamName)
	if teamName == "" {
		teamName = user.Username + "'s Team"
	}

	league, err := s.leagueRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrInviteCodeNotFound
		}
		return nil, err
	}

	if league.DraftClosed(time.Now()) {
		return nil, ErrDraftDeadlinePassed
	}

	count, err := s.leagueRepo.CountTeams(ctx, league.ID)
	if err != nil {
		return nil, err
	}
	if count >= league.MaxMembers {
		return nil, ErrLeagueFull
	}

	team := &models.Team{
		LeagueID: league.ID,
		UserID:   user.ID,
		Name:     teamName,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamUserConflict) {
			return nil, ErrAlreadyInLeague
		}
		return nil, err
	}

	s.logger.Info("user joined league",
		slog.Int("league_id", league.ID),
		slog.Int("user_id", user.ID),
		slog.Int("team_id", team.ID))
	return team, nil
}

// ListMyLeagues возвращает лиги, в которых у пользователя есть команда.
func (s *LeagueService) ListMyLeagues(ctx context.Context, userID int) ([]models.League, error) {
	leagues, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range leagues {
		s.populateLogoURL(&leagues[i])
	}
	return leagues, nil
}

// GetLeague возвращает лигу вместе с турниром и числом участников.
// Доступно только участникам лиги.
func (s *LeagueService) GetLeague(ctx context.Context, userID, leagueID int) (*models.League, error) {
	league, err := s.memberLeague(ctx, userID, leagueID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, league.TournamentID)
	if err != nil && !errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, err
	}
	league.Tournament = tournament

	count, err := s.leagueRepo.CountTeams(ctx, league.ID)
	if err != nil {
		return nil, err
	}
	league.MemberCount = count

	if refreshed := s.refreshStatus(ctx, league); refreshed {
		s.logger.Info("league status updated",
			slog.Int("league_id", league.ID),
			slog.String("status", string(league.Status)))
	}

	s.populateLogoURL(league)
	return league, nil
}

// ListMembers возвращает команды лиги в порядке создания.
func (s *LeagueService) ListMembers(ctx context.Context, userID, leagueID int) ([]models.Team, error) {
	if _, err := s.memberLeague(ctx, userID, leagueID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListByLeague(ctx, leagueID)
}

// UploadLogo загружает логотип лиги в объектное хранилище и запоминает ключ.
// Доступно админу лиги и владельцам приложения.
func (s *LeagueService) UploadLogo(ctx context.Context, actor *models.User, leagueID int, contentType string, body io.Reader) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	isAdmin := league.AdminID != nil && *league.AdminID == actor.ID
	if !isAdmin && !actor.Role.AtLeast(models.RoleOwner) {
		return nil, ErrForbiddenOperation
	}

	if s.uploader == nil {
		return nil, errors.New("logo storage is not configured")
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrLogoInvalidContentType
	}

	key := fmt.Sprintf("league-logos/league_%d_%d", league.ID, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, mediaType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload league logo: %w", err)
	}

	oldKey := league.LogoKey
	if err := s.leagueRepo.UpdateLogoKey(ctx, league.ID, &result.Key); err != nil {
		return nil, err
	}
	league.LogoKey = &result.Key
	league.LogoURL = &result.Location

	// Старый логотип больше недостижим, чистим без фатальности.
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous league logo",
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	return league, nil
}

// memberLeague загружает лигу и проверяет, что у пользователя в ней есть
// команда.
func (s *LeagueService) memberLeague(ctx context.Context, userID, leagueID int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	if _, err := s.teamRepo.GetByLeagueAndUser(ctx, leagueID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, err
	}
	return league, nil
}

// refreshStatus выводит статус лиги из времени и статуса турнира:
// draft до дедлайна, active после, completed вместе с турниром.
func (s *LeagueService) refreshStatus(ctx context.Context, league *models.League) bool {
	next := league.Status
	switch {
	case league.Tournament != nil && league.Tournament.Status == models.TournamentCompleted:
		next = models.LeagueCompleted
	case league.Status == models.LeagueDraft && league.DraftClosed(time.Now()):
		next = models.LeagueActive
	}
	if next == league.Status {
		return false
	}
	if err := s.leagueRepo.UpdateStatus(ctx, league.ID, next); err != nil {
		s.logger.Warn("failed to update league status",
			slog.Int("league_id", league.ID),
			slog.Any("error", err))
		return false
	}
	league.Status = next
	return true
}

func (s *LeagueService) populateLogoURL(league *models.League) {
	if s.uploader == nil || league.LogoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*league.LogoKey); url != "" {
		league.LogoURL = &url
	}
}
