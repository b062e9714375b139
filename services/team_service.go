package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
)

// TeamDetail представляет команду вместе с её текущим счётом.
type TeamDetail struct {
	Team  *models.Team `json:"team"`
	Score *TeamScore   `json:"score"`
}

// TeamService отвечает за драфт: добор и снятие игроков при открытом
// дедлайне. Гонки одновременного драфта одного игрока двумя командами
// разрешает уникальный constraint в БД, а не проверки сервиса.
type TeamService struct {
	teamRepo   repositories.TeamRepository
	leagueRepo repositories.LeagueRepository
	playerRepo repositories.PlayerRepository
	scoring    *ScoringService
	logger     *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	playerRepo repositories.PlayerRepository,
	scoring *ScoringService,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		scoring:    scoring,
		logger:     logger,
	}
}

// GetTeam возвращает команду с составом и счётом. Смотреть команды могут
// все участники её лиги.
func (s *TeamService) GetTeam(ctx context.Context, viewerID, teamID, round int) (*TeamDetail, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if _, err := s.teamRepo.GetByLeagueAndUser(ctx, team.LeagueID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, err
	}

	players, err := s.teamRepo.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Players = players

	score, err := s.scoring.TeamScore(ctx, teamID, round)
	if err != nil {
		return nil, err
	}

	return &TeamDetail{Team: team, Score: score}, nil
}

// DraftPlayer добавляет игрока в команду. Цепочка проверок: команда
// существует, драфтит её владелец, дедлайн не прошёл, игрок заявлен на
// турнир, в команде есть место. Кросс-командную уникальность внутри лиги
// гарантирует constraint.
func (s *TeamService) DraftPlayer(ctx context.Context, userID, teamID, playerID int) (*models.TeamPlayer, error) {
	team, league, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	if league.DraftClosed(time.Now()) {
		return nil, ErrDraftDeadlinePassed
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	inField, err := s.playerRepo.InField(ctx, league.TournamentID, player.ID)
	if err != nil {
		return nil, err
	}
	if !inField {
		return nil, ErrPlayerNotInField
	}

	count, err := s.teamRepo.CountPlayers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if count >= league.TeamSize {
		return nil, ErrTeamFull
	}

	tp := &models.TeamPlayer{
		TeamID:   teamID,
		PlayerID: player.ID,
	}
	if err := s.teamRepo.AddPlayer(ctx, league.ID, tp); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamPlayerDrafted):
			return nil, ErrPlayerAlreadyDrafted
		case errors.Is(err, repositories.ErrTeamPlayerDuplicate):
			return nil, ErrPlayerAlreadyOnTeam
		}
		return nil, err
	}
	tp.Player = player

	s.logger.Info("player drafted",
		slog.Int("league_id", league.ID),
		slog.Int("team_id", team.ID),
		slog.Int("player_id", player.ID))
	return tp, nil
}

// UndraftPlayer снимает игрока с команды до дедлайна драфта.
func (s *TeamService) UndraftPlayer(ctx context.Context, userID, teamID, playerID int) error {
	team, league, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return err
	}

	if league.DraftClosed(time.Now()) {
		return ErrDraftDeadlinePassed
	}

	if err := s.teamRepo.RemovePlayer(ctx, teamID, playerID); err != nil {
		if errors.Is(err, repositories.ErrTeamPlayerNotFound) {
			return ErrTeamPlayerNotFound
		}
		return err
	}

	s.logger.Info("player undrafted",
		slog.Int("league_id", league.ID),
		slog.Int("team_id", team.ID),
		slog.Int("player_id", playerID))
	return nil
}

// ListAvailablePlayers возвращает незадрафтованных игроков из поля турнира
// лиги. Доступно участникам лиги.
func (s *TeamService) ListAvailablePlayers(ctx context.Context, userID, leagueID int) ([]models.Player, error) {
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

	return s.playerRepo.ListAvailable(ctx, league.TournamentID, leagueID)
}

// ownedTeam загружает команду и её лигу и проверяет владение.
func (s *TeamService) ownedTeam(ctx context.Context, userID, teamID int) (*models.Team, *models.League, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, err
	}
	if team.UserID != userID {
		return nil, nil, ErrForbiddenOperation
	}

	league, err := s.leagueRepo.GetByID(ctx, team.LeagueID)
	if err != nil {
		return nil, nil, err
	}
	return team, league, nil
}
