package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairwayleague/fantasy-golf/golfdata"
	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
)

// defaultTimezone используется, когда провайдер не сообщает часовой пояс
// турнира (PGA Tour в основном играет на восточном побережье).
const defaultTimezone = "America/New_York"

// GolfDataProvider представляет внешний источник данных о турнирах и лидербордах.
// Сервис описывает только форму данных; транспорт и лимиты остаются на клиенте.
type GolfDataProvider interface {
	GetTournament(ctx context.Context, tournID string, year int) (*golfdata.Tournament, error)
	GetLeaderboard(ctx context.Context, orgID int, tournID string, year int) (*golfdata.Leaderboard, error)
}

type TournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	scoreRepo      repositories.ScoreRepository
	provider       GolfDataProvider
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	scoreRepo repositories.ScoreRepository,
	provider GolfDataProvider,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		scoreRepo:      scoreRepo,
		provider:       provider,
		logger:         logger,
	}
}

// ImportTournament загружает турнир и его поле из внешнего API и сохраняет
// их в одной транзакции. Повторный импорт той же пары (tournId, year)
// отклоняется.
func (s *TournamentService) ImportTournament(ctx context.Context, tournID string, year int) (*models.Tournament, error) {
	if _, err := s.tournamentRepo.GetByTournIDYear(ctx, tournID, year); err == nil {
		return nil, ErrTournamentImported
	} else if !errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, fmt.Errorf("failed to check existing tournament: %w", err)
	}

	data, err := s.provider.GetTournament(ctx, tournID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament %s (%d): %w", tournID, year, err)
	}
	if data.Name == "" {
		return nil, fmt.Errorf("%w: provider response is missing tournament name", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		TournID:  tournID,
		Name:     data.Name,
		Year:     year,
		OrgID:    1,
		Timezone: defaultTimezone,
		Status:   models.TournamentUpcoming,
	}
	if data.OrgID.Valid {
		tournament.OrgID = data.OrgID.Value
	}
	if data.Date.Start.Valid {
		start := data.Date.Start.Time
		tournament.StartDate = &start
	}
	if data.Date.End.Valid {
		end := data.Date.End.Time
		tournament.EndDate = &end
	}
	tournament.Status = tournament.DeriveStatus(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentConflict) {
			return nil, ErrTournamentImported
		}
		return nil, err
	}

	imported := 0
	for _, fp := range data.Players {
		externalID := fp.PlayerID.String()
		fullName := strings.TrimSpace(fp.FirstName + " " + fp.LastName)
		if externalID == "" || fullName == "" {
			s.logger.Warn("skipping field player without id or name",
				slog.String("tourn_id", tournID),
				slog.String("player_id", externalID))
			continue
		}

		player := &models.Player{
			PlayerID:  externalID,
			FirstName: fp.FirstName,
			LastName:  fp.LastName,
			FullName:  fullName,
		}
		if err := s.playerRepo.GetOrCreate(ctx, tx, player); err != nil {
			return nil, err
		}

		status := fp.Status
		if status == "" {
			status = "registered"
		}
		entry := &models.FieldEntry{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
			Status:       status,
		}
		if err := s.playerRepo.AddFieldEntry(ctx, tx, entry); err != nil {
			if errors.Is(err, repositories.ErrFieldEntryConflict) {
				continue // дубликат в ответе провайдера
			}
			return nil, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	s.logger.Info("tournament imported",
		slog.String("tourn_id", tournID),
		slog.Int("year", year),
		slog.Int("field_size", imported))
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *TournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) GetField(ctx context.Context, tournamentID int) ([]models.FieldEntry, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.playerRepo.ListField(ctx, tournamentID)
}

// GetLeaderboard возвращает сохранённые результаты турнира на момент раунда.
func (s *TournamentService) GetLeaderboard(ctx context.Context, tournamentID, round int) ([]models.PlayerScore, error) {
	if round < 1 || round > maxRounds {
		return nil, ErrInvalidRoundNumber
	}
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.scoreRepo.ListByTournamentRound(ctx, tournamentID, round)
}

// RefreshStatuses пересчитывает статусы всех турниров по их датам.
// Вызывается планировщиком; статус никогда не выставляется клиентом напрямую.
func (s *TournamentService) RefreshStatuses(ctx context.Context) (int, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments for status refresh: %w", err)
	}

	now := time.Now()
	updated := 0
	for i := range tournaments {
		t := &tournaments[i]
		derived := t.DeriveStatus(now)
		if derived == t.Status {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, t.ID, derived); err != nil {
			return updated, fmt.Errorf("failed to update status of tournament %d: %w", t.ID, err)
		}
		s.logger.Info("tournament status changed",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(derived)))
		updated++
	}
	return updated, nil
}
