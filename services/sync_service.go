package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fairwayleague/fantasy-golf/golfdata"
	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxRounds задаёт число раундов в стандартном турнире stroke play.
const maxRounds = 4

// maxConcurrentSyncs ограничивает параллелизм фонового прохода по активным
// турнирам (щадим лимиты RapidAPI).
const maxConcurrentSyncs = 3

// SyncResult представляет итог одного прогона ингеста лидерборда.
// Skipped считает строки без ключа игрока и нечисловые токены: это не
// ошибки, а наблюдаемый счётчик частичных данных.
type SyncResult struct {
	TournamentID int `json:"tournament_id"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
}

// SyncService приводит внешний лидерборд к каноническим записям
// player_scores. Повторный ингест того же снапшота идемпотентен: ноль новых
// записей, сохранённое состояние не меняется.
type SyncService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	scoreRepo      repositories.ScoreRepository
	provider       GolfDataProvider
	logger         *slog.Logger

	// Схлопывает конкурентные прогоны по одному турниру: для ключа
	// выполняется ровно один ингест, остальные ждут его результат.
	group singleflight.Group
}

func NewSyncService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	scoreRepo repositories.ScoreRepository,
	provider GolfDataProvider,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		scoreRepo:      scoreRepo,
		provider:       provider,
		logger:         logger,
	}
}

// SyncTournament запрашивает свежий лидерборд у провайдера и ингестит его.
// Ручной триггер и планировщик сходятся в этом методе.
func (s *SyncService) SyncTournament(ctx context.Context, tournamentID int) (*SyncResult, error) {
	v, err, _ := s.group.Do(strconv.Itoa(tournamentID), func() (interface{}, error) {
		tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, err
		}
		// У турнира, который ещё не начался, лидерборда нет.
		if tournament.Status == models.TournamentUpcoming {
			return nil, fmt.Errorf("%w: tournament %d has not started", ErrTournamentNotSyncable, tournamentID)
		}

		leaderboard, err := s.provider.GetLeaderboard(ctx, tournament.OrgID, tournament.TournID, tournament.Year)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch leaderboard for tournament %d: %w", tournamentID, err)
		}

		return s.IngestLeaderboard(ctx, tournament, leaderboard)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SyncResult), nil
}

// IngestLeaderboard валидирует принадлежность снапшота турниру, затем upsert'ит по одной
// записи на (игрок, раунд). Битая строка пропускается и не валит батч.
func (s *SyncService) IngestLeaderboard(ctx context.Context, tournament *models.Tournament, leaderboard *golfdata.Leaderboard) (*SyncResult, error) {
	// Снапшот всегда привязан к одному турниру, проверяем до любых записей.
	if leaderboard.TournID != "" && leaderboard.TournID != tournament.TournID {
		return nil, fmt.Errorf("%w: leaderboard is for tournament %s, expected %s",
			ErrValidationFailed, leaderboard.TournID, tournament.TournID)
	}
	if leaderboard.Year.Valid && leaderboard.Year.Value != tournament.Year {
		return nil, fmt.Errorf("%w: leaderboard is for year %d, expected %d",
			ErrValidationFailed, leaderboard.Year.Value, tournament.Year)
	}

	// Каждый upsert атомарен сам по себе, а прогон идемпотентен: после
	// ошибки на середине следующий запуск доведёт состояние до снапшота.
	result := &SyncResult{TournamentID: tournament.ID}
	for _, row := range leaderboard.Rows {
		if err := s.ingestRow(ctx, tournament, row, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("leaderboard ingested",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (s *SyncService) ingestRow(ctx context.Context, tournament *models.Tournament, row golfdata.LeaderboardRow, result *SyncResult) error {
	externalID := row.PlayerID.String()
	if externalID == "" {
		s.logger.Warn("skipping leaderboard row without player id",
			slog.Int("tournament_id", tournament.ID),
			slog.String("name", strings.TrimSpace(row.FirstName+" "+row.LastName)))
		result.Skipped++
		return nil
	}

	fullName := strings.TrimSpace(row.FirstName + " " + row.LastName)
	if fullName == "" {
		fullName = externalID
	}
	player := &models.Player{
		PlayerID:  externalID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		FullName:  fullName,
	}
	if err := s.playerRepo.GetOrCreate(ctx, nil, player); err != nil {
		return err
	}

	total, totalOK := golfdata.ParseScore(row.Total)

	// Нечисловой непустой токен ("WD", "CUT", "DQ", ...) в тотале или в
	// любом раунде означает, что игрок выбыл: made_cut = false, числовые
	// поля этого раунда остаются NULL, батч продолжается.
	madeCut := true
	if !totalOK && strings.TrimSpace(row.Total) != "" {
		madeCut = false
	}
	for _, round := range row.Rounds {
		if _, ok := golfdata.ParseScore(round.ScoreToPar); !ok && strings.TrimSpace(round.ScoreToPar) != "" {
			madeCut = false
		}
	}

	var position *int
	if pos, ok := golfdata.ParsePosition(row.Position); ok {
		position = &pos
	}

	lastRound := 0
	for i, round := range row.Rounds {
		roundNum := i + 1
		if round.RoundID.Valid && round.RoundID.Value >= 1 {
			roundNum = round.RoundID.Value
		}
		if roundNum <= maxRounds && roundNum > lastRound {
			lastRound = roundNum
		}
	}

	running := 0
	runningValid := true

	for i, round := range row.Rounds {
		roundNum := i + 1
		if round.RoundID.Valid && round.RoundID.Value >= 1 {
			roundNum = round.RoundID.Value
		}
		if roundNum > maxRounds {
			result.Skipped++
			continue
		}

		record := &models.PlayerScore{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
			Round:        roundNum,
			MadeCut:      madeCut,
		}

		if score, ok := golfdata.ParseScore(round.ScoreToPar); ok {
			roundScore := score
			record.RoundScore = &roundScore
			if runningValid {
				running += score
				runningTotal := running
				record.TotalScore = &runningTotal
			}
		} else {
			runningValid = false
			result.Skipped++
		}

		// На записи последнего раунда общий тотал и позиция провайдера
		// перекрывают накопленную сумму.
		if roundNum == lastRound {
			if totalOK {
				overall := total
				record.TotalScore = &overall
			}
			record.Position = position
		}

		created, err := s.scoreRepo.Upsert(ctx, nil, record)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	// Строка без раундов всё равно фиксируется: NULL-поля вместо пропуска,
	// чтобы агрегатор видел игрока.
	if len(row.Rounds) == 0 {
		record := &models.PlayerScore{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
			Round:        1,
			MadeCut:      madeCut,
			Position:     position,
		}
		if totalOK {
			overall := total
			record.TotalScore = &overall
		}
		created, err := s.scoreRepo.Upsert(ctx, nil, record)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return nil
}

// SyncActiveTournaments синхронизирует все активные турниры, параллельно,
// но не более maxConcurrentSyncs одновременно. Ошибка одного турнира не
// останавливает остальные; возвращается первая из них.
func (s *SyncService) SyncActiveTournaments(ctx context.Context) error {
	active, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentActive)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}
	if len(active) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSyncs)

	for _, tournament := range active {
		tournament := tournament
		g.Go(func() error {
			if _, err := s.SyncTournament(ctx, tournament.ID); err != nil {
				s.logger.Error("tournament sync failed",
					slog.Int("tournament_id", tournament.ID),
					slog.Any("error", err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
