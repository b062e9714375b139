package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/lib/pq"
)

var ErrScoreNotFound = errors.New("player score not found")

type ScoreRepository interface {
	// Upsert атомарно создаёт или обновляет запись по ключу
	// (tournament_id, player_id, round). Возвращает created=true, если
	// строка была вставлена, а не обновлена.
	Upsert(ctx context.Context, exec SQLExecutor, score *models.PlayerScore) (created bool, err error)

	// LatestTotals возвращает для каждого игрока самую свежую запись с
	// непустым тоталом (наибольший round <= maxRound). Игроки без таких
	// записей в карте отсутствуют.
	LatestTotals(ctx context.Context, tournamentID int, playerIDs []int, maxRound int) (map[int]*models.PlayerScore, error)

	ListByTournamentRound(ctx context.Context, tournamentID, round int) ([]models.PlayerScore, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.PlayerScore) (bool, error) {
	executor := r.getExecutor(exec)
	// xmax = 0 только у свежевставленных строк, так отличаем INSERT от
	// UPDATE в одном запросе.
	query := `
		INSERT INTO player_scores (tournament_id, player_id, round, round_score, total_score, position, made_cut, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tournament_id, player_id, round) DO UPDATE
			SET round_score = EXCLUDED.round_score,
			    total_score = EXCLUDED.total_score,
			    position    = EXCLUDED.position,
			    made_cut    = EXCLUDED.made_cut,
			    updated_at  = NOW()
		RETURNING id, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := executor.QueryRowContext(ctx, query,
		s.TournamentID, s.PlayerID, s.Round, s.RoundScore, s.TotalScore, s.Position, s.MadeCut,
	).Scan(&s.ID, &s.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert player score (player %d round %d): %w", s.PlayerID, s.Round, err)
	}
	return inserted, nil
}

func (r *postgresScoreRepository) LatestTotals(ctx context.Context, tournamentID int, playerIDs []int, maxRound int) (map[int]*models.PlayerScore, error) {
	if len(playerIDs) == 0 {
		return map[int]*models.PlayerScore{}, nil
	}

	query := `
		SELECT DISTINCT ON (player_id)
			id, tournament_id, player_id, round, round_score, total_score, position, made_cut, updated_at
		FROM player_scores
		WHERE tournament_id = $1
		  AND player_id = ANY($2)
		  AND round <= $3
		  AND total_score IS NOT NULL
		ORDER BY player_id, round DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, pq.Array(playerIDs), maxRound)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[int]*models.PlayerScore, len(playerIDs))
	for rows.Next() {
		var s models.PlayerScore
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.PlayerID, &s.Round,
			&s.RoundScore, &s.TotalScore, &s.Position, &s.MadeCut, &s.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		totals[s.PlayerID] = &s
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *postgresScoreRepository) ListByTournamentRound(ctx context.Context, tournamentID, round int) ([]models.PlayerScore, error) {
	query := `
		SELECT
			s.id, s.tournament_id, s.player_id, s.round, s.round_score, s.total_score, s.position, s.made_cut, s.updated_at,
			p.id, p.player_id, p.first_name, p.last_name, p.full_name, p.country, p.created_at
		FROM player_scores s
		JOIN players p ON p.id = s.player_id
		WHERE s.tournament_id = $1 AND s.round = $2
		ORDER BY s.total_score ASC NULLS LAST, p.last_name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for round %d: %w", round, err)
	}
	defer rows.Close()

	scores := make([]models.PlayerScore, 0)
	for rows.Next() {
		var s models.PlayerScore
		var p models.Player
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.PlayerID, &s.Round,
			&s.RoundScore, &s.TotalScore, &s.Position, &s.MadeCut, &s.UpdatedAt,
			&p.ID, &p.PlayerID, &p.FirstName, &p.LastName, &p.FullName, &p.Country, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		s.Player = &p
		scores = append(scores, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
