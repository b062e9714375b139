package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrFieldEntryConflict = errors.New("player already registered for this tournament")
)

type PlayerRepository interface {
	// GetOrCreate ищет игрока по внешнему ключу провайдера и создаёт его,
	// если он ещё не встречался. Игроки создаются лениво и не удаляются.
	GetOrCreate(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByExternalID(ctx context.Context, playerID string) (*models.Player, error)
	AddFieldEntry(ctx context.Context, exec SQLExecutor, entry *models.FieldEntry) error
	ListField(ctx context.Context, tournamentID int) ([]models.FieldEntry, error)
	ListAvailable(ctx context.Context, tournamentID, leagueID int) ([]models.Player, error)
	InField(ctx context.Context, tournamentID, playerID int) (bool, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	// ON CONFLICT DO UPDATE вместо DO NOTHING, чтобы RETURNING отработал
	// и для уже существующей строки.
	query := `
		INSERT INTO players (player_id, first_name, last_name, full_name, country)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE
			SET first_name = EXCLUDED.first_name,
			    last_name  = EXCLUDED.last_name,
			    full_name  = EXCLUDED.full_name
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.PlayerID, p.FirstName, p.LastName, p.FullName, p.Country,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to get or create player %s: %w", p.PlayerID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.ID, &p.PlayerID, &p.FirstName, &p.LastName, &p.FullName, &p.Country, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, player_id, first_name, last_name, full_name, country, created_at FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByExternalID(ctx context.Context, playerID string) (*models.Player, error) {
	query := `SELECT id, player_id, first_name, last_name, full_name, country, created_at FROM players WHERE player_id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, playerID))
}

func (r *postgresPlayerRepository) AddFieldEntry(ctx context.Context, exec SQLExecutor, entry *models.FieldEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO field_entries (tournament_id, player_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.TournamentID, entry.PlayerID, entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "field_entries_tournament_id_player_id_key" {
				return ErrFieldEntryConflict
			}
		}
		return fmt.Errorf("failed to add field entry: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) ListField(ctx context.Context, tournamentID int) ([]models.FieldEntry, error) {
	query := `
		SELECT
			fe.id, fe.tournament_id, fe.player_id, fe.status, fe.created_at,
			p.id, p.player_id, p.first_name, p.last_name, p.full_name, p.country, p.created_at
		FROM field_entries fe
		JOIN players p ON p.id = fe.player_id
		WHERE fe.tournament_id = $1
		ORDER BY p.last_name ASC, p.first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament field: %w", err)
	}
	defer rows.Close()

	entries := make([]models.FieldEntry, 0)
	for rows.Next() {
		var e models.FieldEntry
		var p models.Player
		if scanErr := rows.Scan(
			&e.ID, &e.TournamentID, &e.PlayerID, &e.Status, &e.CreatedAt,
			&p.ID, &p.PlayerID, &p.FirstName, &p.LastName, &p.FullName, &p.Country, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		e.Player = &p
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresPlayerRepository) InField(ctx context.Context, tournamentID, playerID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM field_entries WHERE tournament_id = $1 AND player_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, tournamentID, playerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tournament field: %w", err)
	}
	return exists, nil
}

// ListAvailable возвращает игроков из поля турнира, ещё не задрафтованных
// ни одной командой указанной лиги.
func (r *postgresPlayerRepository) ListAvailable(ctx context.Context, tournamentID, leagueID int) ([]models.Player, error) {
	query := `
		SELECT p.id, p.player_id, p.first_name, p.last_name, p.full_name, p.country, p.created_at
		FROM field_entries fe
		JOIN players p ON p.id = fe.player_id
		WHERE fe.tournament_id = $1
		  AND p.id NOT IN (
			SELECT tp.player_id FROM team_players tp WHERE tp.league_id = $2
		  )
		ORDER BY p.last_name ASC, p.first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID, &p.PlayerID, &p.FirstName, &p.LastName, &p.FullName, &p.Country, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
