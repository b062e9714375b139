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
	ErrTeamNotFound = errors.New("team not found")
	// Пользователь уже имеет команду в этой лиге (leagues: одна команда на пару league/user).
	ErrTeamUserConflict = errors.New("user already has a team in this league")
	// Игрок уже задрафтован другой командой этой лиги (unique на (league_id, player_id)).
	ErrTeamPlayerDrafted = errors.New("player already drafted in this league")
	// Игрок уже есть в составе этой команды.
	ErrTeamPlayerDuplicate = errors.New("player already on this team")
	ErrTeamPlayerNotFound  = errors.New("player not on this team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByLeagueAndUser(ctx context.Context, leagueID, userID int) (*models.Team, error)
	// ListByLeague возвращает команды лиги в порядке создания (tie-break
	// рейтинга опирается на этот порядок).
	ListByLeague(ctx context.Context, leagueID int) ([]models.Team, error)

	AddPlayer(ctx context.Context, leagueID int, tp *models.TeamPlayer) error
	RemovePlayer(ctx context.Context, teamID, playerID int) error
	ListPlayers(ctx context.Context, teamID int) ([]models.TeamPlayer, error)
	CountPlayers(ctx context.Context, teamID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (league_id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.LeagueID, t.UserID, t.Name).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "teams_league_id_user_id_key" {
				return ErrTeamUserConflict
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) scanTeam(row *sql.Row) (*models.Team, error) {
	t := &models.Team{}
	u := models.User{}
	err := row.Scan(
		&t.ID, &t.LeagueID, &t.UserID, &t.Name, &t.CreatedAt,
		&u.ID, &u.Username,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	t.User = &u
	return t, nil
}

const teamSelect = `
	SELECT t.id, t.league_id, t.user_id, t.name, t.created_at, u.id, u.username
	FROM teams t
	JOIN users u ON u.id = t.user_id`

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return r.scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE t.id = $1`, id))
}

func (r *postgresTeamRepository) GetByLeagueAndUser(ctx context.Context, leagueID, userID int) (*models.Team, error) {
	return r.scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE t.league_id = $1 AND t.user_id = $2`, leagueID, userID))
}

func (r *postgresTeamRepository) ListByLeague(ctx context.Context, leagueID int) ([]models.Team, error) {
	query := teamSelect + ` WHERE t.league_id = $1 ORDER BY t.created_at ASC, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		var u models.User
		if scanErr := rows.Scan(
			&t.ID, &t.LeagueID, &t.UserID, &t.Name, &t.CreatedAt,
			&u.ID, &u.Username,
		); scanErr != nil {
			return nil, scanErr
		}
		t.User = &u
		teams = append(teams, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddPlayer вставляет выбор игрока. Кросс-командная уникальность внутри лиги
// обеспечивается constraint'ом team_players_league_id_player_id_key, это
// единственная защита от гонки check-then-act при одновременном драфте.
func (r *postgresTeamRepository) AddPlayer(ctx context.Context, leagueID int, tp *models.TeamPlayer) error {
	query := `
		INSERT INTO team_players (team_id, league_id, player_id)
		VALUES ($1, $2, $3)
		RETURNING id, drafted_at`

	err := r.db.QueryRowContext(ctx, query, tp.TeamID, leagueID, tp.PlayerID).Scan(&tp.ID, &tp.DraftedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "team_players_league_id_player_id_key":
				return ErrTeamPlayerDrafted
			case "team_players_team_id_player_id_key":
				return ErrTeamPlayerDuplicate
			}
		}
		return fmt.Errorf("failed to add player to team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) RemovePlayer(ctx context.Context, teamID, playerID int) error {
	query := `DELETE FROM team_players WHERE team_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player from team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamPlayerNotFound)
}

func (r *postgresTeamRepository) ListPlayers(ctx context.Context, teamID int) ([]models.TeamPlayer, error) {
	query := `
		SELECT
			tp.id, tp.team_id, tp.player_id, tp.drafted_at,
			p.id, p.player_id, p.first_name, p.last_name, p.full_name, p.country, p.created_at
		FROM team_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.team_id = $1
		ORDER BY tp.drafted_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team players: %w", err)
	}
	defer rows.Close()

	players := make([]models.TeamPlayer, 0)
	for rows.Next() {
		var tp models.TeamPlayer
		var p models.Player
		if scanErr := rows.Scan(
			&tp.ID, &tp.TeamID, &tp.PlayerID, &tp.DraftedAt,
			&p.ID, &p.PlayerID, &p.FirstName, &p.LastName, &p.FullName, &p.Country, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tp.Player = &p
		players = append(players, tp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresTeamRepository) CountPlayers(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_players WHERE team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team players: %w", err)
	}
	return count, nil
}
