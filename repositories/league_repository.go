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
	ErrLeagueNotFound           = errors.New("league not found")
	ErrLeagueInviteCodeConflict = errors.New("league invite code conflict")
	ErrLeagueTournamentInvalid  = errors.New("league tournament reference invalid")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	GetByInviteCode(ctx context.Context, code string) (*models.League, error)
	ListByUser(ctx context.Context, userID int) ([]models.League, error)
	UpdateStatus(ctx context.Context, id int, status models.LeagueStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	CountTeams(ctx context.Context, leagueID int) (int, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

const leagueColumns = `id, tournament_id, admin_id, name, invite_code, max_members, team_size, status, draft_deadline, logo_key, created_at`

func (r *postgresLeagueRepository) Create(ctx context.Context, l *models.League) error {
	query := `
		INSERT INTO leagues (tournament_id, admin_id, name, invite_code, max_members, team_size, status, draft_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		l.TournamentID, l.AdminID, l.Name, l.InviteCode, l.MaxMembers, l.TeamSize, l.Status, l.DraftDeadline,
	).Scan(&l.ID, &l.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "leagues_invite_code_key" {
					return ErrLeagueInviteCodeConflict
				}
			case "23503":
				if pqErr.Constraint == "leagues_tournament_id_fkey" {
					return ErrLeagueTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) scanLeague(row *sql.Row) (*models.League, error) {
	l := &models.League{}
	err := row.Scan(
		&l.ID, &l.TournamentID, &l.AdminID, &l.Name, &l.InviteCode,
		&l.MaxMembers, &l.TeamSize, &l.Status, &l.DraftDeadline, &l.LogoKey, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	return l, nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	return r.scanLeague(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) GetByInviteCode(ctx context.Context, code string) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE invite_code = $1`
	return r.scanLeague(r.db.QueryRowContext(ctx, query, code))
}

func (r *postgresLeagueRepository) ListByUser(ctx context.Context, userID int) ([]models.League, error) {
	query := `
		SELECT l.id, l.tournament_id, l.admin_id, l.name, l.invite_code,
		       l.max_members, l.team_size, l.status, l.draft_deadline, l.logo_key, l.created_at
		FROM leagues l
		JOIN teams t ON t.league_id = l.id
		WHERE t.user_id = $1
		ORDER BY l.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for user %d: %w", userID, err)
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		var l models.League
		if scanErr := rows.Scan(
			&l.ID, &l.TournamentID, &l.AdminID, &l.Name, &l.InviteCode,
			&l.MaxMembers, &l.TeamSize, &l.Status, &l.DraftDeadline, &l.LogoKey, &l.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, l)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) UpdateStatus(ctx context.Context, id int, status models.LeagueStatus) error {
	query := `UPDATE leagues SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update league status: %w", err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE leagues SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update league logo key: %w", err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) CountTeams(ctx context.Context, leagueID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE league_id = $1`, leagueID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count league teams: %w", err)
	}
	return count, nil
}
