package models

import "time"

// LeagueStatus представляет статусы лиги, соответствующие ENUM в БД.
type LeagueStatus string

const (
	LeagueDraft     LeagueStatus = "draft"
	LeagueActive    LeagueStatus = "active"
	LeagueCompleted LeagueStatus = "completed"
)

// League представляет фэнтези-лигу, привязанную ровно к одному турниру.
// Лига удаляется каскадно вместе с турниром.
type League struct {
	ID            int          `json:"id" db:"id"`
	TournamentID  int          `json:"tournament_id" db:"tournament_id"`
	AdminID       *int         `json:"admin_id,omitempty" db:"admin_id"`
	Name          string       `json:"name" db:"name"`
	InviteCode    string       `json:"invite_code" db:"invite_code"`
	MaxMembers    int          `json:"max_members" db:"max_members"`
	TeamSize      int          `json:"team_size" db:"team_size"`
	Status        LeagueStatus `json:"status" db:"status"`
	DraftDeadline time.Time    `json:"draft_deadline" db:"draft_deadline"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Tournament  *Tournament `json:"tournament,omitempty" db:"-"`
	MemberCount int         `json:"member_count,omitempty" db:"-"`
}

// DraftClosed reports whether roster changes are frozen at instant now.
func (l *League) DraftClosed(now time.Time) bool {
	return now.After(l.DraftDeadline)
}

// Team представляет команду пользователя в лиге. На пару (league_id, user_id)
// приходится не более одной команды.
type Team struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User    *User        `json:"user,omitempty" db:"-"`
	Players []TeamPlayer `json:"players,omitempty" db:"-"`
}

// TeamPlayer представляет выбор игрока в состав команды.
// Игрок может быть задрафтован не более чем одной командой в рамках лиги.
type TeamPlayer struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	DraftedAt time.Time `json:"drafted_at" db:"drafted_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
