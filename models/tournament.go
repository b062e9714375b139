package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
// Статус выводится из дат турнира и обновляется фоновым проходом, а не
// выставляется клиентом напрямую.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

// Tournament представляет турнир PGA Tour, импортированный из внешнего источника.
// Пара (tourn_id, year) уникальна и неизменяема после импорта.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	TournID   string           `json:"tourn_id" db:"tourn_id"`
	Name      string           `json:"name" db:"name"`
	Year      int              `json:"year" db:"year"`
	OrgID     int              `json:"org_id" db:"org_id"`
	StartDate *time.Time       `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time       `json:"end_date,omitempty" db:"end_date"`
	Timezone  string           `json:"timezone" db:"timezone"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// DeriveStatus пересчитывает статус по датам на момент now.
// Если даты не заполнены, текущий статус сохраняется.
func (t *Tournament) DeriveStatus(now time.Time) TournamentStatus {
	if t.StartDate == nil || t.EndDate == nil {
		return t.Status
	}
	day := now.Truncate(24 * time.Hour)
	switch {
	case day.Before(t.StartDate.Truncate(24 * time.Hour)):
		return TournamentUpcoming
	case day.After(t.EndDate.Truncate(24 * time.Hour)):
		return TournamentCompleted
	default:
		return TournamentActive
	}
}

// Player представляет игрока PGA Tour. Создаётся лениво при первом появлении в поле
// турнира или в лидерборде; никогда не удаляется, пока на него есть ссылки.
type Player struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	FullName  string    `json:"full_name" db:"full_name"`
	Country   *string   `json:"country,omitempty" db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FieldEntry представляет регистрацию игрока в поле конкретного турнира.
type FieldEntry struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
