package models

import "time"

// PlayerScore представляет результат игрока в турнире после конкретного раунда.
// На пару (tournament_id, player_id, round) приходится не более одной записи.
//
// RoundScore и TotalScore хранятся как delta-to-par (par = 0, чем меньше, тем лучше).
// NULL означает, что числового результата для раунда нет (WD, DQ, ещё не
// сыгран). Это не ошибка: агрегатор трактует NULL как «нет вклада».
type PlayerScore struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	Round        int       `json:"round" db:"round"`
	RoundScore   *int      `json:"round_score,omitempty" db:"round_score"`
	TotalScore   *int      `json:"total_score,omitempty" db:"total_score"`
	Position     *int      `json:"position,omitempty" db:"position"`
	MadeCut      bool      `json:"made_cut" db:"made_cut"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
