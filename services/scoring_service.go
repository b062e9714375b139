package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
)

// PlayerContribution представляет вклад одного задрафченного игрока в счёт команды.
// ScorePending означает, что записей по игроку ещё нет и его вклад равен
// нулю, а не что он сыграл в пар.
type PlayerContribution struct {
	Player       *models.Player `json:"player"`
	Total        int            `json:"total"`
	Position     *int           `json:"position,omitempty"`
	MadeCut      bool           `json:"made_cut"`
	ScorePending bool           `json:"score_pending"`
}

// TeamScore представляет агрегированный счёт команды: сумму последних
// известных тоталов её игроков.
type TeamScore struct {
	TeamID     int                  `json:"team_id"`
	TeamName   string               `json:"team_name"`
	Total      int                  `json:"total"`
	AnyPending bool                 `json:"any_pending"`
	Players    []PlayerContribution `json:"players"`
}

// StandingsEntry представляет строку таблицы лиги. Rank назначается по схеме
// competition ranking: равные тоталы делят место, следующее место
// равно порядковому номеру строки.
type StandingsEntry struct {
	Rank       int    `json:"rank"`
	TeamID     int    `json:"team_id"`
	TeamName   string `json:"team_name"`
	UserID     int    `json:"user_id"`
	Username   string `json:"username"`
	Total      int    `json:"total"`
	AnyPending bool   `json:"any_pending"`

	Players []PlayerContribution `json:"players,omitempty"`
}

// ScoringService читает сохранённые player_scores и ничего не пишет.
// Счёт команды и таблица лиги вычисляются заново из текущего состояния.
type ScoringService struct {
	leagueRepo repositories.LeagueRepository
	teamRepo   repositories.TeamRepository
	scoreRepo  repositories.ScoreRepository
}

func NewScoringService(
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	scoreRepo repositories.ScoreRepository,
) *ScoringService {
	return &ScoringService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		scoreRepo:  scoreRepo,
	}
}

// resolveRound переводит необязательный параметр раунда (0 = все раунды)
// в верхнюю границу для выборки тоталов.
func resolveRound(round int) (int, error) {
	if round == 0 {
		return maxRounds, nil
	}
	if round < 1 || round > maxRounds {
		return 0, fmt.Errorf("%w: round must be between 1 and %d", ErrInvalidRoundNumber, maxRounds)
	}
	return round, nil
}

// TeamScore возвращает счёт команды: сумму последних ненулевых тоталов её
// игроков по состоянию на раунд round (0 = последний известный). Игрок без
// записей даёт 0 и флаг score_pending; выбывший игрок сохраняет свой
// последний тотал.
func (s *ScoringService) TeamScore(ctx context.Context, teamID, round int) (*TeamScore, error) {
	maxRound, err := resolveRound(round)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	league, err := s.leagueRepo.GetByID(ctx, team.LeagueID)
	if err != nil {
		return nil, err
	}

	players, err := s.teamRepo.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, err
	}

	playerIDs := make([]int, 0, len(players))
	for _, tp := range players {
		playerIDs = append(playerIDs, tp.PlayerID)
	}

	latest, err := s.scoreRepo.LatestTotals(ctx, league.TournamentID, playerIDs, maxRound)
	if err != nil {
		return nil, err
	}

	score := &TeamScore{
		TeamID:   team.ID,
		TeamName: team.Name,
		Players:  make([]PlayerContribution, 0, len(players)),
	}
	for _, tp := range players {
		contribution := PlayerContribution{Player: tp.Player}
		if record, ok := latest[tp.PlayerID]; ok {
			contribution.Total = *record.TotalScore
			contribution.Position = record.Position
			contribution.MadeCut = record.MadeCut
		} else {
			contribution.ScorePending = true
			contribution.MadeCut = true
			score.AnyPending = true
		}
		score.Total += contribution.Total
		score.Players = append(score.Players, contribution)
	}
	return score, nil
}

// LeagueStandings строит таблицу лиги по возрастанию командного тотала.
// Сортировка стабильная, поэтому при равенстве раньше стоит команда,
// созданная раньше.
func (s *ScoringService) LeagueStandings(ctx context.Context, leagueID, round int) ([]StandingsEntry, error) {
	maxRound, err := resolveRound(round)
	if err != nil {
		return nil, err
	}

	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	// ListByLeague отдаёт команды по created_at ASC, это и есть порядок
	// разрешения ничьих.
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	teamPlayers := make(map[int][]models.TeamPlayer, len(teams))
	allPlayerIDs := make([]int, 0, len(teams)*league.TeamSize)
	for _, team := range teams {
		players, err := s.teamRepo.ListPlayers(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		teamPlayers[team.ID] = players
		for _, tp := range players {
			allPlayerIDs = append(allPlayerIDs, tp.PlayerID)
		}
	}

	latest, err := s.scoreRepo.LatestTotals(ctx, league.TournamentID, allPlayerIDs, maxRound)
	if err != nil {
		return nil, err
	}

	entries := make([]StandingsEntry, 0, len(teams))
	for _, team := range teams {
		entry := StandingsEntry{
			TeamID:   team.ID,
			TeamName: team.Name,
			UserID:   team.UserID,
		}
		if team.User != nil {
			entry.Username = team.User.Username
		}
		for _, tp := range teamPlayers[team.ID] {
			contribution := PlayerContribution{Player: tp.Player}
			if record, ok := latest[tp.PlayerID]; ok {
				contribution.Total = *record.TotalScore
				contribution.Position = record.Position
				contribution.MadeCut = record.MadeCut
			} else {
				contribution.ScorePending = true
				contribution.MadeCut = true
				entry.AnyPending = true
			}
			entry.Total += contribution.Total
			entry.Players = append(entry.Players, contribution)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total < entries[j].Total
	})

	for i := range entries {
		if i > 0 && entries[i].Total == entries[i-1].Total {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries, nil
}
