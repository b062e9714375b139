package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fairwayleague/fantasy-golf/golfdata"
	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
)

// In-memory реализации репозиториев для тестов сервисов.

type fakeUserRepo struct {
	seq   int
	users map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Username == u.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	r.seq++
	u.ID = r.seq
	u.CreatedAt = time.Now()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int, role models.UserRole) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateApproved(_ context.Context, id int, approved bool) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Approved = approved
	return nil
}

func (r *fakeUserRepo) ListPending(_ context.Context) ([]models.User, error) {
	pending := make([]models.User, 0)
	for _, u := range r.users {
		if !u.Approved {
			pending = append(pending, *u)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	seq         int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.TournID == t.TournID && existing.Year == t.Year {
			return repositories.ErrTournamentConflict
		}
	}
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now()
	clone := *t
	r.tournaments[t.ID] = &clone
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) GetByTournIDYear(_ context.Context, tournID string, year int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.TournID == tournID && t.Year == year {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeTournamentRepo) ListByStatus(_ context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Status == status {
			list = append(list, *t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

type fakePlayerRepo struct {
	mu         sync.Mutex
	seq        int
	players    map[int]*models.Player
	byExternal map[string]int
	field      map[int]map[int]bool // tournamentID -> playerID set
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players:    make(map[int]*models.Player),
		byExternal: make(map[string]int),
		field:      make(map[int]map[int]bool),
	}
}

func (r *fakePlayerRepo) GetOrCreate(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byExternal[p.PlayerID]; ok {
		p.ID = id
		p.CreatedAt = r.players[id].CreatedAt
		return nil
	}
	r.seq++
	p.ID = r.seq
	p.CreatedAt = time.Now()
	clone := *p
	r.players[p.ID] = &clone
	r.byExternal[p.PlayerID] = p.ID
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePlayerRepo) GetByExternalID(_ context.Context, playerID string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byExternal[playerID]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	clone := *r.players[id]
	return &clone, nil
}

func (r *fakePlayerRepo) AddFieldEntry(_ context.Context, _ repositories.SQLExecutor, entry *models.FieldEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field[entry.TournamentID] == nil {
		r.field[entry.TournamentID] = make(map[int]bool)
	}
	if r.field[entry.TournamentID][entry.PlayerID] {
		return repositories.ErrFieldEntryConflict
	}
	r.field[entry.TournamentID][entry.PlayerID] = true
	return nil
}

func (r *fakePlayerRepo) ListField(_ context.Context, tournamentID int) ([]models.FieldEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]models.FieldEntry, 0)
	for playerID := range r.field[tournamentID] {
		p := *r.players[playerID]
		entries = append(entries, models.FieldEntry{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			Player:       &p,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PlayerID < entries[j].PlayerID })
	return entries, nil
}

func (r *fakePlayerRepo) ListAvailable(_ context.Context, tournamentID, _ int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]models.Player, 0)
	for playerID := range r.field[tournamentID] {
		players = append(players, *r.players[playerID])
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

func (r *fakePlayerRepo) InField(_ context.Context, tournamentID, playerID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field[tournamentID][playerID], nil
}

type fakeScoreRepo struct {
	mu     sync.Mutex
	seq    int
	scores map[string]*models.PlayerScore
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[string]*models.PlayerScore)}
}

func scoreKey(tournamentID, playerID, round int) string {
	return fmt.Sprintf("%d/%d/%d", tournamentID, playerID, round)
}

func (r *fakeScoreRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, score *models.PlayerScore) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scoreKey(score.TournamentID, score.PlayerID, score.Round)
	existing, ok := r.scores[key]
	if ok {
		score.ID = existing.ID
	} else {
		r.seq++
		score.ID = r.seq
	}
	score.UpdatedAt = time.Now()
	clone := *score
	r.scores[key] = &clone
	return !ok, nil
}

func (r *fakeScoreRepo) LatestTotals(_ context.Context, tournamentID int, playerIDs []int, maxRound int) (map[int]*models.PlayerScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := make(map[int]*models.PlayerScore)
	for _, playerID := range playerIDs {
		for round := 1; round <= maxRound; round++ {
			score, ok := r.scores[scoreKey(tournamentID, playerID, round)]
			if !ok || score.TotalScore == nil {
				continue
			}
			if current, ok := latest[playerID]; !ok || score.Round > current.Round {
				clone := *score
				latest[playerID] = &clone
			}
		}
	}
	return latest, nil
}

func (r *fakeScoreRepo) ListByTournamentRound(_ context.Context, tournamentID, round int) ([]models.PlayerScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scores := make([]models.PlayerScore, 0)
	for _, score := range r.scores {
		if score.TournamentID == tournamentID && score.Round == round {
			scores = append(scores, *score)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].PlayerID < scores[j].PlayerID })
	return scores, nil
}

func (r *fakeScoreRepo) get(tournamentID, playerID, round int) *models.PlayerScore {
	r.mu.Lock()
	defer r.mu.Unlock()
	score, ok := r.scores[scoreKey(tournamentID, playerID, round)]
	if !ok {
		return nil
	}
	clone := *score
	return &clone
}

type fakeLeagueRepo struct {
	seq      int
	leagues  map[int]*models.League
	teamRepo *fakeTeamRepo
}

func newFakeLeagueRepo(teamRepo *fakeTeamRepo) *fakeLeagueRepo {
	return &fakeLeagueRepo{leagues: make(map[int]*models.League), teamRepo: teamRepo}
}

func (r *fakeLeagueRepo) Create(_ context.Context, l *models.League) error {
	for _, existing := range r.leagues {
		if existing.InviteCode == l.InviteCode {
			return repositories.ErrLeagueInviteCodeConflict
		}
	}
	r.seq++
	l.ID = r.seq
	l.CreatedAt = time.Now()
	clone := *l
	r.leagues[l.ID] = &clone
	return nil
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, id int) (*models.League, error) {
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *fakeLeagueRepo) GetByInviteCode(_ context.Context, code string) (*models.League, error) {
	for _, l := range r.leagues {
		if l.InviteCode == code {
			clone := *l
			return &clone, nil
		}
	}
	return nil, repositories.ErrLeagueNotFound
}

func (r *fakeLeagueRepo) ListByUser(_ context.Context, userID int) ([]models.League, error) {
	leagues := make([]models.League, 0)
	for _, l := range r.leagues {
		for _, team := range r.teamRepo.teams {
			if team.LeagueID == l.ID && team.UserID == userID {
				leagues = append(leagues, *l)
				break
			}
		}
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i].ID < leagues[j].ID })
	return leagues, nil
}

func (r *fakeLeagueRepo) UpdateStatus(_ context.Context, id int, status models.LeagueStatus) error {
	l, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	l.Status = status
	return nil
}

func (r *fakeLeagueRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	l, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	l.LogoKey = logoKey
	return nil
}

func (r *fakeLeagueRepo) CountTeams(_ context.Context, leagueID int) (int, error) {
	count := 0
	for _, team := range r.teamRepo.teams {
		if team.LeagueID == leagueID {
			count++
		}
	}
	return count, nil
}

type fakeTeamRepo struct {
	seq       int
	draftSeq  int
	teams     map[int]*models.Team
	selection map[int][]models.TeamPlayer // teamID -> drafted players
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:     make(map[int]*models.Team),
		selection: make(map[int][]models.TeamPlayer),
	}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	for _, existing := range r.teams {
		if existing.LeagueID == t.LeagueID && existing.UserID == t.UserID {
			return repositories.ErrTeamUserConflict
		}
	}
	r.seq++
	t.ID = r.seq
	// Возрастающее время создания фиксирует порядок для tie-break.
	t.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	clone := *t
	r.teams[t.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTeamRepo) GetByLeagueAndUser(_ context.Context, leagueID, userID int) (*models.Team, error) {
	for _, t := range r.teams {
		if t.LeagueID == leagueID && t.UserID == userID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByLeague(_ context.Context, leagueID int) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	for _, t := range r.teams {
		if t.LeagueID == leagueID {
			teams = append(teams, *t)
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return teams[i].ID < teams[j].ID
	})
	return teams, nil
}

func (r *fakeTeamRepo) AddPlayer(_ context.Context, leagueID int, tp *models.TeamPlayer) error {
	for teamID, selections := range r.selection {
		team := r.teams[teamID]
		if team == nil || team.LeagueID != leagueID {
			continue
		}
		for _, existing := range selections {
			if existing.PlayerID == tp.PlayerID {
				if teamID == tp.TeamID {
					return repositories.ErrTeamPlayerDuplicate
				}
				return repositories.ErrTeamPlayerDrafted
			}
		}
	}
	r.draftSeq++
	tp.ID = r.draftSeq
	tp.DraftedAt = time.Now()
	r.selection[tp.TeamID] = append(r.selection[tp.TeamID], *tp)
	return nil
}

func (r *fakeTeamRepo) RemovePlayer(_ context.Context, teamID, playerID int) error {
	selections := r.selection[teamID]
	for i, tp := range selections {
		if tp.PlayerID == playerID {
			r.selection[teamID] = append(selections[:i], selections[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamPlayerNotFound
}

func (r *fakeTeamRepo) ListPlayers(_ context.Context, teamID int) ([]models.TeamPlayer, error) {
	return append([]models.TeamPlayer(nil), r.selection[teamID]...), nil
}

func (r *fakeTeamRepo) CountPlayers(_ context.Context, teamID int) (int, error) {
	return len(r.selection[teamID]), nil
}

type fakeProvider struct {
	tournament  *golfdata.Tournament
	leaderboard *golfdata.Leaderboard
	err         error
}

func (p *fakeProvider) GetTournament(_ context.Context, _ string, _ int) (*golfdata.Tournament, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.tournament, nil
}

func (p *fakeProvider) GetLeaderboard(_ context.Context, _ int, _ string, _ int) (*golfdata.Leaderboard, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.leaderboard, nil
}
