package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/fantasy-golf/models"
)

type teamHarness struct {
	teamRepo   *fakeTeamRepo
	leagueRepo *fakeLeagueRepo
	playerRepo *fakePlayerRepo
	scoreRepo  *fakeScoreRepo
	service    *TeamService
	league     *models.League
}

func newTeamHarness(t *testing.T, teamSize int, deadline time.Time) *teamHarness {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	leagueRepo := newFakeLeagueRepo(teamRepo)
	playerRepo := newFakePlayerRepo()
	scoreRepo := newFakeScoreRepo()

	league := &models.League{
		TournamentID:  1,
		Name:          "Major Pool",
		InviteCode:    "BBBB2222",
		MaxMembers:    10,
		TeamSize:      teamSize,
		Status:        models.LeagueDraft,
		DraftDeadline: deadline,
	}
	require.NoError(t, leagueRepo.Create(context.Background(), league))

	scoring := NewScoringService(leagueRepo, teamRepo, scoreRepo)
	return &teamHarness{
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		scoreRepo:  scoreRepo,
		service:    NewTeamService(teamRepo, leagueRepo, playerRepo, scoring, testLogger()),
		league:     league,
	}
}

// addFieldPlayer создаёт игрока и заявляет его на турнир лиги.
func (h *teamHarness) addFieldPlayer(t *testing.T, externalID string) *models.Player {
	t.Helper()
	player := &models.Player{PlayerID: externalID, FullName: "Player " + externalID}
	require.NoError(t, h.playerRepo.GetOrCreate(context.Background(), nil, player))
	require.NoError(t, h.playerRepo.AddFieldEntry(context.Background(), nil, &models.FieldEntry{
		TournamentID: h.league.TournamentID,
		PlayerID:     player.ID,
	}))
	return player
}

func (h *teamHarness) addTeam(t *testing.T, userID int, name string) *models.Team {
	t.Helper()
	team := &models.Team{LeagueID: h.league.ID, UserID: userID, Name: name}
	require.NoError(t, h.teamRepo.Create(context.Background(), team))
	return team
}

func TestDraftPlayerSuccess(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	tp, err := h.service.DraftPlayer(context.Background(), 1, team.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, tp.PlayerID)
	assert.Equal(t, team.ID, tp.TeamID)

	count, err := h.teamRepo.CountPlayers(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDraftPlayerRequiresOwnership(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	_, err := h.service.DraftPlayer(context.Background(), 2, team.ID, player.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestDraftPlayerAfterDeadline(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(-time.Minute))
	team := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, player.ID)
	assert.ErrorIs(t, err, ErrDraftDeadlinePassed)
}

func TestDraftPlayerNotInField(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")

	outsider := &models.Player{PlayerID: "99999", FullName: "Not Entered"}
	require.NoError(t, h.playerRepo.GetOrCreate(context.Background(), nil, outsider))

	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrPlayerNotInField)
}

func TestDraftPlayerUnknownPlayer(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")

	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, 777)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestDraftPlayerUniqueWithinLeague(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	teamOne := h.addTeam(t, 1, "Team One")
	teamTwo := h.addTeam(t, 2, "Team Two")
	player := h.addFieldPlayer(t, "46046")

	_, err := h.service.DraftPlayer(context.Background(), 1, teamOne.ID, player.ID)
	require.NoError(t, err)

	// Та же лига, другая команда.
	_, err = h.service.DraftPlayer(context.Background(), 2, teamTwo.ID, player.ID)
	assert.ErrorIs(t, err, ErrPlayerAlreadyDrafted)

	// Та же команда повторно.
	_, err = h.service.DraftPlayer(context.Background(), 1, teamOne.ID, player.ID)
	assert.ErrorIs(t, err, ErrPlayerAlreadyOnTeam)
}

func TestDraftSamePlayerInDifferentLeagues(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	teamOne := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	other := &models.League{
		TournamentID:  h.league.TournamentID,
		Name:          "Second Pool",
		InviteCode:    "CCCC3333",
		MaxMembers:    10,
		TeamSize:      4,
		Status:        models.LeagueDraft,
		DraftDeadline: time.Now().Add(time.Hour),
	}
	require.NoError(t, h.leagueRepo.Create(context.Background(), other))
	otherTeam := &models.Team{LeagueID: other.ID, UserID: 1, Name: "Elsewhere"}
	require.NoError(t, h.teamRepo.Create(context.Background(), otherTeam))

	_, err := h.service.DraftPlayer(context.Background(), 1, teamOne.ID, player.ID)
	require.NoError(t, err)

	// Уникальность действует внутри лиги, в другой лиге игрок свободен.
	tp, err := h.service.DraftPlayer(context.Background(), 1, otherTeam.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, tp.PlayerID)
	assert.Equal(t, otherTeam.ID, tp.TeamID)
}

func TestDraftPlayerTeamCapacity(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")

	for i := 0; i < 4; i++ {
		player := h.addFieldPlayer(t, "1000"+strconv.Itoa(i))
		_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, player.ID)
		require.NoError(t, err)
	}

	fifth := h.addFieldPlayer(t, "10005")
	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, fifth.ID)
	assert.ErrorIs(t, err, ErrTeamFull)
}

func TestUndraftPlayer(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, player.ID)
	require.NoError(t, err)

	require.NoError(t, h.service.UndraftPlayer(context.Background(), 1, team.ID, player.ID))

	count, err := h.teamRepo.CountPlayers(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = h.service.UndraftPlayer(context.Background(), 1, team.ID, player.ID)
	assert.ErrorIs(t, err, ErrTeamPlayerNotFound)
}

func TestUndraftPlayerAfterDeadline(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	team := h.addTeam(t, 1, "Team One")
	player := h.addFieldPlayer(t, "46046")

	_, err := h.service.DraftPlayer(context.Background(), 1, team.ID, player.ID)
	require.NoError(t, err)

	h.leagueRepo.leagues[h.league.ID].DraftDeadline = time.Now().Add(-time.Minute)

	err = h.service.UndraftPlayer(context.Background(), 1, team.ID, player.ID)
	assert.ErrorIs(t, err, ErrDraftDeadlinePassed)
}

func TestGetTeamVisibleToLeagueMembers(t *testing.T) {
	h := newTeamHarness(t, 4, time.Now().Add(time.Hour))
	teamOne := h.addTeam(t, 1, "Team One")
	h.addTeam(t, 2, "Team Two")

	detail, err := h.service.GetTeam(context.Background(), 2, teamOne.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Team One", detail.Team.Name)
	assert.NotNil(t, detail.Score)

	// Пользователь без команды в лиге не видит чужие составы.
	_, err = h.service.GetTeam(context.Background(), 3, teamOne.ID, 0)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}
