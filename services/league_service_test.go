package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/fantasy-golf/models"
)

type leagueHarness struct {
	leagueRepo     *fakeLeagueRepo
	teamRepo       *fakeTeamRepo
	tournamentRepo *fakeTournamentRepo
	service        *LeagueService
	tournament     *models.Tournament
}

func newLeagueHarness(t *testing.T) *leagueHarness {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	leagueRepo := newFakeLeagueRepo(teamRepo)
	tournamentRepo := newFakeTournamentRepo()

	tournament := &models.Tournament{
		TournID: "014",
		Name:    "The Masters",
		Year:    2026,
		Status:  models.TournamentUpcoming,
	}
	require.NoError(t, tournamentRepo.Create(context.Background(), nil, tournament))

	return &leagueHarness{
		leagueRepo:     leagueRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		service:        NewLeagueService(leagueRepo, teamRepo, tournamentRepo, nil, testLogger()),
		tournament:     tournament,
	}
}

func leagueAdmin(id int, username string) *models.User {
	return &models.User{ID: id, Username: username, Role: models.RoleLeagueAdmin, Approved: true}
}

func member(id int, username string) *models.User {
	return &models.User{ID: id, Username: username, Role: models.RoleMember, Approved: true}
}

func validCreateInput(h *leagueHarness) CreateLeagueInput {
	return CreateLeagueInput{
		Name:          "Major Pool",
		TournamentID:  h.tournament.ID,
		MaxMembers:    8,
		TeamSize:      4,
		DraftDeadline: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateLeague(t *testing.T) {
	h := newLeagueHarness(t)
	admin := leagueAdmin(1, "alice")

	league, err := h.service.CreateLeague(context.Background(), admin, validCreateInput(h))
	require.NoError(t, err)

	assert.Equal(t, models.LeagueDraft, league.Status)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), league.InviteCode)
	require.NotNil(t, league.AdminID)
	assert.Equal(t, admin.ID, *league.AdminID)

	// Создатель сразу получает команду в своей лиге.
	team, err := h.teamRepo.GetByLeagueAndUser(context.Background(), league.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's Team", team.Name)
}

func TestCreateLeagueRequiresLeagueAdmin(t *testing.T) {
	h := newLeagueHarness(t)

	_, err := h.service.CreateLeague(context.Background(), member(1, "bob"), validCreateInput(h))
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestCreateLeagueValidation(t *testing.T) {
	h := newLeagueHarness(t)
	admin := leagueAdmin(1, "alice")

	input := validCreateInput(h)
	input.Name = "   "
	_, err := h.service.CreateLeague(context.Background(), admin, input)
	assert.ErrorIs(t, err, ErrLeagueNameRequired)

	input = validCreateInput(h)
	input.TeamSize = 0
	_, err = h.service.CreateLeague(context.Background(), admin, input)
	assert.ErrorIs(t, err, ErrInvalidTeamSize)

	input = validCreateInput(h)
	input.DraftDeadline = time.Now().Add(-time.Hour)
	_, err = h.service.CreateLeague(context.Background(), admin, input)
	assert.ErrorIs(t, err, ErrDeadlineInPast)

	input = validCreateInput(h)
	input.TournamentID = 999
	_, err = h.service.CreateLeague(context.Background(), admin, input)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestJoinLeague(t *testing.T) {
	h := newLeagueHarness(t)
	league, err := h.service.CreateLeague(context.Background(), leagueAdmin(1, "alice"), validCreateInput(h))
	require.NoError(t, err)

	// Код принимается без учёта регистра.
	team, err := h.service.JoinLeague(context.Background(), member(2, "bob"), JoinLeagueInput{
		InviteCode: "  " + league.InviteCode + " ",
		TeamName:   "Bob's Bombers",
	})
	require.NoError(t, err)
	assert.Equal(t, league.ID, team.LeagueID)
	assert.Equal(t, "Bob's Bombers", team.Name)

	// Повторное вступление того же пользователя.
	_, err = h.service.JoinLeague(context.Background(), member(2, "bob"), JoinLeagueInput{InviteCode: league.InviteCode})
	assert.ErrorIs(t, err, ErrAlreadyInLeague)
}

func TestJoinLeagueUnknownCode(t *testing.T) {
	h := newLeagueHarness(t)

	_, err := h.service.JoinLeague(context.Background(), member(2, "bob"), JoinLeagueInput{InviteCode: "NOPE0000"})
	assert.ErrorIs(t, err, ErrInviteCodeNotFound)
}

func TestJoinLeagueFull(t *testing.T) {
	h := newLeagueHarness(t)
	input := validCreateInput(h)
	input.MaxMembers = 2
	league, err := h.service.CreateLeague(context.Background(), leagueAdmin(1, "alice"), input)
	require.NoError(t, err)

	_, err = h.service.JoinLeague(context.Background(), member(2, "bob"), JoinLeagueInput{InviteCode: league.InviteCode})
	require.NoError(t, err)

	_, err = h.service.JoinLeague(context.Background(), member(3, "carol"), JoinLeagueInput{InviteCode: league.InviteCode})
	assert.ErrorIs(t, err, ErrLeagueFull)
}

func TestJoinLeagueAfterDeadline(t *testing.T) {
	h := newLeagueHarness(t)
	league, err := h.service.CreateLeague(context.Background(), leagueAdmin(1, "alice"), validCreateInput(h))
	require.NoError(t, err)

	h.leagueRepo.leagues[league.ID].DraftDeadline = time.Now().Add(-time.Minute)

	_, err = h.service.JoinLeague(context.Background(), member(2, "bob"), JoinLeagueInput{InviteCode: league.InviteCode})
	assert.ErrorIs(t, err, ErrDraftDeadlinePassed)
}

func TestGetLeagueMembersOnly(t *testing.T) {
	h := newLeagueHarness(t)
	created, err := h.service.CreateLeague(context.Background(), leagueAdmin(1, "alice"), validCreateInput(h))
	require.NoError(t, err)

	league, err := h.service.GetLeague(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, league.MemberCount)
	require.NotNil(t, league.Tournament)
	assert.Equal(t, "The Masters", league.Tournament.Name)

	_, err = h.service.GetLeague(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGetLeagueActivatesAfterDeadline(t *testing.T) {
	h := newLeagueHarness(t)
	created, err := h.service.CreateLeague(context.Background(), leagueAdmin(1, "alice"), validCreateInput(h))
	require.NoError(t, err)

	h.leagueRepo.leagues[created.ID].DraftDeadline = time.Now().Add(-time.Minute)

	league, err := h.service.GetLeague(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeagueActive, league.Status)
}

func TestListMyLeagues(t *testing.T) {
	h := newLeagueHarness(t)
	admin := leagueAdmin(1, "alice")

	first, err := h.service.CreateLeague(context.Background(), admin, validCreateInput(h))
	require.NoError(t, err)

	input := validCreateInput(h)
	input.Name = "Second Pool"
	_, err = h.service.CreateLeague(context.Background(), leagueAdmin(2, "bob"), input)
	require.NoError(t, err)

	leagues, err := h.service.ListMyLeagues(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Len(t, leagues, 1)
	assert.Equal(t, first.ID, leagues[0].ID)
}
