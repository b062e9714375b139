package handlers

import (
	"errors"
	"net/http"

	"github.com/fairwayleague/fantasy-golf/middleware"
	"github.com/fairwayleague/fantasy-golf/services"
)

type LeagueHandler struct {
	leagueService  *services.LeagueService
	scoringService *services.ScoringService
}

func NewLeagueHandler(leagueService *services.LeagueService, scoringService *services.ScoringService) *LeagueHandler {
	return &LeagueHandler{
		leagueService:  leagueService,
		scoringService: scoringService,
	}
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}

	var input services.CreateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}

	var input services.JoinLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.leagueService.JoinLeague(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}

	leagues, err := h.leagueService.ListMyLeagues(r.Context(), actor.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}
	leagueID, err := idParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetLeague(r.Context(), actor.ID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}
	leagueID, err := idParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.leagueService.ListMembers(r.Context(), actor.ID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings отдаёт таблицу лиги. Параметр round ограничивает счёт верхней
// границей раунда.
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}
	leagueID, err := idParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := queryRound(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Таблица доступна только участникам.
	if _, err := h.leagueService.GetLeague(r.Context(), actor.ID, leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	standings, err := h.scoringService.LeagueStandings(r.Context(), leagueID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo принимает тело запроса как содержимое файла, тип берётся из
// Content-Type.
func (h *LeagueHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		serverErrorResponse(w, r, errors.New("authenticated user missing from context"))
		return
	}
	leagueID, err := idParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.UploadLogo(r.Context(), actor, leagueID, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
