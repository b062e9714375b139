package handlers

import (
	"errors"
	"net/http"

	"github.com/fairwayleague/fantasy-golf/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
	syncService       *services.SyncService
}

func NewTournamentHandler(tournamentService *services.TournamentService, syncService *services.SyncService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		syncService:       syncService,
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetField(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	field, err := h.tournamentService.GetField(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"field": field}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := queryRound(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if round == 0 {
		badRequestResponse(w, r, errors.New("round query parameter is required"))
		return
	}

	scores, err := h.tournamentService.GetLeaderboard(r.Context(), id, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round, "scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Import регистрирует турнир провайдера в системе вместе с полем игроков.
func (h *TournamentHandler) Import(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournID string `json:"tourn_id"`
		Year    int    `json:"year"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournID == "" || input.Year == 0 {
		badRequestResponse(w, r, errors.New("tourn_id and year are required"))
		return
	}

	tournament, err := h.tournamentService.ImportTournament(r.Context(), input.TournID, input.Year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Sync запускает немедленный ингест лидерборда для турнира.
func (h *TournamentHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.syncService.SyncTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
