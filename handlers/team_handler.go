package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/josvita0323/devhost-2025-sub000/middleware"
	"github.com/josvita0323/devhost-2025-sub000/services"
)

type TeamHandler struct {
	teamService     services.TeamService
	flagshipEventID string
}

func NewTeamHandler(ts services.TeamService, flagshipEventID string) *TeamHandler {
	return &TeamHandler{
		teamService:     ts,
		flagshipEventID: flagshipEventID,
	}
}

// --- Поверхность /events/{eventID}/teams ---

func (h *TeamHandler) CreateEventTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateTeamInput
	if err := readJSONAllowEmpty(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), chi.URLParam(r, "eventID"), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team_id": team.ID,
		"team":    team,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) JoinEventTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.JoinTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.LeaderEmail == "" && input.TeamID == "" {
		badRequestResponse(w, r, errors.New("leader_email or team_id is required"))
		return
	}

	team, err := h.teamService.Join(r.Context(), chi.URLParam(r, "eventID"), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team_id": team.ID,
		"team":    team,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EventTeamMine возвращает команду вызывающего или null.
func (h *TeamHandler) EventTeamMine(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	team, err := h.teamService.GetMine(r.Context(), chi.URLParam(r, "eventID"), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetEventTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetByID(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListEventTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) RemoveEventTeamMember(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		MemberEmail string `json:"member_email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MemberEmail == "" {
		badRequestResponse(w, r, errors.New("member_email is required"))
		return
	}

	team, err := h.teamService.RemoveMember(
		r.Context(),
		chi.URLParam(r, "eventID"),
		chi.URLParam(r, "teamID"),
		caller,
		input.MemberEmail,
	)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": team.Members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) DisbandEventTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	err = h.teamService.Disband(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "teamID"), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success": true,
		"message": "team disbanded",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkEventTeamPaid — административный обход шлюза, см. /payments/verify
// для обычного потока.
func (h *TeamHandler) MarkEventTeamPaid(w http.ResponseWriter, r *http.Request) {
	_, err := h.teamService.MarkPaid(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// --- Легаси-поверхность /team/* (флагманское событие) ---

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == "" {
		badRequestResponse(w, r, errors.New("name is required"))
		return
	}

	team, err := h.teamService.Create(r.Context(), h.flagshipEventID, caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.JoinTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TeamID == "" && input.LeaderEmail == "" {
		badRequestResponse(w, r, errors.New("team_id or leader_email is required"))
		return
	}

	team, err := h.teamService.Join(r.Context(), h.flagshipEventID, caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.teamService.Leave(r.Context(), h.flagshipEventID, caller); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) RemovePeer(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberRef := input.UID
	if memberRef == "" {
		memberRef = input.Email
	}
	if memberRef == "" {
		badRequestResponse(w, r, errors.New("uid or email is required"))
		return
	}

	team, err := h.teamService.GetMine(r.Context(), h.flagshipEventID, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if team == nil {
		notFoundResponse(w, r)
		return
	}

	updated, err := h.teamService.RemoveMember(r.Context(), h.flagshipEventID, team.ID, caller, memberRef)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) SetDriveLink(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		DriveLink string `json:"drive_link"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.DriveLink == "" {
		badRequestResponse(w, r, errors.New("drive_link is required"))
		return
	}

	team, err := h.teamService.SetDriveLink(r.Context(), h.flagshipEventID, caller, input.DriveLink)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) FinalizeTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	team, err := h.teamService.Finalize(r.Context(), h.flagshipEventID, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	team, err := h.teamService.GetForUser(r.Context(), caller, r.URL.Query().Get("team_id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
