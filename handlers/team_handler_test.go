package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/josvita0323/devhost-2025-sub000/middleware"
	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testEventID = "hackathon"

type teamServiceMock struct{ mock.Mock }

var _ services.TeamService = (*teamServiceMock)(nil)

func (m *teamServiceMock) Create(ctx context.Context, eventID string, caller models.Identity, input services.CreateTeamInput) (*models.Team, error) {
	args := m.Called(ctx, eventID, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) Join(ctx context.Context, eventID string, caller models.Identity, input services.JoinTeamInput) (*models.Team, error) {
	args := m.Called(ctx, eventID, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) Leave(ctx context.Context, eventID string, caller models.Identity) error {
	args := m.Called(ctx, eventID, caller)
	return args.Error(0)
}

func (m *teamServiceMock) RemoveMember(ctx context.Context, eventID, teamID string, caller models.Identity, memberRef string) (*models.Team, error) {
	args := m.Called(ctx, eventID, teamID, caller, memberRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) SetDriveLink(ctx context.Context, eventID string, caller models.Identity, link string) (*models.Team, error) {
	args := m.Called(ctx, eventID, caller, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) Finalize(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error) {
	args := m.Called(ctx, eventID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) Disband(ctx context.Context, eventID, teamID string, caller models.Identity) error {
	args := m.Called(ctx, eventID, teamID, caller)
	return args.Error(0)
}

func (m *teamServiceMock) GetMine(ctx context.Context, eventID string, caller models.Identity) (*models.Team, error) {
	args := m.Called(ctx, eventID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	args := m.Called(ctx, eventID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) GetForUser(ctx context.Context, caller models.Identity, explicitTeamID string) (*models.Team, error) {
	args := m.Called(ctx, caller, explicitTeamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamServiceMock) List(ctx context.Context, eventID string) ([]models.Team, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *teamServiceMock) MarkPaid(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	args := m.Called(ctx, eventID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func teamRouter(svc services.TeamService) *chi.Mux {
	h := NewTeamHandler(svc, testEventID)
	r := chi.NewRouter()
	r.Post("/events/{eventID}/teams/create", h.CreateEventTeam)
	r.Post("/events/{eventID}/teams/join", h.JoinEventTeam)
	r.Post("/events/{eventID}/teams/me", h.EventTeamMine)
	r.Delete("/events/{eventID}/teams/{teamID}", h.DisbandEventTeam)
	r.Post("/team/create", h.CreateTeam)
	r.Post("/team/join", h.JoinTeam)
	r.Post("/team/finalize", h.FinalizeTeam)
	r.Get("/team/get", h.GetTeam)
	return r
}

func authedRequest(method, target string, body []byte, identity models.Identity) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func testCaller() models.Identity {
	return models.Identity{UID: "u1", Email: "u1@example.com", Name: "User One", Role: models.RoleUser}
}

func sampleTeam() *models.Team {
	return &models.Team{
		ID:          "u1",
		EventID:     testEventID,
		Name:        "testers",
		LeaderUID:   "u1",
		LeaderEmail: "u1@example.com",
		Members:     []models.TeamMember{{UID: "u1", Name: "User One", Email: "u1@example.com"}},
	}
}

func TestCreateEventTeamHandler(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("Create", mock.Anything, testEventID, testCaller(), services.CreateTeamInput{}).
		Return(sampleTeam(), nil)

	// Тело не обязательно: имя команды опционально на событийной поверхности.
	req := authedRequest(http.MethodPost, "/events/hackathon/teams/create", nil, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		TeamID string      `json:"team_id"`
		Team   models.Team `json:"team"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "u1", body.TeamID)
	require.Len(t, body.Team.Members, 1)
	svc.AssertExpectations(t)
}

func TestCreateEventTeamUnauthenticated(t *testing.T) {
	svc := &teamServiceMock{}

	req := httptest.NewRequest(http.MethodPost, "/events/hackathon/teams/create", nil)
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinEventTeamFull(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("Join", mock.Anything, testEventID, testCaller(), services.JoinTeamInput{TeamID: "t1"}).
		Return(nil, services.ErrTeamFull)

	body := []byte(`{"team_id":"t1"}`)
	req := authedRequest(http.MethodPost, "/events/hackathon/teams/join", body, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "error")
}

func TestJoinEventTeamMissingTarget(t *testing.T) {
	svc := &teamServiceMock{}

	req := authedRequest(http.MethodPost, "/events/hackathon/teams/join", []byte(`{}`), testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventTeamMineNull(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("GetMine", mock.Anything, testEventID, testCaller()).Return(nil, nil)

	req := authedRequest(http.MethodPost, "/events/hackathon/teams/me", nil, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Team *models.Team `json:"team"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Nil(t, body.Team)
}

func TestDisbandEventTeamForbidden(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("Disband", mock.Anything, testEventID, "t1", testCaller()).
		Return(services.ErrForbiddenOperation)

	req := authedRequest(http.MethodDelete, "/events/hackathon/teams/t1", nil, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLegacyCreateTeamRequiresName(t *testing.T) {
	svc := &teamServiceMock{}

	req := authedRequest(http.MethodPost, "/team/create", []byte(`{"name":""}`), testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLegacyCreateTeamRoutesToFlagship(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("Create", mock.Anything, testEventID, testCaller(), services.CreateTeamInput{Name: "testers"}).
		Return(sampleTeam(), nil)

	req := authedRequest(http.MethodPost, "/team/create", []byte(`{"name":"testers"}`), testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestLegacyFinalizeRejected(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("Finalize", mock.Anything, testEventID, testCaller()).
		Return(nil, services.ErrFinalizeRejected)

	req := authedRequest(http.MethodPost, "/team/finalize", nil, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLegacyGetTeamNotFound(t *testing.T) {
	svc := &teamServiceMock{}
	svc.On("GetForUser", mock.Anything, testCaller(), "").
		Return(nil, services.ErrTeamNotFound)

	req := authedRequest(http.MethodGet, "/team/get", nil, testCaller())
	rec := httptest.NewRecorder()
	teamRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
