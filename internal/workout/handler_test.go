package workout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/progression"
	"github.com/2beens/fitquest/internal/workout"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(f *fixture) *mux.Router {
	r := mux.NewRouter()
	workout.NewHandler(f.service).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, target, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHandler_Profiles(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rr := doRequest(r, http.MethodPost, "/profiles", map[string]any{
		"name":               "Ana",
		"age":                34,
		"fitnessLevel":       "advanced",
		"defaultEnvironment": "calisthenics",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ana := decode[profile.Profile](t, rr)
	assert.NotEmpty(t, ana.ID)
	assert.Equal(t, profile.LevelAdvanced, ana.FitnessLevel)
	assert.Equal(t, equipment.Calisthenics, ana.DefaultEnvironment)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	// defaults fill everything that is missing
	rr = doRequest(r, http.MethodPost, "/profiles", map[string]any{})
	require.Equal(t, http.StatusCreated, rr.Code)
	user := decode[profile.Profile](t, rr)
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, equipment.HomeNoEquipment, user.DefaultEnvironment)

	rr = doRequest(r, http.MethodGet, "/profiles", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[workout.ProfilesResponse](t, rr)
	assert.Len(t, list.Profiles, 2)
	assert.Equal(t, ana.ID, list.ActiveID)

	rr = doRequest(r, http.MethodPut, "/profiles/active", workout.SetActiveRequest{ID: user.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(r, http.MethodGet, "/profiles/active", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, user.ID, decode[profile.Profile](t, rr).ID)

	rr = doRequest(r, http.MethodPut, "/profiles/"+ana.ID, map[string]any{"name": "Ana B", "age": 35})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[profile.Profile](t, rr)
	assert.Equal(t, "Ana B", updated.Name)
	assert.Equal(t, ana.CreatedAt, updated.CreatedAt)

	rr = doRequest(r, http.MethodGet, "/profiles/"+ana.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 35, decode[profile.Profile](t, rr).Age)

	rr = doRequest(r, http.MethodDelete, "/profiles/"+ana.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ana.ID, decode[workout.DeleteProfileResponse](t, rr).DeletedID)

	rr = doRequest(r, http.MethodGet, "/profiles/"+ana.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doRequest(r, http.MethodPut, "/profiles/"+ana.ID, map[string]any{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doRequest(r, http.MethodPut, "/profiles/active", workout.SetActiveRequest{ID: ana.ID})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doRequest(r, http.MethodPut, "/profiles/active", workout.SetActiveRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_ProfileLimit(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	for i := 0; i < profile.MaxProfiles; i++ {
		rr := doRequest(r, http.MethodPost, "/profiles", map[string]any{"name": "p"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := doRequest(r, http.MethodPost, "/profiles", map[string]any{"name": "one too many"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_RegenerateMiddleware(t *testing.T) {
	f := newFixture(t)
	limited := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		})
	}
	r := mux.NewRouter()
	workout.NewHandler(f.service).RegisterRoutes(r, limited)
	p := f.createProfile(t, "Ana")

	rr := doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/plan/regenerate", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// other routes are not wrapped
	rr = doRequest(r, http.MethodGet, "/profiles/"+p.ID+"/plan/today", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_BadRequests(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	p := f.createProfile(t, "Ana")

	req := httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader([]byte(`{"name":"x"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/feedback", map[string]any{"feedback": "meh"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/feedback", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/plan/complete", map[string]any{"feedback": "meh"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/plan/sets", map[string]any{"exerciseIndex": 0, "reps": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_WorkoutFlow(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	p := f.createProfile(t, "Ana")
	base := "/profiles/" + p.ID

	rr := doRequest(r, http.MethodPost, base+"/plan/complete", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(r, http.MethodGet, base+"/plan/today", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	today := decode[plan.WorkoutPlan](t, rr)
	require.NotEmpty(t, today.Exercises)
	assert.Equal(t, equipment.HomeNoEquipment, today.Environment)
	for _, ex := range today.Exercises {
		assert.NotEmpty(t, ex.VideoSearchURL)
	}

	rr = doRequest(r, http.MethodPost, base+"/plan/sets", workout.LogSetRequest{ExerciseIndex: 0, Reps: 7})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	logged := decode[plan.WorkoutPlan](t, rr)
	assert.Equal(t, 7, logged.Exercises[0].CompletedSets[0].Reps)

	rr = doRequest(r, http.MethodPost, base+"/plan/sets", workout.LogSetRequest{ExerciseIndex: 99})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(r, http.MethodPost, base+"/plan/complete", map[string]any{"feedback": "too_hard"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	completion := decode[workout.Completion](t, rr)
	assert.True(t, completion.Plan.Completed)
	assert.Positive(t, completion.Result.XPEarned)
	assert.Equal(t, 1.5, completion.Result.Progression.DifficultyModifier)

	rr = doRequest(r, http.MethodPost, base+"/plan/complete", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doRequest(r, http.MethodPost, base+"/feedback", map[string]any{"feedback": "too_easy"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2.0, decode[progression.State](t, rr).DifficultyModifier)

	rr = doRequest(r, http.MethodGet, base+"/progression", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[progression.State](t, rr)
	assert.Equal(t, completion.Result.XPEarned, state.XP)
	assert.Len(t, state.Badges, 10)

	rr = doRequest(r, http.MethodGet, base+"/plan/today?environment=home_gym&accessories=kettlebell,%20mat", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	overridden := decode[plan.WorkoutPlan](t, rr)
	assert.Equal(t, equipment.HomeGym, overridden.Environment)
	assert.Equal(t, []string{"kettlebell", "mat"}, overridden.Accessories)
	assert.False(t, overridden.Completed)

	rr = doRequest(r, http.MethodPost, base+"/plan/regenerate", plan.SessionOverride{Environment: equipment.Outdoor})
	require.Equal(t, http.StatusOK, rr.Code)
	regenerated := decode[plan.WorkoutPlan](t, rr)
	assert.Equal(t, equipment.Outdoor, regenerated.Environment)
	assert.NotEqual(t, overridden.ID, regenerated.ID)

	rr = doRequest(r, http.MethodPost, base+"/plan/regenerate", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, equipment.HomeNoEquipment, decode[plan.WorkoutPlan](t, rr).Environment)

	rr = doRequest(r, http.MethodGet, base+"/plans", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[workout.PlansResponse](t, rr).Plans, 1)
}

func TestHandler_AccessoriesWithoutEnvironment(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	p := f.createProfile(t, "Ana")
	base := "/profiles/" + p.ID

	rr := doRequest(r, http.MethodPost, base+"/plan/regenerate", map[string]any{"accessories": []string{"mat"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	fromBody := decode[plan.WorkoutPlan](t, rr)
	assert.Equal(t, equipment.HomeNoEquipment, fromBody.Environment)
	assert.Equal(t, []string{"mat"}, fromBody.Accessories)

	rr = doRequest(r, http.MethodPost, base+"/plan/regenerate?accessories=kettlebell", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	fromQuery := decode[plan.WorkoutPlan](t, rr)
	assert.Equal(t, equipment.HomeNoEquipment, fromQuery.Environment)
	assert.Equal(t, []string{"kettlebell"}, fromQuery.Accessories)

	rr = doRequest(r, http.MethodGet, base+"/plan/today?accessories=mat", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"mat"}, decode[plan.WorkoutPlan](t, rr).Accessories)
}

func TestHandler_UnknownProfile(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/profiles/nope/plan/today", nil},
		{http.MethodPost, "/profiles/nope/plan/regenerate", nil},
		{http.MethodPost, "/profiles/nope/plan/sets", workout.LogSetRequest{}},
		{http.MethodPost, "/profiles/nope/plan/complete", nil},
		{http.MethodPost, "/profiles/nope/feedback", map[string]any{"feedback": "too_hard"}},
		{http.MethodGet, "/profiles/nope/progression", nil},
		{http.MethodGet, "/profiles/nope/plans", nil},
		{http.MethodDelete, "/profiles/nope", nil},
	} {
		rr := doRequest(r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.path)
	}

	rr := doRequest(r, http.MethodGet, "/profiles/active", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_SaveFailure(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	p := f.createProfile(t, "Ana")

	_, err := f.service.TodayPlan(context.Background(), p.ID, nil)
	require.NoError(t, err)

	f.internals.Backend.FailWrites = errors.New("disk quota exceeded")
	defer func() { f.internals.Backend.FailWrites = nil }()

	rr := doRequest(r, http.MethodPost, "/profiles/"+p.ID+"/plan/complete", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "could not save\n", rr.Body.String())

	rr = doRequest(r, http.MethodPost, "/profiles", map[string]any{"name": "Ben"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "could not save\n", rr.Body.String())
}
