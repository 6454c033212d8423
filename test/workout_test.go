package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/fitquest/internal/catalog"
	"github.com/2beens/fitquest/internal/middleware"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/progression"
	"github.com/2beens/fitquest/internal/workout"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, body any, dst any) int {
	t := s.T()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(middleware.HeaderAPIToken, testAPIToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dst != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) createProfile(ctx context.Context) *profile.Profile {
	var p profile.Profile
	status := s.do(ctx, http.MethodPost, "/profiles", map[string]any{
		"name":   gofakeit.FirstName(),
		"age":    gofakeit.Number(18, 60),
		"weight": gofakeit.Float64Range(55, 95),
		"height": gofakeit.Float64Range(155, 195),
	}, &p)
	require.Equal(s.T(), http.StatusCreated, status)
	require.NotEmpty(s.T(), p.ID)
	return &p
}

func (s *IntegrationTestSuite) TestWorkoutFlow() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	p := s.createProfile(ctx)

	var todayPlan plan.WorkoutPlan
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/profiles/"+p.ID+"/plan/today", nil, &todayPlan))
	require.NotEmpty(t, todayPlan.Exercises)
	for _, ex := range todayPlan.Exercises {
		assert.Equal(t, catalog.ProvenanceNetwork, ex.Source)
	}

	// same plan for the rest of the day
	var again plan.WorkoutPlan
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/profiles/"+p.ID+"/plan/today", nil, &again))
	assert.Equal(t, todayPlan.ID, again.ID)

	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/profiles/"+p.ID+"/plan/sets",
		workout.LogSetRequest{ExerciseIndex: 0, Reps: 10}, nil))

	feedback := plan.FeedbackJustRight
	var completion workout.Completion
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/profiles/"+p.ID+"/plan/complete",
		workout.FeedbackRequest{Feedback: &feedback}, &completion))
	require.NotNil(t, completion.Result)
	assert.True(t, completion.Plan.Completed)
	assert.Positive(t, completion.Result.XPEarned)
	require.NotEmpty(t, completion.Result.NewBadges)
	assert.Equal(t, progression.BadgeFirstWorkout, completion.Result.NewBadges[0].ID)

	var state progression.State
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/profiles/"+p.ID+"/progression", nil, &state))
	assert.Equal(t, completion.Result.XPEarned, state.XP)
	assert.Equal(t, 1, state.StreakDays)

	// completing twice is a conflict
	assert.Equal(t, http.StatusConflict, s.do(ctx, http.MethodPost, "/profiles/"+p.ID+"/plan/complete", nil, nil))

	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodDelete, "/profiles/"+p.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(ctx, http.MethodGet, "/profiles/"+p.ID+"/progression", nil, nil))
}

func (s *IntegrationTestSuite) TestRegenerateRateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	p := s.createProfile(ctx)
	for i := 0; i < testRegenerateLimitMin; i++ {
		require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/profiles/"+p.ID+"/plan/regenerate", nil, nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, s.do(ctx, http.MethodPost, "/profiles/"+p.ID+"/plan/regenerate", nil, nil))

	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodDelete, "/profiles/"+p.ID, nil, nil))
}

func (s *IntegrationTestSuite) TestUnauthorized() {
	req, err := http.NewRequest(http.MethodGet, serverEndpoint+"/profiles", nil)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}
