package workout

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxRequestBodyBytes = 64 << 10

type SetActiveRequest struct {
	ID string `json:"id"`
}

type DeleteProfileResponse struct {
	DeletedID string `json:"deletedId"`
}

type LogSetRequest struct {
	ExerciseIndex int `json:"exerciseIndex"`
	Reps          int `json:"reps"`
	Seconds       int `json:"seconds"`
}

type FeedbackRequest struct {
	Feedback *plan.Feedback `json:"feedback"`
}

type PlansResponse struct {
	Plans []*plan.WorkoutPlan `json:"plans"`
}

type ProfilesResponse struct {
	Profiles []profile.Profile `json:"profiles"`
	ActiveID string            `json:"activeId,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes adds the profile, plan and progression routes to r.
// regenerateMiddleware wraps only the plan regeneration route.
func (handler *Handler) RegisterRoutes(r *mux.Router, regenerateMiddleware ...mux.MiddlewareFunc) {
	var regenerate http.Handler = http.HandlerFunc(handler.HandleRegeneratePlan)
	for i := len(regenerateMiddleware) - 1; i >= 0; i-- {
		regenerate = regenerateMiddleware[i](regenerate)
	}

	r.HandleFunc("/profiles", handler.HandleListProfiles).Methods("GET", "OPTIONS").Name("list-profiles")
	r.HandleFunc("/profiles", handler.HandleCreateProfile).Methods("POST", "OPTIONS").Name("new-profile")
	r.HandleFunc("/profiles/active", handler.HandleGetActiveProfile).Methods("GET", "OPTIONS").Name("get-active-profile")
	r.HandleFunc("/profiles/active", handler.HandleSetActiveProfile).Methods("PUT", "OPTIONS").Name("set-active-profile")
	r.HandleFunc("/profiles/{id}", handler.HandleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profiles/{id}", handler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
	r.HandleFunc("/profiles/{id}", handler.HandleDeleteProfile).Methods("DELETE", "OPTIONS").Name("delete-profile")

	r.HandleFunc("/profiles/{id}/plan/today", handler.HandleTodayPlan).Methods("GET", "OPTIONS").Name("today-plan")
	r.Handle("/profiles/{id}/plan/regenerate", regenerate).Methods("POST", "OPTIONS").Name("regenerate-plan")
	r.HandleFunc("/profiles/{id}/plan/sets", handler.HandleLogSet).Methods("POST", "OPTIONS").Name("log-set")
	r.HandleFunc("/profiles/{id}/plan/complete", handler.HandleCompleteWorkout).Methods("POST", "OPTIONS").Name("complete-workout")
	r.HandleFunc("/profiles/{id}/plans", handler.HandlePlans).Methods("GET", "OPTIONS").Name("list-plans")
	r.HandleFunc("/profiles/{id}/feedback", handler.HandleFeedback).Methods("POST", "OPTIONS").Name("feedback")
	r.HandleFunc("/profiles/{id}/progression", handler.HandleProgression).Methods("GET", "OPTIONS").Name("progression")
}

func (handler *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.list")
	defer span.End()

	profiles, err := handler.service.Profiles(ctx)
	if err != nil {
		writeError(w, "list profiles", err)
		return
	}

	resp := ProfilesResponse{Profiles: profiles}
	if active, err := handler.service.ActiveProfile(ctx); err == nil {
		resp.ActiveID = active.ID
	} else if !errors.Is(err, profile.ErrNoActive) {
		log.Warnf("list profiles, get active: %s", err)
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.new")
	defer span.End()

	var p profile.Profile
	if !decodeJSON(w, r, &p, true) {
		return
	}

	created, err := handler.service.CreateProfile(ctx, p)
	if err != nil {
		writeError(w, "create profile", err)
		return
	}

	log.Debugf("new profile created: %s [%s]", created.ID, created.Name)
	pkg.WriteJSON(w, created, http.StatusCreated)
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.get")
	defer span.End()

	p, err := handler.service.Profile(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "get profile", err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.update")
	defer span.End()

	var p profile.Profile
	if !decodeJSON(w, r, &p, true) {
		return
	}
	p.ID = mux.Vars(r)["id"]

	updated, err := handler.service.UpdateProfile(ctx, p)
	if err != nil {
		writeError(w, "update profile", err)
		return
	}

	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := handler.service.DeleteProfile(ctx, id); err != nil {
		writeError(w, "delete profile", err)
		return
	}

	log.Debugf("profile deleted: %s", id)
	pkg.WriteJSON(w, DeleteProfileResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleGetActiveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.active")
	defer span.End()

	p, err := handler.service.ActiveProfile(ctx)
	if err != nil {
		writeError(w, "get active profile", err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleSetActiveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.setActive")
	defer span.End()

	var req SetActiveRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if req.ID == "" {
		http.Error(w, "error, profile id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.SetActiveProfile(ctx, req.ID); err != nil {
		writeError(w, "set active profile", err)
		return
	}

	pkg.WriteJSON(w, req, http.StatusOK)
}

// HandleTodayPlan takes an optional session override from the
// environment and accessories query params.
func (handler *Handler) HandleTodayPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.today")
	defer span.End()

	override := overrideFromQuery(r)
	p, err := handler.service.TodayPlan(ctx, mux.Vars(r)["id"], override)
	if err != nil {
		writeError(w, "get today plan", err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleRegeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.regenerate")
	defer span.End()

	var override *plan.SessionOverride
	if r.ContentLength != 0 {
		var body plan.SessionOverride
		if !decodeJSON(w, r, &body, false) {
			return
		}
		if body.Environment != "" || len(body.Accessories) > 0 {
			override = &body
		}
	}
	if override == nil {
		override = overrideFromQuery(r)
	}

	p, err := handler.service.RegeneratePlan(ctx, mux.Vars(r)["id"], override)
	if err != nil {
		writeError(w, "regenerate plan", err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleLogSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.logSet")
	defer span.End()

	var req LogSetRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if req.Reps < 0 || req.Seconds < 0 {
		http.Error(w, "error, reps and seconds cannot be negative", http.StatusBadRequest)
		return
	}

	p, err := handler.service.LogSet(ctx, mux.Vars(r)["id"], req.ExerciseIndex, plan.CompletedSet{
		Reps:    req.Reps,
		Seconds: req.Seconds,
	})
	if err != nil {
		writeError(w, "log set", err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.complete")
	defer span.End()

	var req FeedbackRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req, false) {
			return
		}
	}
	if req.Feedback != nil && !req.Feedback.Valid() {
		http.Error(w, "error, unknown feedback", http.StatusBadRequest)
		return
	}

	completion, err := handler.service.CompleteWorkout(ctx, mux.Vars(r)["id"], req.Feedback)
	if err != nil {
		writeError(w, "complete workout", err)
		return
	}

	pkg.WriteJSON(w, completion, http.StatusOK)
}

func (handler *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.feedback")
	defer span.End()

	var req FeedbackRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if req.Feedback == nil || !req.Feedback.Valid() {
		http.Error(w, "error, unknown feedback", http.StatusBadRequest)
		return
	}

	state, err := handler.service.ApplyFeedback(ctx, mux.Vars(r)["id"], *req.Feedback)
	if err != nil {
		writeError(w, "apply feedback", err)
		return
	}

	pkg.WriteJSON(w, state, http.StatusOK)
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.get")
	defer span.End()

	state, err := handler.service.Progression(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "get progression", err)
		return
	}

	pkg.WriteJSON(w, state, http.StatusOK)
}

func (handler *Handler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.list")
	defer span.End()

	plans, err := handler.service.Plans(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "list plans", err)
		return
	}

	pkg.WriteJSON(w, PlansResponse{Plans: plans}, http.StatusOK)
}

// overrideFromQuery reads environment and accessories from the query. Either
// one alone is an override, a missing environment keeps the profile default.
func overrideFromQuery(r *http.Request) *plan.SessionOverride {
	override := &plan.SessionOverride{
		Environment: equipment.Environment(r.URL.Query().Get("environment")),
		Accessories: []string{},
	}
	if acc := r.URL.Query().Get("accessories"); acc != "" {
		for _, a := range strings.Split(acc, ",") {
			if a = strings.TrimSpace(a); a != "" {
				override.Accessories = append(override.Accessories, a)
			}
		}
	}
	if override.Environment == "" && len(override.Accessories) == 0 {
		return nil
	}
	return override
}

// decodeJSON writes a 400 and returns false when the body cannot be decoded.
// An empty body is accepted unless required is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, required bool) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" || required {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != pkg.ContentType.JSON {
			http.Error(w, "invalid content type", http.StatusBadRequest)
			return false
		}
	}

	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && !required {
		return true
	}
	if err != nil {
		log.Debugf("%s %s, unmarshal json body: %s", r.Method, r.URL.Path, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service errors onto status codes. Storage failures are
// reported without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		http.Error(w, "profile not found", http.StatusNotFound)
	case errors.Is(err, profile.ErrNoActive):
		http.Error(w, "no active profile", http.StatusNotFound)
	case errors.Is(err, ErrNoPlanToday):
		http.Error(w, "no plan for today", http.StatusNotFound)
	case errors.Is(err, profile.ErrLimitReached):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, plan.ErrPlanCompleted), errors.Is(err, plan.ErrAllSetsDone):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, plan.ErrExerciseNotFound):
		http.Error(w, "exercise not in plan", http.StatusBadRequest)
	case errors.Is(err, cache.ErrSaveFailed):
		log.Errorf("%s: %s", op, err)
		http.Error(w, "could not save", http.StatusInternalServerError)
	case errors.Is(err, cache.ErrLoadFailed):
		log.Errorf("%s: %s", op, err)
		http.Error(w, "could not load", http.StatusInternalServerError)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "error, "+op+" failed", http.StatusInternalServerError)
	}
}
