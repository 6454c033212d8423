package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether the storage backend answers.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	versionInfo string
	healthCheck HealthCheck
}

type EquipmentResponse struct {
	Environments []equipment.Environment `json:"environments"`
	Accessories  []string                `json:"accessories"`
}

func NewHandler(versionInfo string, healthCheck HealthCheck) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		healthCheck: healthCheck,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET", "OPTIONS").Name("version")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET", "OPTIONS").Name("health")
	mainRouter.HandleFunc("/myip", handler.handleGetMyIp).Methods("GET").Name("myip")
	mainRouter.HandleFunc("/equipment", handler.handleEquipment).Methods("GET", "OPTIONS").Name("equipment")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	if handler.healthCheck != nil {
		ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := handler.healthCheck(ctx); err != nil {
			log.Errorf("health check: %s", err)
			span.SetStatus(codes.Error, err.Error())
			pkg.WriteResponse(w, pkg.ContentType.Text, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	span.SetStatus(codes.Ok, "healthy")
	pkg.WriteTextResponseOK(w, "ok")
}

func (handler *Handler) handleGetMyIp(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.getMyIp")
	defer span.End()

	ip, err := pkg.ReadUserIP(r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("failed to get user IP address: %s", err)
		http.Error(w, "failed to get IP", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("user.ip", ip))
	pkg.WriteTextResponseOK(w, ip)
}

func (handler *Handler) handleEquipment(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.equipment")
	defer span.End()

	pkg.WriteJSON(w, EquipmentResponse{
		Environments: equipment.KnownEnvironments(),
		Accessories:  equipment.KnownAccessories(),
	}, http.StatusOK)
}
