package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clinio/carematch-backend/internal/application/services"
	"github.com/clinio/carematch-backend/internal/domain/entities"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// RecommendationService is the surface of the matching orchestrator the
// handler depends on.
type RecommendationService interface {
	Generate(ctx context.Context, requestID string, opts services.GenerateOptions) (*entities.RecommendationResult, error)
	FetchCurrent(ctx context.Context, requestID string) (*entities.RecommendationResult, error)
	LogView(ctx context.Context, recommendationID, actor string)
}

// RecommendationHandler handles recommendation-related HTTP requests
type RecommendationHandler struct {
	recommendations  RecommendationService
	defaultConfigKey string
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations RecommendationService, defaultConfigKey string) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations:  recommendations,
		defaultConfigKey: defaultConfigKey,
	}
}

// Generate handles POST /api/v1/requests/{id}/recommendations
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		respondWithError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	configKey := r.URL.Query().Get("config")
	if configKey == "" {
		configKey = h.defaultConfigKey
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	opts := services.GenerateOptions{
		ConfigKey:       configKey,
		ForceRegenerate: force,
		Actor:           r.Header.Get("X-Actor-ID"),
	}

	result, err := h.recommendations.Generate(r.Context(), requestID, opts)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// FetchCurrent handles GET /api/v1/requests/{id}/recommendations/current
func (h *RecommendationHandler) FetchCurrent(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		respondWithError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	result, err := h.recommendations.FetchCurrent(r.Context(), requestID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if result == nil {
		respondWithError(w, http.StatusNotFound, "no current recommendation for this request")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// LogView handles POST /api/v1/recommendations/{id}/view
func (h *RecommendationHandler) LogView(w http.ResponseWriter, r *http.Request) {
	recommendationID := r.PathValue("id")
	if recommendationID == "" {
		respondWithError(w, http.StatusBadRequest, "recommendation ID is required")
		return
	}

	h.recommendations.LogView(r.Context(), recommendationID, r.Header.Get("X-Actor-ID"))

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
