package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/models"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgUnexpected = "An unexpected error occurred"
)

// ReviewService is what the handlers need from the review service.
type ReviewService interface {
	Submit(ctx context.Context, rating int, text string) (*models.Review, error)
	List(ctx context.Context, f models.ReviewFilter) (*services.ListResult, error)
	Delete(ctx context.Context, id string) error
	RegenerateAll(ctx context.Context) (*services.RegenerateReport, error)
	Stats(ctx context.Context) (*models.ReviewStats, error)
	Export(ctx context.Context) (*services.ExportResult, error)
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", logrus.Fields{"error": err.Error()})
	}
}

func writeStatus(w http.ResponseWriter, code int, status, message string) {
	writeJSON(w, code, statusResponse{Status: status, Message: message})
}
