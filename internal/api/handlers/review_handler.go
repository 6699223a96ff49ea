package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

const maxSubmitBody = 64 << 10

type ReviewHandler struct {
	svc ReviewService
}

func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type submitRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type submitResponse struct {
	ID         string `json:"id"`
	AIResponse string `json:"ai_response"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// Submit handles POST /api/reviews.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Status: statusError, Message: "Invalid request body"})
		return
	}

	review, err := h.svc.Submit(r.Context(), req.Rating, req.ReviewText)

	var vErr *services.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, submitResponse{ID: review.ID, AIResponse: review.AIResponse, Status: statusSuccess})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, submitResponse{Status: statusError, Message: vErr.Message})
	case errors.Is(err, services.ErrPersistence):
		resp := submitResponse{Status: statusError, Message: "Failed to save review"}
		if review != nil {
			resp.AIResponse = review.AIResponse
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		logging.Error("submit review failed", logrus.Fields{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, submitResponse{Status: statusError, Message: msgUnexpected})
	}
}
