package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/models"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

type AdminHandler struct {
	svc ReviewService
	now func() time.Time
}

func NewAdminHandler(svc ReviewService) *AdminHandler {
	return &AdminHandler{svc: svc, now: time.Now}
}

type listResponse struct {
	Reviews  []models.Review `json:"reviews"`
	Total    int             `json:"total"`
	Filtered int             `json:"filtered"`
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
}

// List handles GET /api/admin/reviews?rating=&range=&q=.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, listResponse{Reviews: []models.Review{}, Status: statusError, Message: "Invalid filter: " + err.Error()})
		return
	}

	res, err := h.svc.List(r.Context(), filter)
	if err != nil {
		logging.Error("list reviews failed", logrus.Fields{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, listResponse{Reviews: []models.Review{}, Status: statusError, Message: "Failed to fetch reviews"})
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Reviews:  res.Reviews,
		Total:    res.Total,
		Filtered: res.Filtered,
		Status:   statusSuccess,
	})
}

// parseFilter reads the admin filters. Date ranges are anchored at local
// midnight: week and month reach back 7 and 30 days from it.
func parseFilter(r *http.Request, now time.Time) (models.ReviewFilter, error) {
	var f models.ReviewFilter
	q := r.URL.Query()

	if v := q.Get("rating"); v != "" && v != "all" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return f, fmt.Errorf("rating must be 1-5 or all, got %q", v)
		}
		f.Rating = n
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch v := q.Get("range"); v {
	case "", "all":
	case "today":
		f.Since = midnight
	case "week":
		f.Since = midnight.AddDate(0, 0, -7)
	case "month":
		f.Since = midnight.AddDate(0, 0, -30)
	default:
		return f, fmt.Errorf("range must be today, week, month or all, got %q", v)
	}

	f.Search = strings.TrimSpace(q.Get("q"))
	return f, nil
}

// Delete handles DELETE /api/admin/reviews/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeStatus(w, http.StatusBadRequest, statusError, "Review ID is required")
		return
	}

	err := h.svc.Delete(r.Context(), id)
	switch {
	case err == nil:
		writeStatus(w, http.StatusOK, statusSuccess, "Review deleted successfully")
	case errors.Is(err, services.ErrNotFound):
		writeStatus(w, http.StatusNotFound, statusError, "Review not found")
	default:
		logging.Error("delete review failed", logrus.Fields{"id": id, "error": err.Error()})
		writeStatus(w, http.StatusInternalServerError, statusError, "Failed to delete review")
	}
}

type regenerateResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Updated int      `json:"updated"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}

// Regenerate handles POST /api/admin/regenerate.
func (h *AdminHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.RegenerateAll(r.Context())
	if err != nil {
		logging.Error("regenerate failed", logrus.Fields{"error": err.Error()})
		writeStatus(w, http.StatusInternalServerError, statusError, "Failed to regenerate reviews")
		return
	}

	msg := fmt.Sprintf("Successfully regenerated %d out of %d reviews", report.Updated, report.Total)
	if report.Total == 0 {
		msg = "No reviews to regenerate"
	}
	writeJSON(w, http.StatusOK, regenerateResponse{
		Status:  statusSuccess,
		Message: msg,
		Updated: report.Updated,
		Total:   report.Total,
		Errors:  report.Errors,
	})
}

type statsResponse struct {
	Total         int         `json:"total"`
	AverageRating float64     `json:"average_rating"`
	RatingCounts  map[int]int `json:"rating_counts"`
	Status        string      `json:"status"`
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		logging.Error("stats failed", logrus.Fields{"error": err.Error()})
		writeStatus(w, http.StatusInternalServerError, statusError, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		AverageRating: stats.AverageRating,
		RatingCounts:  stats.RatingCounts,
		Status:        statusSuccess,
	})
}

type exportResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Count  int    `json:"count"`
}

// Export handles POST /api/admin/export.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Export(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, exportResponse{Status: statusSuccess, URL: res.URL, Count: res.Count})
	case errors.Is(err, services.ErrExportDisabled):
		writeStatus(w, http.StatusServiceUnavailable, statusError, "Export is not configured")
	default:
		logging.Error("export failed", logrus.Fields{"error": err.Error()})
		writeStatus(w, http.StatusInternalServerError, statusError, "Failed to export reviews")
	}
}
