package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/security/audit"
	"github.com/condo-care/backend/internal/security/middleware"
	"github.com/condo-care/backend/internal/service"
)

// CreateReportRequest represents a new issue submission
type CreateReportRequest struct {
	ReportID int64  `json:"reportId"`
	Category string `json:"category"`
	Detail   string `json:"detail"`
	Owner    string `json:"owner"`
}

// ReportHandler handles the report lifecycle endpoints
type ReportHandler struct {
	reports *service.ReportService
	audit   *audit.Logger
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, auditLog *audit.Logger, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		reports: reports,
		audit:   auditLog,
		logger:  logger,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: true, Message: "invalid report id"})
		return 0, false
	}
	return id, true
}

// List handles GET /api/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondList(w, reports, len(reports))
}

// ListByOwner handles GET /api/reports/user/{username}
func (h *ReportHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	reports, err := h.reports.ListByOwner(username)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondList(w, reports, len(reports))
}

// Create handles POST /api/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reports.Create(r.Context(), service.CreateInput{
		ReportID: req.ReportID,
		Category: req.Category,
		Detail:   req.Detail,
		Owner:    req.Owner,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), req.Owner, "create", strconv.FormatInt(report.ReportID, 10))
	respondData(w, http.StatusCreated, "report created", report)
}

// UpdateStatus handles PUT /api/reports/{id}/status
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reports.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), claimsUsername(r), "status:"+req.Status, strconv.FormatInt(id, 10))
	respondData(w, http.StatusOK, "status updated", report)
}

// AddFeedback handles PUT /api/reports/{id}/feedback
func (h *ReportHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Feedback string `json:"feedback"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reports.AddFeedback(r.Context(), id, req.Feedback)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), claimsUsername(r), "feedback", strconv.FormatInt(id, 10))
	respondData(w, http.StatusOK, "feedback saved", report)
}

// AddComment handles POST /api/reports/{id}/comment
func (h *ReportHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Author == "" {
		req.Author = claimsUsername(r)
	}

	report, err := h.reports.AddComment(r.Context(), id, req.Author, req.Text)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var latest *domain.Comment
	if n := len(report.Comments); n > 0 {
		latest = &report.Comments[n-1]
	}
	h.audit.LogReportAction(r.Context(), req.Author, "comment", strconv.FormatInt(id, 10))
	respondData(w, http.StatusCreated, "comment added", map[string]interface{}{
		"comment":       latest,
		"totalComments": len(report.Comments),
		"allComments":   report.Comments,
	})
}

// Like handles POST /api/reports/{id}/like
func (h *ReportHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, domain.ReactionLike)
}

// Dislike handles POST /api/reports/{id}/dislike
func (h *ReportHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, domain.ReactionDislike)
}

func (h *ReportHandler) react(w http.ResponseWriter, r *http.Request, typ string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reports.React(r.Context(), id, req.Username, typ)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), req.Username, typ, strconv.FormatInt(id, 10))
	respondData(w, http.StatusOK, fmt.Sprintf("%s recorded", typ), map[string]interface{}{
		"likes":    report.LikesCount,
		"dislikes": report.DislikesCount,
	})
}

// RemoveReaction handles POST /api/reports/{id}/removeLikeDislike
func (h *ReportHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
		Type     string `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" {
		req.Username = claimsUsername(r)
	}

	report, err := h.reports.RemoveReaction(r.Context(), id, req.Username, req.Type)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), req.Username, "remove:"+req.Type, strconv.FormatInt(id, 10))
	respondData(w, http.StatusOK, "reaction removed", map[string]interface{}{
		"likes":    report.LikesCount,
		"dislikes": report.DislikesCount,
	})
}

// Delete handles DELETE /api/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.reports.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogReportAction(r.Context(), claimsUsername(r), "delete", strconv.FormatInt(id, 10))
	respondMessage(w, http.StatusOK, "report deleted")
}

// Statistics handles GET /api/reports/statistics
func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Statistics(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}

func claimsUsername(r *http.Request) string {
	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
