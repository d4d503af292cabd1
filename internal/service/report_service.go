package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/observability/metrics"
)

const (
	cacheKeyReports    = "reports:all"
	cacheKeyStatistics = "reports:statistics"
)

// ReportService orchestrates the report lifecycle: creation, status and
// feedback transitions, comments and reactions. All field validation
// happens here before any store call.
type ReportService struct {
	reports  domain.ReportRepository
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(reports domain.ReportRepository, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &ReportService{
		reports:  reports,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CreateInput carries the fields for a new report
type CreateInput struct {
	ReportID int64  `json:"reportId"`
	Category string `json:"category"`
	Detail   string `json:"detail"`
	Owner    string `json:"owner"`
}

// Create files a new report. Status always starts at "waiting".
func (s *ReportService) Create(ctx context.Context, in CreateInput) (*domain.Report, error) {
	if in.ReportID == 0 || in.Category == "" || in.Detail == "" || in.Owner == "" {
		return nil, fmt.Errorf("%w: reportId, category, detail and owner are required", domain.ErrValidation)
	}

	report := &domain.Report{
		ReportID: in.ReportID,
		Category: in.Category,
		Detail:   in.Detail,
		Owner:    in.Owner,
	}

	if err := s.reports.Insert(report); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	metrics.ObserveReportCreated(report.Category)

	s.logger.Info("report created",
		slog.Int64("id", report.ID),
		slog.Int64("report_id", report.ReportID),
		slog.String("category", report.Category),
		slog.String("owner", report.Owner),
	)

	return report, nil
}

// List returns all reports with comments, newest first, via the cache
func (s *ReportService) List(ctx context.Context) ([]*domain.Report, error) {
	if cached, ok := s.cache.Get(ctx, cacheKeyReports); ok {
		var reports []*domain.Report
		if err := json.Unmarshal([]byte(cached), &reports); err == nil {
			return reports, nil
		}
		s.cache.Delete(ctx, cacheKeyReports)
	}

	reports, err := s.reports.FindAll()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(reports); err == nil {
		s.cache.Set(ctx, cacheKeyReports, string(data), s.cacheTTL)
	}

	return reports, nil
}

// ListByOwner returns the reports filed by one username
func (s *ReportService) ListByOwner(username string) ([]*domain.Report, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	return s.reports.FindByOwner(username)
}

// Get returns one report by its surrogate id
func (s *ReportService) Get(id int64) (*domain.Report, error) {
	return s.reports.FindByID(id)
}

// UpdateStatus transitions a report between the three lifecycle states
func (s *ReportService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Report, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: status must be one of %q, %q, %q",
			domain.ErrValidation, domain.StatusWaiting, domain.StatusInProgress, domain.StatusDone)
	}

	report, err := s.reports.SetStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("report status updated",
		slog.Int64("id", id),
		slog.String("status", status),
	)

	return report, nil
}

// AddFeedback attaches staff feedback to a report
func (s *ReportService) AddFeedback(ctx context.Context, id int64, feedback string) (*domain.Report, error) {
	if feedback == "" {
		return nil, fmt.Errorf("%w: feedback is required", domain.ErrValidation)
	}

	report, err := s.reports.SetFeedback(id, feedback)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return report, nil
}

// AddComment appends a comment and returns the refreshed report
func (s *ReportService) AddComment(ctx context.Context, id int64, author, text string) (*domain.Report, error) {
	if author == "" || text == "" {
		return nil, fmt.Errorf("%w: author and text are required", domain.ErrValidation)
	}

	report, err := s.reports.AppendComment(id, author, text)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	metrics.ObserveComment()
	return report, nil
}

// React records a like or dislike for a user on a report
func (s *ReportService) React(ctx context.Context, id int64, username, typ string) (*domain.Report, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	report, err := s.reports.AddReaction(id, username, typ)
	if err != nil {
		metrics.ObserveReaction(typ, "rejected")
		return nil, err
	}

	s.invalidate(ctx)
	metrics.ObserveReaction(typ, "recorded")
	return report, nil
}

// RemoveReaction undoes a like or dislike
func (s *ReportService) RemoveReaction(ctx context.Context, id int64, username, typ string) (*domain.Report, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if !domain.ValidReaction(typ) {
		return nil, fmt.Errorf("%w: type must be %q or %q", domain.ErrValidation, domain.ReactionLike, domain.ReactionDislike)
	}

	report, err := s.reports.RemoveReaction(id, username, typ)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	metrics.ObserveReaction(typ, "removed")
	return report, nil
}

// Delete removes a report with its comments and reactions
func (s *ReportService) Delete(ctx context.Context, id int64) error {
	if err := s.reports.Delete(id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("report deleted", slog.Int64("id", id))
	return nil
}

// Statistics aggregates report counts per status plus the completion rate
type Statistics struct {
	domain.Statistics
	CompletionRate int `json:"completionRate"`
}

// Statistics returns aggregate counts, served from the cache when fresh.
// CompletionRate is round(100 * completed / total), 0 when there are no
// reports.
func (s *ReportService) Statistics(ctx context.Context) (*Statistics, error) {
	if cached, ok := s.cache.Get(ctx, cacheKeyStatistics); ok {
		stats := &Statistics{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
		s.cache.Delete(ctx, cacheKeyStatistics)
	}

	counts, err := s.reports.Statistics()
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Statistics: *counts}
	if counts.Total > 0 {
		stats.CompletionRate = int(math.Round(100 * float64(counts.Completed) / float64(counts.Total)))
	}

	if data, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, cacheKeyStatistics, string(data), s.cacheTTL)
	}

	return stats, nil
}

func (s *ReportService) invalidate(ctx context.Context) {
	s.cache.Delete(ctx, cacheKeyReports, cacheKeyStatistics)
}
