package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condo-care/backend/internal/domain"
)

// memReportRepo is an in-memory domain.ReportRepository with the same
// semantics as the PostgreSQL implementation.
type memReportRepo struct {
	nextID        int64
	nextCommentID int64
	reports       map[int64]*domain.Report
	likes         map[string]bool // "reportID/username"
	dislikes      map[string]bool
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{
		nextID:        1,
		nextCommentID: 1,
		reports:       map[int64]*domain.Report{},
		likes:         map[string]bool{},
		dislikes:      map[string]bool{},
	}
}

func reactionKey(id int64, username string) string {
	return fmt.Sprintf("%d/%s", id, username)
}

func (m *memReportRepo) Insert(r *domain.Report) error {
	for _, existing := range m.reports {
		if existing.ReportID == r.ReportID {
			return domain.ErrDuplicateReport
		}
	}
	r.ID = m.nextID
	m.nextID++
	r.Status = domain.StatusWaiting
	r.Comments = []domain.Comment{}
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.reports[r.ID] = r
	return nil
}

func (m *memReportRepo) FindAll() ([]*domain.Report, error) {
	out := []*domain.Report{}
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *memReportRepo) FindByOwner(username string) ([]*domain.Report, error) {
	out := []*domain.Report{}
	for _, r := range m.reports {
		if r.Owner == username {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReportRepo) FindByID(id int64) (*domain.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memReportRepo) SetStatus(id int64, status string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Status = status
	if status == domain.StatusDone && r.CompletedAt == nil {
		now := time.Now()
		r.CompletedAt = &now
	}
	return r, nil
}

func (m *memReportRepo) SetFeedback(id int64, feedback string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Feedback = &feedback
	return r, nil
}

func (m *memReportRepo) AppendComment(id int64, author, text string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Comments = append(r.Comments, domain.Comment{
		ID:        m.nextCommentID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now(),
	})
	m.nextCommentID++
	return r, nil
}

func (m *memReportRepo) AddReaction(id int64, username, typ string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	key := reactionKey(id, username)
	same, opposite := m.likes, m.dislikes
	if typ == domain.ReactionDislike {
		same, opposite = m.dislikes, m.likes
	}
	if opposite[key] {
		return nil, domain.ErrConflictingReaction
	}
	if same[key] {
		return nil, domain.ErrAlreadyReacted
	}
	same[key] = true
	if typ == domain.ReactionLike {
		r.LikesCount++
	} else {
		r.DislikesCount++
	}
	return r, nil
}

func (m *memReportRepo) RemoveReaction(id int64, username, typ string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	key := reactionKey(id, username)
	if typ == domain.ReactionLike && m.likes[key] {
		delete(m.likes, key)
		r.LikesCount--
	}
	if typ == domain.ReactionDislike && m.dislikes[key] {
		delete(m.dislikes, key)
		r.DislikesCount--
	}
	return r, nil
}

func (m *memReportRepo) Delete(id int64) error {
	if _, ok := m.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *memReportRepo) Statistics() (*domain.Statistics, error) {
	stats := &domain.Statistics{}
	for _, r := range m.reports {
		stats.Total++
		switch r.Status {
		case domain.StatusDone:
			stats.Completed++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusWaiting:
			stats.Waiting++
		}
	}
	return stats, nil
}

func newReportService() (*ReportService, *memReportRepo) {
	repo := newMemReportRepo()
	return NewReportService(repo, nil, 0, nil), repo
}

func mustCreate(t *testing.T, s *ReportService, reportID int64) *domain.Report {
	t.Helper()
	report, err := s.Create(context.Background(), CreateInput{
		ReportID: reportID,
		Category: "plumbing",
		Detail:   "leak under the sink",
		Owner:    "resident",
	})
	require.NoError(t, err)
	return report
}

func TestCreateStartsWaiting(t *testing.T) {
	s, _ := newReportService()

	report := mustCreate(t, s, 1001)
	assert.Equal(t, domain.StatusWaiting, report.Status)
	assert.Zero(t, report.LikesCount)
	assert.Empty(t, report.Comments)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	s, repo := newReportService()

	_, err := s.Create(context.Background(), CreateInput{ReportID: 1001, Detail: "leak", Owner: "resident"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	// nothing stored
	all, _ := repo.FindAll()
	assert.Empty(t, all)
}

func TestUpdateStatusAcceptsOnlyEnumeratedValues(t *testing.T) {
	s, _ := newReportService()
	report := mustCreate(t, s, 1001)
	ctx := context.Background()

	_, err := s.UpdateStatus(ctx, report.ID, "closed")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := s.Get(report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, got.Status)

	for _, status := range []string{domain.StatusInProgress, domain.StatusDone, domain.StatusWaiting} {
		updated, err := s.UpdateStatus(ctx, report.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	s, _ := newReportService()

	_, err := s.UpdateStatus(context.Background(), 42, domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReactionLifecycle(t *testing.T) {
	s, _ := newReportService()
	report := mustCreate(t, s, 1001)
	ctx := context.Background()

	liked, err := s.React(ctx, report.ID, "alice", domain.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikesCount)

	// second like by the same user is rejected
	_, err = s.React(ctx, report.ID, "alice", domain.ReactionLike)
	assert.ErrorIs(t, err, domain.ErrAlreadyReacted)

	// disliking while the like stands is rejected
	_, err = s.React(ctx, report.ID, "alice", domain.ReactionDislike)
	assert.ErrorIs(t, err, domain.ErrConflictingReaction)

	removed, err := s.RemoveReaction(ctx, report.ID, "alice", domain.ReactionLike)
	require.NoError(t, err)
	assert.Zero(t, removed.LikesCount)

	// removal is bounded at the true reaction count
	removed, err = s.RemoveReaction(ctx, report.ID, "alice", domain.ReactionLike)
	require.NoError(t, err)
	assert.Zero(t, removed.LikesCount)
}

func TestRemoveReactionValidatesType(t *testing.T) {
	s, _ := newReportService()
	report := mustCreate(t, s, 1001)

	_, err := s.RemoveReaction(context.Background(), report.ID, "alice", "meh")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCommentsPreserveInsertionOrder(t *testing.T) {
	s, _ := newReportService()
	report := mustCreate(t, s, 1001)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		_, err := s.AddComment(ctx, report.ID, "tech", fmt.Sprintf("update %d", i))
		require.NoError(t, err)
	}

	got, err := s.Get(report.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, n)
	for i, c := range got.Comments {
		assert.Equal(t, "tech", c.Author)
		assert.Equal(t, fmt.Sprintf("update %d", i), c.Text)
	}
}

func TestAddCommentValidation(t *testing.T) {
	s, _ := newReportService()
	report := mustCreate(t, s, 1001)

	_, err := s.AddComment(context.Background(), report.ID, "", "text")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.AddComment(context.Background(), report.ID, "tech", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatisticsCompletionRate(t *testing.T) {
	s, _ := newReportService()
	ctx := context.Background()

	// statuses: waiting, waiting, in-progress, done
	mustCreate(t, s, 1001)
	mustCreate(t, s, 1002)
	third := mustCreate(t, s, 1003)
	fourth := mustCreate(t, s, 1004)
	_, err := s.UpdateStatus(ctx, third.ID, domain.StatusInProgress)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, fourth.ID, domain.StatusDone)
	require.NoError(t, err)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Waiting)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 25, stats.CompletionRate)
}

func TestStatisticsEmpty(t *testing.T) {
	s, _ := newReportService()

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)
}

// countingCache records cache traffic to verify the cache-aside path.
type countingCache struct {
	data    map[string]string
	hits    int
	misses  int
	deletes int
}

func newCountingCache() *countingCache {
	return &countingCache{data: map[string]string{}}
}

func (c *countingCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *countingCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.data[key] = value
}

func (c *countingCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.data, k)
		c.deletes++
	}
}

func TestListUsesCacheUntilInvalidated(t *testing.T) {
	repo := newMemReportRepo()
	cache := newCountingCache()
	s := NewReportService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	report, err := s.Create(ctx, CreateInput{ReportID: 1001, Category: "plumbing", Detail: "leak", Owner: "resident"})
	require.NoError(t, err)

	_, err = s.List(ctx)
	require.NoError(t, err)
	_, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// any mutation drops the cached list
	_, err = s.AddFeedback(ctx, report.ID, "scheduled for Monday")
	require.NoError(t, err)

	reports, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].Feedback)
	assert.Equal(t, "scheduled for Monday", *reports[0].Feedback)
}
