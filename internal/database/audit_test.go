package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
	"github.com/robalyx/modreport/internal/database"
	"github.com/robalyx/modreport/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedAction struct {
	action   *types.ModerationAction
	resolved bool
}

type fakeStore struct {
	reports []*types.Report
	actions []recordedAction
	err     error
}

func (s *fakeStore) CreateReport(_ context.Context, r *types.Report) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *fakeStore) RecordAction(_ context.Context, a *types.ModerationAction, resolved bool) error {
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, recordedAction{action: a, resolved: resolved})
	return nil
}

func newReviewSession(t *testing.T) *review.Session {
	t.Helper()

	snapshot, err := review.NewSnapshot(&report.Session{
		State:    report.StateComplete,
		Reporter: report.User{ID: 1, Username: "reporter"},
		Message: &report.Message{
			GuildID:   10,
			ChannelID: 20,
			ID:        30,
			Author:    report.User{ID: 2, Username: "offender"},
			Content:   "hello",
		},
		Reason:     report.ReasonSpam,
		Category:   "Scam links",
		WantsBlock: true,
	})
	require.NoError(t, err)

	return review.NewSession(uuid.New(), snapshot, 500, 600)
}

func TestAuditLogRecordReport(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	audit := database.NewAuditLogWithStore(store, zap.NewNop())
	session := newReviewSession(t)

	require.NoError(t, audit.RecordReport(t.Context(), session))
	require.Len(t, store.reports, 1)

	got := store.reports[0]
	assert.Equal(t, session.ReportID, got.ID)
	assert.Equal(t, uint64(10), got.GuildID)
	assert.Equal(t, uint64(30), got.MessageID)
	assert.Equal(t, uint64(1), got.ReporterID)
	assert.Equal(t, uint64(2), got.ReportedUserID)
	assert.Equal(t, "offender", got.ReportedUserName)
	assert.Equal(t, "spam", got.Reason)
	assert.Equal(t, "Scam links", got.Category)
	assert.True(t, got.WantsBlock)
	assert.Equal(t, uint64(500), got.ModChannelID)
	assert.Equal(t, uint64(600), got.TrackingMessageID)
	assert.Equal(t, types.ReportStatusOpen, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAuditLogRecordAction(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	audit := database.NewAuditLogWithStore(store, zap.NewNop())
	session := newReviewSession(t)
	moderator := report.User{ID: 9, Username: "moderator"}

	require.NoError(t, audit.RecordAction(t.Context(), session, review.ActionWarn, moderator, false))
	require.NoError(t, audit.RecordAction(t.Context(),
		session.Advance(review.StagePostReview, 700), review.ActionDelete, moderator, true))

	require.Len(t, store.actions, 2)
	assert.Equal(t, "USER_REVIEW", store.actions[0].action.Stage)
	assert.Equal(t, "warn", store.actions[0].action.Action)
	assert.False(t, store.actions[0].resolved)

	assert.Equal(t, session.ReportID, store.actions[1].action.ReportID)
	assert.Equal(t, "POST_REVIEW", store.actions[1].action.Stage)
	assert.Equal(t, uint64(9), store.actions[1].action.ModeratorID)
	assert.True(t, store.actions[1].resolved)
}

func TestAuditLogPropagatesErrors(t *testing.T) {
	t.Parallel()

	errDown := errors.New("database down")
	audit := database.NewAuditLogWithStore(&fakeStore{err: errDown}, zap.NewNop())

	require.ErrorIs(t, audit.RecordReport(t.Context(), newReviewSession(t)), errDown)
}

func TestNewAuditLogWithoutDatabase(t *testing.T) {
	t.Parallel()

	audit := database.NewAuditLog(nil, zap.NewNop())
	assert.IsType(t, dispatcher.NopAuditLog{}, audit)
}
