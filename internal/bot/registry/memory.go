package registry

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
)

// Memory keeps sessions in process memory. Sessions are lost on restart.
type Memory struct {
	reports map[snowflake.ID]*report.Session
	reviews map[snowflake.ID]*review.Session
	mu      sync.RWMutex
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		reports: make(map[snowflake.ID]*report.Session),
		reviews: make(map[snowflake.ID]*review.Session),
	}
}

// Report returns a copy of the report session opened by userID.
func (m *Memory) Report(_ context.Context, userID snowflake.ID) (*report.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.reports[userID]
	if !ok {
		return nil, ErrNotFound
	}

	return session.Clone(), nil
}

// SaveReport stores a copy of session under userID.
func (m *Memory) SaveReport(_ context.Context, userID snowflake.ID, session *report.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[userID] = session.Clone()
	return nil
}

// DeleteReport drops the report session of userID, if any.
func (m *Memory) DeleteReport(_ context.Context, userID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reports, userID)
	return nil
}

// Review returns a copy of the review session tracked by messageID.
func (m *Memory) Review(_ context.Context, messageID snowflake.ID) (*review.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.reviews[messageID]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *session
	return &clone, nil
}

// SaveReview stores a copy of session under its tracking message id.
func (m *Memory) SaveReview(_ context.Context, session *review.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *session
	m.reviews[session.TrackingMessageID] = &clone
	return nil
}

// MoveReview rekeys a review from oldMessageID to the session's tracking message id.
func (m *Memory) MoveReview(_ context.Context, oldMessageID snowflake.ID, session *review.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *session
	delete(m.reviews, oldMessageID)
	m.reviews[session.TrackingMessageID] = &clone
	return nil
}

// DeleteReview drops the review session tracked by messageID, if any.
func (m *Memory) DeleteReview(_ context.Context, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reviews, messageID)
	return nil
}

// Counts returns the number of open report and review sessions.
func (m *Memory) Counts(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Counts{Reports: len(m.reports), Reviews: len(m.reviews)}, nil
}
