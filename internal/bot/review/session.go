package review

import (
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/robalyx/modreport/internal/bot/report"
)

// ErrIncompleteReport is returned when a review is opened for a report that was not submitted.
var ErrIncompleteReport = errors.New("report was not submitted")

// Snapshot is the immutable record of a submitted report.
type Snapshot struct {
	Reporter     report.User    `json:"reporter"`
	Message      report.Message `json:"message"`
	Reason       report.Reason  `json:"reason"`
	Category     string         `json:"category"`
	WantsDetails bool           `json:"wantsDetails"`
	WantsBlock   bool           `json:"wantsBlock"`
}

// Session tracks one report through moderator review.
type Session struct {
	ReportID          uuid.UUID    `json:"reportId"`
	Report            Snapshot     `json:"report"`
	Stage             Stage        `json:"stage"`
	ModChannelID      snowflake.ID `json:"modChannelId"`
	TrackingMessageID snowflake.ID `json:"trackingMessageId"`
	Pending           Progress     `json:"pending"`
}

// Progress records the leading effects of an action that already went out.
// It is zero when no action was interrupted.
type Progress struct {
	Action  Action `json:"action"`
	Applied int    `json:"applied"`
}

// NewSnapshot captures a submitted report session.
func NewSnapshot(s *report.Session) (Snapshot, error) {
	if !s.Submitted() || s.Message == nil {
		return Snapshot{}, ErrIncompleteReport
	}

	return Snapshot{
		Reporter:     s.Reporter,
		Message:      *s.Message,
		Reason:       s.Reason,
		Category:     s.Category,
		WantsDetails: s.WantsDetails,
		WantsBlock:   s.WantsBlock,
	}, nil
}

// NewSession opens a review in the user review stage.
func NewSession(reportID uuid.UUID, snapshot Snapshot, modChannelID, trackingMessageID snowflake.ID) *Session {
	return &Session{
		ReportID:          reportID,
		Report:            snapshot,
		Stage:             StageUserReview,
		ModChannelID:      modChannelID,
		TrackingMessageID: trackingMessageID,
	}
}

// Templates builds the render values for this review.
func (s *Session) Templates(group, moderator string, enforceBans bool) Templates {
	return Templates{
		Group:        group,
		ReportedUser: s.Report.Message.Author.Username,
		Reason:       s.Report.Reason.DisplayName(),
		Moderator:    moderator,
		EnforceBans:  enforceBans,
	}
}

// Advance returns a copy of the session moved to the next stage under a new tracking message.
func (s *Session) Advance(next Stage, trackingMessageID snowflake.ID) *Session {
	clone := *s
	clone.Stage = next
	clone.TrackingMessageID = trackingMessageID
	clone.Pending = Progress{}

	return &clone
}

// Resume returns how many effects of action already succeeded on an earlier
// attempt. Progress left by a different action does not carry over.
func (s *Session) Resume(action Action) int {
	if s.Pending.Action != action {
		return 0
	}
	return s.Pending.Applied
}

// Checkpoint returns a copy recording that the first applied effects of action went out.
func (s *Session) Checkpoint(action Action, applied int) *Session {
	clone := *s
	clone.Pending = Progress{Action: action, Applied: applied}

	return &clone
}
