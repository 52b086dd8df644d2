package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ReportStatus tracks whether moderators are still acting on a report.
type ReportStatus string

const (
	// ReportStatusOpen means the report is waiting on a moderator.
	ReportStatusOpen ReportStatus = "open"
	// ReportStatusResolved means the review was closed.
	ReportStatusResolved ReportStatus = "resolved"
)

// Report is a submitted report as delivered to a moderator channel.
type Report struct {
	bun.BaseModel `bun:"table:reports"`

	ID                uuid.UUID    `bun:",pk,type:uuid"       json:"id"`
	GuildID           uint64       `bun:",notnull"            json:"guildId"`
	ChannelID         uint64       `bun:",notnull"            json:"channelId"`
	MessageID         uint64       `bun:",notnull"            json:"messageId"`
	ReporterID        uint64       `bun:",notnull"            json:"reporterId"`
	ReporterName      string       `bun:",notnull"            json:"reporterName"`
	ReportedUserID    uint64       `bun:",notnull"            json:"reportedUserId"`
	ReportedUserName  string       `bun:",notnull"            json:"reportedUserName"`
	Content           string       `bun:",notnull"            json:"content"`
	Reason            string       `bun:",notnull"            json:"reason"`
	Category          string       `bun:",notnull"            json:"category"`
	WantsDetails      bool         `bun:",notnull"            json:"wantsDetails"`
	WantsBlock        bool         `bun:",notnull"            json:"wantsBlock"`
	ModChannelID      uint64       `bun:",notnull"            json:"modChannelId"`
	TrackingMessageID uint64       `bun:",notnull"            json:"trackingMessageId"`
	Status            ReportStatus `bun:",notnull"            json:"status"`
	CreatedAt         time.Time    `bun:",notnull"            json:"createdAt"`
	ResolvedAt        bun.NullTime `bun:",nullzero"           json:"resolvedAt"`
}

// ModerationAction is one reaction a moderator used on a report.
type ModerationAction struct {
	bun.BaseModel `bun:"table:moderation_actions"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	ReportID      uuid.UUID `bun:",notnull,type:uuid" json:"reportId"`
	Stage         string    `bun:",notnull"          json:"stage"`
	Action        string    `bun:",notnull"          json:"action"`
	ModeratorID   uint64    `bun:",notnull"          json:"moderatorId"`
	ModeratorName string    `bun:",notnull"          json:"moderatorName"`
	CreatedAt     time.Time `bun:",notnull"          json:"createdAt"`
}
