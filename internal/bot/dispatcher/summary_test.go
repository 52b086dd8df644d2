package dispatcher_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/robalyx/modreport/internal/bot/constants"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
	"github.com/stretchr/testify/assert"
)

func testSnapshot() review.Snapshot {
	return review.Snapshot{
		Reporter: report.User{ID: reporterID, Username: reporterName},
		Message: report.Message{
			GuildID:   guildID,
			ChannelID: generalID,
			ID:        reportedMsgID,
			Author:    report.User{ID: offenderID, Username: offenderName},
			Content:   reportedText,
		},
		Reason:       report.ReasonSecurityConcern,
		Category:     "Child exploitation",
		WantsDetails: true,
		WantsBlock:   true,
	}
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	summary := dispatcher.RenderSummary(testSnapshot())

	assert.True(t, strings.HasPrefix(summary, "Report from reporter (700)\n"))
	assert.Contains(t, summary, "```\n"+reportedText+"\n```")
	assert.Contains(t, summary, "Reason: security concern")
	assert.Contains(t, summary, "Category: Child exploitation")
	assert.Contains(t, summary, "would like to provide additional details")
	assert.Contains(t, summary, "User has requested to block")
	assert.Contains(t, summary, "Report complete.")
	assert.Contains(t, summary, "https://discord.com/channels/100/400/600")

	for _, line := range review.Legend(review.StageUserReview) {
		assert.Contains(t, summary, line)
	}
}

func TestRenderSummaryFitsMessageLimit(t *testing.T) {
	t.Parallel()

	snapshot := testSnapshot()
	snapshot.Message.Content = strings.Repeat("```long", 1000)

	summary := dispatcher.RenderSummary(snapshot)
	assert.LessOrEqual(t, utf8.RuneCountInString(summary), constants.MaxMessageLength)
	assert.Equal(t, 2, strings.Count(summary, "```"))
}
