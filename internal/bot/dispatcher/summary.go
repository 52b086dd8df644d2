package dispatcher

import (
	"fmt"
	"strings"

	"github.com/robalyx/modreport/internal/bot/constants"
	"github.com/robalyx/modreport/internal/bot/review"
	"github.com/robalyx/modreport/pkg/utils"
)

// RenderSummary formats a submitted report for the moderator channel.
func RenderSummary(s review.Snapshot) string {
	lines := []string{
		fmt.Sprintf("Report from %s (%s)", s.Reporter.Username, s.Reporter.ID),
		fmt.Sprintf("Message from %s (%s):", s.Message.Author.Username, s.Message.Author.ID),
		"```\n" + utils.EscapeCodeBlock(utils.Truncate(s.Message.Content, constants.MaxSummaryContentLength)) + "\n```",
		"Reason: " + s.Reason.DisplayName(),
		"Category: " + s.Category,
	}

	if s.WantsDetails {
		lines = append(lines, "User would like to provide additional details. Please reach out to them through direct message.")
	}

	if s.WantsBlock {
		lines = append(lines, "User has requested to block this user from contacting them further.")
	} else {
		lines = append(lines, "User has not requested to block this user from contacting them further.")
	}

	lines = append(lines,
		"Report complete.\n",
		"If you would like to see the message in context, click on the link below:",
		s.Message.Link()+"\n",
		"To take action, react to this message with one of the following:",
	)
	lines = append(lines, review.Legend(review.StageUserReview)...)

	return strings.Join(lines, "\n")
}

// forwardText formats a monitored channel message for the moderator channel.
func forwardText(author, content string) string {
	return fmt.Sprintf("Forwarded message:\n%s: \"%s\"", author, utils.Truncate(content, constants.MaxQuotedContentLength))
}

// evaluatedText wraps a classifier result for display.
func evaluatedText(result string) string {
	return "Evaluated: '" + utils.Truncate(result, constants.MaxQuotedContentLength) + "'"
}

// undeliveredText tells moderators a direct message to the reported user could not be sent.
func undeliveredText(username string) string {
	return fmt.Sprintf("The message to %s could not be delivered because they do not accept direct messages.", username)
}
