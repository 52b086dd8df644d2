package review

import (
	"strings"

	"github.com/robalyx/modreport/internal/bot/constants"
)

// variationSelector may be dropped by clients when sending emoji reactions.
const variationSelector = "\ufe0f"

// Action is a moderator decision selected by reacting with an emoji.
type Action string

const (
	ActionBan        Action = "ban"
	ActionWarn       Action = "warn"
	ActionIgnore     Action = "ignore"
	ActionUnsure     Action = "unsure"
	ActionDelete     Action = "delete"
	ActionDisclaimer Action = "disclaimer"
)

// control pairs an emoji with the action it selects and its legend line.
type control struct {
	emoji  string
	action Action
	legend string
}

// controls holds the ordered action table for each stage.
var controls = map[Stage][]control{ //nolint:gochecknoglobals // fixed vocabulary
	StageUserReview: {
		{emoji: constants.EmojiBan, action: ActionBan, legend: "to ban the user"},
		{emoji: constants.EmojiWarn, action: ActionWarn, legend: "to warn the user"},
		{emoji: constants.EmojiIgnore, action: ActionIgnore, legend: "to ignore the report"},
		{emoji: constants.EmojiUnsure, action: ActionUnsure, legend: "if you are unsure"},
	},
	StagePostReview: {
		{emoji: constants.EmojiDelete, action: ActionDelete, legend: "to delete the message"},
		{emoji: constants.EmojiDisclaimer, action: ActionDisclaimer, legend: "to add a disclaimer to the message"},
		{emoji: constants.EmojiIgnore, action: ActionIgnore, legend: "to leave the message as is"},
	},
}

// ActionFor looks up the action an emoji selects in the given stage.
func ActionFor(stage Stage, emoji string) (Action, bool) {
	emoji = strings.TrimSuffix(emoji, variationSelector)
	for _, c := range controls[stage] {
		if strings.TrimSuffix(c.emoji, variationSelector) == emoji {
			return c.action, true
		}
	}

	return "", false
}

// Controls returns the emoji accepted in the given stage, in legend order.
func Controls(stage Stage) []string {
	list := controls[stage]
	emojis := make([]string, len(list))
	for i, c := range list {
		emojis[i] = c.emoji
	}

	return emojis
}

// Legend renders one line per control of the given stage.
func Legend(stage Stage) []string {
	list := controls[stage]
	lines := make([]string, len(list))
	for i, c := range list {
		lines[i] = c.emoji + " " + c.legend
	}

	return lines
}
