package review

import (
	"fmt"
	"strings"
)

// FinishedText is announced once when a review is closed after content triage.
const FinishedText = "Report finished."

// Templates carries the values review messages are rendered with.
type Templates struct {
	Group        string
	ReportedUser string
	Reason       string
	Moderator    string
	EnforceBans  bool
}

// Transition applies a reaction to a stage. It returns false when the emoji is
// not a control of that stage, in which case nothing should happen.
func Transition(stage Stage, emoji string, t Templates) (Outcome, bool) {
	action, ok := ActionFor(stage, emoji)
	if !ok {
		return Outcome{}, false
	}

	out := Outcome{Action: action}

	switch stage {
	case StageUserReview:
		out.Effects = t.userReviewEffects(action)
		if action == ActionIgnore {
			out.Finished = true
		} else {
			out.Effects = append(out.Effects, prompt(PostReviewPrompt()))
			out.Next = StagePostReview
		}
	case StagePostReview:
		out.Effects = append(t.postReviewEffects(action), announce(FinishedText))
		out.Finished = true
	}

	return out, true
}

func (t Templates) userReviewEffects(action Action) []Effect {
	switch action {
	case ActionBan:
		effects := []Effect{
			announce(fmt.Sprintf("%s has been banned from group %s.", t.ReportedUser, t.Group)),
			channelNotice(fmt.Sprintf("%s has been banned for %s.", t.ReportedUser, t.Reason)),
		}
		if t.EnforceBans {
			effects = append(effects, Effect{
				Kind: EffectBan,
				Text: fmt.Sprintf("Banned by %s after a report for %s", t.Moderator, t.Reason),
			})
		}
		return effects
	case ActionWarn:
		return []Effect{
			announce(t.ReportedUser + " has been sent a warning through direct message."),
			directMessage(t.warning()),
		}
	case ActionIgnore:
		return []Effect{
			announce(fmt.Sprintf("The report against %s has been disregarded by %s.", t.ReportedUser, t.Moderator)),
		}
	case ActionUnsure:
		return []Effect{
			announce("This report has been escalated. Please consult an advanced moderator before taking further action " +
				"against " + t.ReportedUser + ". A warning has been sent to the user in the meantime."),
			directMessage(t.warning()),
		}
	case ActionDelete, ActionDisclaimer:
	}

	return nil
}

func (t Templates) postReviewEffects(action Action) []Effect {
	switch action {
	case ActionDelete:
		return []Effect{
			announce("The reported message has been deleted."),
			{Kind: EffectDeleteMessage},
		}
	case ActionDisclaimer:
		return []Effect{
			announce("A disclaimer has been added to the reported message."),
			reply(fmt.Sprintf("Disclaimer: moderators of group %s have reviewed this message and found that it may "+
				"violate the community guidelines (%s).", t.Group, t.Reason)),
		}
	case ActionIgnore:
		return []Effect{
			announce("No further action will be taken on the reported message."),
		}
	case ActionBan, ActionWarn, ActionUnsure:
	}

	return nil
}

func (t Templates) warning() string {
	return fmt.Sprintf("You have been warned for violating the rules in group %s. Reason: %s.", t.Group, t.Reason)
}

// PostReviewPrompt is the tracking message posted when a review enters content triage.
func PostReviewPrompt() string {
	return "What should happen to the reported message? React with one of the following:\n" +
		strings.Join(Legend(StagePostReview), "\n")
}
