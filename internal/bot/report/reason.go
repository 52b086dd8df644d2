package report

import (
	"fmt"
	"strings"

	"github.com/robalyx/modreport/pkg/utils"
)

// Reason is the top-level classification a reporter picks for a message.
type Reason string

const (
	ReasonSpam            Reason = "spam"
	ReasonHateSpeech      Reason = "hate_speech"
	ReasonHarassment      Reason = "harassment"
	ReasonSecurityConcern Reason = "security_concern"
)

// Reasons lists every reason in the order it is offered to reporters.
var Reasons = []Reason{ //nolint:gochecknoglobals // fixed vocabulary
	ReasonSpam,
	ReasonHateSpeech,
	ReasonHarassment,
	ReasonSecurityConcern,
}

var categories = map[Reason][]string{ //nolint:gochecknoglobals // fixed vocabulary
	ReasonSpam: {
		"Unsolicited commercial content",
		"Bot generated or automated spam",
		"Scam or fraud links",
		"Other",
	},
	ReasonHateSpeech: {
		"Racist or ethnic slurs",
		"Homophobic or transphobic language",
		"Religious hate",
		"Gender-based hate or misogyny",
		"Nationality or immigration hate",
		"Ableist language",
		"Other",
	},
	ReasonHarassment: {
		"Bullying or personal attacks",
		"Sexual harassment",
		"Stalking or doxxing",
		"Other",
	},
	ReasonSecurityConcern: {
		"Threats of violence or physical harm",
		"Self-harm or suicide content",
		"Child exploitation",
		"Other",
	},
}

// ParseReason matches reporter input against the known reasons. Matching is
// case-insensitive and treats spaces and underscores the same.
func ParseReason(input string) (Reason, bool) {
	normalized := strings.ReplaceAll(utils.NormalizeKeyword(input), " ", "_")
	for _, reason := range Reasons {
		if string(reason) == normalized {
			return reason, true
		}
	}

	return "", false
}

// IsValid reports whether r is one of the fixed reasons.
func (r Reason) IsValid() bool {
	_, ok := categories[r]
	return ok
}

// DisplayName returns the reason as reporters type it.
func (r Reason) DisplayName() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

// Categories returns a copy of the categories available for r.
func (r Reason) Categories() []string {
	list := categories[r]
	out := make([]string, len(list))
	copy(out, list)

	return out
}

// Category returns the 1-based category choice for r.
func (r Reason) Category(choice int) (string, bool) {
	list := categories[r]
	if choice < 1 || choice > len(list) {
		return "", false
	}

	return list[choice-1], true
}

// HasCategory reports whether category belongs to r.
func (r Reason) HasCategory(category string) bool {
	for _, c := range categories[r] {
		if c == category {
			return true
		}
	}

	return false
}

// ReasonList renders the reason keywords as an inline list.
func ReasonList() string {
	quoted := make([]string, len(Reasons))
	for i, reason := range Reasons {
		quoted[i] = fmt.Sprintf("`%s`", reason.DisplayName())
	}

	last := len(quoted) - 1

	return strings.Join(quoted[:last], ", ") + ", or " + quoted[last]
}
