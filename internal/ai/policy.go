package ai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedAnswer = errors.New("classifier answer is not in the expected format")

// policyInstructions precede the policy text in the system prompt.
const policyInstructions = `Answer only in the format "<int> <float>": 0 or 1, a space, then a number from 0.0 to 1.0.
Below is a policy that describes what language counts as harassment or hate speech on our platform.
If the user's message violates the policy, the first value is 1, otherwise 0.
The second value is your confidence in that classification. The closer to 1.0, the more confident you are.

`

// Verdict is a parsed policy classification.
type Verdict struct {
	Violation  bool
	Confidence float64
}

// String renders the verdict for moderators.
func (v Verdict) String() string {
	label := "no violation"
	if v.Violation {
		label = "violation"
	}

	return fmt.Sprintf("%s (confidence %.2f)", label, v.Confidence)
}

// ParseVerdict reads an answer of the form "<0|1> <confidence>". A comma
// after the first value is tolerated.
func ParseVerdict(answer string) (Verdict, error) {
	fields := strings.Fields(strings.ReplaceAll(answer, ",", " "))
	if len(fields) != 2 {
		return Verdict{}, fmt.Errorf("%w: %q", ErrMalformedAnswer, answer)
	}

	var v Verdict

	switch fields[0] {
	case "0":
	case "1":
		v.Violation = true
	default:
		return Verdict{}, fmt.Errorf("%w: %q", ErrMalformedAnswer, answer)
	}

	confidence, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || confidence < 0 || confidence > 1 {
		return Verdict{}, fmt.Errorf("%w: %q", ErrMalformedAnswer, answer)
	}

	v.Confidence = confidence

	return v, nil
}

// systemPrompt joins the fixed instructions with the configured policy.
func systemPrompt(policy string) string {
	return policyInstructions + policy
}
