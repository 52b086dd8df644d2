package report

// State is a step in the report intake conversation.
type State int

const (
	StateStart State = iota
	StateAwaitingLink
	StateAwaitingReason
	StateAwaitingCategory
	StateAwaitingDetails
	StateAwaitingBlock
	StateComplete
)

var stateNames = [...]string{ //nolint:gochecknoglobals // lookup table
	"Start",
	"AwaitingLink",
	"AwaitingReason",
	"AwaitingCategory",
	"AwaitingDetails",
	"AwaitingBlock",
	"Complete",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}

	return stateNames[s]
}
