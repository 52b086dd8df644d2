package review

// Stage is the step of moderator review a tracked message belongs to.
type Stage int

const (
	// StageUserReview decides what happens to the reported user.
	StageUserReview Stage = iota
	// StagePostReview decides what happens to the reported content.
	StagePostReview
)

// String returns the stage name as used in logs and the audit log.
func (s Stage) String() string {
	switch s {
	case StageUserReview:
		return "USER_REVIEW"
	case StagePostReview:
		return "POST_REVIEW"
	default:
		return "UNKNOWN"
	}
}
