package types

// ReportRecord is one exported report with its user IDs pseudonymized.
type ReportRecord struct {
	ReportID         string
	GuildID          string
	ReporterHash     string
	ReportedUserHash string
	Reason           string
	Category         string
	Status           string
	CreatedAt        string
	ResolvedAt       string
}

// ActionRecord is one exported moderator action.
type ActionRecord struct {
	ReportID      string
	Stage         string
	Action        string
	ModeratorHash string
	CreatedAt     string
}
