package enums

type MatchStatus string

const (
	MatchStatusActive   MatchStatus = "active"
	MatchStatusInactive MatchStatus = "inactive"
)
