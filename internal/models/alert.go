package models

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Alert struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Severity    string `json:"severity"`
	IsDismissed bool   `json:"is_dismissed"`
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
}

type CreateAlertRequest struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
