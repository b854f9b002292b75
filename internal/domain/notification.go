package domain

import "time"

type NotificationID string

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        NotificationID
	Message   string
	Severity  Severity
	CreatedAt time.Time
}
