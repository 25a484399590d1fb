package domain

import "time"

// AuditEventType classifies security-relevant outcomes.
type AuditEventType string

const (
	AuditLoginSucceeded AuditEventType = "login_succeeded"
	AuditLoginFailed    AuditEventType = "login_failed"
	AuditAccessDenied   AuditEventType = "access_denied"
)

// AuditEvent records a login attempt or an authorization denial.
type AuditEvent struct {
	Type      AuditEventType
	Username  string
	UserID    string
	Reason    string
	RequestID string
	Timestamp time.Time
}
