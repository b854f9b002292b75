package domain

import (
	"fmt"
	"strings"
	"time"
)

type TaskID string

type TaskKind string

const (
	TaskRecaptchaV2          TaskKind = "RecaptchaV2Task"
	TaskRecaptchaV2Invisible TaskKind = "RecaptchaV2TaskInvisible"
	TaskRecaptchaV3          TaskKind = "RecaptchaV3Task"
	TaskHCaptcha             TaskKind = "HCaptchaTask"
)

// ParseTaskKind accepts 2captcha-style kind names, with or without the
// Proxyless suffix.
func ParseTaskKind(value string) (TaskKind, error) {
	normalized := strings.ReplaceAll(value, "Proxyless", "")
	normalized = strings.ReplaceAll(normalized, "proxyless", "")

	for _, kind := range []TaskKind{TaskRecaptchaV2, TaskRecaptchaV2Invisible, TaskRecaptchaV3, TaskHCaptcha} {
		if string(kind) == normalized || string(kind) == value {
			return kind, nil
		}
	}

	return "", fmt.Errorf("unknown task kind %q", value)
}

func (k TaskKind) IsInvisible() bool {
	return strings.Contains(string(k), "Invisible")
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskReady      TaskStatus = "ready"
	TaskFailed     TaskStatus = "failed"
)

func ParseTaskStatus(value string) (TaskStatus, error) {
	switch status := TaskStatus(value); status {
	case TaskPending, TaskProcessing, TaskReady, TaskFailed:
		return status, nil
	default:
		return "", fmt.Errorf("unknown task status %q", value)
	}
}

// IsTerminal reports whether no further transition occurs from s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskReady || s == TaskFailed
}

func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	switch s {
	case TaskPending:
		return target == TaskProcessing || target == TaskFailed
	case TaskProcessing:
		return target == TaskReady || target == TaskFailed
	default:
		return false
	}
}

// Task is a remote-owned record; the client never mutates it.
type Task struct {
	ID            TaskID
	OwnerID       UserID
	OwnerEmail    string
	Kind          TaskKind
	Status        TaskStatus
	WebsiteURL    string
	WebsiteKey    string
	WebsiteDomain string
	IsEnterprise  bool
	Token         string
	Cost          float64
	ErrorCode     string
	ErrorDesc     string
	RetryCount    int
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// ErrorSummary joins the error code and description the way the audit view
// displays failed tasks.
func (t Task) ErrorSummary() string {
	switch {
	case t.ErrorCode != "" && t.ErrorDesc != "":
		return t.ErrorCode + ": " + t.ErrorDesc
	case t.ErrorCode != "":
		return t.ErrorCode
	default:
		return t.ErrorDesc
	}
}

// Matches reports whether the lowercased query occurs in the task id, kind,
// or owner email. Free-text search is client-side over the latest snapshot.
func (t Task) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, field := range []string{string(t.ID), string(t.Kind), t.OwnerEmail} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}
