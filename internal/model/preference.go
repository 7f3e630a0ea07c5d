package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PreferenceStore persists per-user preferences.
type PreferenceStore interface {
	Get(ctx context.Context, userID uuid.UUID, name PreferenceName) (Preference, error)
	Upsert(ctx context.Context, preference Preference) (Preference, error)
}

// PreferenceName enumerates supported user preferences.
type PreferenceName string

const (
	PreferenceChatMessageNotification     PreferenceName = "chat-message-notification"
	PreferencePracticeReminderNotification PreferenceName = "practice-reminder-notification"
	PreferenceStreakWarningNotification    PreferenceName = "streak-warning-notification"
)

// Default returns the value used when the user has not set the preference.
// The second result is false for unknown names.
func (n PreferenceName) Default() (bool, bool) {
	switch n {
	case PreferenceChatMessageNotification:
		return true, true
	case PreferencePracticeReminderNotification:
		return true, true
	case PreferenceStreakWarningNotification:
		return true, true
	}
	return false, false
}

// Preference is a boolean user setting.
type Preference struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      PreferenceName
	Value     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
