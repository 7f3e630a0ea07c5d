package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
)

func TestPreference_LoadAndSet(t *testing.T) {
	db := testutil.NewMemDB()
	user := db.PutUser(model.User{Email: strPtr("jane@example.com"), Name: "Jane"})
	svc := NewPreference(db, testutil.MakeNoopLogger())
	ctx := context.Background()

	for _, name := range []model.PreferenceName{
		model.PreferenceChatMessageNotification,
		model.PreferencePracticeReminderNotification,
		model.PreferenceStreakWarningNotification,
	} {
		value, err := svc.Load(ctx, user.ID, name)
		require.NoError(t, err)
		assert.True(t, value, "%s defaults to true", name)
	}

	value, err := svc.Set(ctx, user.ID, model.PreferenceChatMessageNotification, false)
	require.NoError(t, err)
	assert.False(t, value)

	value, err = svc.Load(ctx, user.ID, model.PreferenceChatMessageNotification)
	require.NoError(t, err)
	assert.False(t, value)

	value, err = svc.Load(ctx, user.ID, model.PreferenceStreakWarningNotification)
	require.NoError(t, err)
	assert.True(t, value)
}

func TestPreference_Errors(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewPreference(db, testutil.MakeNoopLogger())
	ctx := context.Background()

	_, err := svc.Load(ctx, uuid.New(), model.PreferenceName("dark-mode"))
	assertCode(t, err, apiErrors.CodeRequestDataInvalid)

	_, err = svc.Set(ctx, uuid.New(), model.PreferenceName("dark-mode"), true)
	assertCode(t, err, apiErrors.CodeRequestDataInvalid)

	_, err = svc.Set(ctx, uuid.New(), model.PreferenceChatMessageNotification, true)
	assertCode(t, err, apiErrors.CodeUserNotFound)
}
