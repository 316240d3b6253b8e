package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

func TestAppealRow_ToEntity(t *testing.T) {
	decidedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	row := appealRow{
		ID:          uuid.New(),
		Username:    "Dream",
		Reason:      "x-ray",
		Explanation: "sorry",
		UserEmail:   "dream@example.com",
		UID:         "google-dream",
		AuthType:    "google",
		TimestampMS: 1_700_000_000_000,
		Status:      "denied",
		AdminNote:   sql.NullString{String: "Repeat offender", Valid: true},
		DecidedBy:   sql.NullString{String: "admin@example.com", Valid: true},
		DecidedAt:   sql.NullTime{Time: decidedAt, Valid: true},
		AIFlag:      sql.NullString{String: "spam", Valid: true},
		AIVerified:  true,
	}

	a := row.toEntity()
	assert.Equal(t, valueobject.AppealStatusDenied, a.Status)
	assert.Equal(t, valueobject.AuthTypeGoogle, a.AuthType)
	assert.Nil(t, a.DiscordTag)
	require.NotNil(t, a.AdminNote)
	assert.Equal(t, "Repeat offender", *a.AdminNote)
	require.NotNil(t, a.DecidedAt)
	assert.True(t, decidedAt.Equal(*a.DecidedAt))
	require.NotNil(t, a.AIFlag)
	assert.Equal(t, valueobject.AIFlagSpam, *a.AIFlag)
}

func TestAppealRow_PendingHasNoNote(t *testing.T) {
	a := appealRow{Status: "pending", AIFlag: sql.NullString{String: "weird", Valid: true}}.toEntity()
	assert.Nil(t, a.AdminNote)
	assert.Nil(t, a.DecidedBy)
	assert.Nil(t, a.DecidedAt)
	assert.Nil(t, a.AIFlag)
}

func TestMapError(t *testing.T) {
	err := mapError(&pq.Error{Code: pqCodeNotAdmin, Message: "decision by non-admin"}, "x")
	assert.True(t, apperror.IsForbidden(err))

	err = mapError(fmt.Errorf("wrap: %w", &pq.Error{Code: pqCodeAlreadyDecided}), "x")
	assert.True(t, apperror.IsInvalidState(err))

	err = mapError(context.DeadlineExceeded, "x")
	assert.ErrorIs(t, err, apperror.ErrStoreTimeout)

	err = mapError(errors.New("connection refused"), "не удалось")
	assert.True(t, apperror.IsPersistence(err))
}

func TestParseChange(t *testing.T) {
	id := uuid.New()
	change, err := parseChange(`{"id":"` + id.String() + `","uid":"guest-abc","kind":"created"}`)
	require.NoError(t, err)
	assert.Equal(t, repository.AppealChange{AppealID: id, UID: "guest-abc", Kind: repository.ChangeCreated}, change)

	for _, payload := range []string{
		`not json`,
		`{"id":"` + id.String() + `","kind":"created"}`,
		`{"id":"` + id.String() + `","uid":"u","kind":"deleted"}`,
	} {
		_, err := parseChange(payload)
		assert.Error(t, err, payload)
	}
}
