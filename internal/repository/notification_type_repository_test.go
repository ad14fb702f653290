package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notification-preferences/internal/i18n"
	"github.com/iliyamo/notification-preferences/internal/model"
)

var typeCols = []string{"id", "key", "descriptions", "is_active", "is_deprecated", "deprecated_reason", "created_at", "updated_at"}

func TestNotificationTypeRepo_ListActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationTypeRepo(db)

	rows := sqlmock.NewRows(typeCols).
		AddRow(1, "account_security", []byte(`{"en":"Security alerts"}`), true, false, nil, ts, ts).
		AddRow(2, "sms_promotions", []byte(`{"en":"SMS offers","fr":"Offres SMS"}`), true, true, []byte(`{"en":"SMS retired"}`), ts, ts)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_types WHERE is_active = TRUE ORDER BY `key` ASC")).
		WillReturnRows(rows)

	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "account_security", got[0].Key)
	assert.Equal(t, i18n.Text{"en": "Security alerts"}, got[0].Descriptions)
	assert.Nil(t, got[0].DeprecatedReason)

	assert.True(t, got[1].IsDeprecated)
	assert.Equal(t, i18n.Text{"en": "SMS retired"}, got[1].DeprecatedReason)
}

func TestNotificationTypeRepo_ListActive_BadJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationTypeRepo(db)

	rows := sqlmock.NewRows(typeCols).
		AddRow(1, "broken", []byte(`not json`), true, false, nil, ts, ts)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_types")).WillReturnRows(rows)

	_, err := repo.ListActive(context.Background())
	assert.Error(t, err)
}

func TestNotificationTypeRepo_GetActiveByKey_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationTypeRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE `key` = ? AND is_active = TRUE")).
		WithArgs("legacy").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActiveByKey(context.Background(), "legacy")
	assert.ErrorIs(t, err, ErrNotificationTypeNotFound)
}

func TestNotificationTypeRepo_Upsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationTypeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_types")).
		WithArgs("weekly_digest", `{"en":"Weekly digest","fr":"Résumé"}`, true, false, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_types WHERE `key` = ? LIMIT 1")).
		WithArgs("weekly_digest").
		WillReturnRows(sqlmock.NewRows(typeCols).
			AddRow(3, "weekly_digest", `{"en":"Weekly digest","fr":"Résumé"}`, true, false, nil, ts, ts))

	n := &model.NotificationType{
		Key:          "weekly_digest",
		Descriptions: i18n.Text{"fr": "Résumé", "en": "Weekly digest"},
		IsActive:     true,
	}
	require.NoError(t, repo.Upsert(context.Background(), n))
	assert.Equal(t, uint64(3), n.ID)
	assert.Equal(t, ts, n.CreatedAt)
}

func TestNotificationTypeRepo_Upsert_RejectsEmptyDescriptions(t *testing.T) {
	db, _ := newMock(t)
	repo := NewNotificationTypeRepo(db)

	err := repo.Upsert(context.Background(), &model.NotificationType{Key: "weekly_digest"})
	assert.ErrorIs(t, err, model.ErrDescriptionsRequired)
}
