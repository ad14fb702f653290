package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/notification-preferences/internal/model"
)

const preferenceSelect = "SELECT p.id, p.user_id, p.notification_type_id, nt.`key`, p.enabled, p.created_at, p.updated_at " +
	"FROM user_notification_preferences p " +
	"JOIN notification_types nt ON nt.id = p.notification_type_id "

// PreferenceRepo persists per-user notification preferences.  Referential
// integrity (one row per user and type, cascade on parent delete) is
// enforced by the schema.
type PreferenceRepo struct {
	db *sql.DB
}

func NewPreferenceRepo(db *sql.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// ListByUser returns the stored preferences of a user ordered by
// notification type key.
func (r *PreferenceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.UserNotificationPreference, error) {
	rows, err := r.db.QueryContext(ctx, preferenceSelect+"WHERE p.user_id = ? ORDER BY nt.`key` ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserNotificationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert sets the enabled flag for (userID, typeID), creating the row when
// it does not exist, and returns the stored preference.
func (r *PreferenceRepo) Upsert(ctx context.Context, userID, typeID uint64, enabled bool) (model.UserNotificationPreference, error) {
	const q = "INSERT INTO user_notification_preferences (user_id, notification_type_id, enabled) VALUES (?,?,?) " +
		"ON DUPLICATE KEY UPDATE enabled=VALUES(enabled), updated_at=CURRENT_TIMESTAMP"
	if _, err := r.db.ExecContext(ctx, q, userID, typeID, enabled); err != nil {
		return model.UserNotificationPreference{}, err
	}
	row := r.db.QueryRowContext(ctx, preferenceSelect+"WHERE p.user_id = ? AND p.notification_type_id = ? LIMIT 1", userID, typeID)
	return scanPreference(row)
}

func scanPreference(s rowScanner) (model.UserNotificationPreference, error) {
	var p model.UserNotificationPreference
	err := s.Scan(&p.ID, &p.UserID, &p.NotificationTypeID, &p.NotificationTypeKey, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
