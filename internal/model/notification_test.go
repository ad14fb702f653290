package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/notification-preferences/internal/i18n"
)

func TestNotificationType_Validate(t *testing.T) {
	ok := NotificationType{Key: "weekly_digest", Descriptions: i18n.Text{"en": "Weekly digest"}}
	assert.NoError(t, ok.Validate())

	assert.ErrorIs(t, NotificationType{Key: "  ", Descriptions: i18n.Text{"en": "x"}}.Validate(), ErrNotificationKeyRequired)
	assert.ErrorIs(t, NotificationType{Key: strings.Repeat("k", 65), Descriptions: i18n.Text{"en": "x"}}.Validate(), ErrNotificationKeyTooLong)
	assert.ErrorIs(t, NotificationType{Key: "empty"}.Validate(), ErrDescriptionsRequired)
}

func TestNotificationType_Reason(t *testing.T) {
	reason := i18n.Text{"en": "Replaced by weekly digest", "fr": "Remplacé par le résumé"}

	active := NotificationType{Key: "a", DeprecatedReason: reason}
	assert.Nil(t, active.Reason("fr"), "not deprecated means no reason")

	deprecated := NotificationType{Key: "b", IsDeprecated: true, DeprecatedReason: reason}
	r := deprecated.Reason("fr")
	require.NotNil(t, r)
	assert.Equal(t, "Remplacé par le résumé", *r)

	noReason := NotificationType{Key: "c", IsDeprecated: true}
	assert.Nil(t, noReason.Reason("en"))
}

func TestNotificationType_Description(t *testing.T) {
	n := NotificationType{Descriptions: i18n.Text{"en": "Security alerts", "de": "Sicherheitswarnungen"}}
	assert.Equal(t, "Sicherheitswarnungen", n.Description("de"))
	assert.Equal(t, "Security alerts", n.Description("pt"))
	assert.Equal(t, "", NotificationType{}.Description("en"))
}
