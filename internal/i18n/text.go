package i18n

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Text maps locale codes to localized strings, e.g. {"en": "...", "fr": "..."}.
// It is persisted as a JSON object.
type Text map[string]string

// Resolve is ResolveText bound to t.
func (t Text) Resolve(locale string) (string, bool) {
	return ResolveText(t, locale)
}

// ResolveText picks the best entry of m for locale.  The chain is: exact key,
// then DefaultLocale, then the lexicographically smallest key.  Keys are
// compared as stored; callers normalise case if they need to.  ok is false
// only when m is empty.
func ResolveText(m map[string]string, locale string) (text string, ok bool) {
	if len(m) == 0 {
		return "", false
	}
	if v, found := m[locale]; found {
		return v, true
	}
	if v, found := m[DefaultLocale]; found {
		return v, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return m[keys[0]], true
}

// Value implements driver.Valuer.  A nil Text is stored as SQL NULL.
func (t Text) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns.  NULL and empty input leave
// t nil.
func (t *Text) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("i18n: cannot scan %T into Text", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*t = nil
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.Join(errors.New("i18n: invalid localized text"), err)
	}
	*t = m
	return nil
}
