package dto

import (
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

// ParseDateTime interpreta fechas enviadas por el front (RFC3339, fecha-hora local o solo fecha).
// Cadena vacía devuelve nil. Fechas sin zona se interpretan en UTC.
func ParseDateTime(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// FormatDate formatea una fecha como YYYY-MM-DD; nil si t es nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
