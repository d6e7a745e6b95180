package application

import (
	"strings"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
)

type RecordKind string

const (
	KindAlmanac       RecordKind = "fortune"
	KindConstellation RecordKind = "constellation"

	dateLayout = "2006-01-02"
)

// CacheKey is "<kind>_<date>" or "<kind>_<sign>_<date>". The date is part of
// the key so each UTC day starts with an empty cache.
func CacheKey(kind RecordKind, sign domain.Sign, date time.Time) string {
	parts := []string{string(kind)}
	if sign != "" {
		parts = append(parts, sign.String())
	}
	parts = append(parts, date.UTC().Format(dateLayout))
	return strings.Join(parts, "_")
}
