// Package common holds sentinel errors and the timestamp format shared by the
// server and the storage layer.
package common

import (
	"strconv"
	"time"
)

// Timestamp returns the current wall-clock reading in the on-disk and on-wire
// timestamp format. The server is the only source of timestamps: values
// supplied by clients are accepted for schema validation and then discarded.
func Timestamp() string {
	return FormatTime(time.Now())
}

// FormatTime renders t as a Unix epoch string with microsecond precision,
// e.g. "1714689050.123456".
func FormatTime(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}

// ParseTimestamp converts a stored timestamp into a float for ordering.
// Values that do not parse sort before everything else.
func ParseTimestamp(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
