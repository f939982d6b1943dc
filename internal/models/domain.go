package models

import (
	"fmt"
	"strings"
	"time"
)

// GRNStatus defines the completion state of a purchase order.
type GRNStatus string

const (
	GRNStatusPending   GRNStatus = "Pending"
	GRNStatusCompleted GRNStatus = "Completed"
)

// DateLayout is the on-disk and wire format of received dates.
const DateLayout = "2006-01-02"

// Status cells written by earlier versions of the table.
var legacyGRNStatuses = map[string]GRNStatus{
	"belum dibuat": GRNStatusPending,
	"sudah dibuat": GRNStatusCompleted,
}

var validGRNStatuses = map[GRNStatus]struct{}{
	GRNStatusPending:   {},
	GRNStatusCompleted: {},
}

// ParseGRNStatus accepts canonical and legacy status cells. An empty cell is Pending.
func ParseGRNStatus(raw string) (GRNStatus, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return GRNStatusPending, nil
	}
	lower := strings.ToLower(value)
	if status, ok := legacyGRNStatuses[lower]; ok {
		return status, nil
	}
	for status := range validGRNStatuses {
		if strings.EqualFold(string(status), value) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid grn status: %s", value)
}

// ParseDate parses a received date. Empty input yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		// Older tables carry a trailing time component.
		t, err = time.Parse("2006-01-02 15:04:05", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
		}
	}
	return t, nil
}

// FormatDate renders a received date; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
